package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisOccupancyCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOccupancyCache(client, 30*time.Second, zerolog.Nop()), mr
}

func sampleSession(total int) *domain.Session {
	return &domain.Session{
		ID:                uuid.MustParse("3f1c9a5e-0000-4000-8000-00000000000a"),
		Date:              "2030-01-01",
		TimeSlot:          "10:00",
		ClassType:         domain.ClassTypeNormal,
		Language:          "en",
		TotalParticipants: total,
	}
}

func TestRedisOccupancyCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	session := sampleSession(3)

	_, gen, ok := c.GetSession(ctx, session.Key())
	assert.False(t, ok)
	assert.Zero(t, gen)

	require.NoError(t, c.FillSession(ctx, session, gen))
	assert.True(t, mr.Exists("occupancy:2030-01-01|10:00|NORMAL"))
	assert.Equal(t, 30*time.Second, mr.TTL("occupancy:2030-01-01|10:00|NORMAL"))

	got, _, ok := c.GetSession(ctx, session.Key())
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, 3, got.TotalParticipants)

	require.NoError(t, c.Invalidate(ctx, session.Key()))
	_, gen, ok = c.GetSession(ctx, session.Key())
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
}

func TestRedisOccupancyCache_FillAfterInvalidateIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	stale := sampleSession(3)

	// A reader misses and loads the old state from the store.
	_, gen, ok := c.GetSession(ctx, stale.Key())
	require.False(t, ok)

	// A booking commits and invalidates before the reader writes back.
	require.NoError(t, c.Invalidate(ctx, stale.Key()))

	require.NoError(t, c.FillSession(ctx, stale, gen))
	assert.False(t, mr.Exists(Key(stale.Key())), "stale snapshot must not be cached")

	// The next reader sees the new generation and may fill.
	fresh := sampleSession(5)
	_, gen, _ = c.GetSession(ctx, fresh.Key())
	require.NoError(t, c.FillSession(ctx, fresh, gen))

	got, _, ok := c.GetSession(ctx, fresh.Key())
	require.True(t, ok)
	assert.Equal(t, 5, got.TotalParticipants)
}

func TestRedisOccupancyCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	key := domain.SessionKey{Date: "2030-01-01", TimeSlot: "10:00", ClassType: domain.ClassTypeNormal}

	require.NoError(t, mr.Set(Key(key), "{not json"))

	_, _, ok := c.GetSession(context.Background(), key)
	assert.False(t, ok)
	assert.False(t, mr.Exists(Key(key)), "corrupt entry should be dropped")
}

func TestRedisOccupancyCache_ReadFailureSkipsFill(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })
	c := NewRedisOccupancyCache(db, time.Second, zerolog.Nop())
	session := sampleSession(2)

	mockRedis.ExpectMGet(Key(session.Key()), GenerationKey(session.Key())).SetErr(assert.AnError)

	_, gen, ok := c.GetSession(context.Background(), session.Key())
	assert.False(t, ok)
	assert.Negative(t, gen)

	// No further commands are expected.
	assert.NoError(t, c.FillSession(context.Background(), session, gen))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestRedisOccupancyCache_Invalidate(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })
	c := NewRedisOccupancyCache(db, time.Second, zerolog.Nop())
	key := domain.SessionKey{Date: "2030-01-01", TimeSlot: "10:00", ClassType: domain.ClassTypePrivate}

	mockRedis.ExpectIncr("occupancy-gen:2030-01-01|10:00|PRIVATE").SetVal(1)
	mockRedis.ExpectDel("occupancy:2030-01-01|10:00|PRIVATE").SetVal(1)
	assert.NoError(t, c.Invalidate(context.Background(), key))

	mockRedis.ExpectIncr("occupancy-gen:2030-01-01|10:00|PRIVATE").SetVal(2)
	mockRedis.ExpectDel("occupancy:2030-01-01|10:00|PRIVATE").SetErr(assert.AnError)
	assert.ErrorIs(t, c.Invalidate(context.Background(), key), assert.AnError)

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}
