package redisbus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() domain.ClassConfirmedEvent {
	return domain.ClassConfirmedEvent{
		RegistrationID:    "3f1c9a5e-0000-4000-8000-000000000001",
		Date:              "2030-01-01",
		TimeSlot:          "10:00",
		ClassType:         domain.ClassTypeNormal,
		Language:          "en",
		CustomerName:      "Ada",
		CustomerEmail:     "ada@example.com",
		TotalParticipants: 3,
		TotalPrice:        2500,
		Currency:          "USD",
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := New(client, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := bus.SubscribeClassConfirmed(ctx)
	require.NoError(t, err)
	defer sub.Close()

	event := sampleEvent()
	require.NoError(t, bus.PublishClassConfirmed(ctx, event))

	select {
	case got := <-sub.C():
		assert.Equal(t, event, got)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}

	require.NoError(t, sub.Close())
	_, open := <-sub.C()
	assert.False(t, open, "channel should be closed after Close")
}

const samplePayload = `{"registration_id":"3f1c9a5e-0000-4000-8000-000000000001","date":"2030-01-01","time_slot":"10:00",` +
	`"class_type":"NORMAL","language":"en","customer_name":"Ada","customer_email":"ada@example.com",` +
	`"total_participants":3,"total_price":2500,"currency":"USD"}`

func TestBus_PublishPayload(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })
	bus := New(db, zerolog.Nop())

	mockRedis.ExpectPublish(domain.TopicClassConfirmed, []byte(samplePayload)).SetVal(1)

	assert.NoError(t, bus.PublishClassConfirmed(context.Background(), sampleEvent()))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestBus_PublishFailure(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })
	bus := New(db, zerolog.Nop())

	mockRedis.ExpectPublish(domain.TopicClassConfirmed, []byte(samplePayload)).SetErr(assert.AnError)

	err := bus.PublishClassConfirmed(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, assert.AnError)
}
