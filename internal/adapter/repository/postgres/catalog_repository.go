package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

// CatalogRepository reads the schedule, price, capacity and language tables.
// They are maintained elsewhere and only ever read here.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) FindStartTime(ctx context.Context, timeSlot string, classType domain.ClassType) (*domain.SlotDefinition, error) {
	query := `
	SELECT class_type, start_time
	FROM class_schedules
	WHERE start_time = $1 AND class_type = $2
	LIMIT 1
	`

	var slot domain.SlotDefinition
	err := r.db.QueryRowContext(ctx, query, timeSlot, classType).Scan(&slot.ClassType, &slot.StartTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}

		return nil, err
	}

	return &slot, nil
}

func (r *CatalogRepository) FindPrice(ctx context.Context, classType domain.ClassType, currency string, category domain.ParticipantCategory) (int64, error) {
	query := `
	SELECT unit_price
	FROM class_prices
	WHERE class_type = $1 AND currency = $2 AND category = $3
	`

	var unit int64
	err := r.db.QueryRowContext(ctx, query, classType, currency, category).Scan(&unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPriceNotFound
		}

		return 0, err
	}

	return unit, nil
}

func (r *CatalogRepository) GetCapacityRule(ctx context.Context, classType domain.ClassType) (*domain.CapacityRule, error) {
	query := `
	SELECT class_type, min_capacity, max_capacity
	FROM class_capacities
	WHERE class_type = $1
	`

	var rule domain.CapacityRule
	err := r.db.QueryRowContext(ctx, query, classType).Scan(&rule.ClassType, &rule.MinCapacity, &rule.MaxCapacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCapacityRuleNotFound
		}

		return nil, err
	}

	return &rule, nil
}

func (r *CatalogRepository) LanguageExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM class_languages WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}
