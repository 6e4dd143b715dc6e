package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/srgjo27/class_booking/internal/core/domain"
)

type priceKey struct {
	classType domain.ClassType
	currency  string
	category  domain.ParticipantCategory
}

type slotKey struct {
	classType domain.ClassType
	startTime string
}

// Catalog is an in-memory CatalogRepository, usually seeded from config.
type Catalog struct {
	mu         sync.RWMutex
	languages  map[string]struct{}
	slots      map[slotKey]domain.SlotDefinition
	capacities map[domain.ClassType]domain.CapacityRule
	prices     map[priceKey]int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		languages:  make(map[string]struct{}),
		slots:      make(map[slotKey]domain.SlotDefinition),
		capacities: make(map[domain.ClassType]domain.CapacityRule),
		prices:     make(map[priceKey]int64),
	}
}

func (c *Catalog) AddLanguage(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.languages[strings.ToLower(strings.TrimSpace(code))] = struct{}{}
}

func (c *Catalog) AddSlot(slot domain.SlotDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[slotKey{slot.ClassType, slot.StartTime}] = slot
}

func (c *Catalog) SetCapacity(rule domain.CapacityRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacities[rule.ClassType] = rule
}

func (c *Catalog) SetPrice(rule domain.PriceRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[priceKey{rule.ClassType, rule.Currency, rule.Category}] = rule.UnitPrice
}

func (c *Catalog) FindStartTime(_ context.Context, timeSlot string, classType domain.ClassType) (*domain.SlotDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slot, ok := c.slots[slotKey{classType, timeSlot}]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return &slot, nil
}

func (c *Catalog) FindPrice(_ context.Context, classType domain.ClassType, currency string, category domain.ParticipantCategory) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	unit, ok := c.prices[priceKey{classType, currency, category}]
	if !ok {
		return 0, domain.ErrPriceNotFound
	}
	return unit, nil
}

func (c *Catalog) GetCapacityRule(_ context.Context, classType domain.ClassType) (*domain.CapacityRule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rule, ok := c.capacities[classType]
	if !ok {
		return nil, domain.ErrCapacityRuleNotFound
	}
	return &rule, nil
}

func (c *Catalog) LanguageExists(_ context.Context, code string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.languages[code]
	return ok, nil
}
