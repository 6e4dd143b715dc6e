package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/ports"
)

type PriceCatalog struct {
	catalog ports.CatalogRepository
}

func NewPriceCatalog(catalog ports.CatalogRepository) *PriceCatalog {
	return &PriceCatalog{catalog: catalog}
}

// ComputeTotals prices a party. A category without a configured price only
// fails the booking when the party has members of that category.
func (p *PriceCatalog) ComputeTotals(ctx context.Context, classType domain.ClassType, currency string, adults, children int) (domain.PriceTotals, error) {
	var totals domain.PriceTotals

	if adults > 0 {
		unit, err := p.unitPrice(ctx, classType, currency, domain.CategoryAdult)
		if err != nil {
			return domain.PriceTotals{}, err
		}
		totals.PriceAdults = unit * int64(adults)
	}

	if children > 0 {
		unit, err := p.unitPrice(ctx, classType, currency, domain.CategoryChild)
		if err != nil {
			return domain.PriceTotals{}, err
		}
		totals.PriceChildren = unit * int64(children)
	}

	totals.TotalPrice = totals.PriceAdults + totals.PriceChildren
	return totals, nil
}

func (p *PriceCatalog) unitPrice(ctx context.Context, classType domain.ClassType, currency string, category domain.ParticipantCategory) (int64, error) {
	unit, err := p.catalog.FindPrice(ctx, classType, currency, category)
	if err != nil {
		if errors.Is(err, domain.ErrPriceNotFound) {
			return 0, fmt.Errorf("%w: %s %s price in %s", domain.ErrPriceNotFound, classType, category, currency)
		}
		return 0, fmt.Errorf("find %s price: %w", category, err)
	}
	if unit < 0 {
		return 0, fmt.Errorf("%w: negative %s price for %s in %s", domain.ErrInvalidConfiguration, category, classType, currency)
	}
	return unit, nil
}
