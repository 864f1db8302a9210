package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/wine_shop/internal/models"
)

var (
	ErrUnknownCategory    = errors.New("unknown content type")
	ErrCategoryNotAllowed = errors.New("content type is not a beverage")
	ErrItemNotFound       = errors.New("catalog item not found")
)

// Resolve looks up an orderable catalog entity. Every known category that
// is not a beverage is rejected, even though it can be referenced.
func (r *GormRepo) Resolve(ctx context.Context, ref models.ItemRef) (models.Priced, error) {
	switch ref.Category {
	case models.CategoryWine:
		var w models.Wine
		res := r.DB.WithContext(ctx).Limit(1).Find(&w, ref.ID)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%s #%d: %w", ref.Category, ref.ID, ErrItemNotFound)
		}
		return &w, nil
	case models.CategoryManufacturer, models.CategoryCountry, models.CategoryRegion, models.CategoryGrapeVariety:
		return nil, fmt.Errorf("%s: %w", ref.Category, ErrCategoryNotAllowed)
	default:
		return nil, fmt.Errorf("%q: %w", ref.Category, ErrUnknownCategory)
	}
}

// UnitPrices resolves a batch of references with one query per category.
// References that no longer resolve are absent from the result.
func (r *GormRepo) UnitPrices(ctx context.Context, refs []models.ItemRef) (map[models.ItemRef]decimal.Decimal, error) {
	ids := make(map[models.Category][]uint)
	for _, ref := range refs {
		ids[ref.Category] = append(ids[ref.Category], ref.ID)
	}

	out := make(map[models.ItemRef]decimal.Decimal, len(refs))
	for cat, list := range ids {
		switch cat {
		case models.CategoryWine:
			var wines []models.Wine
			if err := r.DB.WithContext(ctx).Select("id", "price").Where("id IN ?", list).Find(&wines).Error; err != nil {
				return nil, err
			}
			for i := range wines {
				out[models.ItemRef{Category: cat, ID: wines[i].ID}] = wines[i].Price
			}
		}
	}
	return out, nil
}
