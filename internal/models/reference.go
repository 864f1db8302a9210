package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category names an entity type that can be referenced by (category, id).
type Category string

const (
	CategoryWine         Category = "wine"
	CategoryManufacturer Category = "manufacturer"
	CategoryCountry      Category = "country"
	CategoryRegion       Category = "region"
	CategoryGrapeVariety Category = "grapevariety"
)

var knownCategories = map[Category]bool{
	CategoryWine:         true,
	CategoryManufacturer: true,
	CategoryCountry:      true,
	CategoryRegion:       true,
	CategoryGrapeVariety: true,
}

// ParseCategory is case-insensitive and reports whether the name is known.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, knownCategories[c]
}

// IsBeverage reports whether entities of the category can be ordered.
func (c Category) IsBeverage() bool {
	switch c {
	case CategoryWine:
		return true
	default:
		return false
	}
}

type ItemRef struct {
	Category Category
	ID       uint
}

// Priced is a resolved orderable catalog entity.
type Priced interface {
	Category() Category
	UnitPrice() decimal.Decimal
}
