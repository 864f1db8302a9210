// Package testutil provides an in-memory database seeded with catalog
// fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/wine_shop/internal/models"
)

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type Catalog struct {
	Country      models.Country
	Region       models.Region
	Manufacturer models.Manufacturer
	Grape        models.GrapeVariety
}

func SeedCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()

	c := &Catalog{}
	c.Country = models.Country{Name: "France"}
	require.NoError(t, db.Create(&c.Country).Error)

	c.Region = models.Region{CountryID: c.Country.ID, Region: "Bordeaux"}
	require.NoError(t, db.Create(&c.Region).Error)

	c.Manufacturer = models.Manufacturer{
		Name:            "Chateau Test",
		CountryOfOrigin: c.Country.ID,
		Website:         "https://chateau.example.com",
	}
	require.NoError(t, db.Create(&c.Manufacturer).Error)

	c.Grape = models.GrapeVariety{Name: "Merlot"}
	require.NoError(t, db.Create(&c.Grape).Error)
	return c
}

var codeSeq atomic.Int64

// SeedWine inserts a wine with the given price, e.g. "15.50".
func SeedWine(t *testing.T, db *gorm.DB, c *Catalog, name, price string) *models.Wine {
	t.Helper()

	w := &models.Wine{
		Beverage: models.Beverage{
			Name:           name,
			Price:          decimal.RequireFromString(price),
			ManufacturerID: c.Manufacturer.ID,
			ProductCode:    fmt.Sprintf("W%06d", codeSeq.Add(1)),
			CountryID:      c.Country.ID,
			RegionID:       &c.Region.ID,
			AlcoholContent: 13.5,
			Volume:         750,
		},
		SugarContent:   models.SugarDry,
		Color:          models.ColorRed,
		GrapeVarietyID: &c.Grape.ID,
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

func SeedUser(t *testing.T, db *gorm.DB, email string, staff bool) *models.User {
	t.Helper()

	u := &models.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
		IsStaff:      staff,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
