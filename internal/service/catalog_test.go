package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/testutil"
	"github.com/Skotchmaster/wine_shop/internal/transport"
)

type fakeIndex struct {
	docs    map[uint]string
	hits    []uint
	failing bool
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]string{}} }

func (i *fakeIndex) IndexWine(_ context.Context, w *models.Wine) error {
	i.docs[w.ID] = w.Name
	return nil
}

func (i *fakeIndex) DeleteWine(_ context.Context, id uint) error {
	delete(i.docs, id)
	return nil
}

func (i *fakeIndex) SearchWines(_ context.Context, _ string, _, _ int) (int64, []uint, error) {
	if i.failing {
		return 0, nil, errors.New("cluster unavailable")
	}
	return int64(len(i.hits)), i.hits, nil
}

func validWineRequest(c *testutil.Catalog) transport.WineRequest {
	return transport.WineRequest{
		Name:           "Pomerol",
		Price:          decimal.RequireFromString("42.00"),
		Manufacturer:   c.Manufacturer.ID,
		ProductCode:    "POM0001",
		Country:        c.Country.ID,
		Region:         &c.Region.ID,
		AlcoholContent: 14,
		Volume:         750,
		SugarContent:   models.SugarDry,
		Color:          models.ColorRed,
		GrapeVariety:   &c.Grape.ID,
	}
}

func TestCreateWine_IndexesAndPublishes(t *testing.T) {
	f := newFixture(t)
	idx := newFakeIndex()
	svc := &CatalogService{Repo: f.repo, Index: idx, Events: f.events}

	w, err := svc.CreateWine(context.Background(), validWineRequest(f.catalog))
	require.NoError(t, err)
	assert.NotZero(t, w.ID)
	assert.Equal(t, "Pomerol", idx.docs[w.ID])
	assert.Equal(t, []string{"wine_created"}, f.events.types())

	require.NoError(t, svc.DeleteWine(context.Background(), w.ID))
	assert.Empty(t, idx.docs)
	assert.ErrorIs(t, svc.DeleteWine(context.Background(), w.ID), ErrNotFound)
}

func TestCreateWine_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *transport.WineRequest, c *testutil.Catalog)
		field  string
	}{
		{"zero price", func(r *transport.WineRequest, _ *testutil.Catalog) { r.Price = decimal.Zero }, "price"},
		{"three decimals", func(r *transport.WineRequest, _ *testutil.Catalog) { r.Price = decimal.RequireFromString("1.005") }, "price"},
		{"short code", func(r *transport.WineRequest, _ *testutil.Catalog) { r.ProductCode = "ABC" }, "product_code"},
		{"alcohol over 100", func(r *transport.WineRequest, _ *testutil.Catalog) { r.AlcoholContent = 101 }, "alcohol_content"},
		{"zero volume", func(r *transport.WineRequest, _ *testutil.Catalog) { r.Volume = 0 }, "volume"},
		{"bad color", func(r *transport.WineRequest, _ *testutil.Catalog) { r.Color = "BLUE" }, "color"},
		{"bad sugar", func(r *transport.WineRequest, _ *testutil.Catalog) { r.SugarContent = "SALTY" }, "sugar_content"},
		{"missing manufacturer", func(r *transport.WineRequest, c *testutil.Catalog) { r.Manufacturer = c.Manufacturer.ID + 50 }, "manufacturer"},
		{"missing country", func(r *transport.WineRequest, c *testutil.Catalog) { r.Country = c.Country.ID + 50 }, "country"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := &CatalogService{Repo: f.repo}
			req := validWineRequest(f.catalog)
			tt.mutate(&req, f.catalog)

			_, err := svc.CreateWine(context.Background(), req)
			requireFieldError(t, err, tt.field)
			assert.Zero(t, f.count(t, &models.Wine{}))
		})
	}
}

func TestCreateWine_RegionMustBelongToCountry(t *testing.T) {
	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	italy := models.Country{Name: "Italy"}
	require.NoError(t, f.db.Create(&italy).Error)

	req := validWineRequest(f.catalog)
	req.Country = italy.ID
	_, err := svc.CreateWine(context.Background(), req)
	requireFieldError(t, err, "region")
}

func TestCreateWine_DuplicateProductCode(t *testing.T) {
	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()

	_, err := svc.CreateWine(ctx, validWineRequest(f.catalog))
	require.NoError(t, err)
	_, err = svc.CreateWine(ctx, validWineRequest(f.catalog))
	requireFieldError(t, err, "product_code")
}

func TestPatchWine_OnlyTouchesGivenFields(t *testing.T) {
	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()
	w := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")

	price := decimal.RequireFromString("17.25")
	patched, err := svc.PatchWine(ctx, w.ID, transport.WinePatchRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "17.25", patched.Price.StringFixed(2))
	assert.Equal(t, "Red", patched.Name)

	bad := "XX"
	_, err = svc.PatchWine(ctx, w.ID, transport.WinePatchRequest{ProductCode: &bad})
	requireFieldError(t, err, "product_code")

	_, err = svc.PatchWine(ctx, w.ID+100, transport.WinePatchRequest{Price: &price})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWines_Filters(t *testing.T) {
	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()
	testutil.SeedWine(t, f.db, f.catalog, "Cheap", "5.00")
	testutil.SeedWine(t, f.db, f.catalog, "Mid", "15.50")
	testutil.SeedWine(t, f.db, f.catalog, "Dear", "99.00")

	gte := decimal.RequireFromString("10")
	lte := decimal.RequireFromString("50")
	total, wines, err := svc.ListWines(ctx, repo.WineFilter{PriceGte: &gte, PriceLte: &lte}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, wines, 1)
	assert.Equal(t, "Mid", wines[0].Name)

	total, _, err = svc.ListWines(ctx, repo.WineFilter{Color: models.ColorWhite}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	total, wines, err = svc.ListWines(ctx, repo.WineFilter{}, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, wines, 1)
	assert.Equal(t, "Mid", wines[0].Name)
}

func TestSearchWines_IndexThenFallback(t *testing.T) {
	f := newFixture(t)
	idx := newFakeIndex()
	svc := &CatalogService{Repo: f.repo, Index: idx}
	ctx := context.Background()
	a := testutil.SeedWine(t, f.db, f.catalog, "Saint-Emilion", "20.00")
	b := testutil.SeedWine(t, f.db, f.catalog, "Margaux", "30.00")

	idx.hits = []uint{b.ID, a.ID, 9999}
	total, wines, err := svc.SearchWines(ctx, "bordeaux", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, wines, 2)
	assert.Equal(t, "Margaux", wines[0].Name)

	idx.failing = true
	total, wines, err = svc.SearchWines(ctx, "marg", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, wines, 1)
	assert.Equal(t, b.ID, wines[0].ID)

	total, wines, err = svc.SearchWines(ctx, "   ", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, wines)
}

func TestReindexWines(t *testing.T) {
	f := newFixture(t)
	idx := newFakeIndex()
	svc := &CatalogService{Repo: f.repo, Index: idx}
	testutil.SeedWine(t, f.db, f.catalog, "A", "1.00")
	testutil.SeedWine(t, f.db, f.catalog, "B", "2.00")

	n, err := svc.ReindexWines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, idx.docs, 2)
}

func TestRegionsAndManufacturers(t *testing.T) {
	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()

	_, err := svc.CreateRegion(ctx, transport.RegionRequest{Country: f.catalog.Country.ID + 10, Region: "Nowhere"})
	requireFieldError(t, err, "country")

	r, err := svc.CreateRegion(ctx, transport.RegionRequest{Country: f.catalog.Country.ID, Region: "Burgundy"})
	require.NoError(t, err)
	total, _, err := svc.ListRegions(ctx, &f.catalog.Country.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	m, err := svc.CreateManufacturer(ctx, transport.ManufacturerRequest{
		Name: "Domaine", CountryOfOrigin: f.catalog.Country.ID, Website: "https://domaine.example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, m.Country)
	assert.Equal(t, "France", m.Country.Name)

	require.NoError(t, svc.DeleteRegion(ctx, r.ID))
	assert.ErrorIs(t, svc.DeleteRegion(ctx, r.ID), ErrNotFound)
}

func TestGrapeVariety_UniqueName(t *testing.T) {
	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}

	_, err := svc.CreateGrapeVariety(context.Background(), transport.GrapeVarietyRequest{Name: "Merlot"})
	requireFieldError(t, err, "name")
}
