package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

// WineIndex is a full-text index over wines. The database stays the source
// of truth; the index only returns matching ids.
type WineIndex interface {
	IndexWine(ctx context.Context, w *models.Wine) error
	DeleteWine(ctx context.Context, id uint) error
	SearchWines(ctx context.Context, q string, offset, limit int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  WineIndex
	Events EventPublisher
}

var maxPrice = decimal.New(1, 8)

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

func (s *CatalogService) mustExist(ctx context.Context, model any, field string, id uint) error {
	ok, err := s.Repo.Exists(ctx, model, id)
	if err != nil {
		return err
	}
	if !ok {
		return fieldError(field, "Invalid pk \"%d\" - object does not exist.", id)
	}
	return nil
}

func (s *CatalogService) ListCountries(ctx context.Context, offset, limit int) (int64, []models.Country, error) {
	return s.Repo.ListCountries(ctx, offset, limit)
}

func (s *CatalogService) GetCountry(ctx context.Context, id uint) (*models.Country, error) {
	c, err := s.Repo.GetCountry(ctx, id)
	if err != nil {
		return nil, notFound(err, "country", id)
	}
	return c, nil
}

func (s *CatalogService) CreateCountry(ctx context.Context, req transport.CountryRequest) (*models.Country, error) {
	c := &models.Country{Name: strings.TrimSpace(req.Name)}
	if c.Name == "" {
		return nil, fieldError("name", "This field may not be blank.")
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCountry(ctx context.Context, id uint, req transport.CountryRequest) (*models.Country, error) {
	c, err := s.GetCountry(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	if c.Name == "" {
		return nil, fieldError("name", "This field may not be blank.")
	}
	if err := s.Repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCountry(ctx context.Context, id uint) error {
	return notFound(s.Repo.DeleteCountry(ctx, id), "country", id)
}

func (s *CatalogService) ListRegions(ctx context.Context, country *uint, offset, limit int) (int64, []models.Region, error) {
	return s.Repo.ListRegions(ctx, country, offset, limit)
}

func (s *CatalogService) GetRegion(ctx context.Context, id uint) (*models.Region, error) {
	r, err := s.Repo.GetRegion(ctx, id)
	if err != nil {
		return nil, notFound(err, "region", id)
	}
	return r, nil
}

func (s *CatalogService) saveRegion(ctx context.Context, r *models.Region, req transport.RegionRequest, create bool) error {
	r.Region = strings.TrimSpace(req.Region)
	r.CountryID = req.Country
	if r.Region == "" {
		return fieldError("region", "This field may not be blank.")
	}
	if err := s.mustExist(ctx, &models.Country{}, "country", r.CountryID); err != nil {
		return err
	}
	if create {
		return s.Repo.Create(ctx, r)
	}
	return s.Repo.Save(ctx, r)
}

func (s *CatalogService) CreateRegion(ctx context.Context, req transport.RegionRequest) (*models.Region, error) {
	r := &models.Region{}
	if err := s.saveRegion(ctx, r, req, true); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CatalogService) UpdateRegion(ctx context.Context, id uint, req transport.RegionRequest) (*models.Region, error) {
	r, err := s.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveRegion(ctx, r, req, false); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CatalogService) DeleteRegion(ctx context.Context, id uint) error {
	return notFound(s.Repo.DeleteRegion(ctx, id), "region", id)
}

func (s *CatalogService) ListManufacturers(ctx context.Context, offset, limit int) (int64, []models.Manufacturer, error) {
	return s.Repo.ListManufacturers(ctx, offset, limit)
}

func (s *CatalogService) GetManufacturer(ctx context.Context, id uint) (*models.Manufacturer, error) {
	m, err := s.Repo.GetManufacturer(ctx, id)
	if err != nil {
		return nil, notFound(err, "manufacturer", id)
	}
	return m, nil
}

func (s *CatalogService) saveManufacturer(ctx context.Context, m *models.Manufacturer, req transport.ManufacturerRequest, create bool) error {
	m.Name = strings.TrimSpace(req.Name)
	m.Info = req.Info
	m.CountryOfOrigin = req.CountryOfOrigin
	m.Website = strings.TrimSpace(req.Website)
	m.Country = nil
	if m.Name == "" {
		return fieldError("name", "This field may not be blank.")
	}
	if err := s.mustExist(ctx, &models.Country{}, "country_of_origin", m.CountryOfOrigin); err != nil {
		return err
	}
	if create {
		if err := s.Repo.Create(ctx, m); err != nil {
			return err
		}
	} else if err := s.Repo.Save(ctx, m); err != nil {
		return err
	}

	loaded, err := s.Repo.GetManufacturer(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}

func (s *CatalogService) CreateManufacturer(ctx context.Context, req transport.ManufacturerRequest) (*models.Manufacturer, error) {
	m := &models.Manufacturer{}
	if err := s.saveManufacturer(ctx, m, req, true); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) UpdateManufacturer(ctx context.Context, id uint, req transport.ManufacturerRequest) (*models.Manufacturer, error) {
	m, err := s.GetManufacturer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveManufacturer(ctx, m, req, false); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) DeleteManufacturer(ctx context.Context, id uint) error {
	return notFound(s.Repo.DeleteManufacturer(ctx, id), "manufacturer", id)
}

func (s *CatalogService) ListGrapeVarieties(ctx context.Context, offset, limit int) (int64, []models.GrapeVariety, error) {
	return s.Repo.ListGrapeVarieties(ctx, offset, limit)
}

func (s *CatalogService) GetGrapeVariety(ctx context.Context, id uint) (*models.GrapeVariety, error) {
	g, err := s.Repo.GetGrapeVariety(ctx, id)
	if err != nil {
		return nil, notFound(err, "grape variety", id)
	}
	return g, nil
}

func (s *CatalogService) saveGrapeVariety(ctx context.Context, g *models.GrapeVariety, create bool) error {
	if g.Name == "" {
		return fieldError("name", "This field may not be blank.")
	}
	var err error
	if create {
		err = s.Repo.Create(ctx, g)
	} else {
		err = s.Repo.Save(ctx, g)
	}
	if repo.IsUniqueViolation(err) {
		return fieldError("name", "grape variety with this name already exists.")
	}
	return err
}

func (s *CatalogService) CreateGrapeVariety(ctx context.Context, req transport.GrapeVarietyRequest) (*models.GrapeVariety, error) {
	g := &models.GrapeVariety{Name: strings.TrimSpace(req.Name)}
	if err := s.saveGrapeVariety(ctx, g, true); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *CatalogService) UpdateGrapeVariety(ctx context.Context, id uint, req transport.GrapeVarietyRequest) (*models.GrapeVariety, error) {
	g, err := s.GetGrapeVariety(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Name = strings.TrimSpace(req.Name)
	if err := s.saveGrapeVariety(ctx, g, false); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *CatalogService) DeleteGrapeVariety(ctx context.Context, id uint) error {
	return notFound(s.Repo.DeleteGrapeVariety(ctx, id), "grape variety", id)
}

func (s *CatalogService) ListWines(ctx context.Context, f repo.WineFilter, offset, limit int) (int64, []models.Wine, error) {
	return s.Repo.ListWines(ctx, f, offset, limit)
}

func (s *CatalogService) GetWine(ctx context.Context, id uint) (*models.Wine, error) {
	w, err := s.Repo.GetWine(ctx, id)
	if err != nil {
		return nil, notFound(err, "wine", id)
	}
	return w, nil
}

func validateWine(w *models.Wine) error {
	switch {
	case strings.TrimSpace(w.Name) == "":
		return fieldError("name", "This field may not be blank.")
	case !w.Price.IsPositive():
		return fieldError("price", "Ensure this value is greater than 0.")
	case !w.Price.Equal(w.Price.Round(2)):
		return fieldError("price", "Ensure that there are no more than 2 decimal places.")
	case w.Price.GreaterThanOrEqual(maxPrice):
		return fieldError("price", "Ensure that there are no more than 10 digits in total.")
	case utf8.RuneCountInString(w.ProductCode) != 7:
		return fieldError("product_code", "Ensure this field has exactly 7 characters.")
	case w.AlcoholContent < 0 || w.AlcoholContent > 100:
		return fieldError("alcohol_content", "Ensure this value is between 0 and 100.")
	case w.Volume <= 0:
		return fieldError("volume", "Ensure this value is greater than 0.")
	case w.Year != nil && *w.Year <= 0:
		return fieldError("year", "Ensure this value is greater than 0.")
	case !slices.Contains(models.SugarContents, w.SugarContent):
		return fieldError("sugar_content", "%q is not a valid choice.", w.SugarContent)
	case !slices.Contains(models.Colors, w.Color):
		return fieldError("color", "%q is not a valid choice.", w.Color)
	}
	return nil
}

func (s *CatalogService) checkWineRefs(ctx context.Context, w *models.Wine) error {
	if err := s.mustExist(ctx, &models.Manufacturer{}, "manufacturer", w.ManufacturerID); err != nil {
		return err
	}
	if err := s.mustExist(ctx, &models.Country{}, "country", w.CountryID); err != nil {
		return err
	}
	if w.RegionID != nil {
		region, err := s.Repo.GetRegion(ctx, *w.RegionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fieldError("region", "Invalid pk \"%d\" - object does not exist.", *w.RegionID)
			}
			return err
		}
		if region.CountryID != w.CountryID {
			return fieldError("region", "Region does not belong to the selected country.")
		}
	}
	if w.GrapeVarietyID != nil {
		if err := s.mustExist(ctx, &models.GrapeVariety{}, "grape_variety", *w.GrapeVarietyID); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogService) storeWine(ctx context.Context, w *models.Wine, create bool) error {
	if err := validateWine(w); err != nil {
		return err
	}
	if err := s.checkWineRefs(ctx, w); err != nil {
		return err
	}

	var err error
	if create {
		err = s.Repo.Create(ctx, w)
	} else {
		err = s.Repo.Save(ctx, w)
	}
	if repo.IsUniqueViolation(err) {
		return fieldError("product_code", "wine with this product code already exists.")
	}
	return err
}

func (s *CatalogService) syncIndex(ctx context.Context, w *models.Wine) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexWine(ctx, w); err != nil {
		logging.FromContext(ctx).Warn("index_wine_error", "wine_id", w.ID, "error", err)
	}
}

func (s *CatalogService) CreateWine(ctx context.Context, req transport.WineRequest) (*models.Wine, error) {
	w := &models.Wine{
		Beverage: models.Beverage{
			Name:           strings.TrimSpace(req.Name),
			Price:          req.Price,
			Description:    req.Description,
			ManufacturerID: req.Manufacturer,
			ProductCode:    req.ProductCode,
			CountryID:      req.Country,
			RegionID:       req.Region,
			AlcoholContent: req.AlcoholContent,
			Volume:         req.Volume,
		},
		Year:           req.Year,
		SugarContent:   req.SugarContent,
		Color:          req.Color,
		GrapeVarietyID: req.GrapeVariety,
	}
	if err := s.storeWine(ctx, w, true); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, w)
	publish(ctx, s.Events, TopicWineEvents, fmt.Sprint(w.ID), Event{Type: "wine_created", ID: w.ID})
	return w, nil
}

func (s *CatalogService) PatchWine(ctx context.Context, id uint, req transport.WinePatchRequest) (*models.Wine, error) {
	w, err := s.GetWine(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		w.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		w.Price = *req.Price
	}
	if req.Description != nil {
		w.Description = req.Description
	}
	if req.Manufacturer != nil {
		w.ManufacturerID = *req.Manufacturer
	}
	if req.ProductCode != nil {
		w.ProductCode = *req.ProductCode
	}
	if req.Country != nil {
		w.CountryID = *req.Country
	}
	if req.Region != nil {
		w.RegionID = req.Region
	}
	if req.AlcoholContent != nil {
		w.AlcoholContent = *req.AlcoholContent
	}
	if req.Volume != nil {
		w.Volume = *req.Volume
	}
	if req.Year != nil {
		w.Year = req.Year
	}
	if req.SugarContent != nil {
		w.SugarContent = *req.SugarContent
	}
	if req.Color != nil {
		w.Color = *req.Color
	}
	if req.GrapeVariety != nil {
		w.GrapeVarietyID = req.GrapeVariety
	}

	if err := s.storeWine(ctx, w, false); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, w)
	publish(ctx, s.Events, TopicWineEvents, fmt.Sprint(w.ID), Event{Type: "wine_updated", ID: w.ID})
	return w, nil
}

// DeleteWine removes the wine. Order lines referring to it are left as they
// are; they price at zero from then on.
func (s *CatalogService) DeleteWine(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteWine(ctx, id); err != nil {
		return notFound(err, "wine", id)
	}

	if s.Index != nil {
		if err := s.Index.DeleteWine(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_wine_error", "wine_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicWineEvents, fmt.Sprint(id), Event{Type: "wine_deleted", ID: id})
	return nil
}

// SearchWines queries the search index and falls back to the database when
// the index is not configured or fails.
func (s *CatalogService) SearchWines(ctx context.Context, q string, offset, limit int) (int64, []models.Wine, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Wine{}, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.SearchWines(ctx, q, offset, limit)
		if err == nil {
			wines, err := s.Repo.WinesByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, wines, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}

	return s.Repo.SearchWines(ctx, q, offset, limit)
}

// ReindexWines pushes every wine to the search index.
func (s *CatalogService) ReindexWines(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	const batch = 100
	indexed := 0
	for offset := 0; ; offset += batch {
		_, wines, err := s.Repo.ListWines(ctx, repo.WineFilter{}, offset, batch)
		if err != nil {
			return indexed, err
		}
		for i := range wines {
			if err := s.Index.IndexWine(ctx, &wines[i]); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(wines) < batch {
			return indexed, nil
		}
	}
}
