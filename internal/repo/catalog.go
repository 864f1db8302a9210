package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
)

type WineFilter struct {
	Manufacturer *uint
	Country      *uint
	Region       *uint
	GrapeVariety *uint
	Color        string
	SugarContent string
	Price        *decimal.Decimal
	PriceGte     *decimal.Decimal
	PriceLte     *decimal.Decimal
}

func (f WineFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Manufacturer != nil {
		q = q.Where("manufacturer_id = ?", *f.Manufacturer)
	}
	if f.Country != nil {
		q = q.Where("country_id = ?", *f.Country)
	}
	if f.Region != nil {
		q = q.Where("region_id = ?", *f.Region)
	}
	if f.GrapeVariety != nil {
		q = q.Where("grape_variety_id = ?", *f.GrapeVariety)
	}
	if f.Color != "" {
		q = q.Where("color = ?", f.Color)
	}
	if f.SugarContent != "" {
		q = q.Where("sugar_content = ?", f.SugarContent)
	}
	if f.Price != nil {
		q = q.Where("price = ?", *f.Price)
	}
	if f.PriceGte != nil {
		q = q.Where("price >= ?", *f.PriceGte)
	}
	if f.PriceLte != nil {
		q = q.Where("price <= ?", *f.PriceLte)
	}
	return q
}

func list[T any](ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, offset, limit int, preloads ...string) (int64, []T, error) {
	q := db.WithContext(ctx).Model(new(T))
	if scope != nil {
		q = scope(q)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	for _, p := range preloads {
		q = q.Preload(p)
	}
	items := make([]T, 0)
	if err := paginate(q.Order("id ASC"), offset, limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func get[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	v := new(T)
	if err := db.WithContext(ctx).First(v, id).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func remove[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) Create(ctx context.Context, v any) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *GormRepo) Save(ctx context.Context, v any) error {
	return r.DB.WithContext(ctx).Save(v).Error
}

func (r *GormRepo) ListCountries(ctx context.Context, offset, limit int) (int64, []models.Country, error) {
	return list[models.Country](ctx, r.DB, nil, offset, limit)
}

func (r *GormRepo) GetCountry(ctx context.Context, id uint) (*models.Country, error) {
	return get[models.Country](ctx, r.DB, id)
}

func (r *GormRepo) DeleteCountry(ctx context.Context, id uint) error {
	return remove[models.Country](ctx, r.DB, id)
}

func (r *GormRepo) ListRegions(ctx context.Context, country *uint, offset, limit int) (int64, []models.Region, error) {
	return list[models.Region](ctx, r.DB, func(q *gorm.DB) *gorm.DB {
		if country != nil {
			q = q.Where("country_id = ?", *country)
		}
		return q
	}, offset, limit)
}

func (r *GormRepo) GetRegion(ctx context.Context, id uint) (*models.Region, error) {
	return get[models.Region](ctx, r.DB, id)
}

func (r *GormRepo) DeleteRegion(ctx context.Context, id uint) error {
	return remove[models.Region](ctx, r.DB, id)
}

func (r *GormRepo) ListManufacturers(ctx context.Context, offset, limit int) (int64, []models.Manufacturer, error) {
	return list[models.Manufacturer](ctx, r.DB, nil, offset, limit, "Country")
}

func (r *GormRepo) GetManufacturer(ctx context.Context, id uint) (*models.Manufacturer, error) {
	var m models.Manufacturer
	if err := r.DB.WithContext(ctx).Preload("Country").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormRepo) DeleteManufacturer(ctx context.Context, id uint) error {
	return remove[models.Manufacturer](ctx, r.DB, id)
}

func (r *GormRepo) ListGrapeVarieties(ctx context.Context, offset, limit int) (int64, []models.GrapeVariety, error) {
	return list[models.GrapeVariety](ctx, r.DB, nil, offset, limit)
}

func (r *GormRepo) GetGrapeVariety(ctx context.Context, id uint) (*models.GrapeVariety, error) {
	return get[models.GrapeVariety](ctx, r.DB, id)
}

func (r *GormRepo) DeleteGrapeVariety(ctx context.Context, id uint) error {
	return remove[models.GrapeVariety](ctx, r.DB, id)
}

func (r *GormRepo) ListWines(ctx context.Context, f WineFilter, offset, limit int) (int64, []models.Wine, error) {
	return list[models.Wine](ctx, r.DB, f.apply, offset, limit)
}

func (r *GormRepo) GetWine(ctx context.Context, id uint) (*models.Wine, error) {
	return get[models.Wine](ctx, r.DB, id)
}

func (r *GormRepo) DeleteWine(ctx context.Context, id uint) error {
	return remove[models.Wine](ctx, r.DB, id)
}

// SearchWines is the plain SQL fallback used when no search index is configured.
func (r *GormRepo) SearchWines(ctx context.Context, q string, offset, limit int) (int64, []models.Wine, error) {
	pattern := "%" + q + "%"
	return list[models.Wine](ctx, r.DB, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}, offset, limit)
}

func (r *GormRepo) Exists(ctx context.Context, model any, id uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// WinesByIDs returns the wines in the order of ids, skipping missing ones.
func (r *GormRepo) WinesByIDs(ctx context.Context, ids []uint) ([]models.Wine, error) {
	out := make([]models.Wine, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var wines []models.Wine
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&wines).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Wine, len(wines))
	for _, w := range wines {
		byID[w.ID] = w
	}
	for _, id := range ids {
		if w, ok := byID[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}
