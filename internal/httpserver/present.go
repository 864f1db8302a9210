package httpserver

import (
	"time"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/internal/util"
)

func orderResponse(o *models.Order) transport.OrderResponse {
	items := make([]transport.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, transport.OrderItemResponse{
			ID:          it.ID,
			ContentType: string(it.ContentType),
			ObjectID:    it.ObjectID,
			Quantity:    it.Quantity,
			ItemPrice:   it.ItemPrice.StringFixed(2),
		})
	}
	return transport.OrderResponse{
		ID:         o.ID,
		User:       o.UserID,
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
		Status:     o.Status,
		IsPaid:     o.IsPaid,
		TotalPrice: o.TotalPrice.StringFixed(2),
		Items:      items,
	}
}

func countryName(m *models.Manufacturer) string {
	if m.Country == nil {
		return ""
	}
	return m.Country.Name
}

func manufacturerDetail(m *models.Manufacturer) transport.ManufacturerDetail {
	return transport.ManufacturerDetail{
		ID:              m.ID,
		Name:            m.Name,
		Info:            m.Info,
		CountryOfOrigin: countryName(m),
		Website:         m.Website,
	}
}

func page[T any](data []T, page, offset, limit int, total int64) util.Page[T] {
	if data == nil {
		data = []T{}
	}
	return util.Page[T]{Data: data, Meta: util.NewMeta(page, offset, limit, total)}
}

func paging(pageParam, sizeParam string) (pg, offset, limit int) {
	size := util.ParseIntDefault(sizeParam, util.DefaultPageSize)
	return util.Calculate(util.ParseIntDefault(pageParam, 1), size)
}

func wineResponse(w *models.Wine) transport.WineResponse {
	return transport.WineResponse{
		ID:             w.ID,
		Name:           w.Name,
		Price:          w.Price.StringFixed(2),
		Description:    w.Description,
		Manufacturer:   w.ManufacturerID,
		ProductCode:    w.ProductCode,
		Country:        w.CountryID,
		Region:         w.RegionID,
		AlcoholContent: w.AlcoholContent,
		Volume:         w.Volume,
		Year:           w.Year,
		SugarContent:   w.SugarContent,
		Color:          w.Color,
		GrapeVariety:   w.GrapeVarietyID,
	}
}

func wineResponses(wines []models.Wine) []transport.WineResponse {
	out := make([]transport.WineResponse, 0, len(wines))
	for i := range wines {
		out = append(out, wineResponse(&wines[i]))
	}
	return out
}
