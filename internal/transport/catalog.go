package transport

import "github.com/shopspring/decimal"

type CountryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type RegionRequest struct {
	Country uint   `json:"country" validate:"required"`
	Region  string `json:"region"  validate:"required,max=255"`
}

type ManufacturerRequest struct {
	Name            string  `json:"name"              validate:"required,max=255"`
	Info            *string `json:"info"`
	CountryOfOrigin uint    `json:"country_of_origin" validate:"required"`
	Website         string  `json:"website"           validate:"required,url"`
}

type ManufacturerListItem struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	CountryOfOrigin string `json:"country_of_origin"`
}

type ManufacturerDetail struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Info            *string `json:"info"`
	CountryOfOrigin string  `json:"country_of_origin"`
	Website         string  `json:"website"`
}

type GrapeVarietyRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type WineRequest struct {
	Name           string          `json:"name"            validate:"required,max=255"`
	Price          decimal.Decimal `json:"price"`
	Description    *string         `json:"description"`
	Manufacturer   uint            `json:"manufacturer"    validate:"required"`
	ProductCode    string          `json:"product_code"    validate:"required"`
	Country        uint            `json:"country"         validate:"required"`
	Region         *uint           `json:"region"`
	AlcoholContent float64         `json:"alcohol_content"`
	Volume         int             `json:"volume"`
	Year           *int            `json:"year"`
	SugarContent   string          `json:"sugar_content"   validate:"required"`
	Color          string          `json:"color"           validate:"required"`
	GrapeVariety   *uint           `json:"grape_variety"`
}

type WinePatchRequest struct {
	Name           *string          `json:"name"            validate:"omitempty,max=255"`
	Price          *decimal.Decimal `json:"price"`
	Description    *string          `json:"description"`
	Manufacturer   *uint            `json:"manufacturer"`
	ProductCode    *string          `json:"product_code"`
	Country        *uint            `json:"country"`
	Region         *uint            `json:"region"`
	AlcoholContent *float64         `json:"alcohol_content"`
	Volume         *int             `json:"volume"`
	Year           *int             `json:"year"`
	SugarContent   *string          `json:"sugar_content"`
	Color          *string          `json:"color"`
	GrapeVariety   *uint            `json:"grape_variety"`
}

type WineResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Price          string  `json:"price"`
	Description    *string `json:"description"`
	Manufacturer   uint    `json:"manufacturer"`
	ProductCode    string  `json:"product_code"`
	Country        uint    `json:"country"`
	Region         *uint   `json:"region"`
	AlcoholContent float64 `json:"alcohol_content"`
	Volume         int     `json:"volume"`
	Year           *int    `json:"year"`
	SugarContent   string  `json:"sugar_content"`
	Color          string  `json:"color"`
	GrapeVariety   *uint   `json:"grape_variety"`
}
