package models

import "github.com/shopspring/decimal"

type Country struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:255;not null"        json:"name"`
}

type Region struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"               json:"id"`
	CountryID uint     `gorm:"index;not null"                         json:"country"`
	Country   *Country `gorm:"constraint:OnDelete:CASCADE"            json:"-"`
	Region    string   `gorm:"size:255;not null"                      json:"region"`
}

type Manufacturer struct {
	ID              uint     `gorm:"primaryKey;autoIncrement"                      json:"id"`
	Name            string   `gorm:"size:255;not null"                             json:"name"`
	Info            *string  `                                                     json:"info"`
	CountryOfOrigin uint     `gorm:"index;not null"                                json:"country_of_origin"`
	Country         *Country `gorm:"foreignKey:CountryOfOrigin;constraint:OnDelete:CASCADE" json:"-"`
	Website         string   `gorm:"not null"                                      json:"website"`
}

type GrapeVariety struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`
}

const (
	SugarSweet     = "SWEET"
	SugarSemiSweet = "SEMI_SWEET"
	SugarOffDry    = "OFF_DRY"
	SugarDry       = "DRY"

	ColorWhite = "WHITE"
	ColorPink  = "PINK"
	ColorRed   = "RED"
	ColorAmber = "AMBER"
)

var (
	SugarContents = []string{SugarSweet, SugarSemiSweet, SugarOffDry, SugarDry}
	Colors        = []string{ColorWhite, ColorPink, ColorRed, ColorAmber}
)

// Beverage is the priced shape every orderable catalog entity shares.
type Beverage struct {
	Name           string          `gorm:"size:255;not null"                json:"name"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null"      json:"price"`
	Description    *string         `                                        json:"description"`
	ManufacturerID uint            `gorm:"index;not null"                   json:"manufacturer"`
	ProductCode    string          `gorm:"size:7;uniqueIndex;not null"      json:"product_code"`
	CountryID      uint            `gorm:"index;not null"                   json:"country"`
	RegionID       *uint           `gorm:"index"                            json:"region"`
	AlcoholContent float64         `gorm:"not null"                         json:"alcohol_content"`
	Volume         int             `gorm:"not null"                         json:"volume"`
}

type Wine struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	Beverage
	Year           *int   `                                  json:"year"`
	SugarContent   string `gorm:"size:20;not null;index"     json:"sugar_content"`
	Color          string `gorm:"size:5;not null;index"      json:"color"`
	GrapeVarietyID *uint  `gorm:"index"                      json:"grape_variety"`

	Manufacturer *Manufacturer `gorm:"constraint:OnDelete:CASCADE"  json:"-"`
	Country      *Country      `gorm:"constraint:OnDelete:CASCADE"  json:"-"`
	Region       *Region       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	GrapeVariety *GrapeVariety `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (w *Wine) UnitPrice() decimal.Decimal { return w.Price }

func (w *Wine) Category() Category { return CategoryWine }
