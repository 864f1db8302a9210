package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "P"
	OrderStatusCompleted = "C"
)

var orderStatusNames = map[string]string{
	OrderStatusPending:   "pending",
	OrderStatusCompleted: "completed",
}

func OrderStatusName(code string) string {
	return orderStatusNames[code]
}

// OrderStatusCode accepts either the stored code or the display name.
func OrderStatusCode(v string) (string, bool) {
	if _, ok := orderStatusNames[v]; ok {
		return v, true
	}
	for code, name := range orderStatusNames {
		if name == v {
			return code, true
		}
	}
	return "", false
}

type Order struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"                         json:"id"`
	UserID     uint            `gorm:"index;not null"                                   json:"user"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;index"                             json:"created_at"`
	Status     string          `gorm:"size:1;not null;default:P"                        json:"status"`
	IsPaid     bool            `gorm:"not null;default:false"                           json:"is_paid"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"                      json:"total_price"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"   json:"items"`
}

type OrderItem struct {
	ID          uint     `gorm:"primaryKey;autoIncrement"                           json:"id"`
	OrderID     uint     `gorm:"index;not null"                                     json:"-"`
	ContentType Category `gorm:"size:50;not null;index:idx_order_items_content"     json:"content_type"`
	ObjectID    uint     `gorm:"not null;index:idx_order_items_content"             json:"object_id"`
	Quantity    uint     `gorm:"not null;default:1;check:quantity > 0"              json:"quantity"`

	// ItemPrice is quantity × unit price of the referenced item, filled on read.
	ItemPrice decimal.Decimal `gorm:"-" json:"item_price"`
}

func (i *OrderItem) Ref() ItemRef {
	return ItemRef{Category: i.ContentType, ID: i.ObjectID}
}
