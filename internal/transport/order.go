package transport

import "encoding/json"

// OrderItemRequest keeps numbers unparsed so malformed values are reported
// against their own field.
type OrderItemRequest struct {
	ContentType string      `json:"content_type" validate:"required"`
	ObjectID    json.Number `json:"object_id"    validate:"required"`
	Quantity    json.Number `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"dive"`
}

type UpdateOrderRequest struct {
	Items  *[]OrderItemRequest `json:"items"   validate:"omitempty,dive"`
	IsPaid *bool               `json:"is_paid"`
	Status *string             `json:"status"`
}

type OrderItemResponse struct {
	ID          uint   `json:"id"`
	ContentType string `json:"content_type"`
	ObjectID    uint   `json:"object_id"`
	Quantity    uint   `json:"quantity"`
	ItemPrice   string `json:"item_price"`
}

type OrderResponse struct {
	ID         uint                `json:"id"`
	User       uint                `json:"user"`
	CreatedAt  string              `json:"created_at"`
	Status     string              `json:"status"`
	IsPaid     bool                `json:"is_paid"`
	TotalPrice string              `json:"total_price"`
	Items      []OrderItemResponse `json:"items"`
}
