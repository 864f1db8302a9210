package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

func itemField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

const maxQuantity = 2147483647

// parseQuantity returns the quantity or the message explaining why it was
// rejected. A missing quantity counts as zero.
func parseQuantity(n json.Number) (uint, string) {
	if n == "" {
		n = "0"
	}
	q, err := strconv.ParseInt(n.String(), 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Sprintf("Ensure this value is less than or equal to %d.", maxQuantity)
	case err != nil:
		return 0, "A valid integer is required."
	case q < 1:
		return 0, "Ensure this value is greater than or equal to 1."
	case q > maxQuantity:
		return 0, fmt.Sprintf("Ensure this value is less than or equal to %d.", maxQuantity)
	}
	return uint(q), ""
}

// resolveItem validates one requested line and checks that it points at an
// orderable catalog entity visible to tx.
func resolveItem(ctx context.Context, tx *repo.GormRepo, prefix string, req transport.OrderItemRequest) (models.OrderItem, error) {
	category, ok := models.ParseCategory(req.ContentType)
	if !ok {
		return models.OrderItem{}, fieldError(itemField(prefix, "content_type"), "Invalid content type: %s", req.ContentType)
	}
	quantity, msg := parseQuantity(req.Quantity)
	if msg != "" {
		return models.OrderItem{}, fieldError(itemField(prefix, "quantity"), "%s", msg)
	}
	objectID, err := strconv.ParseUint(req.ObjectID.String(), 10, 64)
	if err != nil {
		return models.OrderItem{}, fieldError(itemField(prefix, "object_id"), "A valid integer is required.")
	}
	if objectID == 0 {
		return models.OrderItem{}, fieldError(itemField(prefix, "object_id"), "This field is required.")
	}

	ref := models.ItemRef{Category: category, ID: uint(objectID)}
	if _, err := tx.Resolve(ctx, ref); err != nil {
		switch {
		case errors.Is(err, repo.ErrCategoryNotAllowed):
			return models.OrderItem{}, &FieldError{Field: itemField(prefix, "content_type"), Msg: fmt.Sprintf("%s cannot be ordered", category), Err: err}
		case errors.Is(err, repo.ErrItemNotFound):
			return models.OrderItem{}, &FieldError{Field: itemField(prefix, "object_id"), Msg: fmt.Sprintf("%s with id %d does not exist", category, objectID), Err: err}
		case errors.Is(err, repo.ErrUnknownCategory):
			return models.OrderItem{}, &FieldError{Field: itemField(prefix, "content_type"), Msg: "Invalid content type: " + req.ContentType, Err: err}
		default:
			return models.OrderItem{}, err
		}
	}

	return models.OrderItem{
		ContentType: category,
		ObjectID:    uint(objectID),
		Quantity:    quantity,
	}, nil
}

func resolveItems(ctx context.Context, tx *repo.GormRepo, reqs []transport.OrderItemRequest) ([]models.OrderItem, error) {
	if len(reqs) == 0 {
		return nil, fieldError("items", "This list may not be empty.")
	}
	items := make([]models.OrderItem, 0, len(reqs))
	for i := range reqs {
		item, err := resolveItem(ctx, tx, fmt.Sprintf("items[%d]", i), reqs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// priceItems fills ItemPrice on every item and returns the rounded total.
// An item whose catalog entity has disappeared makes the order unpriceable.
func priceItems(ctx context.Context, r *repo.GormRepo, items []models.OrderItem) (decimal.Decimal, error) {
	refs := make([]models.ItemRef, 0, len(items))
	for i := range items {
		refs = append(refs, items[i].Ref())
	}
	prices, err := r.UnitPrices(ctx, refs)
	if err != nil {
		return decimal.Zero, err
	}

	lines := make([]Line, 0, len(items))
	for i := range items {
		unit, ok := prices[items[i].Ref()]
		if !ok {
			return decimal.Zero, &FieldError{
				Field: "items",
				Msg:   fmt.Sprintf("%s with id %d does not exist", items[i].ContentType, items[i].ObjectID),
				Err:   repo.ErrItemNotFound,
			}
		}
		items[i].ItemPrice = LinePrice(items[i].Quantity, unit)
		lines = append(lines, Line{Quantity: items[i].Quantity, UnitPrice: unit})
	}
	return Total(lines), nil
}

// recalculate recomputes and persists total_price from the order's current
// items. It must run inside the transaction that changed the items.
func recalculate(ctx context.Context, tx *repo.GormRepo, order *models.Order) error {
	items, err := tx.OrderItems(ctx, order.ID)
	if err != nil {
		return err
	}
	total, err := priceItems(ctx, tx, items)
	if err != nil {
		return err
	}
	if err := tx.UpdateOrderTotal(ctx, order.ID, total); err != nil {
		return err
	}
	order.Items = items
	order.TotalPrice = total
	return nil
}

func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", actor.UserID)

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		open, err := tx.HasUnpaidOrder(ctx, actor.UserID, 0)
		if err != nil {
			return err
		}
		if open {
			return openOrderError()
		}

		items, err := resolveItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID: actor.UserID,
			Status: models.OrderStatusPending,
			IsPaid: false,
			Items:  items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			if repo.IsUniqueViolation(err) {
				return openOrderError()
			}
			return err
		}
		return recalculate(ctx, tx, order)
	})
	if err != nil {
		if !errors.Is(err, ErrValidation) {
			l.Error("create_order_error", "error", err)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicOrderEvents, fmt.Sprint(order.ID), Event{
		Type: "order_created", ID: order.ID, UserID: order.UserID,
		Payload: map[string]any{"total_price": order.TotalPrice.StringFixed(2), "items": len(order.Items)},
	})
	return order, nil
}

// scopedOrder locks the order and hides it from callers who do not own it.
func scopedOrder(ctx context.Context, tx *repo.GormRepo, actor Actor, id uint) (*models.Order, error) {
	order, err := tx.LockOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if !actor.IsStaff && order.UserID != actor.UserID {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return order, nil
}

func ensureEditable(actor Actor, order *models.Order) error {
	if order.IsPaid && !actor.IsStaff {
		return fieldError(NonFieldErrors, "Paid orders cannot be modified.")
	}
	return nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor Actor, offset, limit int) (int64, []models.Order, error) {
	var owner *uint
	if !actor.IsStaff {
		owner = &actor.UserID
	}
	total, orders, err := s.Repo.ListOrders(ctx, owner, offset, limit)
	if err != nil {
		return 0, nil, err
	}

	var items []models.OrderItem
	for i := range orders {
		items = append(items, orders[i].Items...)
	}
	prices, err := itemPrices(ctx, s.Repo, items)
	if err != nil {
		return 0, nil, err
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].ItemPrice = prices[orders[i].Items[j].ID]
		}
	}
	return total, orders, nil
}

// itemPrices maps item id to its line price. Lines whose catalog entity no
// longer exists are priced at zero on read.
func itemPrices(ctx context.Context, r *repo.GormRepo, items []models.OrderItem) (map[uint]decimal.Decimal, error) {
	refs := make([]models.ItemRef, 0, len(items))
	for i := range items {
		refs = append(refs, items[i].Ref())
	}
	units, err := r.UnitPrices(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]decimal.Decimal, len(items))
	for i := range items {
		out[items[i].ID] = LinePrice(items[i].Quantity, units[items[i].Ref()])
	}
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if !actor.IsStaff && order.UserID != actor.UserID {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}

	prices, err := itemPrices(ctx, s.Repo, order.Items)
	if err != nil {
		return nil, err
	}
	for i := range order.Items {
		order.Items[i].ItemPrice = prices[order.Items[i].ID]
	}
	return order, nil
}

// UpdateOrder replaces items and, for staff, changes payment state. All of it
// happens in one transaction together with the total recomputation.
func (s *OrderService) UpdateOrder(ctx context.Context, actor Actor, id uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update", "order_id", id)

	var status *string
	if req.Status != nil {
		code, ok := models.OrderStatusCode(*req.Status)
		if !ok {
			return nil, fieldError("status", "%q is not a valid choice.", *req.Status)
		}
		status = &code
	}
	if (req.IsPaid != nil || status != nil) && !actor.IsStaff {
		return nil, fmt.Errorf("only staff can change payment state: %w", ErrForbidden)
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = scopedOrder(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := ensureEditable(actor, order); err != nil {
			return err
		}

		if req.Items != nil {
			items, err := resolveItems(ctx, tx, *req.Items)
			if err != nil {
				return err
			}
			if err := tx.ReplaceOrderItems(ctx, order.ID, items); err != nil {
				return err
			}
		}

		if req.IsPaid != nil && !*req.IsPaid && order.IsPaid {
			open, err := tx.HasUnpaidOrder(ctx, order.UserID, order.ID)
			if err != nil {
				return err
			}
			if open {
				return openOrderError()
			}
		}
		if err := tx.UpdateOrderState(ctx, order.ID, req.IsPaid, status); err != nil {
			if repo.IsUniqueViolation(err) {
				return openOrderError()
			}
			return err
		}
		if req.IsPaid != nil {
			order.IsPaid = *req.IsPaid
		}
		if status != nil {
			order.Status = *status
		}

		if req.Items != nil {
			return recalculate(ctx, tx, order)
		}
		// payment and status changes keep the total the order was placed at
		items, err := tx.OrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		prices, err := itemPrices(ctx, tx, items)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].ItemPrice = prices[items[i].ID]
		}
		order.Items = items
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound) {
			l.Error("update_order_error", "error", err)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicOrderEvents, fmt.Sprint(order.ID), Event{
		Type: "order_updated", ID: order.ID, UserID: order.UserID,
		Payload: map[string]any{"total_price": order.TotalPrice.StringFixed(2), "is_paid": order.IsPaid, "status": order.Status},
	})
	return order, nil
}

func (s *OrderService) AddItem(ctx context.Context, actor Actor, orderID uint, req transport.OrderItemRequest) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = scopedOrder(ctx, tx, actor, orderID)
		if err != nil {
			return err
		}
		if err := ensureEditable(actor, order); err != nil {
			return err
		}

		item, err := resolveItem(ctx, tx, "", req)
		if err != nil {
			return err
		}
		item.OrderID = order.ID
		if err := tx.AddOrderItem(ctx, &item); err != nil {
			return err
		}
		return recalculate(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicOrderEvents, fmt.Sprint(order.ID), Event{
		Type: "order_updated", ID: order.ID, UserID: order.UserID,
		Payload: map[string]any{"total_price": order.TotalPrice.StringFixed(2)},
	})
	return order, nil
}

// RemoveItem deletes one line. An order always keeps at least one line.
func (s *OrderService) RemoveItem(ctx context.Context, actor Actor, orderID, itemID uint) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = scopedOrder(ctx, tx, actor, orderID)
		if err != nil {
			return err
		}
		if err := ensureEditable(actor, order); err != nil {
			return err
		}

		items, err := tx.OrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		found := false
		for i := range items {
			if items[i].ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("order item %d: %w", itemID, ErrNotFound)
		}
		if len(items) == 1 {
			return fieldError("items", "An order must contain at least one item.")
		}

		if err := tx.DeleteOrderItem(ctx, order.ID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order item %d: %w", itemID, ErrNotFound)
			}
			return err
		}
		return recalculate(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicOrderEvents, fmt.Sprint(order.ID), Event{
		Type: "order_updated", ID: order.ID, UserID: order.UserID,
		Payload: map[string]any{"total_price": order.TotalPrice.StringFixed(2)},
	})
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, actor Actor, id uint) error {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = scopedOrder(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, order.ID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.Events, TopicOrderEvents, fmt.Sprint(order.ID), Event{
		Type: "order_deleted", ID: order.ID, UserID: order.UserID,
	})
	return nil
}
