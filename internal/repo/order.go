package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/wine_shop/internal/models"
)

func (r *GormRepo) HasUnpaidOrder(ctx context.Context, userID uint, exceptID uint) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ? AND is_paid = ?", userID, false)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateOrder inserts the order row and then its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	items := order.Items
	order.Items = nil
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		order.Items = items
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.DB.WithContext(ctx).Create(&items).Error; err != nil {
			order.Items = items
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// LockOrder takes a row lock on the order for the rest of the transaction.
func (r *GormRepo) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID *uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0)
	if err := paginate(q.Order("created_at DESC").Order("id DESC"), offset, limit).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) OrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0)
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) AddOrderItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) ReplaceOrderItems(ctx context.Context, orderID uint, items []models.OrderItem) error {
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = orderID
	}
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&items).Error
}

func (r *GormRepo) DeleteOrderItem(ctx context.Context, orderID, itemID uint) error {
	res := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) UpdateOrderTotal(ctx context.Context, orderID uint, total decimal.Decimal) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total_price", total).Error
}

func (r *GormRepo) UpdateOrderState(ctx context.Context, orderID uint, isPaid *bool, status *string) error {
	updates := map[string]any{}
	if isPaid != nil {
		updates["is_paid"] = *isPaid
	}
	if status != nil {
		updates["status"] = *status
	}
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error
}

// DeleteOrder removes the order and its items. Items are deleted explicitly
// so the cascade does not depend on the database enforcing foreign keys.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) error {
	if err := r.DB.WithContext(ctx).Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return remove[models.Order](ctx, r.DB, id)
}
