package models

import (
	"fmt"

	"gorm.io/gorm"
)

// OneUnpaidOrderIndex backs the one-unpaid-order-per-user rule at the
// storage level. Partial indexes work on both postgres and sqlite.
const OneUnpaidOrderIndex = "idx_orders_one_unpaid_per_user"

func All() []any {
	return []any{
		&Country{}, &Region{}, &Manufacturer{}, &GrapeVariety{}, &Wine{},
		&User{}, &RefreshToken{},
		&Order{}, &OrderItem{},
		&Comment{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON orders (user_id) WHERE is_paid = false",
		OneUnpaidOrderIndex,
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", OneUnpaidOrderIndex, err)
	}
	return nil
}
