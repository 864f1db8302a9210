package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/testutil"
	"github.com/Skotchmaster/wine_shop/internal/transport"
)

func newOrderService(f *fixture) *OrderService {
	return &OrderService{Repo: f.repo, Events: f.events}
}

func itemReq(contentType string, id uint, qty int) transport.OrderItemRequest {
	return transport.OrderItemRequest{
		ContentType: contentType,
		ObjectID:    json.Number(strconv.FormatUint(uint64(id), 10)),
		Quantity:    json.Number(strconv.Itoa(qty)),
	}
}

func wineLine(w *models.Wine, qty int) transport.OrderItemRequest {
	return itemReq("wine", w.ID, qty)
}

func requireFieldError(t *testing.T, err error, field string) *FieldError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)
	var fe *FieldError
	require.True(t, errors.As(err, &fe), "expected *FieldError, got %T", err)
	assert.Equal(t, field, fe.Field)
	return fe
}

func TestCreateOrder_SingleLineTotal(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	wine := testutil.SeedWine(t, f.db, f.catalog, "Merlot 2019", "15.50")

	order, err := svc.CreateOrder(context.Background(), Actor{UserID: user.ID}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(wine, 2)},
	})
	require.NoError(t, err)

	assert.Equal(t, "31.00", order.TotalPrice.StringFixed(2))
	assert.False(t, order.IsPaid)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "31.00", order.Items[0].ItemPrice.StringFixed(2))

	stored, err := f.repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("31.00")))
	assert.Equal(t, []string{"order_created"}, f.events.types())
}

func TestCreateOrder_MultiLineTotal(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	white := testutil.SeedWine(t, f.db, f.catalog, "White", "9.99")

	order, err := svc.CreateOrder(context.Background(), Actor{UserID: user.ID}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 2), wineLine(white, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "40.99", order.TotalPrice.StringFixed(2))
	assert.Len(t, order.Items, 2)
}

func TestCreateOrder_RejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name    string
		items   func(w *models.Wine, c *testutil.Catalog) []transport.OrderItemRequest
		field   string
		wantErr error
	}{
		{
			name:  "empty list",
			items: func(*models.Wine, *testutil.Catalog) []transport.OrderItemRequest { return nil },
			field: "items",
		},
		{
			name: "zero quantity",
			items: func(w *models.Wine, _ *testutil.Catalog) []transport.OrderItemRequest {
				return []transport.OrderItemRequest{wineLine(w, 0)}
			},
			field: "items[0].quantity",
		},
		{
			name: "negative quantity on second line",
			items: func(w *models.Wine, _ *testutil.Catalog) []transport.OrderItemRequest {
				return []transport.OrderItemRequest{wineLine(w, 1), wineLine(w, -3)}
			},
			field: "items[1].quantity",
		},
		{
			name: "unknown category",
			items: func(w *models.Wine, _ *testutil.Catalog) []transport.OrderItemRequest {
				return []transport.OrderItemRequest{itemReq("spaceship", w.ID, 1)}
			},
			field: "items[0].content_type",
		},
		{
			name: "not a beverage",
			items: func(_ *models.Wine, c *testutil.Catalog) []transport.OrderItemRequest {
				return []transport.OrderItemRequest{itemReq("manufacturer", c.Manufacturer.ID, 1)}
			},
			field:   "items[0].content_type",
			wantErr: repo.ErrCategoryNotAllowed,
		},
		{
			name: "missing wine",
			items: func(w *models.Wine, _ *testutil.Catalog) []transport.OrderItemRequest {
				return []transport.OrderItemRequest{wineLine(w, 1), itemReq("wine", w.ID+100, 1)}
			},
			field:   "items[1].object_id",
			wantErr: repo.ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newOrderService(f)
			user := testutil.SeedUser(t, f.db, "a@example.com", false)
			wine := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")

			_, err := svc.CreateOrder(context.Background(), Actor{UserID: user.ID}, transport.CreateOrderRequest{
				Items: tt.items(wine, f.catalog),
			})
			requireFieldError(t, err, tt.field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			f.assertNoOrders(t)
			assert.Empty(t, f.events.types())
		})
	}
}

func TestCreateOrder_SecondUnpaidOrderRejected(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	wine := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	actor := Actor{UserID: user.ID}
	req := transport.CreateOrderRequest{Items: []transport.OrderItemRequest{wineLine(wine, 1)}}

	first, err := svc.CreateOrder(ctx, actor, req)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, actor, req)
	requireFieldError(t, err, NonFieldErrors)
	assert.ErrorIs(t, err, ErrOpenOrderExists)
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))

	paid := true
	_, err = svc.UpdateOrder(ctx, Actor{UserID: 999, IsStaff: true}, first.ID, transport.UpdateOrderRequest{IsPaid: &paid})
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, actor, req)
	require.NoError(t, err)
}

func TestCreateOrder_OtherUsersUnpaidOrderDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", false)
	bob := testutil.SeedUser(t, f.db, "bob@example.com", false)
	wine := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	req := transport.CreateOrderRequest{Items: []transport.OrderItemRequest{wineLine(wine, 1)}}

	_, err := svc.CreateOrder(ctx, Actor{UserID: alice.ID}, req)
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, Actor{UserID: bob.ID}, req)
	require.NoError(t, err)
}

func TestOrderUniqueIndex_RejectsSecondUnpaidRow(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "a@example.com", false)

	require.NoError(t, f.db.Create(&models.Order{UserID: user.ID, Status: models.OrderStatusPending}).Error)
	err := f.db.Create(&models.Order{UserID: user.ID, Status: models.OrderStatusPending}).Error
	require.Error(t, err)
	assert.True(t, repo.IsUniqueViolation(err))

	require.NoError(t, f.db.Create(&models.Order{UserID: user.ID, Status: models.OrderStatusPending, IsPaid: true}).Error)
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	owner := testutil.SeedUser(t, f.db, "owner@example.com", false)
	other := testutil.SeedUser(t, f.db, "other@example.com", false)
	staff := testutil.SeedUser(t, f.db, "staff@example.com", true)
	wine := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")

	order, err := svc.CreateOrder(ctx, Actor{UserID: owner.ID}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(wine, 3)},
	})
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, Actor{UserID: other.ID}, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetOrder(ctx, Actor{UserID: staff.ID, IsStaff: true}, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "46.50", got.Items[0].ItemPrice.StringFixed(2))

	_, err = svc.GetOrder(ctx, Actor{UserID: owner.ID}, order.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_StaffSeesAll(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", false)
	bob := testutil.SeedUser(t, f.db, "bob@example.com", false)
	wine := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	req := transport.CreateOrderRequest{Items: []transport.OrderItemRequest{wineLine(wine, 1)}}

	_, err := svc.CreateOrder(ctx, Actor{UserID: alice.ID}, req)
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, Actor{UserID: bob.ID}, req)
	require.NoError(t, err)

	total, orders, err := svc.ListOrders(ctx, Actor{UserID: alice.ID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, alice.ID, orders[0].UserID)
	assert.Equal(t, "15.50", orders[0].Items[0].ItemPrice.StringFixed(2))

	total, orders, err = svc.ListOrders(ctx, Actor{UserID: 999, IsStaff: true}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orders, 2)
}

func TestUpdateOrder_ReplaceItemsRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	white := testutil.SeedWine(t, f.db, f.catalog, "White", "9.99")
	actor := Actor{UserID: user.ID}

	order, err := svc.CreateOrder(ctx, actor, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 2)},
	})
	require.NoError(t, err)

	items := []transport.OrderItemRequest{wineLine(white, 3)}
	updated, err := svc.UpdateOrder(ctx, actor, order.ID, transport.UpdateOrderRequest{Items: &items})
	require.NoError(t, err)
	assert.Equal(t, "29.97", updated.TotalPrice.StringFixed(2))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, white.ID, updated.Items[0].ObjectID)
	assert.EqualValues(t, 1, f.count(t, &models.OrderItem{}))
	assert.Equal(t, []string{"order_created", "order_updated"}, f.events.types())
}

func TestUpdateOrder_InvalidItemsRollBack(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	actor := Actor{UserID: user.ID}

	order, err := svc.CreateOrder(ctx, actor, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 2)},
	})
	require.NoError(t, err)

	items := []transport.OrderItemRequest{wineLine(red, 1), itemReq("country", f.catalog.Country.ID, 1)}
	_, err = svc.UpdateOrder(ctx, actor, order.ID, transport.UpdateOrderRequest{Items: &items})
	requireFieldError(t, err, "items[1].content_type")

	got, err := svc.GetOrder(ctx, actor, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.EqualValues(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "31.00", got.TotalPrice.StringFixed(2))
}

func TestUpdateOrder_PaymentStateRequiresStaff(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	actor := Actor{UserID: user.ID}

	order, err := svc.CreateOrder(ctx, actor, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 1)},
	})
	require.NoError(t, err)

	paid := true
	_, err = svc.UpdateOrder(ctx, actor, order.ID, transport.UpdateOrderRequest{IsPaid: &paid})
	assert.ErrorIs(t, err, ErrForbidden)

	status := "completed"
	updated, err := svc.UpdateOrder(ctx, Actor{UserID: 999, IsStaff: true}, order.ID, transport.UpdateOrderRequest{IsPaid: &paid, Status: &status})
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)

	items := []transport.OrderItemRequest{wineLine(red, 5)}
	_, err = svc.UpdateOrder(ctx, actor, order.ID, transport.UpdateOrderRequest{Items: &items})
	requireFieldError(t, err, NonFieldErrors)

	bad := "shipped"
	_, err = svc.UpdateOrder(ctx, Actor{UserID: 999, IsStaff: true}, order.ID, transport.UpdateOrderRequest{Status: &bad})
	requireFieldError(t, err, "status")
}

func TestUpdateOrder_StateChangeKeepsPlacedTotal(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	white := testutil.SeedWine(t, f.db, f.catalog, "White", "9.99")
	staff := Actor{UserID: 999, IsStaff: true}

	order, err := svc.CreateOrder(ctx, Actor{UserID: user.ID}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 2), wineLine(white, 1)},
	})
	require.NoError(t, err)
	require.Equal(t, "40.99", order.TotalPrice.StringFixed(2))

	require.NoError(t, f.db.Model(red).Update("price", decimal.RequireFromString("99.00")).Error)

	paid := true
	updated, err := svc.UpdateOrder(ctx, staff, order.ID, transport.UpdateOrderRequest{IsPaid: &paid})
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.Equal(t, "40.99", updated.TotalPrice.StringFixed(2))
	require.Len(t, updated.Items, 2)

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.99", stored.TotalPrice.StringFixed(2))

	require.NoError(t, f.db.Delete(&models.Wine{}, white.ID).Error)

	completed := "completed"
	updated, err = svc.UpdateOrder(ctx, staff, order.ID, transport.UpdateOrderRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	assert.Equal(t, "40.99", updated.TotalPrice.StringFixed(2))
}

func TestUpdateOrder_UnpayWhileAnotherUnpaidExists(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	actor := Actor{UserID: user.ID}
	staff := Actor{UserID: 999, IsStaff: true}
	req := transport.CreateOrderRequest{Items: []transport.OrderItemRequest{wineLine(red, 1)}}

	first, err := svc.CreateOrder(ctx, actor, req)
	require.NoError(t, err)
	paid, unpaid := true, false
	_, err = svc.UpdateOrder(ctx, staff, first.ID, transport.UpdateOrderRequest{IsPaid: &paid})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, actor, req)
	require.NoError(t, err)

	_, err = svc.UpdateOrder(ctx, staff, first.ID, transport.UpdateOrderRequest{IsPaid: &unpaid})
	requireFieldError(t, err, NonFieldErrors)
	assert.ErrorIs(t, err, ErrOpenOrderExists)
}

func TestAddAndRemoveItem(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	white := testutil.SeedWine(t, f.db, f.catalog, "White", "9.99")
	actor := Actor{UserID: user.ID}

	order, err := svc.CreateOrder(ctx, actor, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 2)},
	})
	require.NoError(t, err)

	order, err = svc.AddItem(ctx, actor, order.ID, wineLine(white, 1))
	require.NoError(t, err)
	assert.Equal(t, "40.99", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Items, 2)

	_, err = svc.AddItem(ctx, actor, order.ID, wineLine(white, 0))
	requireFieldError(t, err, "quantity")

	order, err = svc.RemoveItem(ctx, actor, order.ID, order.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "9.99", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Items, 1)

	_, err = svc.RemoveItem(ctx, actor, order.ID, order.Items[0].ID)
	requireFieldError(t, err, "items")

	_, err = svc.RemoveItem(ctx, actor, order.ID, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrder_CascadesToItemsOnly(t *testing.T) {
	f := newFixture(t)
	svc := newOrderService(f)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "a@example.com", false)
	other := testutil.SeedUser(t, f.db, "b@example.com", false)
	red := testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")
	white := testutil.SeedWine(t, f.db, f.catalog, "White", "9.99")
	actor := Actor{UserID: user.ID}

	order, err := svc.CreateOrder(ctx, actor, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{wineLine(red, 2), wineLine(white, 1)},
	})
	require.NoError(t, err)

	err = svc.DeleteOrder(ctx, Actor{UserID: other.ID}, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteOrder(ctx, actor, order.ID))
	f.assertNoOrders(t)
	assert.EqualValues(t, 2, f.count(t, &models.Wine{}))
	assert.Equal(t, []string{"order_created", "order_deleted"}, f.events.types())
}

func TestCreateOrder_MalformedNumbersAreFieldErrors(t *testing.T) {
	tests := []struct {
		name     string
		objectID json.Number
		quantity json.Number
		field    string
		msg      string
	}{
		{"fractional quantity", "1", "1.5", "items[0].quantity", "A valid integer is required."},
		{"negative quantity", "1", "-2", "items[0].quantity", "Ensure this value is greater than or equal to 1."},
		{"huge quantity", "1", "99999999999", "items[0].quantity", "Ensure this value is less than or equal to 2147483647."},
		{"missing quantity", "1", "", "items[0].quantity", "Ensure this value is greater than or equal to 1."},
		{"negative object id", "-4", "1", "items[0].object_id", "A valid integer is required."},
		{"fractional object id", "2.5", "1", "items[0].object_id", "A valid integer is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newOrderService(f)
			user := testutil.SeedUser(t, f.db, "a@example.com", false)
			testutil.SeedWine(t, f.db, f.catalog, "Red", "15.50")

			_, err := svc.CreateOrder(context.Background(), Actor{UserID: user.ID}, transport.CreateOrderRequest{
				Items: []transport.OrderItemRequest{{ContentType: "wine", ObjectID: tt.objectID, Quantity: tt.quantity}},
			})
			fe := requireFieldError(t, err, tt.field)
			assert.Equal(t, tt.msg, fe.Msg)
			f.assertNoOrders(t)
		})
	}
}

func TestTotal_RoundsOnceAtTheEnd(t *testing.T) {
	lines := []Line{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("0.333")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.001")},
	}
	assert.Equal(t, "1.00", Total(lines).StringFixed(2))
	assert.Equal(t, "0.00", Total(nil).StringFixed(2))
}
