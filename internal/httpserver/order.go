package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/wine_shop/internal/service"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_order_error", err)
	}

	order, err := h.Svc.CreateOrder(ctx, actor(c), req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, orderResponse(order))
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, orders, err := h.Svc.ListOrders(ctx, actor(c), offset, limit)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	out := make([]transport.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orderResponse(&orders[i]))
	}
	l.Info("get_orders_success")
	return c.JSON(http.StatusOK, page(out, pg, offset, limit, total))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.GetOrder(ctx, actor(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_order_error", err)
	}
	var req transport.UpdateOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_order_error", err)
	}

	order, err := h.Svc.UpdateOrder(ctx, actor(c), id, req)
	if err != nil {
		return fail(l, "update_order_error", err)
	}

	l.Info("update_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *OrderHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.add_item")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "add_item_error", err)
	}
	var req transport.OrderItemRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_item_error", err)
	}

	order, err := h.Svc.AddItem(ctx, actor(c), id, req)
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	l.Info("add_item_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, orderResponse(order))
}

func (h *OrderHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.remove_item")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return fail(l, "remove_item_error", err)
	}

	order, err := h.Svc.RemoveItem(ctx, actor(c), id, itemID)
	if err != nil {
		return fail(l, "remove_item_error", err)
	}

	l.Info("remove_item_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_order_error", err)
	}
	if err := h.Svc.DeleteOrder(ctx, actor(c), id); err != nil {
		return fail(l, "delete_order_error", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}
