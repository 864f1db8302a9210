package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/wine_shop/internal/service"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

type CommentHTTP struct {
	Svc *service.CommentService
}

func (h *CommentHTTP) CreateForWine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.create")

	wineID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "create_comment_error", err)
	}
	var req transport.CommentRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_comment_error", err)
	}
	comment, err := h.Svc.CreateForWine(ctx, actor(c), wineID, req.CommentContents)
	if err != nil {
		return fail(l, "create_comment_error", err)
	}

	l.Info("create_comment_success", "comment_id", comment.ID)
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHTTP) ListForWine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.list_for_wine")

	wineID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "list_comments_error", err)
	}
	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListForWine(ctx, wineID, offset, limit)
	if err != nil {
		return fail(l, "list_comments_error", err)
	}
	return c.JSON(http.StatusOK, page(items, pg, offset, limit, total))
}

func (h *CommentHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.list_mine")

	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListMine(ctx, actor(c), offset, limit)
	if err != nil {
		return fail(l, "list_comments_error", err)
	}
	return c.JSON(http.StatusOK, page(items, pg, offset, limit, total))
}

func (h *CommentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.get")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_comment_error", err)
	}
	comment, err := h.Svc.Get(ctx, actor(c), id)
	if err != nil {
		return fail(l, "get_comment_error", err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.update")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_comment_error", err)
	}
	var req transport.CommentRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_comment_error", err)
	}
	comment, err := h.Svc.Update(ctx, actor(c), id, req.CommentContents)
	if err != nil {
		return fail(l, "update_comment_error", err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_comment_error", err)
	}
	if err := h.Svc.Delete(ctx, actor(c), id); err != nil {
		return fail(l, "delete_comment_error", err)
	}
	l.Info("delete_comment_success", "comment_id", id)
	return c.NoContent(http.StatusNoContent)
}
