package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/clothing_shop/internal/auth"
	"github.com/Skotchmaster/clothing_shop/internal/logging"
	"github.com/Skotchmaster/clothing_shop/internal/mykafka"
	"github.com/Skotchmaster/clothing_shop/internal/service"
)

type CartHTTP struct {
	Svc      *service.CartService
	Producer *mykafka.Producer
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.List(ctx, userID)
	if err != nil {
		l.Error("get_cart_error", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint   `json:"product_id"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	line, err := h.Svc.Add(ctx, userID, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		l.Warn("add_to_cart_error", "error", err)
		return toHTTPError(err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":      "cart_line_added",
		"userID":    userID,
		"key":       line.Key,
		"productID": line.ProductID,
		"quantity":  line.Quantity,
	})

	l.Info("cart_line_added", "key", line.Key)
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Key      string `json:"key"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	line, err := h.Svc.UpdateQuantity(ctx, userID, req.Key, req.Quantity)
	if err != nil {
		l.Warn("update_cart_error", "key", req.Key, "error", err)
		return toHTTPError(err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":     "cart_line_updated",
		"userID":   userID,
		"key":      line.Key,
		"quantity": line.Quantity,
	})

	l.Info("cart_line_updated", "key", line.Key)
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Remove(ctx, userID, req.Key); err != nil {
		l.Warn("remove_from_cart_error", "key", req.Key, "error", err)
		return toHTTPError(err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":   "cart_line_removed",
		"userID": userID,
		"key":    req.Key,
	})

	l.Info("cart_line_removed", "key", req.Key)
	return c.JSON(http.StatusOK, map[string]any{"removed": req.Key})
}
