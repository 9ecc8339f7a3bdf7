package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/clothing_shop/internal/auth"
	"github.com/Skotchmaster/clothing_shop/internal/logging"
	"github.com/Skotchmaster/clothing_shop/internal/mykafka"
	"github.com/Skotchmaster/clothing_shop/internal/service"
)

type CheckoutHTTP struct {
	Svc      *service.CheckoutService
	Producer *mykafka.Producer
}

// Checkout converts the selected cart lines into orders. Omitting "keys"
// targets the whole cart.
func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.cart")

	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		service.OrderDetails
		Keys []string `json:"keys"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	orders, err := h.Svc.Checkout(ctx, userID, req.Keys, req.OrderDetails)
	if err != nil {
		l.Warn("checkout_error", "error", err)
		return toHTTPError(err)
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	publish(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":     "orders_created",
		"userID":   userID,
		"orderIDs": orderIDs,
	})

	l.Info("checkout_success", "orders", len(orders))
	return c.JSON(http.StatusCreated, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}

// Preview backs the buy-now checkout page: validates the product and stock
// and returns the computed total.
func (h *CheckoutHTTP) Preview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.preview")

	productID, err := strconv.Atoi(c.QueryParam("product_id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	quantity, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	product, total, err := h.Svc.Preview(ctx, uint(productID), quantity)
	if err != nil {
		l.Warn("checkout_preview_error", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"product":  product,
		"size":     c.QueryParam("size"),
		"color":    c.QueryParam("color"),
		"quantity": quantity,
		"total":    total,
	})
}

// PlaceOrder is the single-item buy-now flow, bypassing the cart.
func (h *CheckoutHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.place_order")

	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		service.OrderDetails
		ProductID uint   `json:"product_id"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.PlaceOrder(ctx, userID, service.BuyNowInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
		Details:   req.OrderDetails,
	})
	if err != nil {
		l.Warn("place_order_error", "error", err)
		return toHTTPError(err)
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
	})

	l.Info("order_created", "orderID", order.ID)
	return c.JSON(http.StatusCreated, order)
}
