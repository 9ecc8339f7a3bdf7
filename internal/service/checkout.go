package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/Skotchmaster/clothing_shop/internal/cart"
	"github.com/Skotchmaster/clothing_shop/internal/models"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
)

// OrderDetails carries the delivery and payment fields shared by every
// order created from one checkout.
type OrderDetails struct {
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	DeliveryAddress string               `json:"delivery_address"`
	CustomerName    string               `json:"customer_name"`
	ContactNumber   string               `json:"contact_number"`
}

func (d OrderDetails) validate() error {
	if !d.PaymentMethod.Valid() {
		return fmt.Errorf("%w: payment_method must be one of credit_card, e_wallet, cod", ErrValidation)
	}
	if d.DeliveryAddress == "" {
		return fmt.Errorf("%w: delivery_address required", ErrValidation)
	}
	if d.CustomerName == "" || len(d.CustomerName) > 255 {
		return fmt.Errorf("%w: customer_name required, at most 255 chars", ErrValidation)
	}
	if d.ContactNumber == "" || len(d.ContactNumber) > 20 {
		return fmt.Errorf("%w: contact_number required, at most 20 chars", ErrValidation)
	}
	return nil
}

// CheckoutService converts cart lines into orders. The whole conversion is
// all-or-nothing over the targeted lines: every line passes a stock
// pre-flight before any order is written, and the commit runs in one DB
// transaction whose conditional stock decrements re-fail the checkout if a
// concurrent checkout drained the stock after the pre-flight.
type CheckoutService struct {
	Carts *cart.SessionStore
	Repo  *repo.GormRepo
}

// Checkout converts the selected cart lines into orders. A nil selection
// targets the whole cart; unknown keys in the selection are ignored. On any
// failure the cart and the inventory are left untouched. On success exactly
// the targeted lines leave the cart and the rest stay as they were.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, selectedKeys []string, details OrderDetails) ([]models.Order, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}

	c := s.Carts.Get(userID)
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	targets := resolveTargets(lines, selectedKeys)
	if len(targets) == 0 {
		return nil, ErrNoValidSelection
	}

	var created []models.Order
	err := s.Repo.Transaction(ctx, func(r *repo.GormRepo) error {
		// Pre-flight: every targeted line is checked before anything is
		// written. One short line must fail the whole request.
		for _, t := range targets {
			p, err := r.GetProduct(ctx, t.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d no longer exists", ErrInsufficientStock, t.ProductID)
				}
				return err
			}
			if p.Stock < t.Quantity {
				return fmt.Errorf("%w: product %d has %d left, %d requested", ErrInsufficientStock, t.ProductID, p.Stock, t.Quantity)
			}
		}

		created = created[:0]
		for _, t := range targets {
			order := models.Order{
				UserID:          userID,
				ProductID:       t.ProductID,
				PaymentMethod:   details.PaymentMethod,
				DeliveryAddress: details.DeliveryAddress,
				CustomerName:    details.CustomerName,
				ContactNumber:   details.ContactNumber,
				TotalAmount:     round2(t.Price * float64(t.Quantity)),
				Size:            t.Size,
				Color:           t.Color,
				Quantity:        t.Quantity,
				Status:          models.OrderStatusPending,
			}
			if err := r.CreateOrder(ctx, &order); err != nil {
				return err
			}
			ok, err := r.DecrementStock(ctx, t.ProductID, t.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// Stock moved between pre-flight and commit. Abort: the
				// transaction rollback undoes every order and decrement of
				// this checkout.
				return fmt.Errorf("%w: product %d changed during checkout", ErrInsufficientStock, t.ProductID)
			}
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Only after the commit stuck: drop exactly the converted lines, the
	// remainder of the cart stays untouched.
	removed := make([]cart.Key, 0, len(targets))
	for _, t := range targets {
		removed = append(removed, cart.Key{ProductID: t.ProductID, Size: t.Size, Color: t.Color})
	}
	c.RemoveAll(removed)

	return created, nil
}

// resolveTargets intersects the selection with the cart, preserving cart
// insertion order and collapsing duplicate keys. A nil selection means the
// whole cart.
func resolveTargets(lines []cart.KeyedLine, selectedKeys []string) []cart.KeyedLine {
	if selectedKeys == nil {
		return lines
	}
	wanted := make(map[string]bool, len(selectedKeys))
	for _, k := range selectedKeys {
		wanted[k] = true
	}
	targets := make([]cart.KeyedLine, 0, len(selectedKeys))
	for _, l := range lines {
		if wanted[l.Key] {
			targets = append(targets, l)
		}
	}
	return targets
}

// BuyNowInput is the single-item checkout tuple used by the "buy now" flow
// that bypasses the cart.
type BuyNowInput struct {
	ProductID uint
	Size      string
	Color     string
	Quantity  int
	Details   OrderDetails
}

func (in BuyNowInput) validate() error {
	if in.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if in.Size == "" || in.Color == "" {
		return fmt.Errorf("%w: size and color required", ErrValidation)
	}
	return in.Details.validate()
}

// PlaceOrder creates a single order directly from a product page. Stock is
// re-validated for that product alone; no cart is involved. The total is
// computed from the product's current price, never taken from the caller.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uint, in BuyNowInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.Repo.Transaction(ctx, func(r *repo.GormRepo) error {
		p, err := r.GetProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, in.ProductID)
			}
			return err
		}
		if p.Stock < in.Quantity {
			return fmt.Errorf("%w: product %d", ErrOutOfStock, in.ProductID)
		}

		order = models.Order{
			UserID:          userID,
			ProductID:       in.ProductID,
			PaymentMethod:   in.Details.PaymentMethod,
			DeliveryAddress: in.Details.DeliveryAddress,
			CustomerName:    in.Details.CustomerName,
			ContactNumber:   in.Details.ContactNumber,
			TotalAmount:     round2(p.Price * float64(in.Quantity)),
			Size:            in.Size,
			Color:           in.Color,
			Quantity:        in.Quantity,
			Status:          models.OrderStatusPending,
		}
		if err := r.CreateOrder(ctx, &order); err != nil {
			return err
		}
		ok, err := r.DecrementStock(ctx, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: product %d changed during checkout", ErrOutOfStock, in.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Preview validates a "buy now" request before the checkout page renders:
// the product must exist and have enough stock. Returns the product and the
// computed total for the requested quantity.
func (s *CheckoutService) Preview(ctx context.Context, productID uint, quantity int) (*models.Product, float64, error) {
	if quantity < 1 {
		return nil, 0, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, 0, err
	}
	if p.Stock < quantity {
		return nil, 0, fmt.Errorf("%w: product %d", ErrOutOfStock, productID)
	}
	return p, round2(p.Price * float64(quantity)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
