package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/clothing_shop/internal/cart"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
)

type CartService struct {
	Carts *cart.SessionStore
	Repo  *repo.GormRepo

	// RecheckOnAdd makes a repeat add of a variant re-validate the combined
	// quantity against current stock. Off by default: the storefront only
	// enforces the combined quantity at checkout, so an over-added line
	// surfaces there instead of here.
	RecheckOnAdd bool
}

// CartView is the cart as rendered to the customer: lines in insertion
// order plus the subtotal over the whole cart.
type CartView struct {
	Items    []cart.KeyedLine `json:"items"`
	Subtotal float64          `json:"subtotal"`
}

func (s *CartService) Add(ctx context.Context, userID, productID uint, size, color string, quantity int) (cart.KeyedLine, error) {
	if quantity < 1 {
		return cart.KeyedLine{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if size == "" || color == "" {
		return cart.KeyedLine{}, fmt.Errorf("%w: size and color required", ErrValidation)
	}

	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.KeyedLine{}, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return cart.KeyedLine{}, err
	}
	if p.Stock < quantity {
		return cart.KeyedLine{}, fmt.Errorf("%w: product %d", ErrOutOfStock, productID)
	}

	key := cart.Key{ProductID: productID, Size: size, Color: color}
	c := s.Carts.Get(userID)

	if s.RecheckOnAdd {
		if existing, ok := c.Get(key); ok && p.Stock < existing.Quantity+quantity {
			return cart.KeyedLine{}, fmt.Errorf("%w: product %d", ErrOutOfStock, productID)
		}
	}

	line := c.Add(key, cart.Line{
		ProductID: productID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	})

	return cart.KeyedLine{Key: key.String(), Line: line}, nil
}

func (s *CartService) List(ctx context.Context, userID uint) (CartView, error) {
	c := s.Carts.Get(userID)
	return CartView{
		Items:    c.Lines(),
		Subtotal: round2(c.Subtotal()),
	}, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uint, rawKey string, quantity int) (cart.KeyedLine, error) {
	if quantity < 1 {
		return cart.KeyedLine{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	key, err := cart.ParseKey(rawKey)
	if err != nil {
		return cart.KeyedLine{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	c := s.Carts.Get(userID)
	line, ok := c.Get(key)
	if !ok {
		return cart.KeyedLine{}, fmt.Errorf("%w: %s", ErrLineNotFound, rawKey)
	}

	p, err := s.Repo.GetProduct(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.KeyedLine{}, fmt.Errorf("%w: product %d", ErrNotFound, line.ProductID)
		}
		return cart.KeyedLine{}, err
	}
	if p.Stock < quantity {
		return cart.KeyedLine{}, fmt.Errorf("%w: product %d", ErrOutOfStock, line.ProductID)
	}

	if !c.SetQuantity(key, quantity) {
		return cart.KeyedLine{}, fmt.Errorf("%w: %s", ErrLineNotFound, rawKey)
	}
	line.Quantity = quantity
	return cart.KeyedLine{Key: rawKey, Line: line}, nil
}

func (s *CartService) Remove(ctx context.Context, userID uint, rawKey string) error {
	key, err := cart.ParseKey(rawKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	s.Carts.Get(userID).Remove(key)
	return nil
}
