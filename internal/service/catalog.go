package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/clothing_shop/internal/models"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

// Facets returns the distinct brands and categories for the storefront
// filter controls.
func (s *CatalogService) Facets(ctx context.Context) ([]string, []string, error) {
	brands, err := s.Repo.Brands(ctx)
	if err != nil {
		return nil, nil, err
	}
	categories, err := s.Repo.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return brands, categories, nil
}

func validateProduct(p *models.Product) error {
	if p.Name == "" || len(p.Name) > 255 {
		return fmt.Errorf("%w: name required, at most 255 chars", ErrValidation)
	}
	if p.Brand == "" || len(p.Brand) > 255 {
		return fmt.Errorf("%w: brand required, at most 255 chars", ErrValidation)
	}
	if p.Category == "" || len(p.Category) > 255 {
		return fmt.Errorf("%w: category required, at most 255 chars", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.Repo.CreateProduct(ctx, p)
}

// UpdateProduct overwrites the product's attributes wholesale, matching the
// admin edit form. Checkout is the only other stock writer and it only
// decrements.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, upd models.Product) (*models.Product, error) {
	if err := validateProduct(&upd); err != nil {
		return nil, err
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = upd.Name
	p.Brand = upd.Brand
	p.Category = upd.Category
	p.Description = upd.Description
	p.Price = upd.Price
	p.ImageURL = upd.ImageURL
	p.Size = upd.Size
	p.Color = upd.Color
	p.Stock = upd.Stock

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}
