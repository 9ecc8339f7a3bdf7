package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/clothing_shop/internal/logging"
	"github.com/Skotchmaster/clothing_shop/internal/models"
	"github.com/Skotchmaster/clothing_shop/internal/mykafka"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
	"github.com/Skotchmaster/clothing_shop/internal/search"
	"github.com/Skotchmaster/clothing_shop/internal/service"
	"github.com/Skotchmaster/clothing_shop/internal/util"
)

type ProductHTTP struct {
	Svc      *service.CatalogService
	Producer *mykafka.Producer
	Index    *search.Index
}

type productRequest struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
	Stock       int     `json:"stock"`
}

func (r productRequest) model() models.Product {
	return models.Product{
		Name:        r.Name,
		Brand:       r.Brand,
		Category:    r.Category,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Size:        r.Size,
		Color:       r.Color,
		Stock:       r.Stock,
	}
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	filter := repo.ProductFilter{
		Search:   c.QueryParam("search"),
		Brand:    c.QueryParam("brand"),
		Category: c.QueryParam("category"),
	}

	total, items, err := h.Svc.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		l.Error("list_products_error", "error", err)
		return toHTTPError(err)
	}

	brands, categories, err := h.Svc.Facets(ctx)
	if err != nil {
		l.Error("list_products_error", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":       items,
		"brands":     brands,
		"categories": categories,
		"filters": map[string]string{
			"search":   filter.Search,
			"brand":    filter.Brand,
			"category": filter.Category,
		},
		"meta": map[string]any{
			"page":        max(page, 1),
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product := req.model()
	if err := h.Svc.CreateProduct(ctx, &product); err != nil {
		l.Warn("create_product_error", "error", err)
		return toHTTPError(err)
	}

	h.syncIndex(c, &product)
	publish(c, h.Producer, mykafka.TopicProductEvents, strconv.FormatUint(uint64(product.ID), 10), map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("product_created", "productID", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(ctx, id, req.model())
	if err != nil {
		l.Warn("update_product_error", "error", err)
		return toHTTPError(err)
	}

	h.syncIndex(c, product)
	publish(c, h.Producer, mykafka.TopicProductEvents, strconv.FormatUint(uint64(product.ID), 10), map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("product_updated", "productID", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Warn("delete_product_error", "error", err)
		return toHTTPError(err)
	}

	if h.Index != nil {
		if err := h.Index.DeleteProduct(ctx, id); err != nil {
			l.Error("search index delete error", "productID", id, "error", err)
		}
	}
	publish(c, h.Producer, mykafka.TopicProductEvents, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	l.Info("product_deleted", "productID", id)
	return c.NoContent(http.StatusNoContent)
}

// Search serves the storefront search box from the elasticsearch index.
func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	if h.Index == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search disabled")
	}
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, products, err := h.Index.Search(ctx, q, from, limit)
	if err != nil {
		l.Error("search_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]any{"total": total, "products": products})
}

func (h *ProductHTTP) syncIndex(c echo.Context, p *models.Product) {
	if h.Index == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search index error", "productID", p.ID, "error", err)
	}
}
