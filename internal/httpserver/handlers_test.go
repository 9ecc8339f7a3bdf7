package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/clothing_shop/internal/cart"
	"github.com/Skotchmaster/clothing_shop/internal/models"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
	"github.com/Skotchmaster/clothing_shop/internal/service"
)

type handlerEnv struct {
	DB       *gorm.DB
	Cart     *CartHTTP
	Checkout *CheckoutHTTP
	Product  *ProductHTTP
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	r := &repo.GormRepo{DB: db}
	carts := cart.NewSessionStore()

	return &handlerEnv{
		DB:       db,
		Cart:     &CartHTTP{Svc: &service.CartService{Carts: carts, Repo: r}},
		Checkout: &CheckoutHTTP{Svc: &service.CheckoutService{Carts: carts, Repo: r}},
		Product:  &ProductHTTP{Svc: &service.CatalogService{Repo: r}},
	}
}

func (env *handlerEnv) seed(t *testing.T, p models.Product) models.Product {
	t.Helper()
	if err := env.DB.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// request builds an authenticated echo context the way the JWT middleware
// would leave it.
func request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", uint(1))
	c.Set("role", "user")
	return c, rec
}

func TestAddToCartHandler(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	p := env.seed(t, models.Product{Name: "Tee", Brand: "B", Category: "t-shirt", Price: 100, Stock: 5})

	c, rec := request(http.MethodPost, "/api/v1/cart/add",
		`{"product_id": `+jsonID(p.ID)+`, "size": "M", "color": "Black", "quantity": 2}`)
	require.NoError(t, env.Cart.AddToCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var line cart.KeyedLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "Tee", line.Name)

	c, rec = request(http.MethodGet, "/api/v1/cart", "")
	require.NoError(t, env.Cart.GetCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var view service.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.InDelta(t, 200, view.Subtotal, 1e-9)
}

func TestAddToCartHandlerErrors(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	p := env.seed(t, models.Product{Name: "Tee", Brand: "B", Category: "t-shirt", Price: 100, Stock: 1})

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "unknown product", body: `{"product_id": 999, "size": "M", "color": "Black", "quantity": 1}`, code: http.StatusNotFound},
		{name: "missing variant", body: `{"product_id": ` + jsonID(p.ID) + `, "quantity": 1}`, code: http.StatusBadRequest},
		{name: "over stock", body: `{"product_id": ` + jsonID(p.ID) + `, "size": "M", "color": "Black", "quantity": 3}`, code: http.StatusConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := request(http.MethodPost, "/api/v1/cart/add", tt.body)
			err := env.Cart.AddToCart(c)
			require.Error(t, err)

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestCheckoutHandler(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	p := env.seed(t, models.Product{Name: "Tee", Brand: "B", Category: "t-shirt", Price: 500, Stock: 5})

	c, _ := request(http.MethodPost, "/api/v1/cart/add",
		`{"product_id": `+jsonID(p.ID)+`, "size": "M", "color": "Black", "quantity": 2}`)
	require.NoError(t, env.Cart.AddToCart(c))

	c, rec := request(http.MethodPost, "/api/v1/cart/checkout",
		`{"payment_method": "cod", "delivery_address": "12 Mabini St", "customer_name": "Maria Santos", "contact_number": "0917"}`)
	require.NoError(t, env.Checkout.Checkout(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Orders []models.Order `json:"orders"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Orders, 1)
	assert.InDelta(t, 1000, resp.Orders[0].TotalAmount, 1e-9)

	// the cart is empty afterwards
	c, rec = request(http.MethodGet, "/api/v1/cart", "")
	require.NoError(t, env.Cart.GetCart(c))
	var view service.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Items)
}

func TestCheckoutHandlerEmptyCart(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)

	c, _ := request(http.MethodPost, "/api/v1/cart/checkout",
		`{"payment_method": "cod", "delivery_address": "a", "customer_name": "n", "contact_number": "1"}`)
	err := env.Checkout.Checkout(c)
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestPlaceOrderHandler(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	p := env.seed(t, models.Product{Name: "Hoodie", Brand: "B", Category: "hoodie", Price: 750, Stock: 4})

	c, rec := request(http.MethodPost, "/api/v1/orders",
		`{"product_id": `+jsonID(p.ID)+`, "size": "L", "color": "Gray", "quantity": 2,
		  "payment_method": "e_wallet", "delivery_address": "12 Mabini St", "customer_name": "Maria Santos", "contact_number": "0917"}`)
	require.NoError(t, env.Checkout.PlaceOrder(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.InDelta(t, 1500, order.TotalAmount, 1e-9)
	assert.Equal(t, models.PaymentEWallet, order.PaymentMethod)
}

func TestPreviewHandler(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	p := env.seed(t, models.Product{Name: "Hoodie", Brand: "B", Category: "hoodie", Price: 750, Stock: 4})

	c, rec := request(http.MethodGet, "/api/v1/checkout?product_id="+jsonID(p.ID)+"&quantity=2&size=L&color=Gray", "")
	require.NoError(t, env.Checkout.Preview(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    float64 `json:"total"`
		Quantity int     `json:"quantity"`
		Size     string  `json:"size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1500, resp.Total, 1e-9)
	assert.Equal(t, 2, resp.Quantity)
	assert.Equal(t, "L", resp.Size)
}

func TestGetProductsHandler(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	env.seed(t, models.Product{Name: "Slim Denim Jacket", Brand: "Penshoppe", Category: "jacket", Price: 1299, Stock: 10})
	env.seed(t, models.Product{Name: "Graphic Tee", Brand: "Bench", Category: "t-shirt", Price: 349, Stock: 25})

	c, rec := request(http.MethodGet, "/api/v1/products?search=denim", "")
	require.NoError(t, env.Product.GetProducts(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data   []models.Product `json:"data"`
		Brands []string         `json:"brands"`
		Meta   struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Meta.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Slim Denim Jacket", resp.Data[0].Name)
	assert.ElementsMatch(t, []string{"Bench", "Penshoppe"}, resp.Brands)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
