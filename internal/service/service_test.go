package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Skotchmaster/clothing_shop/internal/cart"
	"github.com/Skotchmaster/clothing_shop/internal/models"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// Every new connection to :memory: is a fresh database, so pin the
	// pool to one connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type testEnv struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Carts    *cart.SessionStore
	Cart     *CartService
	Checkout *CheckoutService
	Catalog  *CatalogService
	Orders   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	r := &repo.GormRepo{DB: db}
	carts := cart.NewSessionStore()

	return &testEnv{
		DB:       db,
		Repo:     r,
		Carts:    carts,
		Cart:     &CartService{Carts: carts, Repo: r},
		Checkout: &CheckoutService{Carts: carts, Repo: r},
		Catalog:  &CatalogService{Repo: r},
		Orders:   &OrderService{Repo: r},
	}
}

func (env *testEnv) createProduct(t *testing.T, p models.Product) models.Product {
	t.Helper()
	if err := env.DB.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (env *testEnv) productStock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	if err := env.DB.First(&p, id).Error; err != nil {
		t.Fatalf("load product %d: %v", id, err)
	}
	return p.Stock
}

func (env *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := env.DB.Model(&models.Order{}).Count(&n).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}

func validDetails() OrderDetails {
	return OrderDetails{
		PaymentMethod:   models.PaymentCOD,
		DeliveryAddress: "12 Mabini St, Quezon City",
		CustomerName:    "Maria Santos",
		ContactNumber:   "+63 917 555 0199",
	}
}
