package models

import (
	"time"
)

// PaymentMethod is the stored payment label on an order. There is no
// gateway integration behind it.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentEWallet    PaymentMethod = "e_wallet"
	PaymentCOD        PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentEWallet, PaymentCOD:
		return true
	}
	return false
}

const OrderStatusPending = "pending"

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"             json:"id"`
	Name        string    `gorm:"not null"                             json:"name"`
	Brand       string    `gorm:"not null;index"                       json:"brand"`
	Category    string    `gorm:"not null;index"                       json:"category"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                             json:"price"`
	ImageURL    string    `json:"image_url"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0"  json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Order is an append-only purchase line. Price and quantity are snapshotted
// at creation time, so the row stays valid if the product is later changed
// or removed.
type Order struct {
	ID              uint          `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID          uint          `gorm:"index;not null"              json:"user_id"`
	ProductID       uint          `gorm:"not null"                    json:"product_id"`
	PaymentMethod   PaymentMethod `gorm:"not null"                    json:"payment_method"`
	DeliveryAddress string        `gorm:"not null"                    json:"delivery_address"`
	CustomerName    string        `gorm:"not null"                    json:"customer_name"`
	ContactNumber   string        `gorm:"not null"                    json:"contact_number"`
	TotalAmount     float64       `gorm:"not null"                    json:"total_amount"`
	Size            string        `json:"size"`
	Color           string        `json:"color"`
	Quantity        int           `gorm:"not null;check:quantity > 0" json:"quantity"`
	Status          string        `gorm:"not null"                    json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
