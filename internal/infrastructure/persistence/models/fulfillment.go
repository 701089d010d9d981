package models

import (
	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the orders table
type OrderModel struct {
	BaseModel
	UserID          *uuid.UUID      `gorm:"type:uuid;index"`
	QrCodeID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        int             `gorm:"not null"`
	ShippingAddress string          `gorm:"type:text"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PAID'"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to the fulfillment order view
func (m *OrderModel) ToDomain() *fulfillment.OrderView {
	return &fulfillment.OrderView{
		ID:              m.ID,
		UserID:          m.UserID,
		QrCodeID:        m.QrCodeID,
		Quantity:        m.Quantity,
		ShippingAddress: m.ShippingAddress,
		Total:           m.Total,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

// UserModel is the persistence model for the users table
type UserModel struct {
	BaseModel
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	Company   string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to the fulfillment user view
func (m *UserModel) ToDomain() *fulfillment.UserView {
	return &fulfillment.UserView{
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Company:   m.Company,
	}
}

// QrCodeModel is the persistence model for the qr_codes table
type QrCodeModel struct {
	BaseModel
	Name            string `gorm:"type:varchar(200);not null"`
	ShortCode       string `gorm:"type:varchar(32);not null;uniqueIndex"`
	ForegroundColor string `gorm:"type:varchar(7)"`
	BackgroundColor string `gorm:"type:varchar(7)"`
}

// TableName returns the table name for GORM
func (QrCodeModel) TableName() string {
	return "qr_codes"
}

// ToDomain converts the model to the fulfillment QR code view
func (m *QrCodeModel) ToDomain() *fulfillment.QrCodeView {
	return &fulfillment.QrCodeView{
		ID:              m.ID,
		Name:            m.Name,
		ShortCode:       m.ShortCode,
		ForegroundColor: m.ForegroundColor,
		BackgroundColor: m.BackgroundColor,
	}
}

// All returns every model, for AutoMigrate
func All() []any {
	return []any{&UserModel{}, &QrCodeModel{}, &OrderModel{}}
}
