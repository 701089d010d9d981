package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/domain/shared"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements fulfillment.OrderReader using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.OrderView, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "order")
	}
	return model.ToDomain(), nil
}

// GormUserRepository implements fulfillment.UserReader using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.UserView, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return model.ToDomain(), nil
}

// GormQrCodeRepository implements fulfillment.QrCodeReader using GORM
type GormQrCodeRepository struct {
	db *gorm.DB
}

// NewGormQrCodeRepository creates a new GormQrCodeRepository
func NewGormQrCodeRepository(db *gorm.DB) *GormQrCodeRepository {
	return &GormQrCodeRepository{db: db}
}

// FindByID finds a QR code by its ID
func (r *GormQrCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.QrCodeView, error) {
	var model models.QrCodeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "qr code")
	}
	return model.ToDomain(), nil
}

func translateError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, entity+" not found")
	}
	return err
}
