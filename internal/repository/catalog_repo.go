package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository serves the payment-method and extra-fee catalogs routes
// reference by id.
type CatalogRepository interface {
	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	ListExtraFees(ctx context.Context) ([]model.ExtraFee, error)
	FindPaymentMethods(ctx context.Context, ids []string) ([]model.PaymentMethod, error)
	FindExtraFees(ctx context.Context, ids []string) ([]model.ExtraFee, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	if err := GetDB(ctx, r.db).Where("is_active = true").Order("name asc").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *catalogRepository) ListExtraFees(ctx context.Context) ([]model.ExtraFee, error) {
	var fees []model.ExtraFee
	if err := GetDB(ctx, r.db).Where("is_active = true").Order("name asc").Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *catalogRepository) FindPaymentMethods(ctx context.Context, ids []string) ([]model.PaymentMethod, error) {
	if len(ids) == 0 {
		return []model.PaymentMethod{}, nil
	}
	var methods []model.PaymentMethod
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *catalogRepository) FindExtraFees(ctx context.Context, ids []string) ([]model.ExtraFee, error) {
	if len(ids) == 0 {
		return []model.ExtraFee{}, nil
	}
	var fees []model.ExtraFee
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}
