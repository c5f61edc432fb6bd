package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletRepository interface {
	CreateEntry(ctx context.Context, entry *model.WalletEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.WalletEntry, int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) CreateEntry(ctx context.Context, entry *model.WalletEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *walletRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.WalletEntry, int64, error) {
	var entries []model.WalletEntry
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.WalletEntry{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("customer_id = ?", customerID).
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
