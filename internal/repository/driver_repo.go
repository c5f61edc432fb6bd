package repository

import (
	"context"
	"errors"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Driver, error)
	List(ctx context.Context, page, limit int) ([]model.Driver, int64, error)
	Update(ctx context.Context, driver *model.Driver) error
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return GetDB(ctx, r.db).Create(driver).Error
}

func (r *driverRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	if err := GetDB(ctx, r.db).First(&driver, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrDriverNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) List(ctx context.Context, page, limit int) ([]model.Driver, int64, error) {
	var drivers []model.Driver
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Driver{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&drivers).Error; err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

func (r *driverRepository) Update(ctx context.Context, driver *model.Driver) error {
	return GetDB(ctx, r.db).Save(driver).Error
}
