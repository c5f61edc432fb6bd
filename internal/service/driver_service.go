package service

import (
	"context"
	"fmt"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
)

type CreateDriverDTO struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Avatar  string `json:"avatar"`
	Vehicle string `json:"vehicle"`
	Plate   string `json:"plate"`
}

type DriverService interface {
	Create(ctx context.Context, dto CreateDriverDTO) (*model.Driver, error)
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	List(ctx context.Context, page, limit int) ([]model.Driver, int64, error)
}

type driverService struct {
	repo repository.DriverRepository
}

func NewDriverService(repo repository.DriverRepository) DriverService {
	return &driverService{repo: repo}
}

func (s *driverService) Create(ctx context.Context, dto CreateDriverDTO) (*model.Driver, error) {
	driver := &model.Driver{
		Name:     dto.Name,
		Phone:    dto.Phone,
		Avatar:   dto.Avatar,
		Vehicle:  dto.Vehicle,
		Plate:    dto.Plate,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *driverService) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	driverID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid driver id: %w", err)
	}
	return s.repo.FindByID(ctx, driverID)
}

func (s *driverService) List(ctx context.Context, page, limit int) ([]model.Driver, int64, error) {
	return s.repo.List(ctx, page, limit)
}
