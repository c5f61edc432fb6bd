package service

import (
	"context"
	"errors"
	"fmt"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCustomerDTO struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
	TaxCode     string `json:"tax_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Avatar      string `json:"avatar"`
	BillingMode string `json:"billing_mode" binding:"required,oneof=PREPAID INVOICED"`
}

type UpdateCustomerDTO struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Avatar      string `json:"avatar"`
	BillingMode string `json:"billing_mode" binding:"omitempty,oneof=PREPAID INVOICED"`
}

// --- Interface ---

type CustomerService interface {
	Create(ctx context.Context, dto CreateCustomerDTO) (*model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context, billingMode string, page, limit int) ([]model.Customer, int64, error)
	Update(ctx context.Context, id string, dto UpdateCustomerDTO) (*model.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, dto CreateCustomerDTO) (*model.Customer, error) {
	customer := &model.Customer{
		Name:        dto.Name,
		CompanyName: dto.CompanyName,
		TaxCode:     dto.TaxCode,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Avatar:      dto.Avatar,
		BillingMode: dto.BillingMode,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	return s.repo.FindByID(ctx, customerID)
}

func (s *customerService) List(ctx context.Context, billingMode string, page, limit int) ([]model.Customer, int64, error) {
	if billingMode != "" && billingMode != model.BillingModePrepaid && billingMode != model.BillingModeInvoiced {
		return nil, 0, errors.New("invalid billing mode filter")
	}
	return s.repo.List(ctx, billingMode, page, limit)
}

func (s *customerService) Update(ctx context.Context, id string, dto UpdateCustomerDTO) (*model.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != "" {
		customer.Name = dto.Name
	}
	if dto.CompanyName != "" {
		customer.CompanyName = dto.CompanyName
	}
	if dto.Phone != "" {
		customer.Phone = dto.Phone
	}
	if dto.Email != "" {
		customer.Email = dto.Email
	}
	if dto.Avatar != "" {
		customer.Avatar = dto.Avatar
	}
	if dto.BillingMode != "" {
		customer.BillingMode = dto.BillingMode
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
