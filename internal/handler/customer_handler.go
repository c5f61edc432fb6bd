package handler

import (
	"errors"
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CustomerHandler struct {
	customers service.CustomerService
	billing   service.BillingService
}

func NewCustomerHandler(customers service.CustomerService, billing service.BillingService) *CustomerHandler {
	return &CustomerHandler{customers: customers, billing: billing}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers", middleware.RequireAuth())
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.GET("/:id/wallet", h.ListWalletEntries)
		customers.POST("/:id/wallet/topup", h.TopUpWallet)
	}
}

type topUpPayload struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// CreateCustomer registers a new customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerDTO  true  "Customer payload"
// @Success      201      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var dto service.CreateCustomerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// ListCustomers returns a paginated list of customers
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        billing_mode  query     string  false  "Filter by billing mode (PREPAID or INVOICED)"
// @Param        page          query     int     false  "Page number"
// @Param        limit         query     int     false  "Items per page"
// @Success      200           {object}  response.Response{data=response.Paginated}
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)
	customers, total, err := h.customers.List(c.Request.Context(), c.Query("billing_mode"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Page(http.StatusOK, customers, total, p.Page, p.Limit))
}

// GetCustomer returns a single customer
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=model.Customer}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// UpdateCustomer updates customer details
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerDTO  true  "Update payload"
// @Success      200      {object}  response.Response{data=model.Customer}
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var dto service.UpdateCustomerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		if errors.Is(err, model.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// ListWalletEntries returns a customer's wallet ledger
// @Summary      List wallet entries
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Customer ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Items per page"
// @Success      200    {object}  response.Response{data=response.Paginated}
// @Router       /api/customers/{id}/wallet [get]
func (h *CustomerHandler) ListWalletEntries(c *gin.Context) {
	p := pagination.Parse(c)
	entries, total, err := h.billing.ListWalletEntries(c.Request.Context(), c.Param("id"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Page(http.StatusOK, entries, total, p.Page, p.Limit))
}

// TopUpWallet credits a customer's prepaid wallet
// @Summary      Top up wallet
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Customer ID"
// @Param        payload  body      topUpPayload  true  "Top-up payload"
// @Success      201      {object}  response.Response{data=model.WalletEntry}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id}/wallet/topup [post]
func (h *CustomerHandler) TopUpWallet(c *gin.Context) {
	var payload topUpPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.billing.TopUp(c.Request.Context(), c.Param("id"), payload.Amount, payload.Description)
	if err != nil {
		if errors.Is(err, model.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}
