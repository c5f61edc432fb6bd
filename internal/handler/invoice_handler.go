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
)

type InvoiceHandler struct {
	billing service.BillingService
}

func NewInvoiceHandler(billing service.BillingService) *InvoiceHandler {
	return &InvoiceHandler{billing: billing}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices", middleware.RequireAuth())
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/close", h.CloseInvoice)
	}

	catalogs := router.Group("/api/catalogs", middleware.RequireAuth())
	{
		catalogs.GET("/payment-methods", h.ListPaymentMethods)
		catalogs.GET("/extra-fees", h.ListExtraFees)
	}
}

// ListInvoices returns a paginated list of invoices
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by status (OPEN or CLOSED)"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Success      200          {object}  response.Response{data=response.Paginated}
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)
	invoices, total, err := h.billing.ListInvoices(c.Request.Context(), c.Query("status"), c.Query("customer_id"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Page(http.StatusOK, invoices, total, p.Page, p.Limit))
}

// GetInvoice returns one invoice with its delivery items
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.billing.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrInvoiceNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// CloseInvoice closes an open invoice
// @Summary      Close invoice
// @Description  Marks the invoice as closed; subsequent completed deliveries open a new invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id}/close [post]
func (h *InvoiceHandler) CloseInvoice(c *gin.Context) {
	invoice, err := h.billing.CloseInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvoiceNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		case errors.Is(err, model.ErrInvoiceClosed):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// ListPaymentMethods returns the payment method catalog
// @Summary      List payment methods
// @Tags         catalogs
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.PaymentMethod}
// @Router       /api/catalogs/payment-methods [get]
func (h *InvoiceHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.billing.ListPaymentMethods(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, methods))
}

// ListExtraFees returns the extra fee catalog
// @Summary      List extra fees
// @Tags         catalogs
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ExtraFee}
// @Router       /api/catalogs/extra-fees [get]
func (h *InvoiceHandler) ListExtraFees(c *gin.Context) {
	fees, err := h.billing.ListExtraFees(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, fees))
}
