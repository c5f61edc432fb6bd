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

type RequestHandler struct {
	requests  service.RequestService
	customers service.CustomerService
	drivers   service.DriverService
	billing   service.BillingService
}

func NewRequestHandler(requests service.RequestService, customers service.CustomerService, drivers service.DriverService, billing service.BillingService) *RequestHandler {
	return &RequestHandler{
		requests:  requests,
		customers: customers,
		drivers:   drivers,
		billing:   billing,
	}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests", middleware.RequireAuth())
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.PUT("/:id", h.EditRequest)
		requests.DELETE("/:id", h.DeleteRequest)
		requests.PUT("/:id/status", h.TransitionRequest)
		requests.PUT("/:id/reconciliation", h.UpdateReconciliation)
	}
}

// actorFromContext builds the history actor from the JWT claims RequireAuth
// stored on the context.
func actorFromContext(c *gin.Context) model.Actor {
	id, _ := c.Get("userID")
	name, _ := c.Get("userName")
	idStr, _ := id.(string)
	nameStr, _ := name.(string)
	return model.Actor{ID: idStr, Name: nameStr}
}

type createRequestPayload struct {
	service.CreateRequestDTO
	StaffOriginated bool `json:"staff_originated"`
}

type transitionPayload struct {
	Status           string               `json:"status" binding:"required"`
	CustomerID       string               `json:"customer_id"`
	DriverID         string               `json:"driver_id"`
	Justification    string               `json:"justification"`
	Reconciliation   model.Reconciliation `json:"reconciliation"`
	ExtraFeeIDs      []string             `json:"extra_fee_ids"`
	PaymentMethodIDs []string             `json:"payment_method_ids"`
}

type reconciliationPayload struct {
	Reconciliation model.Reconciliation `json:"reconciliation" binding:"required"`
}

// CreateRequest registers a new delivery request
// @Summary      Create delivery request
// @Description  Creates a delivery request; staff-originated requests start accepted, customer-originated ones pending
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      createRequestPayload  true  "Create Request Payload"
// @Success      201      {object}  response.Response{data=model.DeliveryRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var payload createRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	req, err := h.requests.Create(c.Request.Context(), payload.CreateRequestDTO, payload.StaffOriginated, actorFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// ListRequests returns a paginated list of delivery requests
// @Summary      List delivery requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Paginated}
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	p := pagination.Parse(c)
	items, total := h.requests.List(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	c.JSON(http.StatusOK, response.Page(http.StatusOK, items, total, p.Page, p.Limit))
}

// GetRequest returns one delivery request by id
// @Summary      Get delivery request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.DeliveryRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// EditRequest merges a partial update into a delivery request
// @Summary      Edit delivery request
// @Description  Shallow merge of the provided fields; the routes list, when present, replaces the existing one
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Request ID"
// @Param        payload  body      service.EditRequestDTO  true  "Partial update"
// @Success      200      {object}  response.Response{data=model.DeliveryRequest}
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id} [put]
func (h *RequestHandler) EditRequest(c *gin.Context) {
	var dto service.EditRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	id := c.Param("id")
	if err := h.requests.Edit(c.Request.Context(), id, dto, actorFromContext(c)); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	req, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// DeleteRequest removes a delivery request
// @Summary      Delete delivery request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// TransitionRequest applies a lifecycle status change
// @Summary      Transition delivery request
// @Description  Changes the request status. Completing requires a resolvable customer; prepaid customers are debited, invoiced customers get the delivery attached to their open invoice.
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Request ID"
// @Param        payload  body      transitionPayload  true  "Transition payload"
// @Success      200      {object}  response.Response{data=model.DeliveryRequest}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/requests/{id}/status [put]
func (h *RequestHandler) TransitionRequest(c *gin.Context) {
	var payload transitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	details := service.TransitionDetails{
		Justification:  payload.Justification,
		Reconciliation: payload.Reconciliation,
	}

	// Resolve the customer record at call time; the engine refuses to
	// complete without one.
	if payload.CustomerID != "" {
		customer, err := h.customers.GetByID(ctx, payload.CustomerID)
		if err == nil {
			details.Customer = customer
		}
	}
	if payload.DriverID != "" {
		driver, err := h.drivers.GetByID(ctx, payload.DriverID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "driver not found"))
			return
		}
		details.Driver = driver
	}
	if len(payload.ExtraFeeIDs) > 0 {
		if fees, err := h.billing.ResolveExtraFees(ctx, payload.ExtraFeeIDs); err == nil {
			details.ExtraFees = fees
		}
	}
	if len(payload.PaymentMethodIDs) > 0 {
		if methods, err := h.billing.ResolvePaymentMethods(ctx, payload.PaymentMethodIDs); err == nil {
			details.PaymentMethods = methods
		}
	}

	id := c.Param("id")
	if err := h.requests.Transition(ctx, id, payload.Status, actorFromContext(c), details); err != nil {
		switch {
		case errors.Is(err, model.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		case errors.Is(err, model.ErrCustomerRequired):
			c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	req, err := h.requests.Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// UpdateReconciliation replaces the reconciliation breakdown
// @Summary      Update reconciliation
// @Description  Replaces the route payment breakdown without a status change or history entry
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Request ID"
// @Param        payload  body      reconciliationPayload  true  "Reconciliation payload"
// @Success      200      {object}  response.Response{data=model.DeliveryRequest}
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/reconciliation [put]
func (h *RequestHandler) UpdateReconciliation(c *gin.Context) {
	var payload reconciliationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	id := c.Param("id")
	if err := h.requests.UpdateReconciliation(c.Request.Context(), id, payload.Reconciliation); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	req, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}
