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

type DriverHandler struct {
	drivers service.DriverService
}

func NewDriverHandler(drivers service.DriverService) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

func (h *DriverHandler) RegisterRoutes(router *gin.RouterGroup) {
	drivers := router.Group("/api/drivers", middleware.RequireAuth())
	{
		drivers.POST("", h.CreateDriver)
		drivers.GET("", h.ListDrivers)
		drivers.GET("/:id", h.GetDriver)
	}
}

// CreateDriver registers a new driver
// @Summary      Create driver
// @Tags         drivers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDriverDTO  true  "Driver payload"
// @Success      201      {object}  response.Response{data=model.Driver}
// @Failure      400      {object}  response.Response
// @Router       /api/drivers [post]
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var dto service.CreateDriverDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	driver, err := h.drivers.Create(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, driver))
}

// ListDrivers returns a paginated list of drivers
// @Summary      List drivers
// @Tags         drivers
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  response.Response{data=response.Paginated}
// @Router       /api/drivers [get]
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	p := pagination.Parse(c)
	drivers, total, err := h.drivers.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Page(http.StatusOK, drivers, total, p.Page, p.Limit))
}

// GetDriver returns a single driver
// @Summary      Get driver
// @Tags         drivers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Driver ID"
// @Success      200  {object}  response.Response{data=model.Driver}
// @Failure      404  {object}  response.Response
// @Router       /api/drivers/{id} [get]
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.drivers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrDriverNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, driver))
}
