package handler

import (
	"errors"

	"github.com/datalens/backend/internal/application/chart"
	"github.com/datalens/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ChartHandler handles chart figure endpoints
type ChartHandler struct {
	BaseHandler
	charts *chart.Service
}

// NewChartHandler creates a new ChartHandler
func NewChartHandler(charts *chart.Service) *ChartHandler {
	return &ChartHandler{charts: charts}
}

// Create builds a chart figure from the active dataset
func (h *ChartHandler) Create(c *gin.Context) {
	var req chart.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, "Invalid chart request: "+err.Error())
		return
	}

	result, err := h.charts.Create(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers chart routes
func (h *ChartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/chart")
	{
		group.POST("/create", h.Create)
	}
}
