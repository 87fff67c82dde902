package handler

import (
	"strconv"
	"strings"

	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/gin-gonic/gin"
)

// EDAHandler handles exploratory analysis endpoints
type EDAHandler struct {
	BaseHandler
	eda *eda.Service
}

// NewEDAHandler creates a new EDAHandler
func NewEDAHandler(engine *eda.Service) *EDAHandler {
	return &EDAHandler{eda: engine}
}

// Info returns dataset shape, column types and memory usage
func (h *EDAHandler) Info(c *gin.Context) {
	report, err := h.eda.Info()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Statistics returns descriptive statistics, optionally for selected columns.
// Columns are passed as a comma-separated "columns" query parameter.
func (h *EDAHandler) Statistics(c *gin.Context) {
	var columns []string
	if raw := c.Query("columns"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				columns = append(columns, name)
			}
		}
	}

	report, err := h.eda.Statistics(columns)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Correlations returns the pairwise Pearson correlation matrix
func (h *EDAHandler) Correlations(c *gin.Context) {
	report, err := h.eda.Correlations()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ValueCounts returns frequency counts for one column
func (h *EDAHandler) ValueCounts(c *gin.Context) {
	column := c.Param("column")

	topN := h.eda.DefaultValueCountsTopN()
	if raw := c.Query("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleError(c, dataset.NewInvalidParameterError("top_n must be an integer"))
			return
		}
		topN = parsed
	}

	report, err := h.eda.ValueCounts(column, topN)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Outliers detects outliers in one numeric column. Method is one of iqr,
// zscore or both; default is both.
func (h *EDAHandler) Outliers(c *gin.Context) {
	column := c.Param("column")
	method := c.Query("method")

	report, err := h.eda.Outliers(column, method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Quality returns the data quality assessment
func (h *EDAHandler) Quality(c *gin.Context) {
	report, err := h.eda.Quality()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// FullReport returns the combined info, statistics, correlation and quality
// report
func (h *EDAHandler) FullReport(c *gin.Context) {
	report, err := h.eda.FullReport()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RegisterRoutes registers analysis routes
func (h *EDAHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/eda")
	{
		group.GET("/info", h.Info)
		group.GET("/statistics", h.Statistics)
		group.GET("/correlations", h.Correlations)
		group.GET("/value-counts/:column", h.ValueCounts)
		group.GET("/outliers/:column", h.Outliers)
		group.GET("/quality", h.Quality)
		group.GET("/report", h.FullReport)
	}
}
