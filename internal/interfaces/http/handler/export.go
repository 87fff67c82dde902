package handler

import (
	"github.com/datalens/backend/internal/application/export"
	"github.com/gin-gonic/gin"
)

// ExportHandler handles report generation and download endpoints
type ExportHandler struct {
	BaseHandler
	exports *export.Service
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exports *export.Service) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// PDFRequest carries options for PDF report generation
type PDFRequest struct {
	Title string `json:"title"`
}

// SectionRequest attaches custom content to subsequent reports
type SectionRequest struct {
	Section string `json:"section" binding:"required"`
	Content string `json:"content"`
}

// SummaryRequest carries the text of a summary report
type SummaryRequest struct {
	Summary  string `json:"summary" binding:"required"`
	Insights string `json:"insights"`
}

// CSV generates a CSV export of the active dataset
func (h *ExportHandler) CSV(c *gin.Context) {
	info, err := h.exports.CSV()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// JSON generates a JSON export of the active dataset
func (h *ExportHandler) JSON(c *gin.Context) {
	info, err := h.exports.JSON()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// Excel generates an xlsx workbook with data and statistics sheets
func (h *ExportHandler) Excel(c *gin.Context) {
	info, err := h.exports.Excel()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// Text generates a plain-text table export
func (h *ExportHandler) Text(c *gin.Context) {
	info, err := h.exports.Text()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// PDF renders an analysis report to PDF
func (h *ExportHandler) PDF(c *gin.Context) {
	var req PDFRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	info, err := h.exports.PDF(c.Request.Context(), req.Title)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// AddSection stores a custom report section
func (h *ExportHandler) AddSection(c *gin.Context) {
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.exports.AddSection(req.Section, req.Content); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Added content to section: " + req.Section})
}

// ClearSections removes all stored report sections
func (h *ExportHandler) ClearSections(c *gin.Context) {
	h.exports.ClearSections()
	h.Success(c, gin.H{"message": "Report content cleared"})
}

// Summary generates a plain-text summary report
func (h *ExportHandler) Summary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	info, err := h.exports.Summary(req.Summary, req.Insights)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// List enumerates generated report files
func (h *ExportHandler) List(c *gin.Context) {
	files, err := h.exports.List()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"files": files})
}

// Download streams a generated report file
func (h *ExportHandler) Download(c *gin.Context) {
	filename := c.Param("filename")
	path, err := h.exports.Resolve(filename)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.FileAttachment(path, filename)
}

// RegisterRoutes registers export routes
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/export")
	{
		group.POST("/csv", h.CSV)
		group.POST("/json", h.JSON)
		group.POST("/excel", h.Excel)
		group.POST("/text", h.Text)
		group.POST("/pdf", h.PDF)
		group.POST("/summary", h.Summary)
		group.POST("/sections", h.AddSection)
		group.DELETE("/sections", h.ClearSections)
		group.GET("/list", h.List)
		group.GET("/download/:filename", h.Download)
	}
}
