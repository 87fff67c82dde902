package handler

import (
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/infrastructure/loader"
	"github.com/datalens/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DatasetHandler handles dataset upload and session endpoints
type DatasetHandler struct {
	BaseHandler
	session     *session.Session
	loader      *loader.Loader
	maxFileSize int64
	previewRows int
}

// NewDatasetHandler creates a new DatasetHandler
func NewDatasetHandler(sess *session.Session, ld *loader.Loader, maxFileSize int64) *DatasetHandler {
	return &DatasetHandler{
		session:     sess,
		loader:      ld,
		maxFileSize: maxFileSize,
		previewRows: 100,
	}
}

// UploadResponse describes the loaded dataset
type UploadResponse struct {
	Metadata session.Metadata `json:"metadata"`
	Columns  []string         `json:"columns"`
}

// CurrentDataResponse returns a preview of the active dataset
type CurrentDataResponse struct {
	Metadata session.Metadata `json:"metadata"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	Preview  bool             `json:"preview"`
}

// Upload loads an uploaded file as the active dataset
func (h *DatasetHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "No file provided in 'file' form field")
		return
	}
	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		h.BadRequest(c, "File exceeds maximum allowed size")
		return
	}

	src, err := file.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	table, err := h.loader.Load(file.Filename, src)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	meta := h.session.Replace(table, file.Filename)
	logger.GetGinLogger(c).Info("Dataset loaded",
		zap.String("source", file.Filename),
		zap.Int("rows", meta.RowCount),
		zap.Int("columns", meta.ColumnCount),
	)

	h.Created(c, UploadResponse{
		Metadata: meta,
		Columns:  table.ColumnNames(),
	})
}

// Current returns metadata and a preview of the active dataset
func (h *DatasetHandler) Current(c *gin.Context) {
	snap, err := h.session.Current()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	names := snap.Table.ColumnNames()
	limit := snap.Table.RowCount()
	preview := false
	if limit > h.previewRows {
		limit = h.previewRows
		preview = true
	}

	rows := make([]map[string]any, 0, limit)
	for r := 0; r < limit; r++ {
		row := make(map[string]any, len(names))
		for ci, cell := range snap.Table.Row(r) {
			if cell.Null {
				row[names[ci]] = nil
			} else {
				row[names[ci]] = cell.Value
			}
		}
		rows = append(rows, row)
	}

	h.Success(c, CurrentDataResponse{
		Metadata: snap.Meta,
		Columns:  names,
		Rows:     rows,
		Preview:  preview,
	})
}

// Clear drops the active dataset
func (h *DatasetHandler) Clear(c *gin.Context) {
	h.session.Clear()
	h.Success(c, gin.H{"message": "Dataset cleared"})
}

// RegisterRoutes registers dataset routes
func (h *DatasetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	data := rg.Group("/data")
	{
		data.POST("/upload", h.Upload)
		data.GET("/current", h.Current)
		data.DELETE("/current", h.Clear)
	}
}
