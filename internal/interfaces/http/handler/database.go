package handler

import (
	"fmt"

	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/infrastructure/connector"
	"github.com/datalens/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QueryRequest carries a SQL statement to execute
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// QueryResponse describes a query result loaded into the session
type QueryResponse struct {
	Metadata  session.Metadata `json:"metadata"`
	Columns   []string         `json:"columns"`
	Truncated bool             `json:"truncated"`
}

// databaseHandler holds the endpoints shared by all database engines. Query
// results become the active dataset.
type databaseHandler struct {
	BaseHandler
	engine     string
	conn       *connector.Connector
	session    *session.Session
	classifier *dataset.Classifier
}

func (h *databaseHandler) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "A 'query' field is required")
		return
	}

	result, err := h.conn.Query(c.Request.Context(), req.Query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	table, err := dataset.BuildTable(result.Columns, result.Records, h.classifier)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	source := fmt.Sprintf("%s query", h.engine)
	meta := h.session.Replace(table, source)
	logger.GetGinLogger(c).Info("Query result loaded as dataset",
		zap.String("engine", h.engine),
		zap.Int("rows", meta.RowCount),
		zap.Bool("truncated", result.Truncated),
	)

	h.Success(c, QueryResponse{
		Metadata:  meta,
		Columns:   table.ColumnNames(),
		Truncated: result.Truncated,
	})
}

func (h *databaseHandler) tables(c *gin.Context) {
	names, err := h.conn.Tables(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"tables": names})
}

// SQLServerHandler handles SQL Server connection endpoints
type SQLServerHandler struct {
	databaseHandler
}

// NewSQLServerHandler creates a new SQLServerHandler
func NewSQLServerHandler(conn *connector.Connector, sess *session.Session, classifier *dataset.Classifier) *SQLServerHandler {
	return &SQLServerHandler{databaseHandler{
		engine:     "sqlserver",
		conn:       conn,
		session:    sess,
		classifier: classifier,
	}}
}

// Connect establishes a SQL Server connection
func (h *SQLServerHandler) Connect(c *gin.Context) {
	var cfg connector.SQLServerConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.BadRequest(c, "Invalid connection parameters: "+err.Error())
		return
	}

	if err := h.conn.Connect(c.Request.Context(), cfg.DSN()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Connected to SQL Server"})
}

// RegisterRoutes registers SQL Server routes
func (h *SQLServerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sqlserver")
	{
		group.POST("/connect", h.Connect)
		group.POST("/query", h.query)
		group.GET("/tables", h.tables)
	}
}

// SnowflakeHandler handles Snowflake connection endpoints
type SnowflakeHandler struct {
	databaseHandler
}

// NewSnowflakeHandler creates a new SnowflakeHandler
func NewSnowflakeHandler(conn *connector.Connector, sess *session.Session, classifier *dataset.Classifier) *SnowflakeHandler {
	return &SnowflakeHandler{databaseHandler{
		engine:     "snowflake",
		conn:       conn,
		session:    sess,
		classifier: classifier,
	}}
}

// Connect establishes a Snowflake connection
func (h *SnowflakeHandler) Connect(c *gin.Context) {
	var cfg connector.SnowflakeConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.BadRequest(c, "Invalid connection parameters: "+err.Error())
		return
	}

	dsn, err := cfg.DSN()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.conn.Connect(c.Request.Context(), dsn); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Connected to Snowflake"})
}

// RegisterRoutes registers Snowflake routes
func (h *SnowflakeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/snowflake")
	{
		group.POST("/connect", h.Connect)
		group.POST("/query", h.query)
		group.GET("/tables", h.tables)
	}
}
