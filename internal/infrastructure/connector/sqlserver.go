package connector

import (
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"
)

const sqlServerTablesQuery = `SELECT TABLE_SCHEMA + '.' + TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME`

// SQLServerConfig holds connection parameters for SQL Server.
type SQLServerConfig struct {
	Server   string `json:"server" binding:"required"`
	Port     int    `json:"port"`
	Database string `json:"database" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DSN builds a sqlserver connection URL.
func (c SQLServerConfig) DSN() string {
	port := c.Port
	if port == 0 {
		port = 1433
	}
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Server, port),
		RawQuery: url.Values{"database": {c.Database}}.Encode(),
	}
	return u.String()
}

// NewSQLServer creates a connector for Microsoft SQL Server.
func NewSQLServer(maxRows int, logger *zap.Logger) *Connector {
	return New("sqlserver", "sqlserver", sqlServerTablesQuery, maxRows, logger)
}
