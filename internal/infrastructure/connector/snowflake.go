package connector

import (
	"github.com/datalens/backend/internal/domain/shared"
	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"
)

const snowflakeTablesQuery = `SELECT table_schema || '.' || table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
ORDER BY table_schema, table_name`

// SnowflakeConfig holds connection parameters for Snowflake.
type SnowflakeConfig struct {
	Account   string `json:"account" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Database  string `json:"database" binding:"required"`
	Schema    string `json:"schema"`
	Warehouse string `json:"warehouse"`
	Role      string `json:"role"`
}

// DSN builds a gosnowflake connection string.
func (c SnowflakeConfig) DSN() (string, error) {
	cfg := &gosnowflake.Config{
		Account:   c.Account,
		User:      c.Username,
		Password:  c.Password,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	}
	dsn, err := gosnowflake.DSN(cfg)
	if err != nil {
		return "", shared.NewDomainError("CONNECTION_FAILED", "snowflake: "+err.Error())
	}
	return dsn, nil
}

// NewSnowflake creates a connector for Snowflake.
func NewSnowflake(maxRows int, logger *zap.Logger) *Connector {
	return New("snowflake", "snowflake", snowflakeTablesQuery, maxRows, logger)
}
