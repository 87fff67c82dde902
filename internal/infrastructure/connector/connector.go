// Package connector manages external database connections for pulling query
// results into the analysis session. Each engine keeps at most one live
// connection; connecting again replaces the previous one.
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/datalens/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	queryTimeout   = 60 * time.Second
	defaultMaxRows = 10000
)

// ErrNotConnected is returned when a query or listing is attempted before a
// successful Connect.
var ErrNotConnected = shared.NewDomainError("NOT_CONNECTED", "No active database connection. Connect first.")

// ResultSet holds a query result with values as nullable strings.
type ResultSet struct {
	Columns   []string
	Records   [][]string
	Truncated bool
}

// Connector wraps a single database/sql connection for one engine.
type Connector struct {
	driverName  string
	engine      string
	tablesQuery string
	maxRows     int
	logger      *zap.Logger

	mu sync.Mutex
	db *sql.DB
}

// New creates a connector for the given sql driver. tablesQuery must return
// one string column of table names. maxRows caps Query results; zero uses a
// default cap.
func New(driverName, engine, tablesQuery string, maxRows int, logger *zap.Logger) *Connector {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{
		driverName:  driverName,
		engine:      engine,
		tablesQuery: tablesQuery,
		maxRows:     maxRows,
		logger:      logger,
	}
}

// Connect opens and verifies a connection, replacing any previous one.
func (c *Connector) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open(c.driverName, dsn)
	if err != nil {
		return shared.NewDomainError("CONNECTION_FAILED", fmt.Sprintf("%s: %s", c.engine, err.Error()))
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return shared.NewDomainError("CONNECTION_FAILED", fmt.Sprintf("%s: %s", c.engine, err.Error()))
	}

	c.mu.Lock()
	old := c.db
	c.db = db
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	c.logger.Info("Database connected", zap.String("engine", c.engine))
	return nil
}

// Connected reports whether a connection is currently held.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db != nil
}

func (c *Connector) conn() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil, ErrNotConnected
	}
	return c.db, nil
}

// Query runs a SQL statement and scans the result into strings. Results are
// capped at the configured row limit.
func (c *Connector) Query(ctx context.Context, query string) (*ResultSet, error) {
	db, err := c.conn()
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, shared.NewDomainError("QUERY_FAILED", fmt.Sprintf("%s: %s", c.engine, err.Error()))
	}
	defer rows.Close()

	result, err := scanRows(rows, c.maxRows)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Query executed",
		zap.String("engine", c.engine),
		zap.Int("rows", len(result.Records)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// Tables lists available table names on the active connection.
func (c *Connector) Tables(ctx context.Context) ([]string, error) {
	db, err := c.conn()
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, c.tablesQuery)
	if err != nil {
		return nil, shared.NewDomainError("QUERY_FAILED", fmt.Sprintf("%s: %s", c.engine, err.Error()))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close releases the active connection, if any.
func (c *Connector) Close() error {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}
