// Package mysql implements the relational connector on top of
// database/sql with the MySQL driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/schema"
)

const connectTimeout = 10 * time.Second

// MySQL server error numbers used for connection failure classification.
const (
	errAccessDenied    = 1045
	errUnknownDatabase = 1049
)

// Connector executes queries against a MySQL database.
type Connector struct {
	profile *models.ConnectionProfile
	logger  *zap.Logger
	db      *sql.DB
}

// New creates a MySQL connector for the profile.
func New(profile *models.ConnectionProfile, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{profile: profile, logger: logger.Named("mysql")}
}

// Connect opens a pooled handle and verifies it with a probe query.
// Connecting while already connected is a no-op.
func (c *Connector) Connect(ctx context.Context) error {
	if c.db != nil {
		return nil
	}
	p := c.profile
	if p.Host == "" || p.Port == 0 || p.Database == "" || p.Username == "" {
		return apperrors.New(apperrors.KindMissingParameters, "host, port, database and username are required")
	}

	cfg := gomysql.NewConfig()
	cfg.User = p.Username
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, fmt.Sprintf("%d", p.Port))
	cfg.DBName = p.Database
	cfg.Timeout = connectTimeout
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return apperrors.Wrap(apperrors.KindConnectionFailed, "cannot open connection", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if _, err := db.ExecContext(probeCtx, "SELECT 1"); err != nil {
		db.Close()
		return classifyConnectError(err)
	}

	c.db = db
	c.logger.Debug("connected to mysql", zap.String("host", p.Host), zap.String("database", p.Database))
	return nil
}

// classifyConnectError maps driver failures onto the connection error
// taxonomy: bad credentials, unknown database, unreachable server, or a
// generic connection failure.
func classifyConnectError(err error) error {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errAccessDenied:
			return apperrors.Wrap(apperrors.KindAuthenticationFailed, "access denied for database user", err)
		case errUnknownDatabase:
			return apperrors.Wrap(apperrors.KindDatabaseNotFound, "database does not exist", err)
		}
		return apperrors.Wrap(apperrors.KindConnectionFailed, "cannot connect to database", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindServerUnreachable, "cannot reach database server", err)
	}
	return apperrors.Wrap(apperrors.KindConnectionFailed, "cannot connect to database", err)
}

// ExecuteQuery runs a SELECT statement and returns its rows as maps.
func (c *Connector) ExecuteQuery(ctx context.Context, query string) (*connector.QueryResult, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "query execution failed", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return &connector.QueryResult{
		Rows:    result,
		Message: "query executed successfully",
	}, nil
}

func scanRows(rows *sql.Rows) ([]connector.Row, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot read result columns", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot read result column types", err)
	}

	out := make([]connector.Row, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot scan result row", err)
		}

		row := make(connector.Row, len(columnNames))
		for i, col := range columnNames {
			val := values[i]
			if b, ok := val.([]byte); ok && isTextualType(columnTypes[i].DatabaseTypeName()) {
				val = string(b)
			}
			row[col] = val
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "error iterating result rows", err)
	}
	return out, nil
}

func isTextualType(dbType string) bool {
	switch dbType {
	case "CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT",
		"ENUM", "SET", "JSON", "DECIMAL":
		return true
	}
	return false
}

// DescribeSchema introspects INFORMATION_SCHEMA for the configured
// database and returns every table with canonical column types.
func (c *Connector) DescribeSchema(ctx context.Context) (schema.Schema, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	const introspect = `
		SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME, ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, introspect, c.profile.Database)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "schema introspection failed", err)
	}
	defer rows.Close()

	out := make(schema.Schema)
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot scan schema row", err)
		}
		out[table] = append(out[table], schema.Column{
			Name: schema.NormalizeColumnName(column),
			Type: schema.NormalizeType(dataType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "error iterating schema rows", err)
	}
	if len(out) == 0 {
		return nil, apperrors.New(apperrors.KindEmptySource, "database contains no tables")
	}
	return out, nil
}

// DumpAllData reads up to limit rows from every table in the database.
func (c *Connector) DumpAllData(ctx context.Context, limit int) (map[string][]connector.Row, error) {
	s, err := c.DescribeSchema(ctx)
	if err != nil {
		return nil, err
	}

	dump := make(map[string][]connector.Row, len(s))
	for _, table := range s.Tables() {
		query := fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", table, limit)
		res, err := c.ExecuteQuery(ctx, query)
		if err != nil {
			c.logger.Warn("skipping table during dump", zap.String("table", table), zap.Error(err))
			continue
		}
		dump[table] = res.Rows
	}
	return dump, nil
}

// Disconnect closes the pooled handle. Safe to call when not connected.
func (c *Connector) Disconnect() {
	if c.db == nil {
		return
	}
	if err := c.db.Close(); err != nil {
		c.logger.Warn("error closing connection", zap.Error(err))
	}
	c.db = nil
}

var _ connector.SourceConnector = (*Connector)(nil)
