// Package db executes verification queries against the application database.
// Every call opens its own connection and releases it before returning; there
// is no pooling or reuse across calls. SQL and connection failures are
// captured into the Result value rather than raised; only the verify helpers
// turn an unsuccessful Result into a test failure.
//
// Callers interpolate values directly into query strings; there is no SQL
// injection protection here. The harness runs against disposable test
// databases only.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/cposada23/qaharness/internal/common"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrConfigNotSet is returned when a query is issued before SetConfig. There
// is no safe default database, so this is the one failure mode that raises.
var ErrConfigNotSet = errors.New("db: configuration not set")

// identRe restricts table and column identifiers used in built queries.
// WHERE clauses remain raw SQL under the caller's control.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Result is the outcome of one query or statement.
type Result struct {
	Success      bool
	Rows         []map[string]any
	RowsAffected int64
	Err          string
}

// Param is a named input bound to a stored procedure call, in declaration order.
type Param struct {
	Name  string
	Value any
}

// Client holds the active database configuration. It is an explicit
// configuration-context object: pass one per concurrent test stream rather
// than sharing ambient state.
type Client struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewClient returns a Client with the given initial configuration (may be nil).
func NewClient(cfg *Config) *Client {
	return &Client{cfg: cfg}
}

// SetConfig installs or overwrites the active configuration.
func (c *Client) SetConfig(cfg *Config) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

// activeConfig picks the per-call override when given, otherwise the stored config.
func (c *Client) activeConfig(override []*Config) (*Config, error) {
	if len(override) > 0 && override[0] != nil {
		return override[0], nil
	}
	c.mu.RLock()
	cfg := c.cfg
	c.mu.RUnlock()
	if cfg == nil {
		return nil, ErrConfigNotSet
	}
	return cfg, nil
}

// open establishes a fresh connection for one call. The caller must close it.
func open(cfg *Config) (*sql.DB, error) {
	driver, err := cfg.driverName()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}
	return sql.Open(driver, dsn)
}

// Query executes the literal SQL string and returns all rows. A failing
// query yields Success:false, not an error; the error return is reserved for
// missing configuration.
func (c *Client) Query(ctx context.Context, query string, override ...*Config) (Result, error) {
	cfg, err := c.activeConfig(override)
	if err != nil {
		return Result{}, err
	}
	logger := common.GetLogger().WithComponent("db").WithDB(cfg.Driver)
	logger.Debug("executing query", "query", query)

	conn, err := open(cfg)
	if err != nil {
		return failure(err), nil
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		logger.Warn("query failed", "error", err)
		return failure(err), nil
	}
	defer func() { _ = rows.Close() }()

	out, err := scanRows(rows)
	if err != nil {
		return failure(err), nil
	}
	return Result{Success: true, Rows: out}, nil
}

// Exec executes a statement (INSERT/UPDATE/DELETE/DDL) and reports the number
// of affected rows.
func (c *Client) Exec(ctx context.Context, stmt string, override ...*Config) (Result, error) {
	cfg, err := c.activeConfig(override)
	if err != nil {
		return Result{}, err
	}
	logger := common.GetLogger().WithComponent("db").WithDB(cfg.Driver)
	logger.Debug("executing statement", "statement", stmt)

	conn, err := open(cfg)
	if err != nil {
		return failure(err), nil
	}
	defer func() { _ = conn.Close() }()

	res, err := conn.ExecContext(ctx, stmt)
	if err != nil {
		logger.Warn("statement failed", "error", err)
		return failure(err), nil
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Drivers without affected-row support still count as success.
		affected = 0
	}
	return Result{Success: true, RowsAffected: affected}, nil
}

// ExecuteStoredProcedure calls a named routine with the given parameters
// bound positionally in declaration order. Only the postgresql driver
// supports stored procedures.
func (c *Client) ExecuteStoredProcedure(ctx context.Context, name string, params []Param, override ...*Config) (Result, error) {
	cfg, err := c.activeConfig(override)
	if err != nil {
		return Result{}, err
	}
	driver, derr := cfg.driverName()
	if derr != nil {
		return failure(derr), nil
	}
	if driver != "pgx" {
		return failure(fmt.Errorf("db: driver %s does not support stored procedures", cfg.Driver)), nil
	}
	if !identRe.MatchString(name) {
		return failure(fmt.Errorf("db: invalid procedure name: %s", name)), nil
	}

	placeholders := make([]string, len(params))
	args := make([]any, len(params))
	for i, p := range params {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = p.Value
	}
	call := fmt.Sprintf("CALL %s(%s)", name, strings.Join(placeholders, ", "))

	logger := common.GetLogger().WithComponent("db").WithDB(cfg.Driver)
	logger.Debug("executing stored procedure", "procedure", name, "params", len(params))

	conn, err := open(cfg)
	if err != nil {
		return failure(err), nil
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, call, args...); err != nil {
		logger.Warn("stored procedure failed", "procedure", name, "error", err)
		return failure(err), nil
	}
	return Result{Success: true}, nil
}

// GetRecordCount returns the number of rows in table matching the optional
// WHERE predicate. Unlike Query, a failing count is an error so verification
// helpers fail loudly instead of comparing against zero.
func (c *Client) GetRecordCount(ctx context.Context, table, where string, override ...*Config) (int64, error) {
	if !identRe.MatchString(table) {
		return 0, fmt.Errorf("db: invalid table name: %s", table)
	}
	q := fmt.Sprintf("SELECT COUNT(*) AS cnt FROM %s", table)
	if strings.TrimSpace(where) != "" {
		q += " WHERE " + where
	}
	res, err := c.Query(ctx, q, override...)
	if err != nil {
		return 0, err
	}
	if !res.Success {
		return 0, fmt.Errorf("db: count query failed: %s", res.Err)
	}
	if len(res.Rows) == 0 {
		return 0, fmt.Errorf("db: count query returned no rows")
	}
	return countValue(res.Rows[0])
}

// DeleteRecords removes every row of table matching the predicate and
// returns the raw result. Destructive with no confirmation step; use with
// caution.
func (c *Client) DeleteRecords(ctx context.Context, table, where string, override ...*Config) (Result, error) {
	if !identRe.MatchString(table) {
		return failure(fmt.Errorf("db: invalid table name: %s", table)), nil
	}
	if strings.TrimSpace(where) == "" {
		// Refuse a bare DELETE; emptying a table must be spelled out.
		return failure(fmt.Errorf("db: delete requires a where clause")), nil
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	return c.Exec(ctx, stmt, override...)
}

func failure(err error) Result {
	return Result{Success: false, Err: err.Error()}
}

// scanRows converts a result set into generic row maps. Byte slices are
// surfaced as strings for assertion friendliness.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// countValue extracts the counter from a COUNT(*) row regardless of the
// column name or numeric type the driver reports.
func countValue(row map[string]any) (int64, error) {
	v, ok := row["cnt"]
	if !ok {
		for _, col := range row {
			v = col
			break
		}
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		var parsed int64
		if _, err := fmt.Sscanf(n, "%d", &parsed); err == nil {
			return parsed, nil
		}
	}
	return 0, fmt.Errorf("db: unexpected count value %v", v)
}
