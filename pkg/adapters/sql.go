package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

// sqlAdapter implements Adapter for every engine that speaks
// database/sql. The engine specific parts are the driver name, the DSN
// and the schema extraction query set.
type sqlAdapter struct {
	conn *service.Connection
	opts Options

	engine     string
	driverName string
	dsn        func(conn *service.Connection) string
	schemaFn   func(ctx context.Context, db *sql.DB, conn *service.Connection) ([]*service.TableSchema, error)
	quoteIdent func(name string) string

	db *sql.DB
}

func (a *sqlAdapter) Engine() string {
	return a.engine
}

func (a *sqlAdapter) Connect(ctx context.Context) error {
	const op errs.Op = "adapters.sql.Connect"

	db, err := sql.Open(a.driverName, a.dsn(a.conn))
	if err != nil {
		return errs.E(op, errs.Database, err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errs.E(op, errs.Unavailable, err)
	}

	a.db = db
	a.opts.Log.Info().Str("engine", a.engine).Str("database", a.conn.Database).Msg("connected to target database")

	return nil
}

func (a *sqlAdapter) Close() error {
	if a.db == nil {
		return nil
	}

	err := a.db.Close()
	a.db = nil

	return err
}

func (a *sqlAdapter) Ping(ctx context.Context) error {
	const op errs.Op = "adapters.sql.Ping"

	if a.db == nil {
		return errs.E(op, errs.Invalid, errs.Str("adapter is not connected"))
	}

	if err := a.db.PingContext(ctx); err != nil {
		return errs.E(op, errs.Unavailable, err)
	}

	return nil
}

func (a *sqlAdapter) Schema(ctx context.Context) ([]*service.TableSchema, error) {
	const op errs.Op = "adapters.sql.Schema"

	if a.db == nil {
		return nil, errs.E(op, errs.Invalid, errs.Str("adapter is not connected"))
	}

	schema, err := a.schemaFn(ctx, a.db, a.conn)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return schema, nil
}

func (a *sqlAdapter) Query(ctx context.Context, query string) (*service.QueryResult, error) {
	const op errs.Op = "adapters.sql.Query"

	if a.db == nil {
		return nil, errs.E(op, errs.Invalid, errs.Str("adapter is not connected"))
	}

	if err := ValidateReadOnly(query); err != nil {
		return nil, errs.E(op, err)
	}

	clamped := ClampRowLimit(query, a.engine, a.opts.MaxRows)

	start := time.Now()

	rows, err := a.db.QueryContext(ctx, clamped)
	if err != nil {
		return nil, errs.E(op, errs.Database, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, errs.E(op, errs.Database, err)
	}

	result.Duration = time.Since(start)
	result.Truncated = clamped != query && result.RowCount == a.opts.MaxRows

	return result, nil
}

func (a *sqlAdapter) TableSample(ctx context.Context, table string, limit int) (*service.QueryResult, error) {
	const op errs.Op = "adapters.sql.TableSample"

	if limit <= 0 {
		limit = 100
	}

	query := ClampRowLimit(fmt.Sprintf("SELECT * FROM %s", a.quoteIdent(table)), a.engine, limit)

	result, err := a.Query(ctx, query)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return result, nil
}

// scanRows converts driver rows into the generic result shape. Byte
// slices become strings so results serialize as text instead of
// base64.
func scanRows(rows *sql.Rows) (*service.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := &service.QueryResult{
		Columns: columns,
		Rows:    [][]interface{}{},
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		out.Rows = append(out.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	out.RowCount = len(out.Rows)

	return out, nil
}
