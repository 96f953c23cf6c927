// Package adapters translates generic query calls into the native API
// of each supported database engine.
package adapters

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

type Adapter interface {
	// Engine returns the engine family, one of the service.Engine
	// constants.
	Engine() string
	// Connect establishes the underlying connection. Adapters are
	// usable for queries only after a successful Connect.
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	// Schema extracts table layouts from the target database.
	Schema(ctx context.Context) ([]*service.TableSchema, error)
	// Query runs a read-only query. The statement is validated and
	// row-clamped before execution.
	Query(ctx context.Context, query string) (*service.QueryResult, error)
	// TableSample returns up to limit rows from one table.
	TableSample(ctx context.Context, table string, limit int) (*service.QueryResult, error)
}

// Options tune behavior shared by all adapters.
type Options struct {
	// MaxRows clamps results of statements that carry no row limit
	// of their own.
	MaxRows int
	Log     zerolog.Logger
}

// New builds the adapter matching the connection's engine.
func New(conn *service.Connection, opts Options) (Adapter, error) {
	const op errs.Op = "adapters.New"

	if opts.MaxRows <= 0 {
		opts.MaxRows = 1000
	}

	switch conn.Engine() {
	case service.EngineMySQL:
		return newMySQLAdapter(conn, opts), nil
	case service.EnginePostgres:
		return newPostgresAdapter(conn, opts), nil
	case service.EngineOracle:
		return newOracleAdapter(conn, opts), nil
	case service.EngineMongoDB:
		return newMongoAdapter(conn, opts), nil
	}

	return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("subtype"), errs.Str("unsupported database engine: "+conn.Subtype))
}
