// Package database manages the metastore, a Postgres database that
// holds connections, query history and the schema cache.
package database

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/qustavo/sqlhooks/v2"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const hookedDriverName = "postgres-hooked"

type Repo struct {
	db  *sql.DB
	log zerolog.Logger
}

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
)

// poolLimits resolves the connection pool sizes, falling back to the
// defaults when the config leaves them unset.
func poolLimits(maxOpenConns, maxIdleConns int) (int, int) {
	if maxOpenConns <= 0 {
		maxOpenConns = defaultMaxOpenConns
	}
	if maxIdleConns <= 0 {
		maxIdleConns = defaultMaxIdleConns
	}

	return maxOpenConns, maxIdleConns
}

// New opens the metastore, applies pending migrations and returns the
// repository handle. Queries run through a logging hook.
func New(ctx context.Context, connectionString string, maxOpenConns, maxIdleConns int, log zerolog.Logger) (*Repo, error) {
	registerHookedDriver(log)

	db, err := sql.Open(hookedDriverName, connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "opening metastore")
	}

	maxOpen, maxIdle := poolLimits(maxOpenConns, maxIdleConns)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging metastore")
	}

	goose.SetLogger(gooseLogger{log: log})
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "setting migration dialect")
	}

	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating metastore")
	}

	return &Repo{
		db:  db,
		log: log,
	}, nil
}

// GetDB exposes the underlying handle to the storage layer.
func (r *Repo) GetDB() *sql.DB {
	return r.db
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Close() error {
	return r.db.Close()
}

var driverRegistered bool

func registerHookedDriver(log zerolog.Logger) {
	if driverRegistered {
		return
	}
	driverRegistered = true

	sql.Register(hookedDriverName, sqlhooks.Wrap(&pq.Driver{}, newQueryLogger(log)))
}

type gooseLogger struct {
	log zerolog.Logger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal().Msgf(format, v...)
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info().Msgf(format, v...)
}
