package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/pkg/database"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.SchemaCacheStorage = &schemaCacheStorage{}

type schemaCacheStorage struct {
	db *database.Repo
}

func NewSchemaCacheStorage(db *database.Repo) *schemaCacheStorage {
	return &schemaCacheStorage{db: db}
}

func (s *schemaCacheStorage) GetCachedSchema(ctx context.Context, connectionID uuid.UUID) ([]*service.TableSchema, time.Time, error) {
	const op errs.Op = "schemaCacheStorage.GetCachedSchema"

	var (
		raw      []byte
		cachedAt time.Time
	)

	err := s.db.GetDB().QueryRowContext(ctx,
		`SELECT "schema", "cached_at" FROM schema_cache WHERE "connection_id" = $1`, connectionID).
		Scan(&raw, &cachedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, errs.E(errs.NotExist, op, err)
		}

		return nil, time.Time{}, errs.E(errs.Database, op, err)
	}

	var schema []*service.TableSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, time.Time{}, errs.E(errs.Internal, op, err)
	}

	return schema, cachedAt, nil
}

func (s *schemaCacheStorage) PutCachedSchema(ctx context.Context, connectionID uuid.UUID, schema []*service.TableSchema) error {
	const op errs.Op = "schemaCacheStorage.PutCachedSchema"

	raw, err := json.Marshal(schema)
	if err != nil {
		return errs.E(errs.Internal, op, err)
	}

	_, err = s.db.GetDB().ExecContext(ctx, `
		INSERT INTO schema_cache ("connection_id", "schema", "cached_at")
		VALUES ($1, $2, NOW())
		ON CONFLICT (connection_id) DO UPDATE SET "schema" = EXCLUDED."schema", "cached_at" = NOW()`,
		connectionID, raw)
	if err != nil {
		return errs.E(errs.Database, op, err)
	}

	return nil
}

func (s *schemaCacheStorage) InvalidateSchema(ctx context.Context, connectionID uuid.UUID) error {
	const op errs.Op = "schemaCacheStorage.InvalidateSchema"

	_, err := s.db.GetDB().ExecContext(ctx,
		`DELETE FROM schema_cache WHERE "connection_id" = $1`, connectionID)
	if err != nil {
		return errs.E(errs.Database, op, err)
	}

	return nil
}
