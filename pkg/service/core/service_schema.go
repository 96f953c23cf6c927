package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/adapters"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/llm"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.SchemaService = &schemaService{}

type schemaService struct {
	connectionStorage  service.ConnectionStorage
	schemaCacheStorage service.SchemaCacheStorage
	prompts            *llm.PromptBuilder

	cacheTTL time.Duration
	maxRows  int
	log      zerolog.Logger
}

func NewSchemaService(
	connectionStorage service.ConnectionStorage,
	schemaCacheStorage service.SchemaCacheStorage,
	cacheTTL time.Duration,
	maxRows int,
	log zerolog.Logger,
) *schemaService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &schemaService{
		connectionStorage:  connectionStorage,
		schemaCacheStorage: schemaCacheStorage,
		prompts:            llm.NewPromptBuilder(),
		cacheTTL:           cacheTTL,
		maxRows:            maxRows,
		log:                log,
	}
}

// GetSchema returns the table layout of a saved connection, extracting
// it from the target database when the cached copy is stale or absent.
func (s *schemaService) GetSchema(ctx context.Context, connectionName string) ([]*service.TableSchema, error) {
	const op errs.Op = "schemaService.GetSchema"

	conn, err := s.connectionStorage.GetConnectionByName(ctx, connectionName)
	if err != nil {
		return nil, errs.E(op, err)
	}

	if conn.Type != service.ConnectionTypeDatabase {
		return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("connectionName"),
			errs.Str("connection is not a database connection"))
	}

	schema, cachedAt, err := s.schemaCacheStorage.GetCachedSchema(ctx, conn.ID)
	if err == nil && time.Since(cachedAt) < s.cacheTTL {
		return schema, nil
	}
	if err != nil && !errs.KindIs(errs.NotExist, err) {
		return nil, errs.E(op, err)
	}

	adapter, err := adapters.New(conn, adapters.Options{MaxRows: s.maxRows, Log: s.log})
	if err != nil {
		return nil, errs.E(op, err)
	}

	if err := adapter.Connect(ctx); err != nil {
		return nil, errs.E(op, err)
	}
	defer adapter.Close()

	schema, err = adapter.Schema(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	if err := s.schemaCacheStorage.PutCachedSchema(ctx, conn.ID, schema); err != nil {
		// Serving a fresh schema beats failing on a cache write.
		s.log.Warn().Err(err).Str("connection", connectionName).Msg("caching schema failed")
	}

	return schema, nil
}

func (s *schemaService) Describe(schema []*service.TableSchema) string {
	return s.prompts.FormatSchema(schema)
}
