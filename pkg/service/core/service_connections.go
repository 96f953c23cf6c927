package core

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/adapters"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/llm"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.ConnectionService = &connectionService{}

type connectionService struct {
	connectionStorage service.ConnectionStorage
	llmTimeout        time.Duration
	log               zerolog.Logger
}

func NewConnectionService(storage service.ConnectionStorage, llmTimeout time.Duration, log zerolog.Logger) *connectionService {
	return &connectionService{
		connectionStorage: storage,
		llmTimeout:        llmTimeout,
		log:               log,
	}
}

func validateNewConnection(in service.NewConnection) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Type, validation.Required, validation.In(service.ConnectionTypeDatabase, service.ConnectionTypeLLM)),
		validation.Field(&in.Port, validation.Min(0), validation.Max(65535)),
	)
}

func (s *connectionService) CreateConnection(ctx context.Context, in service.NewConnection) (*service.Connection, error) {
	const op errs.Op = "connectionService.CreateConnection"

	if err := validateNewConnection(in); err != nil {
		return nil, errs.E(errs.Validation, op, err)
	}

	if in.Type == service.ConnectionTypeDatabase && in.Subtype == "" {
		probe := service.Connection{Port: in.Port}
		if probe.Engine() == "" {
			return nil, errs.E(errs.Validation, op, errs.Parameter("subtype"),
				errs.Str("engine not recognized, set subtype or use a well known port"))
		}
	}

	conn, err := s.connectionStorage.CreateConnection(ctx, in)
	if err != nil {
		return nil, errs.E(op, err)
	}

	s.log.Info().Str("name", conn.Name).Str("type", conn.Type).Msg("connection created")

	return conn, nil
}

func (s *connectionService) UpdateConnection(ctx context.Context, id uuid.UUID, in service.UpdateConnectionDto) (*service.Connection, error) {
	const op errs.Op = "connectionService.UpdateConnection"

	conn, err := s.connectionStorage.UpdateConnection(ctx, id, in)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return conn, nil
}

func (s *connectionService) DeleteConnection(ctx context.Context, id uuid.UUID) error {
	const op errs.Op = "connectionService.DeleteConnection"

	if err := s.connectionStorage.DeleteConnection(ctx, id); err != nil {
		return errs.E(op, err)
	}

	return nil
}

func (s *connectionService) GetConnection(ctx context.Context, id uuid.UUID) (*service.Connection, error) {
	const op errs.Op = "connectionService.GetConnection"

	conn, err := s.connectionStorage.GetConnection(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return conn, nil
}

func (s *connectionService) GetConnections(ctx context.Context, connectionType string) ([]*service.Connection, error) {
	const op errs.Op = "connectionService.GetConnections"

	conns, err := s.connectionStorage.GetConnections(ctx, connectionType)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return conns, nil
}

func (s *connectionService) SetDefaultConnection(ctx context.Context, id uuid.UUID) error {
	const op errs.Op = "connectionService.SetDefaultConnection"

	if err := s.connectionStorage.SetDefaultConnection(ctx, id); err != nil {
		return errs.E(op, err)
	}

	return nil
}

// TestConnection probes the endpoint behind a saved connection.
// Database connections get a connect and ping, llm connections a
// provider health check.
func (s *connectionService) TestConnection(ctx context.Context, id uuid.UUID) (*service.ConnectionTestResult, error) {
	const op errs.Op = "connectionService.TestConnection"

	conn, err := s.connectionStorage.GetConnection(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	start := time.Now()

	switch conn.Type {
	case service.ConnectionTypeDatabase:
		err = s.testDatabase(ctx, conn)
	case service.ConnectionTypeLLM:
		err = s.testLLM(ctx, conn)
	default:
		return nil, errs.E(op, errs.Invalid, errs.Parameter("type"), errs.Str("unknown connection type: "+conn.Type))
	}

	result := &service.ConnectionTestResult{
		Healthy:   err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Message = err.Error()
	}

	return result, nil
}

func (s *connectionService) testDatabase(ctx context.Context, conn *service.Connection) error {
	adapter, err := adapters.New(conn, adapters.Options{Log: s.log})
	if err != nil {
		return err
	}

	if err := adapter.Connect(ctx); err != nil {
		return err
	}
	defer adapter.Close()

	return adapter.Ping(ctx)
}

func (s *connectionService) testLLM(ctx context.Context, conn *service.Connection) error {
	provider, err := llm.NewProviderForConnection(conn, s.llmTimeout)
	if err != nil {
		return err
	}

	if err := provider.HealthCheck(ctx); err != nil {
		return fmt.Errorf("provider %s unreachable: %w", conn.Subtype, err)
	}

	return nil
}
