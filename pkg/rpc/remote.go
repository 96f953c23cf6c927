package rpc

import (
	"context"

	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/llm"
	"github.com/insightpilot/insightpilot/pkg/service"
)

// Remote-backed service implementations used by client mode. They let
// the HTTP routes run unchanged against a server instance elsewhere.

var _ service.QueryService = &RemoteQueryService{}

type RemoteQueryService struct {
	client *Client
}

func NewRemoteQueryService(client *Client) *RemoteQueryService {
	return &RemoteQueryService{client: client}
}

func (s *RemoteQueryService) Ask(ctx context.Context, in service.QueryRequest) (*service.QueryResponse, error) {
	const op errs.Op = "RemoteQueryService.Ask"

	resp, err := s.client.ExecuteQuery(ctx, &in)
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	return resp, nil
}

func (s *RemoteQueryService) Run(ctx context.Context, connectionName, query string) (*service.QueryResponse, error) {
	const op errs.Op = "RemoteQueryService.Run"

	resp, err := s.client.RunQuery(ctx, &RunQueryRequest{
		ConnectionName: connectionName,
		Query:          query,
	})
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	return resp, nil
}

var _ service.SchemaService = &RemoteSchemaService{}

type RemoteSchemaService struct {
	client  *Client
	prompts *llm.PromptBuilder
}

func NewRemoteSchemaService(client *Client) *RemoteSchemaService {
	return &RemoteSchemaService{
		client:  client,
		prompts: llm.NewPromptBuilder(),
	}
}

func (s *RemoteSchemaService) GetSchema(ctx context.Context, connectionName string) ([]*service.TableSchema, error) {
	const op errs.Op = "RemoteSchemaService.GetSchema"

	resp, err := s.client.GetSchema(ctx, &GetSchemaRequest{ConnectionName: connectionName})
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	return resp.Tables, nil
}

func (s *RemoteSchemaService) Describe(schema []*service.TableSchema) string {
	return s.prompts.FormatSchema(schema)
}

var _ service.ConnectionService = &RemoteConnectionService{}

// RemoteConnectionService serves connection listings from the remote.
// Mutations stay on the server, a client instance cannot perform them.
type RemoteConnectionService struct {
	client *Client
}

func NewRemoteConnectionService(client *Client) *RemoteConnectionService {
	return &RemoteConnectionService{client: client}
}

func (s *RemoteConnectionService) GetConnections(ctx context.Context, connectionType string) ([]*service.Connection, error) {
	const op errs.Op = "RemoteConnectionService.GetConnections"

	resp, err := s.client.ListConnections(ctx, &ListConnectionsRequest{Type: connectionType})
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	return resp.Connections, nil
}

func (s *RemoteConnectionService) CreateConnection(_ context.Context, _ service.NewConnection) (*service.Connection, error) {
	return nil, errNotSupportedRemotely("RemoteConnectionService.CreateConnection")
}

func (s *RemoteConnectionService) UpdateConnection(_ context.Context, _ uuid.UUID, _ service.UpdateConnectionDto) (*service.Connection, error) {
	return nil, errNotSupportedRemotely("RemoteConnectionService.UpdateConnection")
}

func (s *RemoteConnectionService) DeleteConnection(_ context.Context, _ uuid.UUID) error {
	return errNotSupportedRemotely("RemoteConnectionService.DeleteConnection")
}

func (s *RemoteConnectionService) GetConnection(_ context.Context, _ uuid.UUID) (*service.Connection, error) {
	return nil, errNotSupportedRemotely("RemoteConnectionService.GetConnection")
}

func (s *RemoteConnectionService) SetDefaultConnection(_ context.Context, _ uuid.UUID) error {
	return errNotSupportedRemotely("RemoteConnectionService.SetDefaultConnection")
}

func (s *RemoteConnectionService) TestConnection(_ context.Context, _ uuid.UUID) (*service.ConnectionTestResult, error) {
	return nil, errNotSupportedRemotely("RemoteConnectionService.TestConnection")
}

func errNotSupportedRemotely(op errs.Op) error {
	return errs.E(op, errs.InvalidRequest, errs.Str("operation not available in client mode, run it against the server"))
}
