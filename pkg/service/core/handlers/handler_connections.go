package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type ConnectionsHandler struct {
	connectionService service.ConnectionService
}

func NewConnectionsHandler(service service.ConnectionService) *ConnectionsHandler {
	return &ConnectionsHandler{connectionService: service}
}

func (h *ConnectionsHandler) CreateConnection(ctx context.Context, _ *http.Request, in service.NewConnection) (*service.Connection, error) {
	return h.connectionService.CreateConnection(ctx, in)
}

func (h *ConnectionsHandler) UpdateConnection(ctx context.Context, r *http.Request, in service.UpdateConnectionDto) (*service.Connection, error) {
	id, err := connectionID(r)
	if err != nil {
		return nil, err
	}

	return h.connectionService.UpdateConnection(ctx, id, in)
}

func (h *ConnectionsHandler) DeleteConnection(ctx context.Context, r *http.Request, _ any) (*transport.Empty, error) {
	id, err := connectionID(r)
	if err != nil {
		return nil, err
	}

	if err := h.connectionService.DeleteConnection(ctx, id); err != nil {
		return nil, err
	}

	return &transport.Empty{}, nil
}

func (h *ConnectionsHandler) GetConnection(ctx context.Context, r *http.Request, _ any) (*service.Connection, error) {
	id, err := connectionID(r)
	if err != nil {
		return nil, err
	}

	return h.connectionService.GetConnection(ctx, id)
}

func (h *ConnectionsHandler) GetConnections(ctx context.Context, r *http.Request, _ any) ([]*service.Connection, error) {
	return h.connectionService.GetConnections(ctx, r.URL.Query().Get("type"))
}

func (h *ConnectionsHandler) SetDefaultConnection(ctx context.Context, r *http.Request, _ any) (*transport.Empty, error) {
	id, err := connectionID(r)
	if err != nil {
		return nil, err
	}

	if err := h.connectionService.SetDefaultConnection(ctx, id); err != nil {
		return nil, err
	}

	return &transport.Empty{}, nil
}

func (h *ConnectionsHandler) TestConnection(ctx context.Context, r *http.Request, _ any) (*service.ConnectionTestResult, error) {
	id, err := connectionID(r)
	if err != nil {
		return nil, err
	}

	return h.connectionService.TestConnection(ctx, id)
}

func connectionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.E(errs.InvalidRequest, errs.Parameter("id"), err)
	}

	return id, nil
}
