package rpc

import "github.com/insightpilot/insightpilot/pkg/service"

type RunQueryRequest struct {
	ConnectionName string `json:"connectionName"`
	Query          string `json:"query"`
}

type GetSchemaRequest struct {
	ConnectionName string `json:"connectionName"`
}

type GetSchemaResponse struct {
	Tables []*service.TableSchema `json:"tables"`
}

type ListConnectionsRequest struct {
	Type string `json:"type,omitempty"`
}

type ListConnectionsResponse struct {
	Connections []*service.Connection `json:"connections"`
}
