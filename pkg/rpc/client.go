package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/insightpilot/insightpilot/pkg/service"
)

// Client is the typed client used by client mode to reach a remote
// server instance.
type Client struct {
	conn *grpc.ClientConn
}

func NewClient(endpoint string) (*Client, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", endpoint, err)
	}

	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ExecuteQuery(ctx context.Context, in *service.QueryRequest) (*service.QueryResponse, error) {
	out := new(service.QueryResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/ExecuteQuery", in, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) RunQuery(ctx context.Context, in *RunQueryRequest) (*service.QueryResponse, error) {
	out := new(service.QueryResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/RunQuery", in, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) GetSchema(ctx context.Context, in *GetSchemaRequest) (*GetSchemaResponse, error) {
	out := new(GetSchemaResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/GetSchema", in, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) ListConnections(ctx context.Context, in *ListConnectionsRequest) (*ListConnectionsResponse, error) {
	out := new(ListConnectionsResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/ListConnections", in, out); err != nil {
		return nil, err
	}

	return out, nil
}

// HealthCheck probes the standard gRPC health service on the remote.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := grpc_health_v1.NewHealthClient(c.conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: serviceName,
	})
	if err != nil {
		return err
	}

	if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("remote reports status %s", resp.Status)
	}

	return nil
}
