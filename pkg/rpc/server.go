package rpc

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
	"github.com/insightpilot/insightpilot/pkg/service/core"
)

// Server hosts the gRPC facade together with the standard gRPC health
// service.
type Server struct {
	services *core.Services
	log      zerolog.Logger

	server *grpc.Server
	health *health.Server
}

var _ InsightPilotServer = &Server{}

func NewServer(services *core.Services, log zerolog.Logger) *Server {
	return &Server{
		services: services,
		log:      log,
	}
}

func (s *Server) Serve(port int) error {
	s.server = grpc.NewServer(grpc.UnaryInterceptor(s.logInterceptor))
	s.server.RegisterService(&serviceDesc, s)

	s.health = health.NewServer()
	s.health.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s.server, s.health)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listening on grpc port %d: %w", port, err)
	}

	s.log.Info().Int("port", port).Msg("grpc server listening")

	return s.server.Serve(listener)
}

func (s *Server) Stop() {
	if s.health != nil {
		s.health.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	if s.server != nil {
		s.server.GracefulStop()
	}
}

func (s *Server) ExecuteQuery(ctx context.Context, in *service.QueryRequest) (*service.QueryResponse, error) {
	resp, err := s.services.QueryService.Ask(ctx, *in)
	if err != nil {
		return nil, statusFromError(err)
	}

	return resp, nil
}

func (s *Server) RunQuery(ctx context.Context, in *RunQueryRequest) (*service.QueryResponse, error) {
	resp, err := s.services.QueryService.Run(ctx, in.ConnectionName, in.Query)
	if err != nil {
		return nil, statusFromError(err)
	}

	return resp, nil
}

func (s *Server) GetSchema(ctx context.Context, in *GetSchemaRequest) (*GetSchemaResponse, error) {
	tables, err := s.services.SchemaService.GetSchema(ctx, in.ConnectionName)
	if err != nil {
		return nil, statusFromError(err)
	}

	return &GetSchemaResponse{Tables: tables}, nil
}

func (s *Server) ListConnections(ctx context.Context, in *ListConnectionsRequest) (*ListConnectionsResponse, error) {
	conns, err := s.services.ConnectionService.GetConnections(ctx, in.Type)
	if err != nil {
		return nil, statusFromError(err)
	}

	return &ListConnectionsResponse{Connections: conns}, nil
}

func (s *Server) logInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Str("method", info.FullMethod).Msg("grpc call failed")
	} else {
		s.log.Debug().Str("method", info.FullMethod).Msg("grpc call")
	}

	return resp, err
}

// statusFromError maps service error kinds to gRPC status codes.
func statusFromError(err error) error {
	code := codes.Internal

	switch {
	case errs.KindIs(errs.NotExist, err):
		code = codes.NotFound
	case errs.KindIs(errs.Exist, err):
		code = codes.AlreadyExists
	case errs.KindIs(errs.InvalidRequest, err), errs.KindIs(errs.Validation, err), errs.KindIs(errs.Invalid, err):
		code = codes.InvalidArgument
	case errs.KindIs(errs.Unauthenticated, err):
		code = codes.Unauthenticated
	case errs.KindIs(errs.Unauthorized, err):
		code = codes.PermissionDenied
	case errs.KindIs(errs.Unavailable, err):
		code = codes.Unavailable
	}

	return status.Error(code, err.Error())
}
