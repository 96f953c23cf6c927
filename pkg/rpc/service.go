package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/insightpilot/insightpilot/pkg/service"
)

const serviceName = "insightpilot.v1.InsightPilot"

// InsightPilotServer is the contract the gRPC facade serves. The
// service descriptor below is written by hand since the wire format is
// JSON and no protobuf stubs exist.
type InsightPilotServer interface {
	ExecuteQuery(ctx context.Context, in *service.QueryRequest) (*service.QueryResponse, error)
	RunQuery(ctx context.Context, in *RunQueryRequest) (*service.QueryResponse, error)
	GetSchema(ctx context.Context, in *GetSchemaRequest) (*GetSchemaResponse, error)
	ListConnections(ctx context.Context, in *ListConnectionsRequest) (*ListConnectionsResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InsightPilotServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ExecuteQuery",
			Handler:    executeQueryHandler,
		},
		{
			MethodName: "RunQuery",
			Handler:    runQueryHandler,
		},
		{
			MethodName: "GetSchema",
			Handler:    getSchemaHandler,
		},
		{
			MethodName: "ListConnections",
			Handler:    listConnectionsHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func executeQueryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(service.QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InsightPilotServer).ExecuteQuery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/ExecuteQuery",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InsightPilotServer).ExecuteQuery(ctx, req.(*service.QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func runQueryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RunQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InsightPilotServer).RunQuery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/RunQuery",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InsightPilotServer).RunQuery(ctx, req.(*RunQueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getSchemaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetSchemaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InsightPilotServer).GetSchema(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/GetSchema",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InsightPilotServer).GetSchema(ctx, req.(*GetSchemaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listConnectionsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListConnectionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InsightPilotServer).ListConnections(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/ListConnections",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InsightPilotServer).ListConnections(ctx, req.(*ListConnectionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
