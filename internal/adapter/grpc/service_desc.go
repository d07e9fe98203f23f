package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the budget service
const ServiceName = "budget.v1.BudgetService"

// Method names of the budget service
const (
	MethodCreateEnvelope    = "CreateEnvelope"
	MethodGetEnvelope       = "GetEnvelope"
	MethodListEnvelopes     = "ListEnvelopes"
	MethodReplaceEnvelope   = "ReplaceEnvelope"
	MethodDeleteEnvelope    = "DeleteEnvelope"
	MethodCreateTransaction = "CreateTransaction"
	MethodGetTransaction    = "GetTransaction"
	MethodListTransactions  = "ListTransactions"
	MethodUpdateTransaction = "UpdateTransaction"
	MethodDeleteTransaction = "DeleteTransaction"
	MethodGetSummary        = "GetSummary"
)

// BudgetServiceServer is the server API for the budget service.
// Requests and responses are google.protobuf.Struct documents.
type BudgetServiceServer interface {
	CreateEnvelope(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEnvelope(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEnvelopes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReplaceEnvelope(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEnvelope(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv BudgetServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a BudgetServiceServer method to a grpc.MethodHandler
func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BudgetServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BudgetServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FullMethod returns the wire name of a budget service method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// BudgetService_ServiceDesc is the grpc.ServiceDesc for the budget service
var BudgetService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BudgetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateEnvelope, Handler: unaryHandler(MethodCreateEnvelope, BudgetServiceServer.CreateEnvelope)},
		{MethodName: MethodGetEnvelope, Handler: unaryHandler(MethodGetEnvelope, BudgetServiceServer.GetEnvelope)},
		{MethodName: MethodListEnvelopes, Handler: unaryHandler(MethodListEnvelopes, BudgetServiceServer.ListEnvelopes)},
		{MethodName: MethodReplaceEnvelope, Handler: unaryHandler(MethodReplaceEnvelope, BudgetServiceServer.ReplaceEnvelope)},
		{MethodName: MethodDeleteEnvelope, Handler: unaryHandler(MethodDeleteEnvelope, BudgetServiceServer.DeleteEnvelope)},
		{MethodName: MethodCreateTransaction, Handler: unaryHandler(MethodCreateTransaction, BudgetServiceServer.CreateTransaction)},
		{MethodName: MethodGetTransaction, Handler: unaryHandler(MethodGetTransaction, BudgetServiceServer.GetTransaction)},
		{MethodName: MethodListTransactions, Handler: unaryHandler(MethodListTransactions, BudgetServiceServer.ListTransactions)},
		{MethodName: MethodUpdateTransaction, Handler: unaryHandler(MethodUpdateTransaction, BudgetServiceServer.UpdateTransaction)},
		{MethodName: MethodDeleteTransaction, Handler: unaryHandler(MethodDeleteTransaction, BudgetServiceServer.DeleteTransaction)},
		{MethodName: MethodGetSummary, Handler: unaryHandler(MethodGetSummary, BudgetServiceServer.GetSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "budget/v1/budget.proto",
}

// RegisterBudgetServiceServer registers srv on s
func RegisterBudgetServiceServer(s grpc.ServiceRegistrar, srv BudgetServiceServer) {
	s.RegisterService(&BudgetService_ServiceDesc, srv)
}

// Client calls the budget service over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new budget service client
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req and returns the response document
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
