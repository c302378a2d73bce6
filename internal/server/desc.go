package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "coiquote.v1.QuoteService"

// Method names.
const (
	MethodExtractFields = "ExtractFields"
	MethodEvaluate      = "Evaluate"
	MethodQuote         = "Quote"
	MethodGetQuote      = "GetQuote"
	MethodListQuotes    = "ListQuotes"
	MethodExportQuotes  = "ExportQuotes"
)

// QuoteServiceServer is implemented by QuoteServer. Requests and responses
// are google.protobuf.Struct so any gRPC client can call the service without
// generated stubs.
type QuoteServiceServer interface {
	ExtractFields(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Quote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetQuote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListQuotes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportQuotes(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(QuoteServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(QuoteServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// QuoteServiceDesc describes QuoteService for grpc.Server.RegisterService.
var QuoteServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodExtractFields, QuoteServiceServer.ExtractFields),
		unaryHandler(MethodEvaluate, QuoteServiceServer.Evaluate),
		unaryHandler(MethodQuote, QuoteServiceServer.Quote),
		unaryHandler(MethodGetQuote, QuoteServiceServer.GetQuote),
		unaryHandler(MethodListQuotes, QuoteServiceServer.ListQuotes),
		unaryHandler(MethodExportQuotes, QuoteServiceServer.ExportQuotes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coiquote/v1/quote.proto",
}

func RegisterQuoteServiceServer(s grpc.ServiceRegistrar, srv QuoteServiceServer) {
	s.RegisterService(&QuoteServiceDesc, srv)
}

// FullMethod returns "/coiquote.v1.QuoteService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// QuoteClient calls QuoteService over any client connection.
type QuoteClient struct {
	cc grpc.ClientConnInterface
}

func NewQuoteClient(cc grpc.ClientConnInterface) *QuoteClient {
	return &QuoteClient{cc: cc}
}

// Call invokes method with in and returns the response struct.
func (c *QuoteClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
