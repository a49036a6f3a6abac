// Package server exposes the compiler as the gRPC service valang.Compiler.
// Messages are protobuf well-known types, so no generated code is needed.
package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName      = "valang.Compiler"
	compileMethod    = "/" + ServiceName + "/Compile"
	emitIRMethod     = "/" + ServiceName + "/EmitIR"
	serviceProtoFile = "valang/compiler.proto"
)

// CompilerServer is the server API of valang.Compiler.
type CompilerServer interface {
	// Compile takes {source, file?, options?} and returns the unit id,
	// diagnostics and the IR listing.
	Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// EmitIR compiles source and returns the binary IR module.
	EmitIR(ctx context.Context, source *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompilerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compile", Handler: compileHandler},
		{MethodName: "EmitIR", Handler: emitIRHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceProtoFile,
}

// Register adds srv to s.
func Register(s grpc.ServiceRegistrar, srv CompilerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func compileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompilerServer).Compile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: compileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CompilerServer).Compile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func emitIRHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompilerServer).EmitIR(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: emitIRMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CompilerServer).EmitIR(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls valang.Compiler over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Compile(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, compileMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) EmitIR(ctx context.Context, source string, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, emitIRMethod, wrapperspb.String(source), out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}
