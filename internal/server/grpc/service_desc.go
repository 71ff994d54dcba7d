package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service pageclean.v1.Cleaning, declared in
// internal/proto/pageclean/v1/cleaning.proto. This file is maintained by
// hand, not generated: keep it in step with the .proto when either changes.
// Requests and responses are google.protobuf.Struct documents; the field
// names are listed on each handler.

const (
	Cleaning_NextPage_FullMethodName       = "/pageclean.v1.Cleaning/NextPage"
	Cleaning_SubmitRevision_FullMethodName = "/pageclean.v1.Cleaning/SubmitRevision"
	Cleaning_Ping_FullMethodName           = "/pageclean.v1.Cleaning/Ping"
)

// CleaningClient is the client API for the Cleaning service.
type CleaningClient interface {
	NextPage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitRevision(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type cleaningClient struct {
	cc grpc.ClientConnInterface
}

func NewCleaningClient(cc grpc.ClientConnInterface) CleaningClient {
	return &cleaningClient{cc}
}

func (c *cleaningClient) NextPage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, Cleaning_NextPage_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cleaningClient) SubmitRevision(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, Cleaning_SubmitRevision_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cleaningClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, Cleaning_Ping_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CleaningServer is the server API for the Cleaning service.
type CleaningServer interface {
	NextPage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitRevision(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedCleaningServer can be embedded to have forward compatible
// implementations.
type UnimplementedCleaningServer struct{}

func (UnimplementedCleaningServer) NextPage(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method NextPage not implemented")
}
func (UnimplementedCleaningServer) SubmitRevision(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitRevision not implemented")
}
func (UnimplementedCleaningServer) Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}

func RegisterCleaningServer(s grpc.ServiceRegistrar, srv CleaningServer) {
	s.RegisterService(&Cleaning_ServiceDesc, srv)
}

func _Cleaning_NextPage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CleaningServer).NextPage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Cleaning_NextPage_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CleaningServer).NextPage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Cleaning_SubmitRevision_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CleaningServer).SubmitRevision(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Cleaning_SubmitRevision_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CleaningServer).SubmitRevision(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Cleaning_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CleaningServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Cleaning_Ping_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CleaningServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Cleaning_ServiceDesc is the grpc.ServiceDesc for the Cleaning service.
var Cleaning_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pageclean.v1.Cleaning",
	HandlerType: (*CleaningServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "NextPage",
			Handler:    _Cleaning_NextPage_Handler,
		},
		{
			MethodName: "SubmitRevision",
			Handler:    _Cleaning_SubmitRevision_Handler,
		},
		{
			MethodName: "Ping",
			Handler:    _Cleaning_Ping_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pageclean/v1/cleaning.proto",
}
