package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CatalogService_GetParts_FullMethodName = "/carbuild.catalog.v1.CatalogService/GetParts"
)

type CatalogServiceClient interface {
	GetParts(ctx context.Context, in *GetPartsRequest, opts ...grpc.CallOption) (*GetPartsResponse, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc}
}

func (c *catalogServiceClient) GetParts(ctx context.Context, in *GetPartsRequest, opts ...grpc.CallOption) (*GetPartsResponse, error) {
	out := new(GetPartsResponse)
	err := c.cc.Invoke(ctx, CatalogService_GetParts_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CatalogServiceServer is the server API for CatalogService.
// All implementations must embed UnimplementedCatalogServiceServer.
type CatalogServiceServer interface {
	GetParts(context.Context, *GetPartsRequest) (*GetPartsResponse, error)
	mustEmbedUnimplementedCatalogServiceServer()
}

type UnimplementedCatalogServiceServer struct{}

func (UnimplementedCatalogServiceServer) GetParts(context.Context, *GetPartsRequest) (*GetPartsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetParts not implemented")
}

func (UnimplementedCatalogServiceServer) mustEmbedUnimplementedCatalogServiceServer() {}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogService_ServiceDesc, srv)
}

func _CatalogService_GetParts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetPartsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetParts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CatalogService_GetParts_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetParts(ctx, req.(*GetPartsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var CatalogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "carbuild.catalog.v1.CatalogService",
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetParts",
			Handler:    _CatalogService_GetParts_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "carbuild/catalog/v1",
}
