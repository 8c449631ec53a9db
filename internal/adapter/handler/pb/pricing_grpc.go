package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	PricingService_Quote_FullMethodName           = "/carbuild.pricing.v1.PricingService/Quote"
	PricingService_ConfirmPurchase_FullMethodName = "/carbuild.pricing.v1.PricingService/ConfirmPurchase"
)

type PricingServiceClient interface {
	Quote(ctx context.Context, in *QuoteRequest, opts ...grpc.CallOption) (*QuoteResponse, error)
	ConfirmPurchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*Order, error)
}

type pricingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPricingServiceClient(cc grpc.ClientConnInterface) PricingServiceClient {
	return &pricingServiceClient{cc}
}

func (c *pricingServiceClient) Quote(ctx context.Context, in *QuoteRequest, opts ...grpc.CallOption) (*QuoteResponse, error) {
	out := new(QuoteResponse)
	err := c.cc.Invoke(ctx, PricingService_Quote_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pricingServiceClient) ConfirmPurchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*Order, error) {
	out := new(Order)
	err := c.cc.Invoke(ctx, PricingService_ConfirmPurchase_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PricingServiceServer is the server API for PricingService.
// All implementations must embed UnimplementedPricingServiceServer.
type PricingServiceServer interface {
	Quote(context.Context, *QuoteRequest) (*QuoteResponse, error)
	ConfirmPurchase(context.Context, *PurchaseRequest) (*Order, error)
	mustEmbedUnimplementedPricingServiceServer()
}

type UnimplementedPricingServiceServer struct{}

func (UnimplementedPricingServiceServer) Quote(context.Context, *QuoteRequest) (*QuoteResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Quote not implemented")
}

func (UnimplementedPricingServiceServer) ConfirmPurchase(context.Context, *PurchaseRequest) (*Order, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ConfirmPurchase not implemented")
}

func (UnimplementedPricingServiceServer) mustEmbedUnimplementedPricingServiceServer() {}

func RegisterPricingServiceServer(s grpc.ServiceRegistrar, srv PricingServiceServer) {
	s.RegisterService(&PricingService_ServiceDesc, srv)
}

func _PricingService_Quote_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(QuoteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).Quote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PricingService_Quote_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PricingServiceServer).Quote(ctx, req.(*QuoteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PricingService_ConfirmPurchase_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PurchaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).ConfirmPurchase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PricingService_ConfirmPurchase_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PricingServiceServer).ConfirmPurchase(ctx, req.(*PurchaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var PricingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "carbuild.pricing.v1.PricingService",
	HandlerType: (*PricingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Quote",
			Handler:    _PricingService_Quote_Handler,
		},
		{
			MethodName: "ConfirmPurchase",
			Handler:    _PricingService_ConfirmPurchase_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "carbuild/pricing/v1",
}
