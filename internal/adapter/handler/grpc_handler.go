package handler

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/car-build/internal/adapter/handler/pb"
	"github.com/rl1809/car-build/internal/core/service"
)

type PricingGRPCHandler struct {
	pb.UnimplementedPricingServiceServer
	orderService *service.OrderService
}

func NewPricingGRPCHandler(orderService *service.OrderService) *PricingGRPCHandler {
	return &PricingGRPCHandler{orderService: orderService}
}

func (h *PricingGRPCHandler) Quote(ctx context.Context, req *pb.QuoteRequest) (*pb.QuoteResponse, error) {
	items, err := lineItemsFromProto(req.GetItems())
	if err != nil {
		return nil, statusFromError(err)
	}

	quote, err := h.orderService.Quote(ctx, items)
	if err != nil {
		return nil, statusFromError(err)
	}

	return quoteToProto(quote), nil
}

func (h *PricingGRPCHandler) ConfirmPurchase(ctx context.Context, req *pb.PurchaseRequest) (*pb.Order, error) {
	items, err := lineItemsFromProto(req.GetItems())
	if err != nil {
		return nil, statusFromError(err)
	}

	order, err := h.orderService.ConfirmPurchase(ctx, items, decimal.NewFromFloat(req.GetDeclaredTotal()))
	if err != nil {
		return nil, statusFromError(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("total", order.Total.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("order confirmed")

	return orderToProto(order), nil
}

type CatalogGRPCHandler struct {
	pb.UnimplementedCatalogServiceServer
	catalogService *service.CatalogService
}

func NewCatalogGRPCHandler(catalogService *service.CatalogService) *CatalogGRPCHandler {
	return &CatalogGRPCHandler{catalogService: catalogService}
}

func (h *CatalogGRPCHandler) GetParts(ctx context.Context, req *pb.GetPartsRequest) (*pb.GetPartsResponse, error) {
	parts, err := h.catalogService.LookupParts(ctx, req.GetModel())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to look up parts: %v", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("model", req.GetModel()).
		Int32("year", req.GetYear()).
		Int("parts", len(parts)).
		Msg("parts lookup")

	return &pb.GetPartsResponse{Parts: partsToProto(parts)}, nil
}
