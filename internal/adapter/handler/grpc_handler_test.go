package handler

import (
	"context"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/car-build/internal/adapter/handler/pb"
	"github.com/rl1809/car-build/internal/core/domain"
	"github.com/rl1809/car-build/internal/core/service"
)

type fixedIDs struct{}

func (fixedIDs) NewOrderID() string { return "ORD-0198F3A2-7C1B-7D2E-9F00-0123456789AB" }

type stubCatalogRepo struct {
	parts []domain.Part
	err   error
}

func (s stubCatalogRepo) LookupParts(ctx context.Context, model string) ([]domain.Part, error) {
	return s.parts, s.err
}

var confirmedAt = time.Date(2026, 10, 19, 14, 3, 7, 250_000_000, time.UTC)

func dialBufconn(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		pb.WithJSONCodec(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newPricingClient(t *testing.T) pb.PricingServiceClient {
	orders := service.NewOrderService(fixedIDs{}, service.WithClock(func() time.Time { return confirmedAt }))
	conn := dialBufconn(t, func(s *grpc.Server) {
		pb.RegisterPricingServiceServer(s, NewPricingGRPCHandler(orders))
	})
	return pb.NewPricingServiceClient(conn)
}

func wireItem(name string, price float64, qty int32) *pb.LineItem {
	return &pb.LineItem{Part: &pb.Part{Id: name + "-id", Name: name, UnitPrice: price}, Quantity: qty}
}

func errorInfo(t *testing.T, err error) *errdetails.ErrorInfo {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok)
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	t.Fatalf("status %v carries no ErrorInfo", st)
	return nil
}

func TestPricingGRPC_Quote(t *testing.T) {
	client := newPricingClient(t)

	resp, err := client.Quote(context.Background(), &pb.QuoteRequest{Items: []*pb.LineItem{
		wireItem("Chassi Civic", 5000, 1),
		wireItem("Wheel", 200, 4),
	}})
	require.NoError(t, err)

	assert.Equal(t, 5800.0, resp.Subtotal)
	assert.Equal(t, 75.0, resp.Shipping)
	assert.Equal(t, 5875.0, resp.Total)
}

func TestPricingGRPC_QuoteEmpty(t *testing.T) {
	client := newPricingClient(t)

	resp, err := client.Quote(context.Background(), &pb.QuoteRequest{})
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
}

func TestPricingGRPC_ConfirmPurchase(t *testing.T) {
	client := newPricingClient(t)
	items := []*pb.LineItem{wireItem("Engine V6", 9000, 1), wireItem("Gearbox", 750, 2)}

	order, err := client.ConfirmPurchase(context.Background(), &pb.PurchaseRequest{Items: items, DeclaredTotal: 10500.01})
	require.NoError(t, err)

	assert.Equal(t, "ORD-0198F3A2-7C1B-7D2E-9F00-0123456789AB", order.GetOrderId())
	assert.Equal(t, "CONFIRMED", order.GetStatus())
	assert.Equal(t, 10500.0, order.TotalAmount)
	assert.Equal(t, 0.0, order.Shipping)
	assert.Equal(t, "2026-10-19T14:03:07.250Z", order.CreatedAt)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`), order.CreatedAt)
	require.Len(t, order.PurchasedItems, 2)
	assert.Equal(t, "Gearbox", order.PurchasedItems[1].GetPart().GetName())
	assert.EqualValues(t, 2, order.PurchasedItems[1].GetQuantity())
}

func TestPricingGRPC_ChassisViolation(t *testing.T) {
	client := newPricingClient(t)

	_, err := client.ConfirmPurchase(context.Background(), &pb.PurchaseRequest{
		Items:         []*pb.LineItem{wireItem("Chassi Civic", 5000, 2), wireItem("Wheel", 200, 4)},
		DeclaredTotal: 10800,
	})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "only one chassis permitted per order", status.Convert(err).Message())
	info := errorInfo(t, err)
	assert.Equal(t, ReasonBusinessRule, info.GetReason())
	assert.Equal(t, ErrorDomain, info.GetDomain())
	assert.Equal(t, domain.RuleSingleChassis, info.GetMetadata()["rule"])
}

func TestPricingGRPC_TotalMismatch(t *testing.T) {
	client := newPricingClient(t)

	_, err := client.ConfirmPurchase(context.Background(), &pb.PurchaseRequest{
		Items:         []*pb.LineItem{wireItem("Mirror", 100, 1)},
		DeclaredTotal: 100,
	})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	info := errorInfo(t, err)
	assert.Equal(t, ReasonTotalMismatch, info.GetReason())
	assert.Equal(t, "120.00", info.GetMetadata()["computed_total"])
	assert.Equal(t, "100", info.GetMetadata()["declared_total"])
}

func TestPricingGRPC_MalformedItemsAreInternal(t *testing.T) {
	client := newPricingClient(t)

	tests := []struct {
		name string
		item *pb.LineItem
	}{
		{"missing part", &pb.LineItem{Quantity: 1}},
		{"zero quantity", wireItem("Mirror", 100, 0)},
		{"negative price", wireItem("Mirror", -1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Quote(context.Background(), &pb.QuoteRequest{Items: []*pb.LineItem{tt.item}})
			assert.Equal(t, codes.Internal, status.Code(err))
		})
	}
}

func TestCatalogGRPC_GetParts(t *testing.T) {
	repo := stubCatalogRepo{parts: []domain.Part{
		{ID: "p-1", Name: "Chassi Civic", UnitPrice: decimal.NewFromInt(5000)},
		{ID: "p-2", Name: "Wheel", UnitPrice: decimal.RequireFromString("199.9")},
	}}
	catalog := service.NewCatalogService(repo, nil, zerolog.Nop())
	conn := dialBufconn(t, func(s *grpc.Server) {
		pb.RegisterCatalogServiceServer(s, NewCatalogGRPCHandler(catalog))
	})
	client := pb.NewCatalogServiceClient(conn)

	resp, err := client.GetParts(context.Background(), &pb.GetPartsRequest{Model: "Civic", Year: 2020})
	require.NoError(t, err)
	require.Len(t, resp.GetParts(), 2)
	assert.Equal(t, "p-2", resp.Parts[1].GetId())
	assert.Equal(t, 199.9, resp.Parts[1].GetUnitPrice())
}

func TestCatalogGRPC_StorageFailureIsInternal(t *testing.T) {
	catalog := service.NewCatalogService(stubCatalogRepo{err: errors.New("dial tcp: connection refused")}, nil, zerolog.Nop())
	conn := dialBufconn(t, func(s *grpc.Server) {
		pb.RegisterCatalogServiceServer(s, NewCatalogGRPCHandler(catalog))
	})

	_, err := pb.NewCatalogServiceClient(conn).GetParts(context.Background(), &pb.GetPartsRequest{Model: "civic"})
	assert.Equal(t, codes.Internal, status.Code(err))
}
