package obs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var quoteInfo = &grpc.UnaryServerInfo{FullMethod: "/carbuild.pricing.v1.PricingService/Quote"}

func TestRPCObs_CountsCodesAndRejections(t *testing.T) {
	metrics := NewRPCMetrics("carbuild", nil, prometheus.NewRegistry())
	interceptor := RPCObs{Metrics: metrics}.UnaryInterceptor()

	rejected, err := status.New(codes.InvalidArgument, "only one chassis permitted per order").
		WithDetails(&errdetails.ErrorInfo{Reason: "BUSINESS_RULE_VIOLATION", Domain: "carbuild.pricing"})
	require.NoError(t, err)

	handlers := []grpc.UnaryHandler{
		func(ctx context.Context, req any) (any, error) { return "ok", nil },
		func(ctx context.Context, req any) (any, error) { return nil, rejected.Err() },
		func(ctx context.Context, req any) (any, error) { return nil, status.Error(codes.InvalidArgument, "bare") },
		func(ctx context.Context, req any) (any, error) { return nil, errors.New("boom") },
	}
	for _, h := range handlers {
		_, _ = interceptor(context.Background(), nil, quoteInfo, h)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues("Quote", "OK")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues("Quote", "InvalidArgument")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues("Quote", "Unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("Quote", "BUSINESS_RULE_VIOLATION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("Quote", "invalid_argument")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	interceptor := RecoveryUnaryInterceptor(zerolog.Nop())

	resp, err := interceptor(context.Background(), nil, quoteInfo, func(ctx context.Context, req any) (any, error) {
		panic("nil map")
	})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingUnaryInterceptor_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingUnaryInterceptor(zerolog.New(&buf))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42"))
	var seen string
	_, err := interceptor(ctx, nil, quoteInfo, func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		zerolog.Ctx(ctx).Info().Msg("inside")
		return nil, nil
	})
	require.NoError(t, err)

	assert.Equal(t, "req-42", seen)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"request_id":"req-42"`)
	}
	assert.Contains(t, lines[1], `"code":"OK"`)
}

func TestLoggingUnaryInterceptor_GeneratesRequestID(t *testing.T) {
	interceptor := LoggingUnaryInterceptor(zerolog.Nop())

	var seen string
	_, _ = interceptor(context.Background(), nil, quoteInfo, func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	assert.Len(t, seen, 36)
}

func TestClientInterceptors(t *testing.T) {
	metrics := NewUpstreamMetrics("carbuild", prometheus.NewRegistry())
	requestID := RequestIDClientInterceptor()
	upstream := UpstreamObs{Metrics: metrics, Service: "pricing"}.UnaryClientInterceptor()

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-7")
	var forwarded []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		forwarded = md.Get(RequestIDHeader)
		return status.Error(codes.Unavailable, "connection refused")
	}

	err := requestID(ctx, "/carbuild.pricing.v1.PricingService/Quote", nil, nil, nil,
		func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return upstream(ctx, method, req, reply, cc, invoker, opts...)
		})

	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, []string{"req-7"}, forwarded)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Calls.WithLabelValues("pricing", "Unavailable")))
}
