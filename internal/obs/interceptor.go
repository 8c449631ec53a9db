package obs

import (
	"context"
	"path"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const RequestIDHeader = "x-request-id"

type requestIDKey struct{}

// RequestIDFromContext returns the request id attached by the logging
// interceptor or the chi RequestID middleware.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return middleware.GetReqID(ctx)
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}

// RecoveryUnaryInterceptor turns handler panics into codes.Internal.
func RecoveryUnaryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("request_id", RequestIDFromContext(ctx)).
					Interface("panic", r).
					Str("method", info.FullMethod).
					Bytes("stack", debug.Stack()).
					Msg("rpc handler panicked")
				resp, err = nil, status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingUnaryInterceptor attaches a request-scoped logger to the context and
// logs one line per RPC.
func LoggingUnaryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := incomingRequestID(ctx)
		reqLogger := logger.With().Str("request_id", reqID).Logger()
		ctx = context.WithValue(reqLogger.WithContext(ctx), requestIDKey{}, reqID)

		start := time.Now()
		resp, err := handler(ctx, req)
		st := status.Convert(err)

		evt := reqLogger.Info()
		switch st.Code() {
		case codes.OK:
		case codes.InvalidArgument, codes.NotFound, codes.Canceled:
			evt = reqLogger.Warn().Str("error", st.Message())
		default:
			evt = reqLogger.Error().Str("error", st.Message())
		}
		evt.Str("method", info.FullMethod).
			Str("code", st.Code().String()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("rpc_request")
		return resp, err
	}
}

// RPCObs records RPC counters, latency and rejection reasons.
type RPCObs struct {
	Metrics *RPCMetrics
}

func (o RPCObs) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if o.Metrics == nil {
			return handler(ctx, req)
		}
		method := path.Base(info.FullMethod)

		o.Metrics.InFlight.Inc()
		defer o.Metrics.InFlight.Dec()

		start := time.Now()
		resp, err := handler(ctx, req)
		st := status.Convert(err)

		o.Metrics.ReqTotal.WithLabelValues(method, st.Code().String()).Inc()
		o.Metrics.ReqDur.WithLabelValues(method).Observe(DurationMillis(time.Since(start)))
		if reason := rejectionReason(st); reason != "" {
			o.Metrics.Rejections.WithLabelValues(method, reason).Inc()
		}
		return resp, err
	}
}

// rejectionReason extracts the ErrorInfo reason of an InvalidArgument status.
func rejectionReason(st *status.Status) string {
	if st.Code() != codes.InvalidArgument {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetReason() != "" {
			return info.GetReason()
		}
	}
	return "invalid_argument"
}

// RequestIDClientInterceptor forwards the current request id to upstream servers.
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := RequestIDFromContext(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// UpstreamObs counts outbound RPCs for a single backing service.
type UpstreamObs struct {
	Metrics *UpstreamMetrics
	Service string
}

func (o UpstreamObs) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		err := invoker(ctx, method, req, reply, cc, opts...)
		if o.Metrics != nil {
			o.Metrics.Calls.WithLabelValues(o.Service, status.Code(err).String()).Inc()
		}
		return err
	}
}

// ServerOptions chains the logging, metrics and recovery interceptors and, when
// tracing is on, the otelgrpc stats handler.
func ServerOptions(logger zerolog.Logger, metrics *RPCMetrics, tracing bool) []grpc.ServerOption {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			LoggingUnaryInterceptor(logger),
			RPCObs{Metrics: metrics}.UnaryInterceptor(),
			RecoveryUnaryInterceptor(logger),
		),
	}
	if tracing {
		opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	return opts
}
