package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/car-build/internal/adapter/handler/pb"
)

const maxBodyBytes = 1 << 20

// HTTPHandler is the browser-facing gateway in front of the catalog and
// pricing RPC services.
type HTTPHandler struct {
	catalog  pb.CatalogServiceClient
	pricing  pb.PricingServiceClient
	timeout  time.Duration
	validate *validator.Validate
}

type PartHTTP struct {
	ID        string   `json:"id"`
	Name      string   `json:"name" validate:"required"`
	UnitPrice *float64 `json:"unitPrice" validate:"required,gte=0"`
}

type LineItemHTTP struct {
	Part     *PartHTTP `json:"part" validate:"required"`
	Quantity int32     `json:"quantity" validate:"gte=1"`
}

type PartsHTTPRequest struct {
	Model string `json:"model" validate:"required"`
	Year  int32  `json:"year" validate:"gte=0"`
}

type QuoteHTTPRequest struct {
	Items []LineItemHTTP `json:"items" validate:"dive"`
}

type PurchaseHTTPRequest struct {
	Items         []LineItemHTTP `json:"items" validate:"dive"`
	DeclaredTotal *float64       `json:"declaredTotal" validate:"required"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func NewHTTPHandler(catalog pb.CatalogServiceClient, pricing pb.PricingServiceClient, timeout time.Duration) *HTTPHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &HTTPHandler{
		catalog:  catalog,
		pricing:  pricing,
		timeout:  timeout,
		validate: v,
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "gateway"})
}

func (h *HTTPHandler) Parts(w http.ResponseWriter, r *http.Request) {
	var req PartsHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.upstreamContext(r.Context())
	defer cancel()

	resp, err := h.catalog.GetParts(ctx, &pb.GetPartsRequest{Model: req.Model, Year: req.Year})
	if err != nil {
		writeUpstreamError(w, r, "catalog", err)
		return
	}
	if resp.Parts == nil {
		resp.Parts = []*pb.Part{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.upstreamContext(r.Context())
	defer cancel()

	resp, err := h.pricing.Quote(ctx, &pb.QuoteRequest{Items: lineItemsToWire(req.Items)})
	if err != nil {
		writeUpstreamError(w, r, "pricing", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.upstreamContext(r.Context())
	defer cancel()

	order, err := h.pricing.ConfirmPurchase(ctx, &pb.PurchaseRequest{
		Items:         lineItemsToWire(req.Items),
		DeclaredTotal: *req.DeclaredTotal,
	})
	if err != nil {
		writeUpstreamError(w, r, "pricing", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body", nil)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return false
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag()})
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request failed validation", fields)
		return false
	}
	return true
}

// fieldPath strips the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func lineItemsToWire(items []LineItemHTTP) []*pb.LineItem {
	out := make([]*pb.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, &pb.LineItem{
			Part: &pb.Part{
				Id:        item.Part.ID,
				Name:      item.Part.Name,
				UnitPrice: *item.Part.UnitPrice,
			},
			Quantity: item.Quantity,
		})
	}
	return out
}

// writeUpstreamError translates an RPC failure into the gateway's error shape.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, service string, err error) {
	st := status.Convert(err)
	logger := zerolog.Ctx(r.Context())

	switch st.Code() {
	case codes.InvalidArgument:
		code := "INVALID_ARGUMENT"
		var details any
		for _, d := range st.Details() {
			if info, ok := d.(*errdetails.ErrorInfo); ok {
				code = info.GetReason()
				if len(info.GetMetadata()) > 0 {
					details = info.GetMetadata()
				}
			}
		}
		writeError(w, http.StatusBadRequest, code, st.Message(), details)
	case codes.Unavailable, codes.DeadlineExceeded:
		logger.Error().Str("service", service).Str("code", st.Code().String()).Msg(st.Message())
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", service+" service unavailable", nil)
	default:
		logger.Error().Str("service", service).Str("code", st.Code().String()).Msg(st.Message())
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, map[string]ErrorBody{
		"error": {Code: code, Message: message, Details: details},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
