package handler

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/car-build/internal/adapter/handler/pb"
	"github.com/rl1809/car-build/internal/core/domain"
)

const (
	ErrorDomain = "carbuild.pricing"

	ReasonBusinessRule  = "BUSINESS_RULE_VIOLATION"
	ReasonTotalMismatch = "TOTAL_MISMATCH"

	// ISO-8601 with millisecond precision
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

func lineItemsFromProto(items []*pb.LineItem) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, 0, len(items))
	for i, item := range items {
		part := item.GetPart()
		if part == nil {
			return nil, fmt.Errorf("item %d: missing part: %w", i, domain.ErrMalformedLineItem)
		}
		if item.GetQuantity() < 1 {
			return nil, fmt.Errorf("item %d: quantity %d: %w", i, item.GetQuantity(), domain.ErrMalformedLineItem)
		}
		price := part.GetUnitPrice()
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return nil, fmt.Errorf("item %d: unit price %v: %w", i, price, domain.ErrMalformedLineItem)
		}
		out = append(out, domain.LineItem{
			Part: domain.Part{
				ID:        part.GetId(),
				Name:      part.GetName(),
				UnitPrice: decimal.NewFromFloat(price),
			},
			Quantity: int(item.GetQuantity()),
		})
	}
	return out, nil
}

func partToProto(p domain.Part) *pb.Part {
	return &pb.Part{
		Id:        p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice.InexactFloat64(),
	}
}

func partsToProto(parts []domain.Part) []*pb.Part {
	out := make([]*pb.Part, len(parts))
	for i, p := range parts {
		out[i] = partToProto(p)
	}
	return out
}

func lineItemsToProto(items []domain.LineItem) []*pb.LineItem {
	out := make([]*pb.LineItem, len(items))
	for i, item := range items {
		out[i] = &pb.LineItem{
			Part:     partToProto(item.Part),
			Quantity: int32(item.Quantity),
		}
	}
	return out
}

func quoteToProto(q domain.Quote) *pb.QuoteResponse {
	return &pb.QuoteResponse{
		Subtotal: q.Subtotal.InexactFloat64(),
		Shipping: q.Shipping.InexactFloat64(),
		Total:    q.Total.InexactFloat64(),
	}
}

func orderToProto(o domain.Order) *pb.Order {
	return &pb.Order{
		OrderId:        o.ID,
		Status:         string(o.Status),
		TotalAmount:    o.Total.InexactFloat64(),
		CreatedAt:      o.CreatedAt.Format(timestampLayout),
		PurchasedItems: lineItemsToProto(o.Items),
		Subtotal:       o.Subtotal.InexactFloat64(),
		Shipping:       o.Shipping.InexactFloat64(),
	}
}

// statusFromError maps pricing errors onto gRPC statuses. Caller-correctable
// errors become InvalidArgument with an ErrorInfo detail; everything else is
// Internal.
func statusFromError(err error) error {
	var violation *domain.BusinessRuleViolation
	var mismatch *domain.TotalMismatchError

	switch {
	case errors.As(err, &violation):
		return statusWithInfo(codes.InvalidArgument, violation.Error(), ReasonBusinessRule, map[string]string{
			"rule": violation.Rule,
		})
	case errors.As(err, &mismatch):
		return statusWithInfo(codes.InvalidArgument, mismatch.Error(), ReasonTotalMismatch, map[string]string{
			"computed_total": mismatch.Computed.StringFixed(2),
			"declared_total": mismatch.Declared.String(),
		})
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

func statusWithInfo(code codes.Code, msg, reason string, metadata map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   ErrorDomain,
		Metadata: metadata,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
