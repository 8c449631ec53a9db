package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrBusinessRule      = errors.New("business rule violation")
	ErrTotalMismatch     = errors.New("total mismatch")
	ErrMalformedLineItem = errors.New("malformed line item")
)

const (
	RuleSingleChassis = "single_chassis"
	RuleNonEmptyOrder = "non_empty_order"
)

// BusinessRuleViolation reports input that breaks a domain constraint. It is
// always correctable by the caller.
type BusinessRuleViolation struct {
	Rule    string
	Message string
}

func (e *BusinessRuleViolation) Error() string {
	return e.Message
}

func (e *BusinessRuleViolation) Is(target error) bool {
	return target == ErrBusinessRule
}

// TotalMismatchError reports a declared total that disagrees with the
// server-side computation.
type TotalMismatchError struct {
	Computed decimal.Decimal
	Declared decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("declared total %s does not match computed total %s",
		e.Declared.String(), e.Computed.StringFixed(2))
}

func (e *TotalMismatchError) Is(target error) bool {
	return target == ErrTotalMismatch
}
