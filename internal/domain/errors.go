package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure the pricing/trade core reports wraps exactly one
// of these sentinels, so callers can classify with errors.Is.
var (
	// ErrInvalidCurveType is returned when a curve type is not one of the
	// supported variants. Configuration fault, not retriable.
	ErrInvalidCurveType = errors.New("invalid curve type")

	// ErrInvalidParameter is returned when a curve shape parameter is missing
	// or out of its required bound. Configuration fault, not retriable.
	ErrInvalidParameter = errors.New("invalid curve parameter")

	// ErrInvalidAmount is returned for non-positive amounts or a quote/intent
	// size mismatch. Caller input fault, not retriable.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrMathOverflow is returned when a pricing computation produces a
	// non-finite or non-positive result (e.g. zero total supply).
	ErrMathOverflow = errors.New("math overflow")

	// ErrSlippageExceeded is returned when the re-validated price at submit
	// time falls outside the prepared bound. Retriable via a fresh quote.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrInsufficientBalance is returned when the trader side cannot cover
	// its debit.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientLiquidity is returned when the curve's reserve or supply
	// side cannot cover its debit.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrSettlementFailure is returned for transport or confirmation failures
	// from the settlement layer, including partial-completion signals.
	ErrSettlementFailure = errors.New("settlement failure")

	// ErrNotFound is returned when a curve instance does not exist.
	ErrNotFound = errors.New("curve instance not found")
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable. For trade errors this means
// the caller may re-quote and try again; it never means internal retry.
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// IsCurveConfigError reports whether err is a curve configuration fault
// (malformed type or parameter).
func IsCurveConfigError(err error) bool {
	return errors.Is(err, ErrInvalidCurveType) || errors.Is(err, ErrInvalidParameter)
}

// TradeError carries a typed error kind, the failing operation and a
// human-readable detail message.
type TradeError struct {
	Op     string // Operation that failed (e.g., "quote", "prepare", "submit")
	Kind   error  // One of the sentinel kinds above
	Detail string
}

func (e *TradeError) Error() string {
	if e.Detail == "" {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Detail
}

func (e *TradeError) Unwrap() error {
	return e.Kind
}

// IsRetriable reports whether the caller may retry with a fresh quote.
// Slippage and settlement failures are the only retriable kinds.
func (e *TradeError) IsRetriable() bool {
	return errors.Is(e.Kind, ErrSlippageExceeded) || errors.Is(e.Kind, ErrSettlementFailure)
}

// Errf creates a TradeError with a formatted detail message.
func Errf(op string, kind error, format string, args ...any) *TradeError {
	return &TradeError{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
