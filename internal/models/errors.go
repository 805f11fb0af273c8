package models

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below unwraps to one of them, so callers
// can branch with errors.Is and inspect details with errors.As.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrConversionUnavailable = errors.New("currency conversion unavailable")
	ErrConservation          = errors.New("balance conservation violated")
)

// ValidationRule names the rule a rejected input broke.
type ValidationRule string

const (
	RuleAmountNotPositive   ValidationRule = "amount_not_positive"
	RuleInvalidCurrency     ValidationRule = "invalid_currency"
	RuleUnknownPayer        ValidationRule = "unknown_payer"
	RuleUnknownParticipant  ValidationRule = "unknown_participant"
	RuleUnknownSplitKind    ValidationRule = "unknown_split_kind"
	RuleShareOutOfRange     ValidationRule = "share_out_of_range"
	RuleShareSum            ValidationRule = "share_sum"
	RuleNegativeFixedAmount ValidationRule = "negative_fixed_amount"
	RuleFixedSum            ValidationRule = "fixed_sum"
	RuleEmptyName           ValidationRule = "empty_name"
	RuleDuplicateName       ValidationRule = "duplicate_name"
	RuleSelfSettlement      ValidationRule = "self_settlement"
)

// ValidationError is returned when an input is rejected. Nothing is written
// when it is returned.
type ValidationError struct {
	Rule ValidationRule

	// ParticipantID is the offending participant, if any.
	ParticipantID ParticipantID

	// Value is the offending value (a share, an amount or a sum).
	Value float64

	// Shortfall is expected minus actual for sum rules; negative means excess.
	Shortfall float64

	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Rule, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError with a formatted message.
func Invalid(rule ValidationRule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown group, participant, expense or settlement.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v: %s", e.Kind, ErrNotFound, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConversionUnavailableError is returned when no rate is known for a currency
// pair. The ledger never substitutes a default rate.
type ConversionUnavailableError struct {
	From string
	To   string
	Err  error
}

func (e *ConversionUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s -> %s: %v", ErrConversionUnavailable, e.From, e.To, e.Err)
	}
	return fmt.Sprintf("%v: %s -> %s", ErrConversionUnavailable, e.From, e.To)
}

func (e *ConversionUnavailableError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConversionUnavailable, e.Err}
	}
	return []error{ErrConversionUnavailable}
}

// ConservationViolationError means total credit and total debt of a group
// disagree by more than the aggregate tolerance. It signals corrupted data
// upstream and must be surfaced, never swallowed.
type ConservationViolationError struct {
	Currency  string
	Credit    float64
	Debt      float64
	Tolerance float64
}

func (e *ConservationViolationError) Error() string {
	return fmt.Sprintf("%v: credit %.4f %s vs debt %.4f %s (tolerance %.4f)",
		ErrConservation, e.Credit, e.Currency, e.Debt, e.Currency, e.Tolerance)
}

func (e *ConservationViolationError) Unwrap() error { return ErrConservation }
