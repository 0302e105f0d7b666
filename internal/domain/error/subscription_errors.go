package error

import "errors"

// Subscription domain errors.
var (
	// ErrSubscriptionNotFound is returned when an account has no persisted entitlement record.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrProRequired is returned when a Pro-only feature is used without an active entitlement.
	ErrProRequired = errors.New("pro subscription required")

	// ErrBillingUnavailable is returned when the billing provider cannot be reached.
	ErrBillingUnavailable = errors.New("billing provider unavailable")

	// ErrBillingCustomerNotFound is returned when the billing provider has no such customer.
	ErrBillingCustomerNotFound = errors.New("billing customer not found")
)

// SubscriptionErrorCode defines error codes for subscription errors.
// Format: SUB-XXYYYY.
type SubscriptionErrorCode string

const (
	ErrCodeProRequired         SubscriptionErrorCode = "SUB-010001"
	ErrCodeBillingUnavailable  SubscriptionErrorCode = "SUB-020001"
	ErrCodeSubscriptionMissing SubscriptionErrorCode = "SUB-020002"
)

// SubscriptionError is returned while resolving or syncing an entitlement.
type SubscriptionError = CodedError[SubscriptionErrorCode]

// NewSubscriptionError creates a new SubscriptionError.
func NewSubscriptionError(code SubscriptionErrorCode, message string, err error) *SubscriptionError {
	return newCoded(code, message, err)
}
