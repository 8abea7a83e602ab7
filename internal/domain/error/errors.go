package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeNoWalletConnected = 4001
	CodeInvalidSeedType   = 4002
	CodeAmountBelowMin    = 4003
	CodeInvalidAmount     = 4004
	CodeEmptyBatch        = 4005
	CodeValidation        = 4006
	CodeUserRejected      = 4230
	CodeRecordNotFound    = 4040
	CodeNotRetryable      = 4090

	// 5xxx - Server / chain errors
	CodeInternalServer      = 5000
	CodeNetwork             = 5001
	CodeTransactionReverted = 5002
	CodeConfirmationTimeout = 5003
	CodeChainUnsupported    = 5004
	CodeStateStore          = 5005
)

// Base error types
var (
	// ErrNoWalletConnected is returned when an action is attempted without a connected wallet
	ErrNoWalletConnected = errors.New("no wallet connected")

	// ErrInvalidSeedType is returned when the seed type is not in the catalog
	ErrInvalidSeedType = errors.New("unknown seed type")

	// ErrAmountBelowMinimum is returned when the deposit is below the seed type minimum
	ErrAmountBelowMinimum = errors.New("amount below seed minimum")

	// ErrInvalidAmount is returned when the amount is not a positive integer in minor units
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEmptyBatch is returned when a batch harvest is requested with no seed ids
	ErrEmptyBatch = errors.New("batch contains no seeds")

	// ErrValidation is returned for generic input validation failures
	ErrValidation = errors.New("validation failed")

	// ErrUserRejected is returned when the wallet owner declines to sign
	ErrUserRejected = errors.New("user rejected the transaction")

	// ErrNetwork is returned for transient RPC or connectivity failures
	ErrNetwork = errors.New("network error")

	// ErrTransactionReverted is returned when a submitted transaction reverts on chain
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrConfirmationTimeout is returned when the bounded confirmation wait elapses
	ErrConfirmationTimeout = errors.New("confirmation wait timed out")

	// ErrChainUnsupported is returned when no client or route covers the requested chain
	ErrChainUnsupported = errors.New("chain not supported")

	// ErrRecordNotFound is returned when the requested transaction record doesn't exist
	ErrRecordNotFound = errors.New("transaction record not found")

	// ErrRecordNotRetryable is returned when retry is requested for a record that isn't failed
	ErrRecordNotRetryable = errors.New("record is not in a retryable state")

	// ErrStateStore is returned when the persistence adapter fails to load or save state
	ErrStateStore = errors.New("state store failure")

	// ErrStateNotFound is returned when no saved state exists under a key
	ErrStateNotFound = errors.New("no saved state")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrNoWalletConnected):
		return CodeNoWalletConnected
	case errors.Is(err, ErrInvalidSeedType):
		return CodeInvalidSeedType
	case errors.Is(err, ErrAmountBelowMinimum):
		return CodeAmountBelowMin
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrEmptyBatch):
		return CodeEmptyBatch
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUserRejected):
		return CodeUserRejected
	case errors.Is(err, ErrRecordNotFound):
		return CodeRecordNotFound
	case errors.Is(err, ErrRecordNotRetryable):
		return CodeNotRetryable
	case errors.Is(err, ErrNetwork):
		return CodeNetwork
	case errors.Is(err, ErrTransactionReverted):
		return CodeTransactionReverted
	case errors.Is(err, ErrConfirmationTimeout):
		return CodeConfirmationTimeout
	case errors.Is(err, ErrChainUnsupported):
		return CodeChainUnsupported
	case errors.Is(err, ErrStateStore):
		return CodeStateStore
	default:
		return CodeInternalServer
	}
}

// SeedValidationError carries the details of a rejected plant request
type SeedValidationError struct {
	SeedType string
	Amount   string
	Minimum  string
	Err      error
}

// Error implements the error interface for SeedValidationError
func (e *SeedValidationError) Error() string {
	return fmt.Sprintf("seed validation failed for type %s (amount: %s, minimum: %s): %v",
		e.SeedType, e.Amount, e.Minimum, e.Err)
}

// Unwrap returns the underlying error
func (e *SeedValidationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *SeedValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "seed_validation",
		"seed_type":  e.SeedType,
		"amount":     e.Amount,
		"minimum":    e.Minimum,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewSeedValidationError creates a detailed seed validation error
func NewSeedValidationError(seedType, amount, minimum string, err error) error {
	return &SeedValidationError{
		SeedType: seedType,
		Amount:   amount,
		Minimum:  minimum,
		Err:      err,
	}
}

// SubmissionError represents a failure while submitting a call through the wallet
type SubmissionError struct {
	RecordID string
	Kind     string
	Chain    string
	Attempt  int
	Err      error
}

// Error implements the error interface for SubmissionError
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed for record %s (kind: %s, chain: %s, attempt: %d): %v",
		e.RecordID, e.Kind, e.Chain, e.Attempt, e.Err)
}

// Unwrap returns the underlying error
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *SubmissionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "submission_error",
		"record_id":  e.RecordID,
		"kind":       e.Kind,
		"chain":      e.Chain,
		"attempt":    e.Attempt,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewSubmissionError creates a detailed submission error
func NewSubmissionError(recordID, kind, chain string, attempt int, err error) error {
	return &SubmissionError{
		RecordID: recordID,
		Kind:     kind,
		Chain:    chain,
		Attempt:  attempt,
		Err:      err,
	}
}

// BridgeError represents a failure while following a cross-chain leg
type BridgeError struct {
	RecordID    string
	SourceChain string
	DestChain   string
	Err         error
}

// Error implements the error interface for BridgeError
func (e *BridgeError) Error() string {
	return fmt.Sprintf("bridge tracking failed for record %s (%s -> %s): %v",
		e.RecordID, e.SourceChain, e.DestChain, e.Err)
}

// Unwrap returns the underlying error
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *BridgeError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "bridge_error",
		"record_id":    e.RecordID,
		"source_chain": e.SourceChain,
		"dest_chain":   e.DestChain,
		"error":        e.Err.Error(),
		"error_code":   ErrorCode(e.Err),
	}
}

// NewBridgeError creates a detailed bridge tracking error
func NewBridgeError(recordID, sourceChain, destChain string, err error) error {
	return &BridgeError{
		RecordID:    recordID,
		SourceChain: sourceChain,
		DestChain:   destChain,
		Err:         err,
	}
}

// RecordNotFoundError provides detailed information about a missing record lookup
type RecordNotFoundError struct {
	RecordID string
}

// Error implements the error interface
func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("transaction record %s not found", e.RecordID)
}

// Is checks if the target error is an ErrRecordNotFound
func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// LogFields returns a map of fields for structured logging
func (e *RecordNotFoundError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "record_not_found",
		"record_id":  e.RecordID,
		"error_code": CodeRecordNotFound,
	}
}

// NewRecordNotFoundError creates a new detailed record not found error
func NewRecordNotFoundError(recordID string) error {
	return &RecordNotFoundError{RecordID: recordID}
}

// IsRetryable reports whether the submission layer may retry the failure
// automatically. Only transient transport failures qualify; user rejections,
// reverts and validation failures never do.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsUserRejectedError checks if the error is a wallet rejection
func IsUserRejectedError(err error) bool {
	return errors.Is(err, ErrUserRejected)
}

// IsValidationError checks if the error belongs to the input validation family
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidSeedType) ||
		errors.Is(err, ErrAmountBelowMinimum) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyBatch)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsConfirmationTimeoutError checks if the error is the bounded wait elapsing
func IsConfirmationTimeoutError(err error) bool {
	return errors.Is(err, ErrConfirmationTimeout)
}

// FailureReason condenses an error into the short classification stored on a
// failed record and shown to the player.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrUserRejected):
		return "user_rejected"
	case errors.Is(err, ErrTransactionReverted):
		return "reverted"
	case errors.Is(err, ErrConfirmationTimeout):
		return "confirmation_timeout"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrNoWalletConnected):
		return "no_wallet"
	case IsValidationError(err):
		return "validation_failed"
	default:
		return "internal_error"
	}
}
