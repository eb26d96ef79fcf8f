package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict   = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden             = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState          = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance   = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrAccountNotFound       = NewDomainError("ACCOUNT_NOT_FOUND", "Ledger account not found")
	ErrLedgerMisconfigured   = NewDomainError("LEDGER_MISCONFIGURED", "Required system ledger account is missing")
	ErrNoEligibleInvestments = NewDomainError("NO_ELIGIBLE_INVESTMENTS", "No eligible active investments to allocate against")
)
