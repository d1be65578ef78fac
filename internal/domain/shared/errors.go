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
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUntrainedModel      = NewDomainError("UNTRAINED_MODEL", "Model has not been trained")
	ErrInsufficientData    = NewDomainError("INSUFFICIENT_DATA", "Not enough samples to train a model")
	ErrDimensionMismatch   = NewDomainError("DIMENSION_MISMATCH", "Parameter shapes do not match the network architecture")
	ErrNoActiveModel       = NewDomainError("NO_ACTIVE_MODEL", "No active model record exists for this model name")
)
