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

// Is reports whether target is a DomainError with the same code, so a
// re-messaged error still matches its sentinel through errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeEncodingFailed = "ENCODING_FAILED"
)

// Common domain errors
var (
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrEncodingFailed = NewDomainError(CodeEncodingFailed, "Symbol encoding failed")
)
