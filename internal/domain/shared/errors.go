package shared

// DomainError carries a stable machine-readable code alongside the
// human message. The HTTP layer maps codes to status codes; clients
// branch on Code, never on Message.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels for the two outcomes every service shares. More specific
// failures construct their own DomainError with a dedicated code.
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
)
