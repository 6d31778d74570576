package response

// Body is the envelope used by lease and billing endpoints. Success responses
// carry Data; failure responses carry Error. The shape (success/error fields)
// is part of the external API contract and must not change.
type Body[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK returns a successful envelope with data.
func OK[T any](data T) *Body[T] {
	return &Body[T]{Success: true, Data: data}
}

// Fail returns a failure envelope with a human-readable error. Used for
// upstream adapter failures that must not surface as a 5xx.
func Fail(msg string) *Body[any] {
	return &Body[any]{Success: false, Error: msg}
}

// Denied is the typed 4xx body: Detail is a stable machine-readable code,
// Message a human-readable explanation in at least one language.
type Denied struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// Codes carried in Denied.Detail.
const (
	CodeAccessDenied  = "ACCESS_DENIED"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeLimitReached  = "limit_reached"
	CodeBadSignature  = "INVALID_SIGNATURE"
	CodeInternalError = "INTERNAL_ERROR"
)

// RateLimited is the 429 body for the free-preview quota.
type RateLimited struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
