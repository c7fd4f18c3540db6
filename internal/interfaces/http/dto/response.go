package dto

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, detail string) ErrorResponse {
	return ErrorResponse{Detail: detail, Code: code}
}

// StatusResponse acknowledges a request without further data
type StatusResponse struct {
	Status string `json:"status"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupResponse reports a created credential
type SignupResponse struct {
	Status       string `json:"status"`
	Username     string `json:"username"`
	TenantSchema string `json:"tenant_schema"`
}

// HealthResponse is returned by the readiness probe
type HealthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database,omitempty"`
	Dialect  string            `json:"dialect,omitempty"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// CreatedResponse reports the id of a created record
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// MemberListResponse is one page of the member API listing
type MemberListResponse[T any] struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
	Members  []T   `json:"members"`
}
