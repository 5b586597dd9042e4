package dto

// Envelope wraps every successful response body.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody is the structured part of an error response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the body of every failed request. Message repeats
// Error.Message at the top level; Denied is set for refused logins of denied accounts.
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	Message string    `json:"message"`
	Denied  bool      `json:"denied,omitempty"`
}
