// Package apierror renders API failures as RFC 9457 problem documents
// (application/problem+json).
package apierror

// ProblemDetails is a problem document. Type, Title and Status are always set;
// the remaining members depend on the failure.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"` // request path, filled in by WriteProblem

	RequestID   string       `json:"request_id,omitempty"`
	UserMessage string       `json:"user_message,omitempty"` // safe to show in the app
	RetryAfter  *int         `json:"retry_after,omitempty"`  // seconds, mirrored in the Retry-After header
	Action      string       `json:"action,omitempty"`       // client hint, e.g. "authenticate"
	Errors      []FieldError `json:"errors,omitempty"`
}

// FieldError pins a validation failure to one request field.
// Code is machine readable (invalid_date, negative_value, out_of_range, ...).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

func newProblem(problemType string, status int, requestID, detail, userMessage string) *ProblemDetails {
	return &ProblemDetails{
		Type:        problemType,
		Title:       Title(problemType),
		Status:      status,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: userMessage,
	}
}
