package apierror

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes problem as the response and aborts the handler chain.
// Retry-After is set for rate limited responses.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}
	if problem.RetryAfter != nil {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// GetRequestID returns the id assigned by the request logger, falling back to
// the request context and finally the incoming X-Request-ID header.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if c.Request == nil {
		return ""
	}
	if id := logger.RequestIDFromContext(c.Request.Context()); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// NewValidationError reports every failing field at once
func NewValidationError(requestID string, errors []FieldError) *ProblemDetails {
	p := newProblem(TypeValidation, http.StatusBadRequest, requestID,
		"One or more fields failed validation", "Please check your input and try again")
	p.Errors = errors
	return p
}

// NewInvalidDateError is returned for any date that is not YYYY-MM-DD or does
// not exist on the calendar.
func NewInvalidDateError(requestID, field, value string) *ProblemDetails {
	p := newProblem(TypeInvalidDate, http.StatusBadRequest, requestID,
		fmt.Sprintf("Field '%s' must be a YYYY-MM-DD date, got '%s'", field, value),
		"Dates must use the YYYY-MM-DD format")
	p.Errors = []FieldError{{Field: field, Message: "must be a YYYY-MM-DD date", Code: "invalid_date"}}
	return p
}

// NewBadRequestError is for bodies that could not be decoded at all
func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	return newProblem(TypeBadRequest, http.StatusBadRequest, requestID, detail, userMessage)
}

func NewUnauthorizedError(requestID string) *ProblemDetails {
	p := newProblem(TypeUnauthorized, http.StatusUnauthorized, requestID,
		"Authentication is required to access this resource", "Please sign in to continue")
	p.Action = "authenticate"
	return p
}

// NewForbiddenError rejects a request the caller may never make, such as a
// preflight from an origin that is not allowed.
func NewForbiddenError(requestID, detail string) *ProblemDetails {
	return newProblem(TypeForbidden, http.StatusForbidden, requestID, detail,
		"You don't have permission to perform this action")
}

// NewNotFoundError also covers resources owned by another user
func NewNotFoundError(requestID, resource, id string) *ProblemDetails {
	return newProblem(TypeNotFound, http.StatusNotFound, requestID,
		fmt.Sprintf("%s with ID '%s' was not found", resource, id),
		fmt.Sprintf("The requested %s could not be found", resource))
}

func NewRateLimitError(requestID string, retryAfter int) *ProblemDetails {
	p := newProblem(TypeRateLimit, http.StatusTooManyRequests, requestID,
		fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter),
		"Too many requests. Please wait before trying again.")
	p.RetryAfter = &retryAfter
	return p
}

// NewInternalError never carries the underlying error; callers log it.
func NewInternalError(requestID string) *ProblemDetails {
	return newProblem(TypeInternal, http.StatusInternalServerError, requestID,
		"An unexpected error occurred", "Something went wrong. Please try again later.")
}
