package apierror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *ProblemDetails
		wantType   string
		wantStatus int
		wantDetail string
	}{
		{"validation", NewValidationError("r", nil), TypeValidation, http.StatusBadRequest, "One or more fields failed validation"},
		{"invalid date", NewInvalidDateError("r", "date", "06/01/2024"), TypeInvalidDate, http.StatusBadRequest, "Field 'date' must be a YYYY-MM-DD date, got '06/01/2024'"},
		{"bad request", NewBadRequestError("r", "unexpected EOF", "Invalid JSON format"), TypeBadRequest, http.StatusBadRequest, "unexpected EOF"},
		{"unauthorized", NewUnauthorizedError("r"), TypeUnauthorized, http.StatusUnauthorized, "Authentication is required to access this resource"},
		{"forbidden", NewForbiddenError("r", "origin https://evil.test is not allowed"), TypeForbidden, http.StatusForbidden, "origin https://evil.test is not allowed"},
		{"not found", NewNotFoundError("r", "habit", "h-1"), TypeNotFound, http.StatusNotFound, "habit with ID 'h-1' was not found"},
		{"rate limit", NewRateLimitError("r", 60), TypeRateLimit, http.StatusTooManyRequests, "Rate limit exceeded. Please retry after 60 seconds"},
		{"internal", NewInternalError("r"), TypeInternal, http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.problem
			if p.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", p.Type, tt.wantType)
			}
			if p.Title != Title(tt.wantType) || p.Title == "" {
				t.Errorf("Title = %q, want %q", p.Title, Title(tt.wantType))
			}
			if p.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", p.Status, tt.wantStatus)
			}
			if p.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", p.Detail, tt.wantDetail)
			}
			if p.RequestID != "r" {
				t.Errorf("RequestID = %q, want r", p.RequestID)
			}
			if p.UserMessage == "" {
				t.Error("UserMessage should be set")
			}
		})
	}
}

func TestTitleUnknownType(t *testing.T) {
	if got := Title("urn:fittrack:error:nope"); got != Title(TypeInternal) {
		t.Errorf("Title(unknown) = %q, want the internal title", got)
	}
}

func TestInvalidDateErrorCarriesFieldError(t *testing.T) {
	p := NewInvalidDateError("r", "start_date", "2023-02-29")
	if len(p.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", p.Errors)
	}
	if p.Errors[0].Field != "start_date" || p.Errors[0].Code != "invalid_date" {
		t.Errorf("field error = %+v", p.Errors[0])
	}
}

func TestProblemDetailsJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: Title(TypeInternal), Status: 500})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, field := range []string{"detail", "instance", "request_id", "user_message", "retry_after", "action", "errors"} {
		if _, exists := result[field]; exists {
			t.Errorf("field %q should be omitted when empty", field)
		}
	}
	for _, field := range []string{"type", "title", "status"} {
		if _, exists := result[field]; !exists {
			t.Errorf("required field %q missing", field)
		}
	}
}

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stats/weekly", nil)

	WriteProblem(c, NewRateLimitError("req-1", 120))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
		t.Errorf("Content-Type = %q, want %q", ct, ContentTypeProblemJSON)
	}
	if ra := w.Header().Get("Retry-After"); ra != "120" {
		t.Errorf("Retry-After = %q, want 120", ra)
	}
	if !c.IsAborted() {
		t.Error("handler chain should be aborted")
	}

	var p ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Instance != "/api/v1/stats/weekly" {
		t.Errorf("Instance = %q, want the request path", p.Instance)
	}
	if p.RetryAfter == nil || *p.RetryAfter != 120 {
		t.Errorf("retry_after = %v, want 120", p.RetryAfter)
	}
}

func TestWriteProblemNoRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteProblem(c, NewInternalError("req-2"))

	if ra := w.Header().Get("Retry-After"); ra != "" {
		t.Errorf("Retry-After = %q, want none", ra)
	}
}

func TestGetRequestID(t *testing.T) {
	t.Run("gin context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set("request_id", "from-gin")
		if got := GetRequestID(c); got != "from-gin" {
			t.Errorf("GetRequestID() = %q, want from-gin", got)
		}
	})

	t.Run("request context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request = req.WithContext(logger.WithRequestID(context.Background(), "from-ctx"))
		if got := GetRequestID(c); got != "from-ctx" {
			t.Errorf("GetRequestID() = %q, want from-ctx", got)
		}
	})

	t.Run("header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")
		if got := GetRequestID(c); got != "from-header" {
			t.Errorf("GetRequestID() = %q, want from-header", got)
		}
	})
}

func TestProblemDetailsError(t *testing.T) {
	if got := NewNotFoundError("r", "habit", "h-1").Error(); got != "habit with ID 'h-1' was not found" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ProblemDetails{Title: "Bad Request"}).Error(); got != "Bad Request" {
		t.Errorf("Error() without detail = %q, want title", got)
	}
}
