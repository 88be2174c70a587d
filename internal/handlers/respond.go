package handlers

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/JonnyWalker81/fittrack/backend/internal/apierror"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
	"github.com/JonnyWalker81/fittrack/backend/internal/service"
)

// currentUser returns the authenticated user id, writing a 401 when absent
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID, true
}

// writeError maps service and repository errors onto problem responses.
// Unexpected errors are logged and reported as a bare 500.
func writeError(c *gin.Context, err error, resource, id string) {
	requestID := apierror.GetRequestID(c)

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: ve.Field, Message: ve.Message, Code: ve.Code},
		}))
	case errors.Is(err, service.ErrHabitNotFound), errors.Is(err, repository.ErrNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, resource, id))
	case errors.Is(err, service.ErrUnknownEntityType):
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "type", Message: err.Error(), Code: service.CodeInvalidType},
		}))
	default:
		logger.Ctx(c.Request.Context()).Error("request failed",
			logger.Err(err),
			logger.String("path", c.FullPath()),
		)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}

// bindOptionalJSON binds a body whose fields are all optional. An empty body is
// not an error. It writes the problem response and returns false on failure.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	requestID := apierror.GetRequestID(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fieldErrors(obj, verrs)))
		return false
	}
	apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
	return false
}

func fieldErrors(obj any, verrs validator.ValidationErrors) []apierror.FieldError {
	out := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonFieldName(reflect.TypeOf(obj), fe.StructNamespace())
		msg := fmt.Sprintf("failed %s validation", fe.Tag())
		code := fe.Tag()
		if fe.Tag() == "gte" {
			msg = "must be greater than or equal to " + fe.Param()
			code = service.CodeNegative
		}
		out = append(out, apierror.FieldError{Field: field, Message: msg, Code: code})
	}
	return out
}

// jsonFieldName resolves a validator namespace such as
// MarkCompletedRequest.ActualValue to the json path clients sent (actual_value).
// Fields without a json tag keep their Go name.
func jsonFieldName(t reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			names = append(names, part)
			t = nil
			continue
		}
		sf, ok := t.FieldByName(part)
		if !ok {
			names = append(names, part)
			t = nil
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			name = sf.Name
		}
		names = append(names, name)
		t = sf.Type
	}
	return strings.Join(names, ".")
}

// optionalDate parses an optional YYYY-MM-DD value. Nil or empty means "today"
// and is returned as nil.
func optionalDate(c *gin.Context, field string, raw *string) (*models.Date, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(*raw)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidDateError(apierror.GetRequestID(c), field, *raw))
		return nil, false
	}
	return &d, true
}

// requiredDateQuery parses a mandatory YYYY-MM-DD query parameter
func requiredDateQuery(c *gin.Context, field string) (models.Date, bool) {
	raw := c.Query(field)
	if raw == "" {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
			{Field: field, Message: "is required", Code: "required"},
		}))
		return models.Date{}, false
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidDateError(apierror.GetRequestID(c), field, raw))
		return models.Date{}, false
	}
	return d, true
}

// intQuery reads an optional integer query parameter
func intQuery(c *gin.Context, field string, def int) (int, bool) {
	raw := c.Query(field)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
			{Field: field, Message: "must be an integer", Code: service.CodeInvalidType},
		}))
		return 0, false
	}
	return n, true
}
