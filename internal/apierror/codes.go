package apierror

const typePrefix = "urn:fittrack:error:"

// Problem type URIs, used as the "type" member of a problem document
const (
	TypeValidation   = typePrefix + "validation"
	TypeInvalidDate  = typePrefix + "invalid_date"
	TypeBadRequest   = typePrefix + "bad_request"
	TypeUnauthorized = typePrefix + "unauthorized"
	TypeForbidden    = typePrefix + "forbidden"
	TypeNotFound     = typePrefix + "not_found"
	TypeRateLimit    = typePrefix + "rate_limit"
	TypeInternal     = typePrefix + "internal"
)

var titles = map[string]string{
	TypeValidation:   "Validation Error",
	TypeInvalidDate:  "Invalid Date",
	TypeBadRequest:   "Bad Request",
	TypeUnauthorized: "Authentication Required",
	TypeForbidden:    "Permission Denied",
	TypeNotFound:     "Resource Not Found",
	TypeRateLimit:    "Rate Limit Exceeded",
	TypeInternal:     "Internal Server Error",
}

// Title returns the fixed summary for a problem type
func Title(problemType string) string {
	if t, ok := titles[problemType]; ok {
		return t
	}
	return titles[TypeInternal]
}
