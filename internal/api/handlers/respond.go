package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "Something went wrong. Please try again later."

// maxBodyBytes caps decoded JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports a request body that failed its schema. It renders
// as 400 with per-field messages.
type ValidationError struct {
	FormErrors  []string
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// FieldIssues is the "issues" member of a validation failure response.
type FieldIssues struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

type errorResponse struct {
	Message string       `json:"message"`
	Issues  *FieldIssues `json:"issues,omitempty"`
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusOf maps an error kind to its HTTP status. Unknown errors are internal.
func statusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as a `{message}` response. Anything that is not a
// domain error is logged and answered with a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		issues := &FieldIssues{FormErrors: verr.FormErrors, FieldErrors: verr.FieldErrors}
		if issues.FormErrors == nil {
			issues.FormErrors = []string{}
		}
		if issues.FieldErrors == nil {
			issues.FieldErrors = map[string][]string{}
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Validation failed", Issues: issues})
		return
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		writeJSON(w, status, errorResponse{Message: internalErrorMessage})
		return
	}
	writeJSON(w, status, errorResponse{Message: models.MessageOf(err)})
}

// decodeAndValidate reads a JSON body into dst, lets normalize adjust it and
// then checks its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, normalize func()) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ValidationError{FormErrors: []string{"Invalid request body"}}
	}
	if normalize != nil {
		normalize()
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate request: %w", err)
		}
		verr := &ValidationError{FieldErrors: make(map[string][]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			verr.FieldErrors[fe.Field()] = append(verr.FieldErrors[fe.Field()], describe(fe))
		}
		return verr
	}
	return nil
}

// describe turns a failed validation rule into a readable message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s element(s)", fe.Param())
		}
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	default:
		return "Invalid value"
	}
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed"})
}
