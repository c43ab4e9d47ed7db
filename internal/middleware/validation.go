package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
)

var corpCodePattern = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// Validator validates request contracts using struct tags
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a validator with the custom rules registered.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	// corp codes end up in file system paths
	_ = v.RegisterValidation("corpcode", isCorpCode)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger.With(slog.String("component", "validator")),
	}
}

// ValidateStruct validates a struct and returns an API validation error
func (m *Validator) ValidateStruct(v interface{}) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// BindQuery fills dst from the query string using the `query` struct tag
// and validates the result. String, int and *int fields are supported.
func (m *Validator) BindQuery(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind query: destination must be a pointer to struct, got %T", dst)
	}
	elem := rv.Elem()
	query := r.URL.Query()

	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		name := field.Tag.Get("query")
		if name == "" || !query.Has(name) {
			continue
		}
		raw := strings.TrimSpace(query.Get(name))
		target := elem.Field(i)

		switch {
		case target.Kind() == reflect.String:
			target.SetString(raw)
		case target.Kind() == reflect.Int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return apierrors.ErrValidation(name, fmt.Sprintf("%s must be a valid integer", name))
			}
			target.SetInt(int64(n))
		case target.Kind() == reflect.Pointer && target.Type().Elem().Kind() == reflect.Int:
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return apierrors.ErrValidation(name, fmt.Sprintf("%s must be a valid integer", name))
			}
			target.Set(reflect.ValueOf(&n))
		}
	}

	if err := m.ValidateStruct(dst); err != nil {
		m.logger.DebugContext(r.Context(), "query validation failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		return err
	}
	return nil
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "corpcode":
		return fmt.Sprintf("%s may only contain letters, digits, '_' and '-'", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isCorpCode rejects anything that could escape the filings root
func isCorpCode(fl validator.FieldLevel) bool {
	return corpCodePattern.MatchString(fl.Field().String())
}
