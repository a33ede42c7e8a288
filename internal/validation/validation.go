// Package validation checks console forms before they reach the backend. It
// never panics or throws: every check returns a Result listing field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gymdesk/membership-app/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalid matches any *Error with errors.Is.
var ErrInvalid = errors.New("validation failed")

// Result is the outcome of validating a form.
type Result struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Ok returns a passing result.
func Ok() Result {
	return Result{Valid: true}
}

// Add records msg for field. The first message recorded for a field wins.
func (r *Result) Add(field, msg string) {
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]string)
	}
	if _, exists := r.FieldErrors[field]; !exists {
		r.FieldErrors[field] = msg
	}
	r.Valid = false
}

// Merge folds other into r, prefixing its fields with prefix when set.
func (r *Result) Merge(prefix string, other Result) {
	for field, msg := range other.FieldErrors {
		if prefix != "" {
			field = prefix + "." + field
		}
		r.Add(field, msg)
	}
}

// Err converts a failing result into an *Error, or returns nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Fields: r.FieldErrors}
}

// Error carries field errors across service boundaries.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(domain.Day); ok {
			return d.Time
		}
		return nil
	}, domain.Day{})
	return v
}

// Struct runs the tag rules of s.
func Struct(s interface{}) Result {
	r := Ok()
	err := validate.Struct(s)
	if err == nil {
		return r
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		r.Add("_", err.Error())
		return r
	}
	for _, fe := range verrs {
		r.Add(fieldPath(fe), message(fe))
	}
	return r
}

// fieldPath drops the root struct name from the namespace, so nested fields
// read "cliente.cedula".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// checkCents rejects amounts with more than two decimal places.
func checkCents(r *Result, field string, amount decimal.Decimal) {
	if !amount.Equal(amount.Round(2)) {
		r.Add(field, "must have at most 2 decimal places")
	}
}
