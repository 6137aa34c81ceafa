package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps JSON request bodies decoded by DecodeAndValidate.
const maxBodyBytes = 1 << 20

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// jsonFieldName reports fields by the name the client sent.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// Validate checks s against its validate tags. Field failures come back as
// *ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists every failing field of one struct.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = describe(fe)
	}
	return strings.Join(parts, "; ")
}

// Message is the first failure as one sentence, for the
// {success:false, message} envelope.
func (e *ValidationError) Message() string {
	if len(e.Errors) == 0 {
		return "invalid request"
	}
	return describe(e.Errors[0])
}

// Fields maps each failing field to its message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = tagMessage(fe)
	}
	return fields
}

func describe(fe validator.FieldError) string {
	return fe.Field() + " " + tagMessage(fe)
}

var tagMessages = map[string]string{
	"required": "is required",
	"notblank": "is required",
	"email":    "must be a valid email address",
	"max":      "must be at most %s characters",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"oneof":    "must be one of: %s",
}

func tagMessage(fe validator.FieldError) string {
	if fe.Tag() == "min" {
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	}
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// DecodeAndValidate decodes at most 1 MiB of JSON from r into dst and
// validates it.
func DecodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return Validate(dst)
}
