package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"image_generation_server/entities"

	"github.com/go-playground/validator/v10"
)

const bodyField = "body"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of a request that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		messages = append(messages, field.Message)
	}

	return strings.Join(messages, "; ")
}

// Message is the first field message, used as the client facing summary.
func (e *ValidationError) Message() string {
	if len(e.Fields) == 0 {
		return "Invalid request"
	}

	return e.Fields[0].Message
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// DecodeGenerationRequest turns a raw JSON body into a typed request. Field rules
// are left to ValidateGenerationRequest.
func DecodeGenerationRequest(body []byte) (*entities.GenerationRequest, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: bodyField, Message: "Request body is required"},
		}}
	}

	req := &entities.GenerationRequest{}

	err := json.Unmarshal(body, req)
	if err != nil {
		return nil, decodeError(err)
	}

	return req, nil
}

func decodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{Fields: []FieldError{
			{Field: typeErr.Field, Message: fmt.Sprintf("%s must be a %s", fieldLabel(typeErr.Field), typeName(typeErr.Type))},
		}}
	}

	return &ValidationError{Fields: []FieldError{
		{Field: bodyField, Message: "Request body must be a valid JSON object"},
	}}
}

// ValidateGenerationRequest fills in the default model and checks the request fields.
func ValidateGenerationRequest(req *entities.GenerationRequest) error {
	if req == nil {
		return &ValidationError{Fields: []FieldError{
			{Field: bodyField, Message: "Request body is required"},
		}}
	}

	if req.Model == "" {
		req.Model = entities.DefaultModel
	}

	err := structValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	validationErr := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fieldErr := range fieldErrs {
		validationErr.Fields = append(validationErr.Fields, FieldError{
			Field:   fieldErr.Field(),
			Message: fieldMessage(fieldErr),
		})
	}

	return validationErr
}

func fieldMessage(fieldErr validator.FieldError) string {
	label := fieldLabel(fieldErr.Field())

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", label, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func fieldLabel(field string) string {
	if field == "" {
		return field
	}

	return strings.ToUpper(field[:1]) + field[1:]
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}
