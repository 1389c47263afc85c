package application

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"letta-mcp-server/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return jsonFieldName(f)
	})
	return v
}

// bindArguments decodes the untyped argument bag into dst (a pointer to an
// argument struct) and validates it. A field without omitempty must be present
// and non-null; an empty string still counts as present. Every offending field
// is reported in a single *domain.ValidationError; dst must not be used when an
// error is returned.
func bindArguments(args map[string]interface{}, dst interface{}) error {
	verr := &domain.ValidationError{}
	var missing []domain.ValidationIssue

	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := jsonFieldName(field)
		if name == "" {
			continue
		}

		value, exists := args[name]
		if !exists || value == nil {
			if isRequired(field) {
				missing = append(missing, domain.ValidationIssue{
					Code:    "required",
					Path:    []string{name},
					Message: name + " is required",
				})
			}
			continue
		}

		if err := decodeField(value, rv.Field(i)); err != nil {
			verr.Issues = append(verr.Issues, domain.ValidationIssue{
				Code:    "invalid_type",
				Path:    []string{name},
				Message: fmt.Sprintf("expected %s, received %s", expectedType(field.Type), receivedType(value)),
			})
		}
	}

	verr.Issues = append(verr.Issues, missing...)

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.Wrap(err, "failed to validate arguments")
		}
		for _, fe := range fieldErrs {
			if verr.HasField(fe.Field()) {
				continue
			}
			verr.Issues = append(verr.Issues, issueFromFieldError(fe))
		}
	}

	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

// decodeField round-trips a JSON-decoded value into a typed struct field.
func decodeField(value interface{}, field reflect.Value) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, field.Addr().Interface())
}

func issueFromFieldError(fe validator.FieldError) domain.ValidationIssue {
	issue := domain.ValidationIssue{
		Code: fe.Tag(),
		Path: []string{fe.Field()},
	}

	switch fe.Tag() {
	case "required":
		issue.Message = fe.Field() + " is required"
	case "gte":
		issue.Message = fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		issue.Message = fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
	return issue
}

// jsonFieldName returns the JSON key of a struct field, or "" when it is skipped.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// isRequired mirrors the schema reflector: fields without omitempty are required.
func isRequired(f reflect.StructField) bool {
	_, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			return false
		}
	}
	return true
}

func expectedType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func receivedType(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return reflect.TypeOf(v).Kind().String()
	}
}
