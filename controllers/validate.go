package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeInto copies a loosely typed body into a typed payload and validates
// it. The returned message describes the first problem found.
func decodeInto(body map[string]interface{}, out interface{}) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	if err = json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return typeMessage(typeErr), nil
		}
		return err.Error(), nil
	}

	if err = validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldMessage(verrs[0]), nil
		}
		return "", err
	}
	return "", nil
}

func typeMessage(err *json.UnmarshalTypeError) string {
	field := err.Field
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch err.Type.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return fmt.Sprintf("%q must be a number", field)
	case reflect.Slice:
		return fmt.Sprintf("%q must be an array", field)
	case reflect.String:
		return fmt.Sprintf("%q must be a string", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "email":
		return fmt.Sprintf("%q must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", fe.Field())
	}
}
