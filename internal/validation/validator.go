// Package validation decodes and checks request bodies and query strings,
// reporting every violated field at once as a single VALIDATION_ERROR.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/suteetoe/minicrm/internal/apperror"
)

// Fields is the set of JSON keys present in a decoded body.
type Fields map[string]struct{}

// Has reports whether the key was present, including with an explicit null.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Validator wraps go-playground/validator with the tags and messages used by
// the API. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	fieldErrs := map[string]string{}
	v.collect(i, fieldErrs)
	if len(fieldErrs) > 0 {
		return apperror.Validation(fieldErrs)
	}
	return nil
}

// Decode parses body as a JSON object into dst, which must be a pointer to a
// struct, and validates it.
//
// Every key is decoded on its own so that all type mismatches are reported,
// not just the first. Unknown keys are ignored. An explicit null is only
// accepted on fields tagged `patch:"nullable"`, where it leaves the field at
// its zero value; the key still shows up in the returned Fields so partial
// updates can clear the column.
func (v *Validator) Decode(body []byte, dst interface{}) (Fields, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("validation: Decode needs a pointer to a struct, got %T", dst)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &raw); err != nil || raw == nil {
		return nil, apperror.Wrap(apperror.KindInvalidRequest, "Invalid request body", err)
	}

	elem := rv.Elem()
	typ := elem.Type()
	fields := Fields{}
	fieldErrs := map[string]string{}

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		name := jsonName(sf)
		if name == "" || !sf.IsExported() {
			continue
		}
		value, ok := raw[name]
		if !ok {
			continue
		}
		fields[name] = struct{}{}

		if string(bytes.TrimSpace(value)) == "null" {
			if sf.Tag.Get("patch") != "nullable" {
				fieldErrs[name] = "must not be null"
			}
			continue
		}
		if err := json.Unmarshal(value, elem.Field(i).Addr().Interface()); err != nil {
			fieldErrs[name] = typeMessage(sf.Type)
		}
	}

	v.collect(dst, fieldErrs)
	if len(fieldErrs) > 0 {
		return fields, apperror.Validation(fieldErrs)
	}
	return fields, nil
}

// collect runs the struct tags and adds messages for fields that do not
// already have one from decoding.
func (v *Validator) collect(i interface{}, fieldErrs map[string]string) {
	err := v.validate.Struct(i)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrs["body"] = "is invalid"
		return
	}
	for _, fe := range verrs {
		if _, seen := fieldErrs[fe.Field()]; !seen {
			fieldErrs[fe.Field()] = message(fe)
		}
	}
}

func jsonName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "rfc3339":
		return "must be an RFC 3339 timestamp"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	}
	return "is invalid"
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	}
	return "has an invalid type"
}
