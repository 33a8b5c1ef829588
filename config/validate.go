package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is a configuration problem. It is fatal: nothing is translated
// while the configuration is invalid.
type Error struct {
	// Source is the file or "environment" the problem came from.
	Source string
	// Problems lists invalid fields, one message per field.
	Problems []string
	// Err is the underlying read or decode error, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML key.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Validate checks the whole configuration, including the API key.
func (c *Config) Validate() error {
	return problems(validate.Struct(c))
}

// ValidateOffline is Validate without the API key check, for commands that
// never call the API.
func (c *Config) ValidateOffline() error {
	return problems(validate.StructExcept(c, "APIKey"))
}

func problems(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Err: err}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return &Error{Problems: problems}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if field == "api_key" {
			return "api_key is empty; set it in the config file, BG3LOC_API_KEY, --api-key, or run `bg3loc auth login`"
		}
		return field + " is required"
	case "contains":
		return fmt.Sprintf("%s must contain the %s placeholder", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %q)", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "url":
		return fmt.Sprintf("%s is not a valid URL: %q", field, fe.Value())
	case "nefield":
		return field + " must differ from source_language"
	case "excludesall":
		return field + " must be a plain folder name"
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range: %v", field, fe.Value())
	}
	return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
}
