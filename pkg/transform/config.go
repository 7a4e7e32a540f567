package transform

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DefaultWrapperName is the wrapper used when the configuration names none.
const DefaultWrapperName = "observer"

// ErrInvalidConfig is returned when a configuration cannot drive the pass.
var ErrInvalidConfig = errors.New("invalid transform config")

// Config controls one pass invocation. It is read-only once built and may be
// shared between goroutines.
type Config struct {
	// WrapperName is the higher-order function injected around components.
	WrapperName string `validate:"required,jsident"`

	// ImportSource is the module specifier the wrapper is imported from.
	ImportSource string `validate:"required"`

	// ExcludePatterns are glob patterns of files the pass must skip.
	ExcludePatterns []string

	// WrapObjectProperties also wraps JSX-returning functions stored under
	// capitalized keys of object literals assigned to variables.
	WrapObjectProperties bool
}

// WithDefaults returns a copy of c with blank fields filled in.
func (c Config) WithDefaults() Config {
	c.WrapperName = strings.TrimSpace(c.WrapperName)
	if c.WrapperName == "" {
		c.WrapperName = DefaultWrapperName
	}
	c.ImportSource = strings.TrimSpace(c.ImportSource)
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("jsident", func(fl validator.FieldLevel) bool {
		return isIdentifier(fl.Field().String())
	})
	return v
}

// Validate checks that c can drive the pass. Defaults are applied first.
func (c Config) Validate() error {
	c = c.WithDefaults()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", configKey(fe.Field())))
		case "jsident":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid identifier", configKey(fe.Field()), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", configKey(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// configKey maps a struct field to the key users write in their config.
func configKey(field string) string {
	switch field {
	case "WrapperName":
		return "import_name"
	case "ImportSource":
		return "import_path"
	default:
		return field
	}
}

// isIdentifier reports whether s can be used as a JavaScript binding name.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	if !utf8.ValidString(s) {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
