// Package validate checks input structs with go-playground/validator and
// reports failures as domain validation errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ashureev/crushcourt/internal/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(f.Name)
			}
			return name
		})
		_ = instance.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = instance.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, _, err := ParseClock(fl.Field().String())
			return err == nil
		})
	})
	return instance
}

// Struct validates v and returns a *domain.ValidationError listing every
// failed field, or nil.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return &domain.ValidationError{Errors: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "hhmm":
		return "must be a time of day as HH:MM"
	default:
		return "failed " + fe.Tag()
	}
}

// ParseClock parses an HH:MM wall-clock string.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q: out of range", s)
	}
	return hour, minute, nil
}
