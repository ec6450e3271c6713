package health

import (
	"errors"
	"fmt"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/validate"
)

// AddReminderInput holds parameters for a new reminder.
type AddReminderInput struct {
	Type    domain.ReminderType `json:"type"    validate:"required,oneof=water breakfast lunch dinner sleep"`
	At      string              `json:"at"      validate:"required,hhmm"`
	Message string              `json:"message" validate:"max=200"`
	Owner   domain.Participant  `json:"owner"   validate:"required"`
	SetBy   domain.Participant  `json:"set_by"  validate:"required"`
}

// Validate checks the input against the configured pair.
func (i AddReminderInput) Validate(pair domain.Pair) error {
	return withPair(i, pair, map[string]domain.Participant{"owner": i.Owner, "set_by": i.SetBy})
}

// LogCompletionInput holds parameters for completing a reminder.
type LogCompletionInput struct {
	ReminderID int64              `json:"reminder_id" validate:"gt=0"`
	User       domain.Participant `json:"user"        validate:"required"`
	Note       string             `json:"note"        validate:"max=500"`
}

// Validate checks the input against the configured pair.
func (i LogCompletionInput) Validate(pair domain.Pair) error {
	return withPair(i, pair, map[string]domain.Participant{"user": i.User})
}

func withPair(v any, pair domain.Pair, who map[string]domain.Participant) error {
	var errs []domain.FieldError
	if err := validate.Struct(v); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		errs = ve.Errors
	}
	for _, field := range []string{"owner", "set_by", "user"} {
		p, ok := who[field]
		if ok && p != "" && !pair.Contains(p) {
			errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf("unknown participant %q", p)})
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
