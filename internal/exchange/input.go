package exchange

import (
	"errors"
	"fmt"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/validate"
)

// CreateRecordInput holds parameters for a new record.
type CreateRecordInput struct {
	Sender       domain.Participant `json:"sender"        validate:"required"`
	Receiver     domain.Participant `json:"receiver"      validate:"required"`
	Category     domain.Category    `json:"category"      validate:"required,oneof=work life love"`
	Action       domain.Action      `json:"action"        validate:"required,oneof=serve return smash drop"`
	Content      string             `json:"content"       validate:"nonblank,max=4000"`
	EmotionScore *float64           `json:"emotion_score" validate:"omitempty,gte=1,lte=10"`
}

// Validate checks the input against the configured pair.
func (i CreateRecordInput) Validate(pair domain.Pair) error {
	errs, err := structErrors(i)
	if err != nil {
		return err
	}

	if i.Sender != "" && !pair.Contains(i.Sender) {
		errs = append(errs, domain.FieldError{Field: "sender", Message: fmt.Sprintf("unknown participant %q", i.Sender)})
	}
	if i.Receiver != "" && !pair.Contains(i.Receiver) {
		errs = append(errs, domain.FieldError{Field: "receiver", Message: fmt.Sprintf("unknown participant %q", i.Receiver)})
	}
	if i.Sender != "" && i.Sender == i.Receiver {
		errs = append(errs, domain.FieldError{Field: "receiver", Message: "must differ from sender"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i CreateRecordInput) emotion() float64 {
	if i.EmotionScore == nil {
		return domain.DefaultEmotionScore
	}
	return *i.EmotionScore
}

// RespondInput holds parameters for answering a pending record.
type RespondInput struct {
	RecordID  int64              `json:"record_id" validate:"gt=0"`
	Responder domain.Participant `json:"responder" validate:"required"`
	Action    domain.Action      `json:"action"    validate:"required,oneof=return smash drop"`
	Content   string             `json:"content"   validate:"nonblank,max=4000"`
}

// Validate checks the input against the configured pair.
func (i RespondInput) Validate(pair domain.Pair) error {
	errs, err := structErrors(i)
	if err != nil {
		return err
	}
	if i.Responder != "" && !pair.Contains(i.Responder) {
		errs = append(errs, domain.FieldError{Field: "responder", Message: fmt.Sprintf("unknown participant %q", i.Responder)})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func structErrors(v any) ([]domain.FieldError, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Errors, nil
	}
	return nil, err
}
