package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/crushcourt/internal/domain"
)

type sample struct {
	Content  string  `json:"content"  validate:"nonblank"`
	Category string  `json:"category" validate:"required,oneof=work life love"`
	Score    float64 `json:"emotion_score" validate:"gte=1,lte=10"`
	At       string  `json:"at" validate:"omitempty,hhmm"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	err := Struct(sample{Content: "   ", Category: "money", Score: 11, At: "25:00"})
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]string{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "required", fields["content"])
	assert.Equal(t, "must be one of: work life love", fields["category"])
	assert.Equal(t, "must be at most 10", fields["emotion_score"])
	assert.Equal(t, "must be a time of day as HH:MM", fields["at"])
}

func TestStructAcceptsValidInput(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Struct(sample{Content: "hi", Category: "life", Score: 5, At: "07:45"}))
	assert.NoError(t, Struct(sample{Content: "hi", Category: "love", Score: 1}))
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	h, m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "9:05", "24:00", "12:60", "ab:cd", "12-30"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
