package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int
		want  Tier
	}{
		{-5, TierRookie},
		{0, TierRookie},
		{99, TierRookie},
		{100, TierBronze},
		{299, TierBronze},
		{300, TierSilver},
		{499, TierSilver},
		{500, TierGold},
		{999, TierGold},
		{1000, TierChampion},
		{250000, TierChampion},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.total), "total=%d", tc.total)
	}

	assert.Equal(t, TierFor(0), TierFor(99))
	assert.NotEqual(t, TierFor(99), TierFor(100))
}

func TestPairOther(t *testing.T) {
	t.Parallel()

	p := DefaultPair()
	other, err := p.Other(Me)
	require.NoError(t, err)
	assert.Equal(t, Him, other)

	other, err = p.Other(Him)
	require.NoError(t, err)
	assert.Equal(t, Me, other)

	_, err = p.Other("stranger")
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, p.Contains(""))
}

func TestActionIsResponse(t *testing.T) {
	t.Parallel()

	assert.False(t, ActionServe.IsResponse())
	assert.True(t, ActionReturn.IsResponse())
	assert.True(t, ActionSmash.IsResponse())
	assert.True(t, ActionDrop.IsResponse())
	assert.False(t, Action("lob").Valid())
	assert.False(t, Category("money").Valid())
}

func TestMatchStatusAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	m := &Match{MatchDate: now.Add(48 * time.Hour)}
	assert.Equal(t, MatchUpcoming, m.StatusAt(now))

	m = &Match{MatchDate: time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)}
	assert.Equal(t, MatchOngoing, m.StatusAt(now))

	m = &Match{MatchDate: now.Add(-48 * time.Hour)}
	assert.Equal(t, MatchCompleted, m.StatusAt(now))

	m = &Match{MatchDate: now.Add(48 * time.Hour), IsCompleted: true}
	assert.Equal(t, MatchCompleted, m.StatusAt(now))
}

func TestStorageErrorMatching(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk I/O error")
	err := fmt.Errorf("insert record: %w", NewStorageError("insert record", cause))

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert record", se.Op)

	assert.Same(t, ErrAlreadyResponded, NewStorageError("respond", ErrAlreadyResponded))
	assert.NoError(t, NewStorageError("noop", nil))
}

func TestReminderDefaults(t *testing.T) {
	t.Parallel()

	for _, rt := range ReminderTypes() {
		defaults, ok := rt.Defaults()
		require.True(t, ok, rt)
		assert.NotEmpty(t, defaults.DefaultMessage)
		assert.Positive(t, defaults.Points)
	}
	_, ok := ReminderType("yoga").Defaults()
	assert.False(t, ok)
}
