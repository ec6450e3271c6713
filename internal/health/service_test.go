package health

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/points"
	"github.com/ashureev/crushcourt/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestService(t *testing.T, c *clock) (*Service, *points.Service) {
	t.Helper()

	st, err := store.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "health.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := points.NewService(log, st, points.Config{Now: c.Now})
	return NewService(log, st, ledger, st, domain.DefaultPair(), c.Now), ledger
}

func TestAddReminderGrantsSetter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc, ledger := newTestService(t, c)

	r, err := svc.AddReminder(ctx, AddReminderInput{
		Type: domain.ReminderWater, At: "09:30", Owner: domain.Him, SetBy: domain.Me,
	})
	require.NoError(t, err)
	assert.Positive(t, r.ID)
	assert.True(t, r.Active)
	assert.Equal(t, "Time for some water, love!", r.Message, "blank message falls back to the default")

	total, err := ledger.Total(ctx, domain.Me, 0)
	require.NoError(t, err)
	assert.Equal(t, ReminderSetPoints, total)

	_, err = svc.AddReminder(ctx, AddReminderInput{
		Type: domain.ReminderSleep, At: "25:00", Owner: domain.Him, SetBy: domain.Me,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddReminder(ctx, AddReminderInput{
		Type: "yoga", At: "07:00", Owner: "stranger", SetBy: domain.Me,
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestCompletionAndDueState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	svc, ledger := newTestService(t, c)

	water, err := svc.AddReminder(ctx, AddReminderInput{Type: domain.ReminderWater, At: "09:30", Owner: domain.Him, SetBy: domain.Me})
	require.NoError(t, err)
	_, err = svc.AddReminder(ctx, AddReminderInput{Type: domain.ReminderSleep, At: "23:00", Owner: domain.Him, SetBy: domain.Me})
	require.NoError(t, err)

	due, err := svc.DueReminders(ctx, domain.Him)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, domain.ReminderWater, due[0].Type)

	logEntry, err := svc.LogCompletion(ctx, LogCompletionInput{ReminderID: water.ID, User: domain.Him, Note: " two glasses "})
	require.NoError(t, err)
	assert.Equal(t, "two glasses", logEntry.Note)

	total, err := ledger.Total(ctx, domain.Him, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	views, err := svc.Today(ctx, domain.Him)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, StateCompleted, views[0].State)
	assert.Equal(t, StateWaiting, views[1].State)

	due, err = svc.DueReminders(ctx, domain.Him)
	require.NoError(t, err)
	assert.Empty(t, due)

	c.t = c.t.AddDate(0, 0, 1)
	due, err = svc.DueReminders(ctx, domain.Him)
	require.NoError(t, err)
	assert.Len(t, due, 1, "completion only counts for its own day")

	_, err = svc.LogCompletion(ctx, LogCompletionInput{ReminderID: 999, User: domain.Him})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(t, c)

	r, err := svc.AddReminder(ctx, AddReminderInput{Type: domain.ReminderLunch, At: "12:00", Owner: domain.Me, SetBy: domain.Him, Message: "eat!"})
	require.NoError(t, err)

	require.NoError(t, svc.ToggleReminder(ctx, r.ID, false))
	active, err := svc.ListReminders(ctx, domain.Me, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.DeleteReminder(ctx, r.ID))
	assert.ErrorIs(t, svc.DeleteReminder(ctx, r.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.ToggleReminder(ctx, r.ID, true), domain.ErrNotFound)

	_, err = svc.ListReminders(ctx, "stranger", false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFireTimeAndIsDue(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 6, 1, 9, 30, 0, 0, loc)

	fire, err := FireTime("09:30", now)
	require.NoError(t, err)
	assert.True(t, fire.Equal(now))

	fire, err = FireTime("00:00", now)
	require.NoError(t, err)
	assert.True(t, fire.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, loc)))

	r := &domain.HealthReminder{Type: domain.ReminderDinner, At: "18:00"}
	due, err := IsDue(r, now, nil)
	require.NoError(t, err)
	assert.False(t, due)

	due, err = IsDue(r, now.Add(9*time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, due)

	due, err = IsDue(r, now.Add(9*time.Hour), map[domain.ReminderType]bool{domain.ReminderDinner: true})
	require.NoError(t, err)
	assert.False(t, due)

	_, err = FireTime("9:30", now)
	assert.Error(t, err)
}
