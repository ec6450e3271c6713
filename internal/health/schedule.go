package health

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/validate"
)

// State is where a reminder stands today.
type State string

const (
	StateWaiting   State = "waiting"
	StateDue       State = "due"
	StateCompleted State = "completed"
)

// ReminderView pairs a reminder with its state for today.
type ReminderView struct {
	*domain.HealthReminder
	State  State     `json:"state"`
	FireAt time.Time `json:"fire_at"`
}

// TodayCompletions returns user's completions since local midnight.
func (s *Service) TodayCompletions(ctx context.Context, user domain.Participant) ([]*domain.HealthLog, error) {
	start := dayStart(s.now())
	logs, err := s.repo.ListHealthLogs(ctx, user, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, domain.NewStorageError("list health logs", err)
	}
	return logs, nil
}

// Today returns owner's active reminders with their state at the current time.
func (s *Service) Today(ctx context.Context, owner domain.Participant) ([]ReminderView, error) {
	reminders, err := s.ListReminders(ctx, owner, true)
	if err != nil {
		return nil, err
	}
	logs, err := s.TodayCompletions(ctx, owner)
	if err != nil {
		return nil, err
	}
	done := make(map[domain.ReminderType]bool, len(logs))
	for _, l := range logs {
		done[l.Type] = true
	}

	now := s.now()
	views := make([]ReminderView, 0, len(reminders))
	for _, r := range reminders {
		fire, err := FireTime(r.At, now)
		if err != nil {
			s.log.WarnContext(ctx, "skipping reminder with bad time", "id", r.ID, "at", r.At, "error", err)
			continue
		}
		v := ReminderView{HealthReminder: r, FireAt: fire, State: StateWaiting}
		switch {
		case done[r.Type]:
			v.State = StateCompleted
		case !fire.After(now):
			v.State = StateDue
		}
		views = append(views, v)
	}
	return views, nil
}

// DueReminders returns owner's reminders whose time has passed today and
// whose type has not been completed today.
func (s *Service) DueReminders(ctx context.Context, owner domain.Participant) ([]ReminderView, error) {
	views, err := s.Today(ctx, owner)
	if err != nil {
		return nil, err
	}
	due := views[:0]
	for _, v := range views {
		if v.State == StateDue {
			due = append(due, v)
		}
	}
	return due, nil
}

// IsDue reports whether r fires at or before now and its type is not in
// completedToday.
func IsDue(r *domain.HealthReminder, now time.Time, completedToday map[domain.ReminderType]bool) (bool, error) {
	fire, err := FireTime(r.At, now)
	if err != nil {
		return false, err
	}
	return !fire.After(now) && !completedToday[r.Type], nil
}

// FireTime returns the moment on now's calendar day at which a daily HH:MM
// reminder goes off.
func FireTime(at string, now time.Time) (time.Time, error) {
	hour, minute, err := validate.ParseClock(at)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse reminder schedule: %w", err)
	}
	return sched.Next(dayStart(now).Add(-time.Second)), nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
