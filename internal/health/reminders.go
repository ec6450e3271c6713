package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/crushcourt/internal/domain"
)

// AddReminder stores a reminder and grants ReminderSetPoints to its setter
// in the same transaction. A blank message uses the type's default.
func (s *Service) AddReminder(ctx context.Context, in AddReminderInput) (*domain.HealthReminder, error) {
	if err := in.Validate(s.pair); err != nil {
		return nil, err
	}
	defaults, _ := in.Type.Defaults()

	r := &domain.HealthReminder{
		Type:      in.Type,
		At:        in.At,
		Message:   strings.TrimSpace(in.Message),
		Owner:     in.Owner,
		SetBy:     in.SetBy,
		Active:    true,
		CreatedAt: s.now(),
	}
	if r.Message == "" {
		r.Message = defaults.DefaultMessage
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.repo.InsertReminder(ctx, r)
		if err != nil {
			return domain.NewStorageError("insert reminder", err)
		}
		r.ID = id
		return s.points.Grant(ctx, in.SetBy, ReminderSetPoints, domain.SourceReminder,
			fmt.Sprintf("set %s reminder", in.Type))
	})
	if err != nil {
		return nil, fmt.Errorf("add reminder: %w", err)
	}

	s.log.InfoContext(ctx, "reminder added", "id", r.ID, "type", r.Type, "at", r.At, "owner", r.Owner, "set_by", r.SetBy)
	return r, nil
}

// ListReminders returns reminders for owner, or for both when owner is empty.
func (s *Service) ListReminders(ctx context.Context, owner domain.Participant, activeOnly bool) ([]*domain.HealthReminder, error) {
	if owner != "" && !s.pair.Contains(owner) {
		return nil, domain.NewValidationError("owner", fmt.Sprintf("unknown participant %q", owner))
	}
	list, err := s.repo.ListReminders(ctx, owner, activeOnly)
	if err != nil {
		return nil, domain.NewStorageError("list reminders", err)
	}
	return list, nil
}

// ToggleReminder enables or disables a reminder.
func (s *Service) ToggleReminder(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetReminderActive(ctx, id, active); err != nil {
		return domain.NewStorageError("toggle reminder", err)
	}
	s.log.InfoContext(ctx, "reminder toggled", "id", id, "active", active)
	return nil
}

// DeleteReminder removes a reminder; logged completions are kept.
func (s *Service) DeleteReminder(ctx context.Context, id int64) error {
	if err := s.repo.DeleteReminder(ctx, id); err != nil {
		return domain.NewStorageError("delete reminder", err)
	}
	s.log.InfoContext(ctx, "reminder deleted", "id", id)
	return nil
}

// LogCompletion records that user did what a reminder asked and grants the
// reminder type's points. Log and grant commit together.
func (s *Service) LogCompletion(ctx context.Context, in LogCompletionInput) (*domain.HealthLog, error) {
	if err := in.Validate(s.pair); err != nil {
		return nil, err
	}

	var entry *domain.HealthLog
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReminder(ctx, in.ReminderID)
		if err != nil {
			return domain.NewStorageError("get reminder", err)
		}
		defaults, ok := r.Type.Defaults()
		if !ok {
			return fmt.Errorf("reminder %d has unknown type %q: %w", r.ID, r.Type, domain.ErrConflict)
		}

		entry = &domain.HealthLog{
			ReminderID:  r.ID,
			Type:        r.Type,
			User:        in.User,
			Note:        strings.TrimSpace(in.Note),
			CompletedAt: s.now(),
		}
		id, err := s.repo.InsertHealthLog(ctx, entry)
		if err != nil {
			return domain.NewStorageError("insert health log", err)
		}
		entry.ID = id

		return s.points.Grant(ctx, in.User, defaults.Points, domain.SourceHealth,
			fmt.Sprintf("completed %s reminder", r.Type))
	})
	if err != nil {
		return nil, fmt.Errorf("log completion: %w", err)
	}

	s.log.InfoContext(ctx, "reminder completed", "reminder_id", entry.ReminderID, "type", entry.Type, "user", entry.User)
	return entry, nil
}
