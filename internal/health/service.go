// Package health manages the reminders partners set for each other and the
// completions logged against them.
package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/crushcourt/internal/domain"
)

// ReminderSetPoints is granted to whoever sets a reminder.
const ReminderSetPoints = 2

type reminderRepo interface {
	InsertReminder(ctx context.Context, r *domain.HealthReminder) (int64, error)
	GetReminder(ctx context.Context, id int64) (*domain.HealthReminder, error)
	ListReminders(ctx context.Context, owner domain.Participant, activeOnly bool) ([]*domain.HealthReminder, error)
	SetReminderActive(ctx context.Context, id int64, active bool) error
	DeleteReminder(ctx context.Context, id int64) error
	InsertHealthLog(ctx context.Context, l *domain.HealthLog) (int64, error)
	ListHealthLogs(ctx context.Context, user domain.Participant, from, to time.Time) ([]*domain.HealthLog, error)
}

type granter interface {
	Grant(ctx context.Context, user domain.Participant, amount int, source domain.PointSource, description string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements health reminder operations.
type Service struct {
	log    *slog.Logger
	repo   reminderRepo
	points granter
	tx     txManager
	pair   domain.Pair
	now    func() time.Time
}

// NewService creates a health service. A nil now uses time.Now.
func NewService(logger *slog.Logger, repo reminderRepo, points granter, tx txManager, pair domain.Pair, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if pair == (domain.Pair{}) {
		pair = domain.DefaultPair()
	}
	return &Service{
		log:    logger.With("service", "health"),
		repo:   repo,
		points: points,
		tx:     tx,
		pair:   pair,
		now:    now,
	}
}
