// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/crushcourt/internal/domain"
)

// RecordRepository persists exchange records.
type RecordRepository interface {
	// InsertRecord stores a new record and returns its id.
	InsertRecord(ctx context.Context, rec *domain.ExchangeRecord) (int64, error)

	// GetRecord returns a record by id or domain.ErrNotFound.
	GetRecord(ctx context.Context, id int64) (*domain.ExchangeRecord, error)

	// ListPending returns records received by receiver that have no response, newest first.
	ListPending(ctx context.Context, receiver domain.Participant) ([]*domain.ExchangeRecord, error)

	// ListSince returns records created at or after since, newest first, at most limit rows.
	ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.ExchangeRecord, error)

	// MarkResponded flips a pending record received by receiver to responded.
	// It reports false without error when no pending row matched.
	MarkResponded(ctx context.Context, id int64, receiver domain.Participant, at time.Time) (bool, error)

	// MarkRead sets is_read on a record received by receiver.
	MarkRead(ctx context.Context, id int64, receiver domain.Participant) (bool, error)
}

// PointsRepository persists the append-only points ledger.
type PointsRepository interface {
	InsertPoints(ctx context.Context, entry *domain.PointsEntry) (int64, error)
	SumPoints(ctx context.Context, user domain.Participant, since time.Time) (int, error)
	ListPoints(ctx context.Context, user domain.Participant, since time.Time) ([]*domain.PointsEntry, error)
}

// HealthRepository persists health reminders and their completions.
type HealthRepository interface {
	InsertReminder(ctx context.Context, r *domain.HealthReminder) (int64, error)
	GetReminder(ctx context.Context, id int64) (*domain.HealthReminder, error)
	// ListReminders filters by owner when owner is non-empty.
	ListReminders(ctx context.Context, owner domain.Participant, activeOnly bool) ([]*domain.HealthReminder, error)
	SetReminderActive(ctx context.Context, id int64, active bool) error
	DeleteReminder(ctx context.Context, id int64) error
	InsertHealthLog(ctx context.Context, l *domain.HealthLog) (int64, error)
	// ListHealthLogs returns completions by user in [from, to).
	ListHealthLogs(ctx context.Context, user domain.Participant, from, to time.Time) ([]*domain.HealthLog, error)
}

// MatchRepository persists match reminders.
type MatchRepository interface {
	InsertMatch(ctx context.Context, m *domain.Match) (int64, error)
	GetMatch(ctx context.Context, id int64) (*domain.Match, error)
	// ListMatches returns matches dated within [from, to], earliest first.
	ListMatches(ctx context.Context, from, to time.Time) ([]*domain.Match, error)
	// CompleteMatch marks an open match completed and reports whether a row changed.
	CompleteMatch(ctx context.Context, id int64) (bool, error)
	// ListMatchesToRemind returns open matches whose reminder falls in [from, to]
	// and whose date is after now.
	ListMatchesToRemind(ctx context.Context, from, to, now time.Time) ([]*domain.Match, error)
}

// Transactor runs a unit of work inside one transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository is the full SQLite-backed store.
type Repository interface {
	RecordRepository
	PointsRepository
	HealthRepository
	MatchRepository
	Transactor

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
