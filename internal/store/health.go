package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ashureev/crushcourt/internal/domain"
)

const (
	remindersTable  = "health_reminders"
	healthLogsTable = "health_logs"
)

var reminderColumns = []string{
	"id", "reminder_type", "reminder_time", "message", "owner", "set_by", "is_active", "created_at",
}

func scanReminder(row rowScanner) (*domain.HealthReminder, error) {
	var r domain.HealthReminder
	var createdAt int64
	if err := row.Scan(&r.ID, &r.Type, &r.At, &r.Message, &r.Owner, &r.SetBy, &r.Active, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}

// InsertReminder stores a new health reminder.
func (s *SQLiteStore) InsertReminder(ctx context.Context, r *domain.HealthReminder) (int64, error) {
	query, args, err := builder.Insert(remindersTable).
		Columns("reminder_type", "reminder_time", "message", "owner", "set_by", "is_active", "created_at").
		Values(r.Type, r.At, r.Message, r.Owner, r.SetBy, boolToInt(r.Active), toMillis(r.CreatedAt)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert reminder: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reminder last insert id: %w", err)
	}
	return id, nil
}

// GetReminder returns a reminder by id.
func (s *SQLiteStore) GetReminder(ctx context.Context, id int64) (*domain.HealthReminder, error) {
	query, args, err := builder.Select(reminderColumns...).
		From(remindersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reminder: %w", err)
	}

	r, err := scanReminder(s.q(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reminder %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan reminder row: %w", err)
	}
	return r, nil
}

// ListReminders returns reminders ordered by time of day.
func (s *SQLiteStore) ListReminders(ctx context.Context, owner domain.Participant, activeOnly bool) ([]*domain.HealthReminder, error) {
	sb := builder.Select(reminderColumns...).
		From(remindersTable).
		OrderBy("reminder_time ASC", "id ASC")
	if owner != "" {
		sb = sb.Where(sq.Eq{"owner": owner})
	}
	if activeOnly {
		sb = sb.Where(sq.Eq{"is_active": 1})
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reminders: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer closeRows(rows, "list reminders")

	reminders := make([]*domain.HealthReminder, 0)
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder row: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return reminders, nil
}

// SetReminderActive enables or disables a reminder.
func (s *SQLiteStore) SetReminderActive(ctx context.Context, id int64, active bool) error {
	query, args, err := builder.Update(remindersTable).
		Set("is_active", boolToInt(active)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build toggle reminder: %w", err)
	}

	changed, err := s.execAffected(ctx, "toggle reminder", query, args)
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("reminder %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteReminder removes a reminder. Its completion history is kept.
func (s *SQLiteStore) DeleteReminder(ctx context.Context, id int64) error {
	query, args, err := builder.Delete(remindersTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete reminder: %w", err)
	}

	changed, err := s.execAffected(ctx, "delete reminder", query, args)
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("reminder %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// InsertHealthLog records a reminder completion.
func (s *SQLiteStore) InsertHealthLog(ctx context.Context, l *domain.HealthLog) (int64, error) {
	query, args, err := builder.Insert(healthLogsTable).
		Columns("reminder_id", "reminder_type", "user", "note", "completed_at").
		Values(l.ReminderID, l.Type, l.User, l.Note, toMillis(l.CompletedAt)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert health log: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert health log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("health log last insert id: %w", err)
	}
	return id, nil
}

// ListHealthLogs returns a user's completions in [from, to), oldest first.
func (s *SQLiteStore) ListHealthLogs(ctx context.Context, user domain.Participant, from, to time.Time) ([]*domain.HealthLog, error) {
	query, args, err := builder.Select("id", "reminder_id", "reminder_type", "user", "note", "completed_at").
		From(healthLogsTable).
		Where(sq.Eq{"user": user}).
		Where(sq.GtOrEq{"completed_at": toMillis(from)}).
		Where(sq.Lt{"completed_at": toMillis(to)}).
		OrderBy("completed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list health logs: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list health logs: %w", err)
	}
	defer closeRows(rows, "list health logs")

	logs := make([]*domain.HealthLog, 0)
	for rows.Next() {
		var l domain.HealthLog
		var completedAt int64
		if err := rows.Scan(&l.ID, &l.ReminderID, &l.Type, &l.User, &l.Note, &completedAt); err != nil {
			return nil, fmt.Errorf("scan health log row: %w", err)
		}
		l.CompletedAt = fromMillis(completedAt)
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health logs: %w", err)
	}
	return logs, nil
}
