package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/shared"
)

const recordsTable = "exchange_records"

var recordColumns = []string{
	"id", "sender", "receiver", "category", "action", "content",
	"emotion_score", "is_read", "is_responded", "created_at", "responded_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.ExchangeRecord, error) {
	var rec domain.ExchangeRecord
	var createdAt int64
	var respondedAt sql.NullInt64

	if err := row.Scan(
		&rec.ID, &rec.Sender, &rec.Receiver, &rec.Category, &rec.Action, &rec.Content,
		&rec.EmotionScore, &rec.IsRead, &rec.IsResponded, &createdAt, &respondedAt,
	); err != nil {
		return nil, err
	}

	rec.CreatedAt = fromMillis(createdAt)
	if respondedAt.Valid {
		ts := fromMillis(respondedAt.Int64)
		rec.RespondedAt = &ts
	}
	return &rec, nil
}

// InsertRecord stores a new exchange record and returns its id.
func (s *SQLiteStore) InsertRecord(ctx context.Context, rec *domain.ExchangeRecord) (int64, error) {
	var respondedAt any
	if rec.RespondedAt != nil {
		respondedAt = toMillis(*rec.RespondedAt)
	}

	query, args, err := builder.Insert(recordsTable).
		Columns("sender", "receiver", "category", "action", "content",
			"emotion_score", "is_read", "is_responded", "created_at", "responded_at").
		Values(rec.Sender, rec.Receiver, rec.Category, rec.Action, rec.Content,
			rec.EmotionScore, boolToInt(rec.IsRead), boolToInt(rec.IsResponded),
			toMillis(rec.CreatedAt), respondedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert record: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if shared.IsSQLiteConstraintError(err) {
		return 0, fmt.Errorf("insert record: %w", domain.NewValidationError("record", err.Error()))
	}
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record last insert id: %w", err)
	}
	return id, nil
}

// GetRecord returns a record by id.
func (s *SQLiteStore) GetRecord(ctx context.Context, id int64) (*domain.ExchangeRecord, error) {
	query, args, err := builder.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get record: %w", err)
	}

	rec, err := scanRecord(s.q(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan record row: %w", err)
	}
	return rec, nil
}

// ListPending returns every unanswered record received by receiver, newest first.
func (s *SQLiteStore) ListPending(ctx context.Context, receiver domain.Participant) ([]*domain.ExchangeRecord, error) {
	return s.listRecords(ctx, "list pending records", builder.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"receiver": receiver, "is_responded": 0}).
		OrderBy("created_at DESC", "id DESC"))
}

// ListSince returns records created at or after since, newest first.
func (s *SQLiteStore) ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.ExchangeRecord, error) {
	sb := builder.Select(recordColumns...).
		From(recordsTable).
		Where(sq.GtOrEq{"created_at": toMillis(since)}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		sb = sb.Limit(uint64(limit))
	}
	return s.listRecords(ctx, "list recent records", sb)
}

func (s *SQLiteStore) listRecords(ctx context.Context, what string, sb sq.SelectBuilder) ([]*domain.ExchangeRecord, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", what, err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer closeRows(rows, what)

	records := make([]*domain.ExchangeRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// MarkResponded closes a pending record. The WHERE clause carries the
// precondition, so of two racing responders only one sees a changed row.
func (s *SQLiteStore) MarkResponded(ctx context.Context, id int64, receiver domain.Participant, at time.Time) (bool, error) {
	query, args, err := builder.Update(recordsTable).
		Set("is_read", 1).
		Set("is_responded", 1).
		Set("responded_at", toMillis(at)).
		Where(sq.Eq{"id": id, "receiver": receiver, "is_responded": 0}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build mark responded: %w", err)
	}
	return s.execAffected(ctx, "mark responded", query, args)
}

// MarkRead flags a record as seen by its receiver.
func (s *SQLiteStore) MarkRead(ctx context.Context, id int64, receiver domain.Participant) (bool, error) {
	query, args, err := builder.Update(recordsTable).
		Set("is_read", 1).
		Where(sq.Eq{"id": id, "receiver": receiver}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build mark read: %w", err)
	}
	return s.execAffected(ctx, "mark read", query, args)
}

func (s *SQLiteStore) execAffected(ctx context.Context, what, query string, args []any) (bool, error) {
	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", what, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}
