package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ashureev/crushcourt/internal/domain"
)

const pointsTable = "points_log"

// InsertPoints appends one ledger entry.
func (s *SQLiteStore) InsertPoints(ctx context.Context, entry *domain.PointsEntry) (int64, error) {
	query, args, err := builder.Insert(pointsTable).
		Columns("user", "source", "points", "description", "created_at").
		Values(entry.User, entry.Source, entry.Points, entry.Description, toMillis(entry.CreatedAt)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert points: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert points: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("points last insert id: %w", err)
	}
	return id, nil
}

// SumPoints totals a user's points granted at or after since.
func (s *SQLiteStore) SumPoints(ctx context.Context, user domain.Participant, since time.Time) (int, error) {
	query, args, err := builder.Select("COALESCE(SUM(points), 0)").
		From(pointsTable).
		Where(sq.Eq{"user": user}).
		Where(sq.GtOrEq{"created_at": toMillis(since)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sum points: %w", err)
	}

	var total int64
	if err := s.q(ctx).QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return int(total), nil
}

// ListPoints returns a user's ledger entries since the cutoff, newest first.
func (s *SQLiteStore) ListPoints(ctx context.Context, user domain.Participant, since time.Time) ([]*domain.PointsEntry, error) {
	query, args, err := builder.Select("id", "user", "source", "points", "description", "created_at").
		From(pointsTable).
		Where(sq.Eq{"user": user}).
		Where(sq.GtOrEq{"created_at": toMillis(since)}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list points: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer closeRows(rows, "list points")

	entries := make([]*domain.PointsEntry, 0)
	for rows.Next() {
		var e domain.PointsEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.User, &e.Source, &e.Points, &e.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan points row: %w", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}
	return entries, nil
}
