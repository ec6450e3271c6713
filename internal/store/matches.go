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

const matchesTable = "match_reminders"

var matchColumns = []string{
	"id", "title", "opponent", "location", "match_date", "remind_at", "is_completed", "created_by", "created_at",
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var m domain.Match
	var matchDate, remindAt, createdAt int64
	if err := row.Scan(&m.ID, &m.Title, &m.Opponent, &m.Location,
		&matchDate, &remindAt, &m.IsCompleted, &m.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	m.MatchDate = fromMillis(matchDate)
	m.RemindAt = fromMillis(remindAt)
	m.CreatedAt = fromMillis(createdAt)
	return &m, nil
}

// InsertMatch stores a new match reminder.
func (s *SQLiteStore) InsertMatch(ctx context.Context, m *domain.Match) (int64, error) {
	query, args, err := builder.Insert(matchesTable).
		Columns("title", "opponent", "location", "match_date", "remind_at", "is_completed", "created_by", "created_at").
		Values(m.Title, m.Opponent, m.Location, toMillis(m.MatchDate), toMillis(m.RemindAt),
			boolToInt(m.IsCompleted), m.CreatedBy, toMillis(m.CreatedAt)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert match: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("match last insert id: %w", err)
	}
	return id, nil
}

// GetMatch returns a match by id.
func (s *SQLiteStore) GetMatch(ctx context.Context, id int64) (*domain.Match, error) {
	query, args, err := builder.Select(matchColumns...).
		From(matchesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get match: %w", err)
	}

	m, err := scanMatch(s.q(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan match row: %w", err)
	}
	return m, nil
}

// ListMatches returns matches dated within [from, to], earliest first.
func (s *SQLiteStore) ListMatches(ctx context.Context, from, to time.Time) ([]*domain.Match, error) {
	return s.listMatches(ctx, "list matches", builder.Select(matchColumns...).
		From(matchesTable).
		Where(sq.GtOrEq{"match_date": toMillis(from)}).
		Where(sq.LtOrEq{"match_date": toMillis(to)}).
		OrderBy("match_date ASC", "id ASC"))
}

// ListMatchesToRemind returns open future matches whose reminder falls in [from, to].
func (s *SQLiteStore) ListMatchesToRemind(ctx context.Context, from, to, now time.Time) ([]*domain.Match, error) {
	return s.listMatches(ctx, "list match reminders", builder.Select(matchColumns...).
		From(matchesTable).
		Where(sq.GtOrEq{"remind_at": toMillis(from)}).
		Where(sq.LtOrEq{"remind_at": toMillis(to)}).
		Where(sq.Gt{"match_date": toMillis(now)}).
		Where(sq.Eq{"is_completed": 0}).
		OrderBy("match_date ASC", "id ASC"))
}

func (s *SQLiteStore) listMatches(ctx context.Context, what string, sb sq.SelectBuilder) ([]*domain.Match, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", what, err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer closeRows(rows, what)

	matches := make([]*domain.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// CompleteMatch marks an open match completed.
func (s *SQLiteStore) CompleteMatch(ctx context.Context, id int64) (bool, error) {
	query, args, err := builder.Update(matchesTable).
		Set("is_completed", 1).
		Where(sq.Eq{"id": id, "is_completed": 0}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build complete match: %w", err)
	}
	return s.execAffected(ctx, "complete match", query, args)
}
