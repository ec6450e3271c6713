// Package matches tracks the tournament matches one partner plays and the
// cheers the other sends.
package matches

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/validate"
)

// Points granted by match operations.
const (
	AddPoints      = 10
	CompletePoints = 15
)

// ReminderSlack is how far either side of now a match reminder counts as current.
const ReminderSlack = time.Hour

type matchRepo interface {
	InsertMatch(ctx context.Context, m *domain.Match) (int64, error)
	GetMatch(ctx context.Context, id int64) (*domain.Match, error)
	ListMatches(ctx context.Context, from, to time.Time) ([]*domain.Match, error)
	CompleteMatch(ctx context.Context, id int64) (bool, error)
	ListMatchesToRemind(ctx context.Context, from, to, now time.Time) ([]*domain.Match, error)
}

type granter interface {
	Grant(ctx context.Context, user domain.Participant, amount int, source domain.PointSource, description string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements match operations.
type Service struct {
	log    *slog.Logger
	repo   matchRepo
	points granter
	tx     txManager
	pair   domain.Pair
	now    func() time.Time
}

// NewService creates a matches service. A nil now uses time.Now.
func NewService(logger *slog.Logger, repo matchRepo, points granter, tx txManager, pair domain.Pair, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if pair == (domain.Pair{}) {
		pair = domain.DefaultPair()
	}
	return &Service{
		log:    logger.With("service", "matches"),
		repo:   repo,
		points: points,
		tx:     tx,
		pair:   pair,
		now:    now,
	}
}

// AddMatchInput holds parameters for a new match.
type AddMatchInput struct {
	Title     string             `json:"title"      validate:"nonblank,max=200"`
	Opponent  string             `json:"opponent"   validate:"max=200"`
	Location  string             `json:"location"   validate:"max=200"`
	MatchDate time.Time          `json:"match_date" validate:"required"`
	RemindAt  *time.Time         `json:"remind_at"`
	CreatedBy domain.Participant `json:"created_by" validate:"required"`
}

// CheerInput holds parameters for cheering on a match.
type CheerInput struct {
	MatchID int64              `json:"match_id" validate:"gt=0"`
	By      domain.Participant `json:"by"       validate:"required"`
	Kind    domain.CheerKind   `json:"kind"     validate:"required,oneof=message voice surprise celebration"`
	Message string             `json:"message"  validate:"max=500"`
}

func (s *Service) checkParticipant(field string, who domain.Participant, err error) error {
	var errs []domain.FieldError
	if err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		errs = ve.Errors
	}
	if who != "" && !s.pair.Contains(who) {
		errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf("unknown participant %q", who)})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// AddMatch stores a match and grants AddPoints to its creator. Without an
// explicit reminder time the reminder goes off one day before the match.
func (s *Service) AddMatch(ctx context.Context, in AddMatchInput) (*domain.Match, error) {
	if err := s.checkParticipant("created_by", in.CreatedBy, validate.Struct(in)); err != nil {
		return nil, err
	}

	m := &domain.Match{
		Title:     strings.TrimSpace(in.Title),
		Opponent:  strings.TrimSpace(in.Opponent),
		Location:  strings.TrimSpace(in.Location),
		MatchDate: in.MatchDate,
		RemindAt:  in.MatchDate.AddDate(0, 0, -1),
		CreatedBy: in.CreatedBy,
		CreatedAt: s.now(),
	}
	if in.RemindAt != nil {
		m.RemindAt = *in.RemindAt
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.repo.InsertMatch(ctx, m)
		if err != nil {
			return domain.NewStorageError("insert match", err)
		}
		m.ID = id
		return s.points.Grant(ctx, in.CreatedBy, AddPoints, domain.SourceMatch, "added match: "+m.Title)
	})
	if err != nil {
		return nil, fmt.Errorf("add match: %w", err)
	}

	s.log.InfoContext(ctx, "match added", "id", m.ID, "title", m.Title, "match_date", m.MatchDate)
	return m, nil
}

// ListMatches returns matches dated within windowDays either side of now,
// earliest first, optionally narrowed to one status.
func (s *Service) ListMatches(ctx context.Context, status domain.MatchStatus, windowDays int) ([]*domain.Match, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of: upcoming ongoing completed")
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	now := s.now()
	all, err := s.repo.ListMatches(ctx, now.AddDate(0, 0, -windowDays), now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, domain.NewStorageError("list matches", err)
	}
	if status == "" {
		return all, nil
	}

	todayStart := dayStart(now)
	todayEnd := todayStart.AddDate(0, 0, 1)
	out := make([]*domain.Match, 0, len(all))
	for _, m := range all {
		var keep bool
		switch status {
		case domain.MatchUpcoming:
			keep = !m.IsCompleted && m.MatchDate.After(now)
		case domain.MatchCompleted:
			keep = m.IsCompleted
		case domain.MatchOngoing:
			keep = !m.IsCompleted && !m.MatchDate.Before(todayStart) && !m.MatchDate.After(todayEnd)
		}
		if keep {
			out = append(out, m)
		}
	}
	return out, nil
}

// Status derives a match's status at the current time.
func (s *Service) Status(m *domain.Match) domain.MatchStatus {
	return m.StatusAt(s.now())
}

// CompleteMatch marks a match finished and grants CompletePoints to by.
// Completing an already completed match is domain.ErrConflict.
func (s *Service) CompleteMatch(ctx context.Context, id int64, by domain.Participant) error {
	if err := s.checkParticipant("by", by, nil); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetMatch(ctx, id)
		if err != nil {
			return domain.NewStorageError("get match", err)
		}
		changed, err := s.repo.CompleteMatch(ctx, id)
		if err != nil {
			return domain.NewStorageError("complete match", err)
		}
		if !changed {
			return fmt.Errorf("match %d already completed: %w", id, domain.ErrConflict)
		}
		return s.points.Grant(ctx, by, CompletePoints, domain.SourceMatch, "completed match: "+m.Title)
	})
	if err != nil {
		return fmt.Errorf("complete match: %w", err)
	}

	s.log.InfoContext(ctx, "match completed", "id", id, "by", by)
	return nil
}

// UpcomingReminders returns open future matches whose reminder time is
// within ReminderSlack of now.
func (s *Service) UpcomingReminders(ctx context.Context) ([]*domain.Match, error) {
	now := s.now()
	list, err := s.repo.ListMatchesToRemind(ctx, now.Add(-ReminderSlack), now.Add(ReminderSlack), now)
	if err != nil {
		return nil, domain.NewStorageError("list match reminders", err)
	}
	return list, nil
}

// Cheer grants the cheer kind's points to its sender.
func (s *Service) Cheer(ctx context.Context, in CheerInput) (int, error) {
	if err := s.checkParticipant("by", in.By, validate.Struct(in)); err != nil {
		return 0, err
	}
	amount, _ := in.Kind.Points()

	m, err := s.repo.GetMatch(ctx, in.MatchID)
	if err != nil {
		return 0, fmt.Errorf("cheer: %w", domain.NewStorageError("get match", err))
	}
	if err := s.points.Grant(ctx, in.By, amount, domain.SourceCheer, fmt.Sprintf("cheered (%s) for %s", in.Kind, m.Title)); err != nil {
		return 0, fmt.Errorf("cheer: %w", err)
	}

	s.log.InfoContext(ctx, "cheer sent", "match_id", m.ID, "by", in.By, "kind", in.Kind)
	return amount, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
