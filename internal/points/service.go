// Package points owns the append-only points ledger and the tiers derived
// from it.
package points

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/metrics"
	"github.com/ashureev/crushcourt/internal/store"
)

// ledgerRepo defines the storage the ledger needs.
type ledgerRepo interface {
	InsertPoints(ctx context.Context, entry *domain.PointsEntry) (int64, error)
	SumPoints(ctx context.Context, user domain.Participant, since time.Time) (int, error)
	ListPoints(ctx context.Context, user domain.Participant, since time.Time) ([]*domain.PointsEntry, error)
}

// Config parameterizes the ledger.
type Config struct {
	Pair       domain.Pair
	WindowDays int
	Now        func() time.Time
}

// Service appends grants and derives totals.
type Service struct {
	log        *slog.Logger
	repo       ledgerRepo
	pair       domain.Pair
	windowDays int
	now        func() time.Time
}

// NewService creates a points ledger service.
func NewService(logger *slog.Logger, repo ledgerRepo, cfg Config) *Service {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Pair == (domain.Pair{}) {
		cfg.Pair = domain.DefaultPair()
	}
	return &Service{
		log:        logger.With("service", "points"),
		repo:       repo,
		pair:       cfg.Pair,
		windowDays: cfg.WindowDays,
		now:        cfg.Now,
	}
}

// Grant appends one ledger entry. Storage failures are returned as
// *domain.StorageError.
func (s *Service) Grant(ctx context.Context, user domain.Participant, amount int, source domain.PointSource, description string) error {
	if !s.pair.Contains(user) {
		return domain.NewValidationError("user", fmt.Sprintf("unknown participant %q", user))
	}

	entry := &domain.PointsEntry{
		User:        user,
		Source:      source,
		Points:      amount,
		Description: description,
		CreatedAt:   s.now(),
	}
	if _, err := s.repo.InsertPoints(ctx, entry); err != nil {
		return domain.NewStorageError("grant points", err)
	}

	store.AfterCommit(ctx, func() { metrics.ObserveGrant(string(source), amount) })
	s.log.DebugContext(ctx, "points granted", "user", user, "points", amount, "source", source)
	return nil
}

// Total sums a user's points over the trailing window. A non-positive
// windowDays uses the configured default.
func (s *Service) Total(ctx context.Context, user domain.Participant, windowDays int) (int, error) {
	total, err := s.repo.SumPoints(ctx, user, s.since(windowDays))
	if err != nil {
		return 0, domain.NewStorageError("sum points", err)
	}
	return total, nil
}

// Tier maps a total to its label.
func (s *Service) Tier(total int) domain.Tier {
	return domain.TierFor(total)
}

// Entries returns a user's grants within the window, newest first.
func (s *Service) Entries(ctx context.Context, user domain.Participant, windowDays int) ([]*domain.PointsEntry, error) {
	entries, err := s.repo.ListPoints(ctx, user, s.since(windowDays))
	if err != nil {
		return nil, domain.NewStorageError("list points", err)
	}
	return entries, nil
}

// Standing returns a user's total and tier.
func (s *Service) Standing(ctx context.Context, user domain.Participant, windowDays int) (domain.Standing, error) {
	total, err := s.Total(ctx, user, windowDays)
	if err != nil {
		return domain.Standing{}, err
	}
	return domain.Standing{User: user, Total: total, Tier: s.Tier(total)}, nil
}

// Ranking returns both participants' standings, highest total first.
// Ties keep the configured participant order.
func (s *Service) Ranking(ctx context.Context, windowDays int) ([]domain.Standing, error) {
	standings := make([]domain.Standing, 0, 2)
	for _, user := range s.pair.All() {
		st, err := s.Standing(ctx, user, windowDays)
		if err != nil {
			return nil, fmt.Errorf("ranking: %w", err)
		}
		standings = append(standings, st)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Total > standings[j].Total
	})
	return standings, nil
}

// WindowDays returns the default trailing window.
func (s *Service) WindowDays() int {
	return s.windowDays
}

func (s *Service) since(windowDays int) time.Time {
	if windowDays <= 0 {
		windowDays = s.windowDays
	}
	return s.now().AddDate(0, 0, -windowDays)
}
