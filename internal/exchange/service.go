// Package exchange implements the court's record exchange: serves,
// responses and the pending queue.
package exchange

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/crushcourt/internal/config"
	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/metrics"
)

// recordRepo defines the record storage needed by the exchange service.
type recordRepo interface {
	InsertRecord(ctx context.Context, rec *domain.ExchangeRecord) (int64, error)
	GetRecord(ctx context.Context, id int64) (*domain.ExchangeRecord, error)
	ListPending(ctx context.Context, receiver domain.Participant) ([]*domain.ExchangeRecord, error)
	ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.ExchangeRecord, error)
	MarkResponded(ctx context.Context, id int64, receiver domain.Participant, at time.Time) (bool, error)
	MarkRead(ctx context.Context, id int64, receiver domain.Participant) (bool, error)
}

// granter appends point grants.
type granter interface {
	Grant(ctx context.Context, user domain.Participant, amount int, source domain.PointSource, description string) error
}

// txManager defines the transaction manager needed by the exchange service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config parameterizes the engine.
type Config struct {
	Pair             domain.Pair
	ServePoints      int
	ResponsePoints   int
	GrantPolicy      string
	RecentWindowDays int
	RecentLimit      int
	Now              func() time.Time
}

// Service implements the exchange engine.
type Service struct {
	log     *slog.Logger
	records recordRepo
	points  granter
	tx      txManager
	cfg     Config
}

// NewService creates an exchange service. Zero config values fall back to
// the stock amounts and windows.
func NewService(logger *slog.Logger, records recordRepo, points granter, tx txManager, cfg Config) *Service {
	if cfg.Pair == (domain.Pair{}) {
		cfg.Pair = domain.DefaultPair()
	}
	if cfg.ServePoints == 0 {
		cfg.ServePoints = 5
	}
	if cfg.ResponsePoints == 0 {
		cfg.ResponsePoints = 3
	}
	if cfg.GrantPolicy == "" {
		cfg.GrantPolicy = config.GrantTransactional
	}
	if cfg.RecentWindowDays <= 0 {
		cfg.RecentWindowDays = 3
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 50
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		log:     logger.With("service", "exchange"),
		records: records,
		points:  points,
		tx:      tx,
		cfg:     cfg,
	}
}

// Pair returns the participants this engine serves.
func (s *Service) Pair() domain.Pair {
	return s.cfg.Pair
}

func (s *Service) transactionalGrants() bool {
	return s.cfg.GrantPolicy != config.GrantBestEffort
}

// grant runs inside the write transaction under the transactional policy.
// Under best effort it is a no-op here and afterCommit does the work.
func (s *Service) grant(ctx context.Context, user domain.Participant, amount int, source domain.PointSource, desc string) error {
	if !s.transactionalGrants() {
		return nil
	}
	if err := s.points.Grant(ctx, user, amount, source, desc); err != nil {
		return domain.NewStorageError("grant points", err)
	}
	return nil
}

func (s *Service) afterCommit(ctx context.Context, user domain.Participant, amount int, source domain.PointSource, desc string) {
	if s.transactionalGrants() {
		return
	}
	if err := s.points.Grant(ctx, user, amount, source, desc); err != nil {
		metrics.GrantFailures.WithLabelValues(string(source)).Inc()
		s.log.WarnContext(ctx, "point grant failed after record commit",
			"user", user, "points", amount, "source", source, "error", err)
	}
}
