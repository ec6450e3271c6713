package exchange

import (
	"context"
	"fmt"

	"github.com/ashureev/crushcourt/internal/domain"
)

// ListPending returns every unanswered record addressed to user, newest
// first. The queue is not capped.
func (s *Service) ListPending(ctx context.Context, user domain.Participant) ([]*domain.ExchangeRecord, error) {
	if !s.cfg.Pair.Contains(user) {
		return nil, domain.NewValidationError("user", fmt.Sprintf("unknown participant %q", user))
	}
	records, err := s.records.ListPending(ctx, user)
	if err != nil {
		return nil, domain.NewStorageError("list pending", err)
	}
	return records, nil
}

// ListRecent returns records from the last windowDays, newest first, at most
// limit of them. Non-positive arguments use the configured defaults.
func (s *Service) ListRecent(ctx context.Context, windowDays, limit int) ([]*domain.ExchangeRecord, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.RecentWindowDays
	}
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}

	since := s.cfg.Now().AddDate(0, 0, -windowDays)
	records, err := s.records.ListSince(ctx, since, limit)
	if err != nil {
		return nil, domain.NewStorageError("list recent", err)
	}
	return records, nil
}

// MarkRead acknowledges a record without answering it. Only the receiver
// can mark a record read; it stays pending until responded to.
func (s *Service) MarkRead(ctx context.Context, recordID int64, reader domain.Participant) error {
	changed, err := s.records.MarkRead(ctx, recordID, reader)
	if err != nil {
		return domain.NewStorageError("mark read", err)
	}
	if changed {
		return nil
	}

	// Nothing matched: either the id is unknown or reader is not its receiver.
	if _, err := s.records.GetRecord(ctx, recordID); err != nil {
		return domain.NewStorageError("get record", err)
	}
	return domain.NewValidationError("reader", "only the receiver can mark this record read")
}
