package exchange

import (
	"context"
	"fmt"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/metrics"
)

const servePreviewRunes = 20

// CreateRecord stores a new record. A serve grants the serve amount to its
// sender; under the transactional policy insert and grant commit together.
func (s *Service) CreateRecord(ctx context.Context, in CreateRecordInput) (int64, error) {
	if err := in.Validate(s.cfg.Pair); err != nil {
		return 0, err
	}

	rec := &domain.ExchangeRecord{
		Sender:       in.Sender,
		Receiver:     in.Receiver,
		Category:     in.Category,
		Action:       in.Action,
		Content:      in.Content,
		EmotionScore: in.emotion(),
		CreatedAt:    s.cfg.Now(),
	}
	desc := serveDescription(in.Content)

	var id int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.records.InsertRecord(ctx, rec)
		if err != nil {
			return domain.NewStorageError("insert record", err)
		}
		if rec.Action == domain.ActionServe {
			return s.grant(ctx, rec.Sender, s.cfg.ServePoints, domain.SourceServe, desc)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create record: %w", err)
	}

	if rec.Action == domain.ActionServe {
		s.afterCommit(ctx, rec.Sender, s.cfg.ServePoints, domain.SourceServe, desc)
	}

	metrics.RecordsCreated.WithLabelValues(string(rec.Action)).Inc()
	s.log.InfoContext(ctx, "record created",
		"id", id, "sender", rec.Sender, "receiver", rec.Receiver,
		"category", rec.Category, "action", rec.Action)
	return id, nil
}

func serveDescription(content string) string {
	r := []rune(content)
	if len(r) > servePreviewRunes {
		r = r[:servePreviewRunes]
	}
	return "new serve: " + string(r) + "..."
}
