package exchange

import (
	"context"
	"fmt"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/metrics"
)

// Respond closes a pending record and stores the response addressed back to
// its sender. The response inherits the original category and emotion score.
// Of two concurrent responses to one record, exactly one succeeds; the other
// gets domain.ErrAlreadyResponded and changes nothing.
func (s *Service) Respond(ctx context.Context, in RespondInput) (int64, error) {
	if err := in.Validate(s.cfg.Pair); err != nil {
		return 0, err
	}

	now := s.cfg.Now()
	var (
		id       int64
		original *domain.ExchangeRecord
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		original, err = s.records.GetRecord(ctx, in.RecordID)
		if err != nil {
			return domain.NewStorageError("get record", err)
		}
		if original.Receiver != in.Responder {
			return domain.NewValidationError("responder", "only the receiver can respond to this record")
		}
		if original.IsResponded {
			return domain.ErrAlreadyResponded
		}

		changed, err := s.records.MarkResponded(ctx, original.ID, in.Responder, now)
		if err != nil {
			return domain.NewStorageError("mark responded", err)
		}
		if !changed {
			return domain.ErrAlreadyResponded
		}

		id, err = s.records.InsertRecord(ctx, &domain.ExchangeRecord{
			Sender:       in.Responder,
			Receiver:     original.Sender,
			Category:     original.Category,
			Action:       in.Action,
			Content:      in.Content,
			EmotionScore: original.EmotionScore,
			CreatedAt:    now,
		})
		if err != nil {
			return domain.NewStorageError("insert response", err)
		}

		return s.grant(ctx, in.Responder, s.cfg.ResponsePoints, domain.SourceResponse, responseDescription(original.Sender))
	})
	if err != nil {
		return 0, fmt.Errorf("respond to record %d: %w", in.RecordID, err)
	}

	s.afterCommit(ctx, in.Responder, s.cfg.ResponsePoints, domain.SourceResponse, responseDescription(original.Sender))

	metrics.RecordsCreated.WithLabelValues(string(in.Action)).Inc()
	metrics.Responses.WithLabelValues(string(in.Action)).Inc()
	s.log.InfoContext(ctx, "record answered",
		"original_id", original.ID, "response_id", id, "responder", in.Responder, "action", in.Action)
	return id, nil
}

func responseDescription(sender domain.Participant) string {
	return "responded to " + string(sender)
}
