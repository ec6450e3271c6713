package api

import (
	"net/http"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/exchange"
)

type createRecordRequest struct {
	Receiver     domain.Participant `json:"receiver"`
	Category     domain.Category    `json:"category"`
	Action       domain.Action      `json:"action"`
	Content      string             `json:"content"`
	EmotionScore *float64           `json:"emotion_score"`
}

type respondRequest struct {
	Action  domain.Action `json:"action"`
	Content string        `json:"content"`
}

// CreateRecord posts a record from the signed-in participant. The receiver
// defaults to the partner and the action to serve.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Receiver == "" {
		req.Receiver = h.partner(r)
	}
	if req.Action == "" {
		req.Action = domain.ActionServe
	}

	id, err := h.Exchange.CreateRecord(r.Context(), exchange.CreateRecordInput{
		Sender:       me(r),
		Receiver:     req.Receiver,
		Category:     req.Category,
		Action:       req.Action,
		Content:      req.Content,
		EmotionScore: req.EmotionScore,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListPending returns the signed-in participant's unanswered records.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	records, err := h.Exchange.ListPending(r.Context(), me(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"records": records})
}

// ListRecent returns recent records; window_days and limit are optional.
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	window, err := intQuery(r, "window_days")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	records, err := h.Exchange.ListRecent(r.Context(), window, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"records": records})
}

// Respond answers a pending record as the signed-in participant.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req respondRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	respID, err := h.Exchange.Respond(r.Context(), exchange.RespondInput{
		RecordID:  id,
		Responder: me(r),
		Action:    req.Action,
		Content:   req.Content,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]int64{"id": respID, "responded_to": id})
}

// MarkRead acknowledges a record without answering it.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Exchange.MarkRead(r.Context(), id, me(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
