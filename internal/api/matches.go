package api

import (
	"net/http"
	"time"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/matches"
)

type addMatchRequest struct {
	Title     string     `json:"title"`
	Opponent  string     `json:"opponent"`
	Location  string     `json:"location"`
	MatchDate time.Time  `json:"match_date"`
	RemindAt  *time.Time `json:"remind_at"`
}

type cheerRequest struct {
	Kind    domain.CheerKind `json:"kind"`
	Message string           `json:"message"`
}

type matchView struct {
	*domain.Match
	Status domain.MatchStatus `json:"status"`
}

// ListMatches lists matches around today; status and window_days are optional.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	window, err := intQuery(r, "window_days")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := domain.MatchStatus(r.URL.Query().Get("status"))

	list, err := h.Matches.ListMatches(r.Context(), status, window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	views := make([]matchView, 0, len(list))
	for _, m := range list {
		views = append(views, matchView{Match: m, Status: h.Matches.Status(m)})
	}
	JSON(w, http.StatusOK, map[string]any{"matches": views})
}

// AddMatch records a match created by the caller.
func (h *Handler) AddMatch(w http.ResponseWriter, r *http.Request) {
	var req addMatchRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.Matches.AddMatch(r.Context(), matches.AddMatchInput{
		Title:     req.Title,
		Opponent:  req.Opponent,
		Location:  req.Location,
		MatchDate: req.MatchDate,
		RemindAt:  req.RemindAt,
		CreatedBy: me(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, matchView{Match: m, Status: h.Matches.Status(m)})
}

// UpcomingMatchReminders returns matches whose reminder is due around now.
func (h *Handler) UpcomingMatchReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Matches.UpcomingReminders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"matches": list})
}

// CompleteMatch marks a match finished.
func (h *Handler) CompleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Matches.CompleteMatch(r.Context(), id, me(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"id": id, "status": domain.MatchCompleted})
}

// Cheer sends support for a match.
func (h *Handler) Cheer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req cheerRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	granted, err := h.Matches.Cheer(r.Context(), matches.CheerInput{
		MatchID: id,
		By:      me(r),
		Kind:    req.Kind,
		Message: req.Message,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]any{"match_id": id, "kind": req.Kind, "points": granted})
}
