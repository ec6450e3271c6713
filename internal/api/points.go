package api

import "net/http"

// GetPoints returns both participants' standings.
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	window, err := intQuery(r, "window_days")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if window == 0 {
		window = h.Points.WindowDays()
	}

	ranking, err := h.Points.Ranking(r.Context(), window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"window_days": window, "standings": ranking})
}

// ListPointEntries returns a participant's ledger entries, newest first.
func (h *Handler) ListPointEntries(w http.ResponseWriter, r *http.Request) {
	user, err := h.participantQuery(r, "user", me(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	window, err := intQuery(r, "window_days")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.Points.Entries(r.Context(), user, window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"user": user, "entries": entries})
}
