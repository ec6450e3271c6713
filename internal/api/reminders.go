package api

import (
	"net/http"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/health"
)

type addReminderRequest struct {
	Type    domain.ReminderType `json:"type"`
	At      string              `json:"at"`
	Message string              `json:"message"`
	Owner   domain.Participant  `json:"owner"`
}

type toggleRequest struct {
	Active bool `json:"active"`
}

type completeReminderRequest struct {
	Note string `json:"note"`
}

// ListReminders lists reminders; owner and active are optional filters.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	owner, err := h.participantQuery(r, "owner", "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"

	list, err := h.Health.ListReminders(r.Context(), owner, activeOnly)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"reminders": list})
}

// AddReminder sets a reminder, for the partner unless owner says otherwise.
func (h *Handler) AddReminder(w http.ResponseWriter, r *http.Request) {
	var req addReminderRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Owner == "" {
		req.Owner = h.partner(r)
	}

	rem, err := h.Health.AddReminder(r.Context(), health.AddReminderInput{
		Type:    req.Type,
		At:      req.At,
		Message: req.Message,
		Owner:   req.Owner,
		SetBy:   me(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, rem)
}

// DueReminders returns reminders due now for owner (default: the caller).
func (h *Handler) DueReminders(w http.ResponseWriter, r *http.Request) {
	owner, err := h.participantQuery(r, "owner", me(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	due, err := h.Health.DueReminders(r.Context(), owner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"owner": owner, "reminders": due})
}

// ToggleReminder enables or disables a reminder.
func (h *Handler) ToggleReminder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req toggleRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Health.ToggleReminder(r.Context(), id, req.Active); err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"id": id, "active": req.Active})
}

// DeleteReminder removes a reminder.
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Health.DeleteReminder(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteReminder logs that the caller did what a reminder asked.
func (h *Handler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req completeReminderRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	entry, err := h.Health.LogCompletion(r.Context(), health.LogCompletionInput{
		ReminderID: id,
		User:       me(r),
		Note:       req.Note,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, entry)
}
