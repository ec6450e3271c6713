package api

import (
	"net/http"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/identity"
)

type loginRequest struct {
	Participant domain.Participant `json:"participant"`
	Password    string             `json:"password"`
}

// Login exchanges a participant password for a session cookie and token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	token, exp, err := h.Sessions.Login(req.Participant, req.Password)
	if err != nil {
		h.log.WarnContext(r.Context(), "login rejected", "participant", req.Participant, "ip", identity.IPFromRequest(r))
		h.fail(w, r, err)
		return
	}

	h.Sessions.SetCookie(w, token, exp)
	JSON(w, http.StatusOK, map[string]any{
		"participant": req.Participant,
		"token":       token,
		"expires_at":  exp,
	})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.Sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the signed-in participant, their partner and standing.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	who := me(r)
	standing, err := h.Points.Standing(r.Context(), who, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"participant": who,
		"partner":     h.partner(r),
		"standing":    standing,
		"ai_enabled":  h.Deps.Suggest != nil,
	})
}
