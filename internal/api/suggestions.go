package api

import (
	"net/http"

	"github.com/ashureev/crushcourt/internal/suggest"
	"github.com/ashureev/crushcourt/internal/validate"
)

// CreateSuggestion asks the configured AI endpoint for a plan.
func (h *Handler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var in suggest.Input
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		h.fail(w, r, err)
		return
	}

	text, err := h.Deps.Suggest.Suggest(r.Context(), in.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"suggestion": text})
}
