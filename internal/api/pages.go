package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/exchange"
	"github.com/ashureev/crushcourt/internal/health"
	"github.com/ashureev/crushcourt/internal/identity"
	"github.com/ashureev/crushcourt/web"
)

type loginPage struct {
	Title        string
	Error        string
	Participants []domain.Participant
}

type courtPage struct {
	Title     string
	Me        domain.Participant
	Partner   domain.Participant
	Flash     string
	Standings []domain.Standing
	Pending   []*domain.ExchangeRecord
	Recent    []*domain.ExchangeRecord
	Due       []health.ReminderView
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := web.Render(w, name, data); err != nil {
		h.log.ErrorContext(r.Context(), "render page", "page", name, "error", err)
	}
}

// LoginPage shows the sign-in form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity.ParticipantFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login.html", loginPage{Title: "Sign in", Participants: h.Pair.All()})
}

// LoginForm handles the sign-in form post.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "login.html", loginPage{Title: "Sign in", Error: "Could not read the form.", Participants: h.Pair.All()})
		return
	}
	who := domain.Participant(r.PostFormValue("participant"))
	token, exp, err := h.Sessions.Login(who, r.PostFormValue("password"))
	if err != nil {
		h.log.WarnContext(r.Context(), "login rejected", "participant", who, "ip", identity.IPFromRequest(r))
		h.render(w, r, http.StatusUnauthorized, "login.html", loginPage{Title: "Sign in", Error: "Wrong password.", Participants: h.Pair.All()})
		return
	}
	h.Sessions.SetCookie(w, token, exp)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutForm clears the session and returns to the sign-in form.
func (h *Handler) LogoutForm(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// CourtPage shows the caller's pending queue, recent rallies and points.
func (h *Handler) CourtPage(w http.ResponseWriter, r *http.Request) {
	who, ok := identity.ParticipantFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	page := courtPage{Title: "Court", Me: who, Partner: h.partner(r), Flash: r.URL.Query().Get("flash")}
	var err error
	if page.Pending, err = h.Exchange.ListPending(ctx, who); err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Recent, err = h.Exchange.ListRecent(ctx, 0, 0); err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Standings, err = h.Points.Ranking(ctx, 0); err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Due, err = h.Health.DueReminders(ctx, who); err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "court.html", page)
}

// ServeForm posts a serve from the court page.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectFlash(w, r, "Could not read the form.")
		return
	}
	in := exchange.CreateRecordInput{
		Sender:   me(r),
		Receiver: h.partner(r),
		Category: domain.Category(r.PostFormValue("category")),
		Action:   domain.ActionServe,
		Content:  r.PostFormValue("content"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("emotion_score")); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			redirectFlash(w, r, "Emotion score must be a number.")
			return
		}
		in.EmotionScore = &score
	}

	if _, err := h.Exchange.CreateRecord(r.Context(), in); err != nil {
		h.formFailure(w, r, err)
		return
	}
	redirectFlash(w, r, "Served!")
}

// RespondForm answers a pending record from the court page.
func (h *Handler) RespondForm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		redirectFlash(w, r, "Unknown record.")
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectFlash(w, r, "Could not read the form.")
		return
	}

	_, err = h.Exchange.Respond(r.Context(), exchange.RespondInput{
		RecordID:  id,
		Responder: me(r),
		Action:    domain.Action(r.PostFormValue("action")),
		Content:   r.PostFormValue("content"),
	})
	if err != nil {
		h.formFailure(w, r, err)
		return
	}
	redirectFlash(w, r, "Returned!")
}

func (h *Handler) formFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		redirectFlash(w, r, ve.Error())
	case errors.Is(err, domain.ErrAlreadyResponded):
		redirectFlash(w, r, "That ball was already returned.")
	case errors.Is(err, domain.ErrNotFound):
		redirectFlash(w, r, "That record no longer exists.")
	default:
		h.log.ErrorContext(r.Context(), "form submission failed", "path", r.URL.Path, "error", err)
		redirectFlash(w, r, "Something went wrong, please try again.")
	}
}

func redirectFlash(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?flash="+url.QueryEscape(msg), http.StatusSeeOther)
}
