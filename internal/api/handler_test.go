//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/exchange"
	"github.com/ashureev/crushcourt/internal/health"
	"github.com/ashureev/crushcourt/internal/identity"
	"github.com/ashureev/crushcourt/internal/matches"
	"github.com/ashureev/crushcourt/internal/points"
	"github.com/ashureev/crushcourt/internal/store"
)

type testServer struct {
	router   http.Handler
	sessions *identity.Sessions
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "api.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pair := domain.DefaultPair()
	ledger := points.NewService(log, st, points.Config{Pair: pair})
	sessions := identity.NewSessions("api-test-secret-long-enough-123", time.Hour, pair,
		map[domain.Participant]string{domain.Me: "pw-me", domain.Him: "pw-him"}, false)

	h := NewHandler(log, Deps{
		Exchange: exchange.NewService(log, st, ledger, st, exchange.Config{Pair: pair}),
		Points:   ledger,
		Health:   health.NewService(log, st, ledger, st, pair, nil),
		Matches:  matches.NewService(log, st, ledger, st, pair, nil),
		Sessions: sessions,
		Pair:     pair,
	})

	r := chi.NewRouter()
	r.Use(identity.Middleware(sessions))
	NewHealthHandler(st, time.Second).RegisterHealth(r)
	h.RegisterRoutes(r)

	return &testServer{router: r, sessions: sessions}
}

func (s *testServer) do(t *testing.T, who domain.Participant, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who != "" {
		token, _, err := s.sessions.Issue(who)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, rr, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("gone") }

func TestHealthDegraded(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(downPinger{}, 0).Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAPIRequiresSession(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "", http.MethodGet, "/api/records/pending", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "", http.MethodPost, "/api/login", map[string]string{"participant": "me", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, "", http.MethodPost, "/api/login", map[string]string{"participant": "me", "password": "pw-me"})
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, identity.CookieName, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var body struct {
		Participant string `json:"participant"`
		Partner     string `json:"partner"`
		AIEnabled   bool   `json:"ai_enabled"`
	}
	decodeBody(t, me, &body)
	assert.Equal(t, "me", body.Participant)
	assert.Equal(t, "him", body.Partner)
	assert.False(t, body.AIEnabled)
}

func TestServeAndReturnOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, domain.Me, http.MethodPost, "/api/records", map[string]any{
		"category": "life", "content": "Went hiking", "emotion_score": 8.0,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rr, &created)

	rr = s.do(t, domain.Him, http.MethodGet, "/api/records/pending", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var pending struct {
		Records []domain.ExchangeRecord `json:"records"`
	}
	decodeBody(t, rr, &pending)
	require.Len(t, pending.Records, 1)
	assert.Equal(t, created.ID, pending.Records[0].ID)

	path := "/api/records/" + itoa(created.ID) + "/respond"
	rr = s.do(t, domain.Him, http.MethodPost, path, map[string]string{"action": "return", "content": "Nice! Where?"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, domain.Him, http.MethodPost, path, map[string]string{"action": "return", "content": "again"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, domain.Me, http.MethodGet, "/api/records/pending", nil)
	decodeBody(t, rr, &pending)
	require.Len(t, pending.Records, 1)
	assert.Equal(t, 8.0, pending.Records[0].EmotionScore)

	rr = s.do(t, domain.Me, http.MethodGet, "/api/points", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var pts struct {
		Standings []domain.Standing `json:"standings"`
	}
	decodeBody(t, rr, &pts)
	require.Len(t, pts.Standings, 2)
	assert.Equal(t, domain.Standing{User: domain.Me, Total: 5, Tier: domain.TierRookie}, pts.Standings[0])
	assert.Equal(t, domain.Standing{User: domain.Him, Total: 3, Tier: domain.TierRookie}, pts.Standings[1])

	rr = s.do(t, domain.Me, http.MethodGet, "/api/records/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var recent struct {
		Records []domain.ExchangeRecord `json:"records"`
	}
	decodeBody(t, rr, &recent)
	assert.Len(t, recent.Records, 1)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, domain.Me, http.MethodPost, "/api/records", map[string]any{"category": "money", "content": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var verr struct {
		Error  string              `json:"error"`
		Fields []domain.FieldError `json:"fields"`
	}
	decodeBody(t, rr, &verr)
	assert.Equal(t, "validation failed", verr.Error)
	assert.Len(t, verr.Fields, 2)

	rr = s.do(t, domain.Him, http.MethodPost, "/api/records/999/respond", map[string]string{"action": "smash", "content": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, domain.Him, http.MethodPost, "/api/records/abc/read", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, domain.Him, http.MethodGet, "/api/records/recent?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, domain.Me, http.MethodPost, "/api/suggestions", map[string]string{"input": "plan my day"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRemindersAndMatchesOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, domain.Me, http.MethodPost, "/api/reminders", map[string]string{"type": "water", "at": "00:00"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var rem domain.HealthReminder
	decodeBody(t, rr, &rem)
	assert.Equal(t, domain.Him, rem.Owner)
	assert.Equal(t, domain.Me, rem.SetBy)

	rr = s.do(t, domain.Him, http.MethodGet, "/api/reminders/due", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var due struct {
		Reminders []json.RawMessage `json:"reminders"`
	}
	decodeBody(t, rr, &due)
	assert.Len(t, due.Reminders, 1)

	rr = s.do(t, domain.Him, http.MethodPost, "/api/reminders/"+itoa(rem.ID)+"/complete", map[string]string{"note": "done"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do(t, domain.Him, http.MethodDelete, "/api/reminders/"+itoa(rem.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	date := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	rr = s.do(t, domain.Him, http.MethodPost, "/api/matches", map[string]string{"title": "Open", "opponent": "X", "location": "Gym", "match_date": date})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var m struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, rr, &m)
	assert.Equal(t, "upcoming", m.Status)

	rr = s.do(t, domain.Me, http.MethodPost, "/api/matches/"+itoa(m.ID)+"/cheer", map[string]string{"kind": "voice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do(t, domain.Him, http.MethodPost, "/api/matches/"+itoa(m.ID)+"/complete", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, domain.Him, http.MethodPost, "/api/matches/"+itoa(m.ID)+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, domain.Him, http.MethodGet, "/api/points/entries", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries struct {
		Entries []domain.PointsEntry `json:"entries"`
	}
	decodeBody(t, rr, &entries)
	total := 0
	for _, e := range entries.Entries {
		total += e.Points
	}
	assert.Equal(t, 2+10+15, total)
}

func TestCourtPages(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "", http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	form := url.Values{"participant": {"him"}, "password": {"pw-him"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	login := httptest.NewRecorder()
	s.router.ServeHTTP(login, req)
	require.Equal(t, http.StatusSeeOther, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	serve := url.Values{"category": {"love"}, "content": {"<script>hi</script>"}, "emotion_score": {"9"}}
	req = httptest.NewRequest(http.MethodPost, "/court/serve", strings.NewReader(serve.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookies[0])
	served := httptest.NewRecorder()
	s.router.ServeHTTP(served, req)
	require.Equal(t, http.StatusSeeOther, served.Code)
	assert.Contains(t, served.Header().Get("Location"), "flash=Served")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	page := httptest.NewRecorder()
	s.router.ServeHTTP(page, req)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Signed in as <strong>him</strong>")
	assert.Contains(t, page.Body.String(), "&lt;script&gt;hi&lt;/script&gt;")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
