package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/crushcourt/internal/domain"
)

func newSessions() *Sessions {
	return NewSessions("test-secret-that-is-long-enough!", time.Hour, domain.DefaultPair(),
		map[domain.Participant]string{domain.Me: "pw-me", domain.Him: "pw-him"}, false)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	s := newSessions()

	token, exp, err := s.Login(domain.Me, "pw-me")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	who, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Me, who)

	_, _, err = s.Login(domain.Me, "pw-him")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = s.Login("stranger", "pw-me")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	t.Parallel()
	s := newSessions()

	other := NewSessions("another-secret-that-is-long-enough", time.Hour, domain.DefaultPair(), nil, false)
	forged, _, err := other.Issue(domain.Him)
	require.NoError(t, err)
	_, err = s.Parse(forged)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token, _, err := s.Issue(domain.Him)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = s.Parse("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	t.Parallel()
	s := newSessions()
	token, _, err := s.Issue(domain.Him)
	require.NoError(t, err)

	var seen domain.Participant
	h := Middleware(s)(RequireParticipant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ParticipantFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, domain.Him, seen)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCookies(t *testing.T) {
	t.Parallel()
	s := newSessions()

	rr := httptest.NewRecorder()
	s.SetCookie(rr, "tok", time.Now().Add(time.Hour))
	s.ClearCookie(rr)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, -1, cookies[1].MaxAge)
}

func TestIPFromRequest(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", IPFromRequest(req))
}
