// Package identity resolves which participant is making a request.
package identity

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ashureev/crushcourt/internal/domain"
)

const (
	CookieName = "crushcourt_session"
	issuer     = "crushcourt"
)

type contextKey int

const participantKey contextKey = iota

// ParticipantFromContext extracts the signed-in participant from the request context.
func ParticipantFromContext(ctx context.Context) (domain.Participant, bool) {
	p, ok := ctx.Value(participantKey).(domain.Participant)
	return p, ok && p != ""
}

// WithParticipant returns a context carrying p.
func WithParticipant(ctx context.Context, p domain.Participant) context.Context {
	return context.WithValue(ctx, participantKey, p)
}

// Sessions issues and verifies participant session tokens.
type Sessions struct {
	secret    []byte
	ttl       time.Duration
	pair      domain.Pair
	passwords map[domain.Participant]string
	secure    bool
	now       func() time.Time
}

// NewSessions creates a session manager. secure marks cookies Secure.
func NewSessions(secret string, ttl time.Duration, pair domain.Pair, passwords map[domain.Participant]string, secure bool) *Sessions {
	return &Sessions{
		secret:    []byte(secret),
		ttl:       ttl,
		pair:      pair,
		passwords: passwords,
		secure:    secure,
		now:       time.Now,
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Login checks who's password and returns a signed session token.
func (s *Sessions) Login(who domain.Participant, password string) (string, time.Time, error) {
	want, ok := s.passwords[who]
	if !ok || !s.pair.Contains(who) || want == "" {
		return "", time.Time{}, fmt.Errorf("login %q: %w", who, domain.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(want)) != 1 {
		return "", time.Time{}, fmt.Errorf("login %q: %w", who, domain.ErrUnauthorized)
	}
	return s.Issue(who)
}

// Issue signs a session token for who.
func (s *Sessions) Issue(who domain.Participant) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(who),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Parse validates a token and returns its participant.
func (s *Sessions) Parse(token string) (domain.Participant, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse session: %w: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid session claims: %w", domain.ErrUnauthorized)
	}
	who := domain.Participant(claims.Subject)
	if !s.pair.Contains(who) {
		return "", fmt.Errorf("session for unknown participant %q: %w", who, domain.ErrUnauthorized)
	}
	return who, nil
}

// SetCookie stores token in the session cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware injects the participant named by a valid session, if any.
func Middleware(s *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if who, err := s.Parse(token); err == nil {
					r = r.WithContext(WithParticipant(r.Context(), who))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireParticipant rejects requests without a signed-in participant.
func RequireParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ParticipantFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"sign in required"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IPFromRequest returns a normalized remote IP for request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
