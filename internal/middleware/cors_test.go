package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(method, "/api/me", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORSExplicitOriginGetsCredentials(t *testing.T) {
	rr := serve([]string{"https://court.example"}, http.MethodGet, "https://court.example")
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "https://court.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	rr := serve([]string{"*"}, http.MethodGet, "https://evil.example")
	assert.Equal(t, "https://evil.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	rr := serve([]string{"https://court.example"}, http.MethodGet, "https://evil.example")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	rr := serve([]string{"*"}, http.MethodOptions, "https://court.example")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, Origins(""))
	assert.Equal(t, []string{"https://a.example", "http://localhost:5173"}, Origins(" https://a.example/ ,http://localhost:5173"))
}
