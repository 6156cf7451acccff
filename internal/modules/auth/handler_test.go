package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkthink/core/internal/config"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/testutil"
	"gorm.io/gorm"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *captureSender, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	sender := &captureSender{}
	svc := NewService(db, sender, "http://localhost:2333", testutil.Logger(t))

	oauth := &config.OAuthConfig{Providers: []config.OAuthProvider{
		{Type: "github", Enabled: true, ClientID: "gh-client", ClientSecret: "gh-secret"},
		{Type: "google", Enabled: false, ClientID: "goog-client"},
	}}

	r := gin.New()
	NewHandler(db, svc, oauth, testutil.Logger(t)).RegisterRoutes(r.Group("/api/v1"), middleware.Auth(db))
	return r, sender, db
}

func TestListProviders(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/providers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var providers []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &providers))
	assert.Equal(t, []string{"github"}, providers)
}

func TestRedirectToProvider(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/redirect/github", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "github.com/login/oauth/authorize")
	assert.Contains(t, w.Header().Get("Location"), "client_id=gh-client")

	// disabled provider
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/redirect/google", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMagicLinkEndpoints(t *testing.T) {
	r, sender, _ := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "reader@example.com"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/magic-link", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	ticketID, token := lastLink(t, sender)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/magic-link/callback?ticket="+ticketID+"&token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "reader@example.com", result.User.Email)

	// session reflects the signed-in user
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")

	// used link is rejected
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/magic-link/callback?ticket="+ticketID+"&token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMagicLinkInvalidEmail(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "not-an-email"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/magic-link", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionAnonymous(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/session", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestPasskeyNotImplemented(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	for _, path := range []string{"/api/v1/auth/passkey/register", "/api/v1/auth/passkey/authenticate"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", path, nil))
		assert.Equal(t, http.StatusNotImplemented, w.Code, path)
	}
}

func TestSignOut(t *testing.T) {
	r, sender, _ := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "reader@example.com"})
	req := httptest.NewRequest("POST", "/api/v1/auth/magic-link", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	ticketID, token := lastLink(t, sender)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/auth/magic-link/callback?ticket="+ticketID+"&token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/auth/sign-out", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	// the revoked token no longer authenticates
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/auth/sign-out", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
