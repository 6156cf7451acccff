package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/config"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/models"
)

type oauthProviderDef struct {
	AuthURL string
}

type socialUserInfo struct {
	ID     string
	Email  string
	Name   string
	Avatar string
}

func callbackURI(c *gin.Context, provider string) string {
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	basePath := "/auth"
	fullPath := c.FullPath()
	if idx := strings.Index(fullPath, "/auth/"); idx >= 0 {
		basePath = fullPath[:idx] + "/auth"
	}
	return fmt.Sprintf("%s://%s%s/callback/%s", scheme, c.Request.Host, basePath, provider)
}

func oauthDef(providerID, clientID, callbackURL string, c *gin.Context) *oauthProviderDef {
	redirectURI := callbackURI(c, providerID)
	switch providerID {
	case "github":
		params := url.Values{}
		params.Set("client_id", clientID)
		params.Set("redirect_uri", redirectURI)
		params.Set("scope", "user:email")
		if callbackURL != "" {
			params.Set("state", callbackURL)
		}
		return &oauthProviderDef{
			AuthURL: "https://github.com/login/oauth/authorize?" + params.Encode(),
		}
	case "google":
		params := url.Values{}
		params.Set("client_id", clientID)
		params.Set("redirect_uri", redirectURI)
		params.Set("response_type", "code")
		params.Set("scope", "openid email profile")
		params.Set("access_type", "offline")
		if callbackURL != "" {
			params.Set("state", callbackURL)
		}
		return &oauthProviderDef{
			AuthURL: "https://accounts.google.com/o/oauth2/v2/auth?" + params.Encode(),
		}
	}
	return nil
}

func resolveProvider(cfg *config.OAuthConfig, c *gin.Context, providerID, callbackURL string) *oauthProviderDef {
	for _, p := range cfg.Providers {
		providerType := strings.TrimSpace(p.Type)
		if strings.EqualFold(providerType, providerID) && p.Enabled && p.ClientID != "" {
			return oauthDef(providerType, p.ClientID, callbackURL, c)
		}
	}
	return nil
}

func findProviderCredentials(cfg *config.OAuthConfig, providerID string) (clientID, clientSecret string) {
	for _, p := range cfg.Providers {
		if strings.EqualFold(strings.TrimSpace(p.Type), providerID) && p.Enabled {
			return p.ClientID, p.ClientSecret
		}
	}
	return "", ""
}

// linkOAuthAccount upserts the provider link for a user.
func (s *Service) linkOAuthAccount(userID, provider, providerUID, accessToken string) {
	now := s.now()

	var existing models.OAuth2Token
	s.db.Where("user_id = ? AND provider = ?", userID, provider).First(&existing)
	if existing.ID != "" {
		s.db.Model(&existing).Updates(map[string]interface{}{
			"provider_uid": providerUID,
			"access_token": accessToken,
			"last_used":    now,
		})
		return
	}

	s.db.Create(&models.OAuth2Token{
		UserID:      userID,
		Provider:    provider,
		ProviderUID: providerUID,
		AccessToken: accessToken,
		LastUsed:    &now,
	})
}

func redirectWithToken(c *gin.Context, callbackURL, token string) bool {
	target, err := url.Parse(strings.TrimSpace(callbackURL))
	if err != nil || target == nil {
		return false
	}
	q := target.Query()
	q.Set("token", token)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusTemporaryRedirect, target.String())
	return true
}

func setAuthTokenCookie(c *gin.Context, token string) {
	const maxAge = 30 * 24 * 60 * 60
	secure := c.Request.TLS != nil
	c.SetCookie(middleware.AuthCookieName, token, maxAge, "/", "", secure, false)
}

func clearAuthTokenCookie(c *gin.Context) {
	secure := c.Request.TLS != nil
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", secure, false)
}

func exchangeCode(providerID, code, clientID, clientSecret, redirectURI string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	switch providerID {
	case "github":
		body := url.Values{}
		body.Set("client_id", clientID)
		body.Set("client_secret", clientSecret)
		body.Set("code", code)
		body.Set("redirect_uri", redirectURI)

		req, _ := http.NewRequest("POST", "https://github.com/login/oauth/access_token", bytes.NewBufferString(body.Encode()))
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		var result struct {
			AccessToken string `json:"access_token"`
			Error       string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", err
		}
		if result.Error != "" {
			return "", fmt.Errorf("github: %s", result.Error)
		}
		return result.AccessToken, nil

	case "google":
		body := url.Values{}
		body.Set("code", code)
		body.Set("client_id", clientID)
		body.Set("client_secret", clientSecret)
		body.Set("redirect_uri", redirectURI)
		body.Set("grant_type", "authorization_code")

		req, _ := http.NewRequest("POST", "https://oauth2.googleapis.com/token", bytes.NewBufferString(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		var result struct {
			AccessToken string `json:"access_token"`
			Error       string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", err
		}
		if result.Error != "" {
			return "", fmt.Errorf("google: %s", result.Error)
		}
		return result.AccessToken, nil
	}

	return "", fmt.Errorf("unsupported provider: %s", providerID)
}

func fetchSocialUser(providerID, accessToken string) (*socialUserInfo, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	switch providerID {
	case "github":
		req, _ := http.NewRequest("GET", "https://api.github.com/user", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var u struct {
			ID        int64  `json:"id"`
			Login     string `json:"login"`
			Email     string `json:"email"`
			Name      string `json:"name"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, err
		}
		name := u.Name
		if name == "" {
			name = u.Login
		}
		info := &socialUserInfo{
			ID:     fmt.Sprintf("%d", u.ID),
			Email:  u.Email,
			Name:   name,
			Avatar: u.AvatarURL,
		}
		if info.Email == "" {
			email, err := fetchGitHubPrimaryEmail(client, accessToken)
			if err != nil {
				return nil, err
			}
			info.Email = email
		}
		return info, nil

	case "google":
		req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var u struct {
			ID      string `json:"id"`
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, err
		}
		return &socialUserInfo{
			ID:     u.ID,
			Email:  u.Email,
			Name:   u.Name,
			Avatar: u.Picture,
		}, nil
	}

	return nil, fmt.Errorf("unsupported provider: %s", providerID)
}

// fetchGitHubPrimaryEmail covers accounts whose profile email is private.
func fetchGitHubPrimaryEmail(client *http.Client, accessToken string) (string, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user/emails", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("github account has no verified email")
}
