package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/config"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/pkg/mail"
	"github.com/thinkthink/core/internal/pkg/response"
	sessionpkg "github.com/thinkthink/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles sign-in, sign-out and session inspection.
type Handler struct {
	db     *gorm.DB
	svc    *Service
	oauth  *config.OAuthConfig
	logger *zap.Logger
}

func NewHandler(db *gorm.DB, svc *Service, oauth *config.OAuthConfig, logger *zap.Logger) *Handler {
	return &Handler{db: db, svc: svc, oauth: oauth, logger: logger}
}

// RegisterRoutes mounts auth routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")

	g.GET("/providers", h.listProviders)
	g.GET("/redirect/:provider", h.redirectToProvider)
	g.GET("/callback/:provider", h.handleCallback)

	g.POST("/magic-link", h.requestMagicLink)
	g.GET("/magic-link/callback", h.consumeMagicLink)

	g.POST("/passkey/register", h.passkeyUnavailable)
	g.POST("/passkey/authenticate", h.passkeyUnavailable)

	g.GET("/session", middleware.OptionalAuth(h.db), h.session)
	g.POST("/sign-out", authMW, h.signOut)
}

type magicLinkDTO struct {
	Email string `json:"email" binding:"required,email"`
}

// listProviders GET /auth/providers
func (h *Handler) listProviders(c *gin.Context) {
	providers := make([]string, 0)
	for _, p := range h.oauth.Providers {
		providerType := strings.TrimSpace(p.Type)
		if p.Enabled && providerType != "" && p.ClientID != "" {
			providers = append(providers, providerType)
		}
	}
	c.JSON(http.StatusOK, providers)
}

// redirectToProvider GET /auth/redirect/:provider?callback_url=...
func (h *Handler) redirectToProvider(c *gin.Context) {
	provider := resolveProvider(h.oauth, c, c.Param("provider"), c.Query("callback_url"))
	if provider == nil {
		response.NotFoundMsg(c, "oauth provider not found or not configured")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, provider.AuthURL)
}

// handleCallback GET /auth/callback/:provider?code=...&state=...
func (h *Handler) handleCallback(c *gin.Context) {
	providerID := c.Param("provider")
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing code")
		return
	}

	clientID, clientSecret := findProviderCredentials(h.oauth, providerID)
	if clientID == "" {
		response.NotFoundMsg(c, "oauth provider not configured")
		return
	}

	accessToken, err := exchangeCode(providerID, code, clientID, clientSecret, callbackURI(c, providerID))
	if err != nil {
		response.InternalError(c, fmt.Errorf("token exchange failed: %w", err))
		return
	}

	socialUser, err := fetchSocialUser(providerID, accessToken)
	if err != nil {
		response.InternalError(c, fmt.Errorf("failed to fetch user info: %w", err))
		return
	}
	if strings.TrimSpace(socialUser.Email) == "" {
		response.UnprocessableEntity(c, "oauth account has no usable email")
		return
	}

	user, err := h.svc.FindOrCreateUser(socialUser.Email, socialUser.Name, socialUser.Avatar)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	h.svc.linkOAuthAccount(user.ID, providerID, socialUser.ID, accessToken)
	h.svc.RecordLogin(user.ID, c.ClientIP())

	token, _, err := sessionpkg.Issue(h.db, user.ID, c.ClientIP(), c.Request.UserAgent(), sessionpkg.DefaultTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	setAuthTokenCookie(c, token)

	if callbackURL := strings.TrimSpace(c.Query("state")); callbackURL != "" {
		if redirectWithToken(c, callbackURL, token) {
			return
		}
	}

	response.OK(c, gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// requestMagicLink POST /auth/magic-link
// Always answers 204 for a well-formed email so the endpoint cannot be used
// to probe which addresses have accounts.
func (h *Handler) requestMagicLink(c *gin.Context) {
	var dto magicLinkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.RequestMagicLink(dto.Email); err != nil {
		if errors.Is(err, mail.ErrDisabled) {
			response.UnprocessableEntity(c, "mail delivery is not configured")
			return
		}
		h.logger.Error("magic link delivery failed", zap.Error(err))
	}
	response.NoContent(c)
}

// consumeMagicLink GET /auth/magic-link/callback?ticket=...&token=...
func (h *Handler) consumeMagicLink(c *gin.Context) {
	user, err := h.svc.ConsumeMagicLink(c.Query("ticket"), c.Query("token"))
	if err != nil {
		if errors.Is(err, ErrTicketInvalid) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	h.svc.RecordLogin(user.ID, c.ClientIP())

	token, _, err := sessionpkg.Issue(h.db, user.ID, c.ClientIP(), c.Request.UserAgent(), sessionpkg.DefaultTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	setAuthTokenCookie(c, token)

	if callbackURL := strings.TrimSpace(c.Query("redirect")); callbackURL != "" {
		if redirectWithToken(c, callbackURL, token) {
			return
		}
	}

	response.OK(c, gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// passkeyUnavailable POST /auth/passkey/*
// Passkey sign-in is advertised but not implemented server-side yet.
func (h *Handler) passkeyUnavailable(c *gin.Context) {
	response.NotImplemented(c, "passkey sign-in is not available")
}

// session GET /auth/session
// Returns the signed-in user, or null when the request is anonymous.
func (h *Handler) session(c *gin.Context) {
	if !middleware.IsAuthenticated(c) {
		response.OK(c, nil)
		return
	}

	var user models.UserModel
	if err := h.db.First(&user, "id = ?", middleware.CurrentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.OK(c, nil)
			return
		}
		response.InternalError(c, err)
		return
	}

	sessionpkg.Touch(h.db, user.ID, middleware.CurrentSessionID(c))
	response.OK(c, toUserResponse(&user))
}

// signOut POST /auth/sign-out  [auth]
func (h *Handler) signOut(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	sessionID := middleware.CurrentSessionID(c)

	if err := sessionpkg.Revoke(h.db, userID, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.InternalError(c, err)
		return
	}
	clearAuthTokenCookie(c)
	response.NoContent(c)
}

func toUserResponse(u *models.UserModel) gin.H {
	return gin.H{
		"id":     u.ID,
		"email":  u.Email,
		"name":   u.Name,
		"avatar": u.Avatar,
	}
}
