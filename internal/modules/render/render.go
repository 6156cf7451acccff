package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/modules/catalog"
	"github.com/thinkthink/core/internal/pkg/response"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// Markdown converts article markdown to HTML. On a conversion error the raw
// text is returned escaped rather than dropped.
func Markdown(markdownText string) string {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return ""
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return template.HTMLEscapeString(text)
	}
	return out.String()
}

// Handler serves rendered article HTML.
type Handler struct {
	catalog *catalog.Service
}

func NewHandler(catalogSvc *catalog.Service) *Handler {
	return &Handler{catalog: catalogSvc}
}

// RegisterRoutes mounts render routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/articles/:id/render", authMW, h.renderArticle)
}

// renderArticle GET /articles/:id/render  [auth]
func (h *Handler) renderArticle(c *gin.Context) {
	article, err := h.catalog.GetByID(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFoundMsg(c, "article not found")
		return
	}

	response.OK(c, gin.H{
		"id":    article.ID,
		"title": article.Title,
		"html":  Markdown(article.Content),
	})
}
