package catalog

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/pkg/pagination"
	"github.com/thinkthink/core/internal/pkg/response"
)

// Handler handles article HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts article routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	articles := rg.Group("/articles", authMW)

	articles.GET("", h.listOwn)
	articles.GET("/community", h.listCommunity)
	articles.GET("/:id", h.getByID)
	articles.POST("", h.create)
}

// listOwn GET /articles  [auth]
func (h *Handler) listOwn(c *gin.Context) {
	q := pagination.FromContext(c)
	userID := middleware.CurrentUserID(c)

	articles, pag, err := h.svc.ListOwn(userID, q)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]articleSummaryResponse, len(articles))
	for i, a := range articles {
		items[i] = toSummaryResponse(&a)
	}
	response.Paged(c, items, pag)
}

// listCommunity GET /articles/community  [auth]
func (h *Handler) listCommunity(c *gin.Context) {
	q := pagination.FromContext(c)

	articles, pag, err := h.svc.ListCommunity(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]articleSummaryResponse, len(articles))
	for i, a := range articles {
		items[i] = toSummaryResponse(&a)
	}
	response.Paged(c, items, pag)
}

// getByID GET /articles/:id  [auth]
func (h *Handler) getByID(c *gin.Context) {
	article, err := h.svc.GetByID(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFoundMsg(c, "article not found")
		return
	}
	response.OK(c, toResponse(article))
}

// create POST /articles  [auth]
func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	article, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, ErrEmptyTitle) || errors.Is(err, ErrEmptyContent) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(article))
}
