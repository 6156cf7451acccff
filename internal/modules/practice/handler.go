package practice

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/modules/evaluation"
	"github.com/thinkthink/core/internal/pkg/response"
)

// Handler handles practice session HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts practice routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	sessions := rg.Group("/practice/sessions", authMW)

	sessions.POST("", h.start)
	sessions.GET("/:id", h.get)
	sessions.POST("/:id/finish-reading", h.finishReading)
	sessions.POST("/:id/submit", h.submit)
}

// start POST /practice/sessions  [auth]
func (h *Handler) start(c *gin.Context) {
	var dto StartSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, article, err := h.svc.Start(middleware.CurrentUserID(c), dto.ArticleID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			response.NotFoundMsg(c, "article not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Created(c, gin.H{
		"session": toSessionResponse(session),
		"article": gin.H{
			"id":      article.ID,
			"title":   article.Title,
			"content": article.Content,
		},
	})
}

// get GET /practice/sessions/:id  [auth]
func (h *Handler) get(c *gin.Context) {
	session, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			response.NotFoundMsg(c, "practice session not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toSessionResponse(session))
}

// finishReading POST /practice/sessions/:id/finish-reading  [auth]
func (h *Handler) finishReading(c *gin.Context) {
	session, err := h.svc.FinishReading(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			response.NotFoundMsg(c, "practice session not found")
		case errors.Is(err, ErrWrongState):
			response.Conflict(c, "session is not in the reading state")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, toSessionResponse(session))
}

// submit POST /practice/sessions/:id/submit  [auth]
func (h *Handler) submit(c *gin.Context) {
	var dto SubmitSummaryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, summary, err := h.svc.Submit(
		c.Request.Context(),
		middleware.CurrentUserID(c),
		c.Param("id"),
		dto.Content,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			response.NotFoundMsg(c, "practice session not found")
		case errors.Is(err, ErrWrongState):
			response.Conflict(c, "session is not in the summarizing state")
		case errors.Is(err, ErrEmptySummary):
			response.UnprocessableEntity(c, "summary content is empty")
		case errors.Is(err, evaluation.ErrTransport), errors.Is(err, evaluation.ErrParse):
			response.BadGateway(c, "summary evaluation failed")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.OK(c, submitResponse{
		Session: toSessionResponse(session),
		Summary: toSummaryResultResponse(summary),
	})
}
