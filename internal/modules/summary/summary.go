package summary

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/pkg/pagination"
	"github.com/thinkthink/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service handles stored summary queries.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListOwn returns the user's summaries, newest first.
func (s *Service) ListOwn(userID string, q pagination.Query) ([]models.SummaryModel, response.Pagination, error) {
	tx := s.db.Model(&models.SummaryModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	var summaries []models.SummaryModel
	pag, err := pagination.Paginate(tx, q, &summaries)
	return summaries, pag, err
}

// ListFeatured returns featured summaries across all users, highest score
// first.
func (s *Service) ListFeatured(q pagination.Query) ([]models.SummaryModel, response.Pagination, error) {
	tx := s.db.Model(&models.SummaryModel{}).
		Where("is_featured = ?", true).
		Order("ai_score DESC, created_at DESC")

	var summaries []models.SummaryModel
	pag, err := pagination.Paginate(tx, q, &summaries)
	return summaries, pag, err
}

type summaryResponse struct {
	ID                     string                   `json:"id"`
	ArticleID              string                   `json:"articleId"`
	UserID                 string                   `json:"userId"`
	Content                string                   `json:"content"`
	ReadingDurationSeconds int                      `json:"readingDurationSeconds"`
	Score                  int                      `json:"score"`
	Feedback               models.EvaluationPayload `json:"feedback"`
	IsFeatured             bool                     `json:"isFeatured"`
	Created                time.Time                `json:"created"`
}

func toResponse(m *models.SummaryModel) summaryResponse {
	return summaryResponse{
		ID:                     m.ID,
		ArticleID:              m.ArticleID,
		UserID:                 m.UserID,
		Content:                m.Content,
		ReadingDurationSeconds: m.ReadingDurationSeconds,
		Score:                  m.AIScore,
		Feedback:               m.AIFeedback,
		IsFeatured:             m.IsFeatured,
		Created:                m.CreatedAt,
	}
}

// Handler handles summary HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts summary routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	summaries := rg.Group("/summaries", authMW)

	summaries.GET("", h.listOwn)
	summaries.GET("/featured", h.listFeatured)
}

// listOwn GET /summaries  [auth]
func (h *Handler) listOwn(c *gin.Context) {
	q := pagination.FromContext(c)

	summaries, pag, err := h.svc.ListOwn(middleware.CurrentUserID(c), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]summaryResponse, len(summaries))
	for i, m := range summaries {
		items[i] = toResponse(&m)
	}
	response.Paged(c, items, pag)
}

// listFeatured GET /summaries/featured  [auth]
func (h *Handler) listFeatured(c *gin.Context) {
	q := pagination.FromContext(c)

	summaries, pag, err := h.svc.ListFeatured(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]summaryResponse, len(summaries))
	for i, m := range summaries {
		items[i] = toResponse(&m)
	}
	response.Paged(c, items, pag)
}
