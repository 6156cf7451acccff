package catalog

import (
	"time"

	"github.com/thinkthink/core/internal/models"
)

// CreateArticleDTO is the request body for uploading an article.
type CreateArticleDTO struct {
	Title       string `json:"title"   binding:"required"`
	Content     string `json:"content" binding:"required"`
	IsCommunity *bool  `json:"isCommunity"`
}

// articleResponse is the API response shape for an article.
type articleResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	UploaderID  string     `json:"uploaderId"`
	IsCommunity bool       `json:"isCommunity"`
	Created     time.Time  `json:"created"`
	Modified    *time.Time `json:"modified"`
}

// articleSummaryResponse omits the body for list endpoints.
type articleSummaryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	UploaderID  string    `json:"uploaderId"`
	IsCommunity bool      `json:"isCommunity"`
	Created     time.Time `json:"created"`
}

func toResponse(a *models.ArticleModel) articleResponse {
	var modified *time.Time
	if !a.UpdatedAt.IsZero() {
		modified = &a.UpdatedAt
	}
	return articleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		UploaderID:  a.UploaderID,
		IsCommunity: a.IsCommunity,
		Created:     a.CreatedAt,
		Modified:    modified,
	}
}

func toSummaryResponse(a *models.ArticleModel) articleSummaryResponse {
	return articleSummaryResponse{
		ID:          a.ID,
		Title:       a.Title,
		UploaderID:  a.UploaderID,
		IsCommunity: a.IsCommunity,
		Created:     a.CreatedAt,
	}
}
