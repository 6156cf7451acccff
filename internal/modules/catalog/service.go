package catalog

import (
	"errors"
	"strings"

	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/pkg/pagination"
	"github.com/thinkthink/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrEmptyTitle   = errors.New("title is required")
	ErrEmptyContent = errors.New("content is required")
)

// Service handles article business logic.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListOwn returns the requester's uploaded articles, newest first.
func (s *Service) ListOwn(userID string, q pagination.Query) ([]models.ArticleModel, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleModel{}).
		Where("uploader_id = ?", userID).
		Order("created_at DESC")

	var articles []models.ArticleModel
	pag, err := pagination.Paginate(tx, q, &articles)
	return articles, pag, err
}

// ListCommunity returns articles shared to the community pool, newest first.
func (s *Service) ListCommunity(q pagination.Query) ([]models.ArticleModel, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleModel{}).
		Where("is_community = ?", true).
		Order("created_at DESC")

	var articles []models.ArticleModel
	pag, err := pagination.Paginate(tx, q, &articles)
	return articles, pag, err
}

// GetByID fetches a single article. Private articles are only visible to
// their uploader.
func (s *Service) GetByID(id, requesterID string) (*models.ArticleModel, error) {
	var article models.ArticleModel
	if err := s.db.First(&article, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !article.IsCommunity && article.UploaderID != requesterID {
		return nil, nil
	}
	return &article, nil
}

// Create stores an uploaded article owned by the given user.
func (s *Service) Create(userID string, dto *CreateArticleDTO) (*models.ArticleModel, error) {
	title := strings.TrimSpace(dto.Title)
	content := strings.TrimSpace(dto.Content)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	article := models.ArticleModel{
		Title:      title,
		Content:    content,
		UploaderID: userID,
	}
	if dto.IsCommunity != nil {
		article.IsCommunity = *dto.IsCommunity
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}
