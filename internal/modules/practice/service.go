package practice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/modules/catalog"
	"github.com/thinkthink/core/internal/modules/evaluation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("practice session not found")
	ErrWrongState      = errors.New("practice session is not in the required state")
	ErrEmptySummary    = errors.New("summary content is empty")
)

// Evaluator scores a summary against its source article.
type Evaluator interface {
	Evaluate(ctx context.Context, articleText, summaryText string) (*models.EvaluationPayload, error)
}

// Service drives the reading → summarizing → submitted/failed lifecycle.
type Service struct {
	db        *gorm.DB
	catalog   *catalog.Service
	evaluator Evaluator
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(db *gorm.DB, catalogSvc *catalog.Service, evaluator Evaluator, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		catalog:   catalogSvc,
		evaluator: evaluator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the wall clock used for timestamps.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Start opens a new session over an article the user can read. StartedAt is
// the moment the article is handed out, not a client-supplied value.
func (s *Service) Start(userID, articleID string) (*models.PracticeSessionModel, *models.ArticleModel, error) {
	article, err := s.catalog.GetByID(articleID, userID)
	if err != nil {
		return nil, nil, err
	}
	if article == nil {
		return nil, nil, ErrSessionNotFound
	}

	session := models.PracticeSessionModel{
		ArticleID: article.ID,
		UserID:    userID,
		Status:    models.PracticeStatusReading,
		StartedAt: s.now(),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, nil, err
	}
	return &session, article, nil
}

// Get fetches one of the user's own sessions.
func (s *Service) Get(userID, sessionID string) (*models.PracticeSessionModel, error) {
	var session models.PracticeSessionModel
	err := s.db.First(&session, "id = ? AND user_id = ?", sessionID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FinishReading moves a session from reading to summarizing.
func (s *Service) FinishReading(userID, sessionID string) (*models.PracticeSessionModel, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.PracticeStatusReading {
		return nil, ErrWrongState
	}

	finished := s.now()
	session.Status = models.PracticeStatusSummarizing
	session.FinishedReadingAt = &finished

	if err := s.db.Model(session).Updates(map[string]interface{}{
		"status":              session.Status,
		"finished_reading_at": session.FinishedReadingAt,
	}).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// Submit evaluates and stores the summary. Exactly one terminal outcome is
// recorded: either a summary row exists and the session is submitted, or no
// summary row exists and the session is failed with a failure kind.
func (s *Service) Submit(ctx context.Context, userID, sessionID, content string) (*models.PracticeSessionModel, *models.SummaryModel, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != models.PracticeStatusSummarizing {
		return nil, nil, ErrWrongState
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil, ErrEmptySummary
	}

	article, err := s.catalog.GetByID(session.ArticleID, userID)
	if err != nil {
		return nil, nil, err
	}
	if article == nil {
		return nil, nil, ErrSessionNotFound
	}

	duration := int(math.Round(s.now().Sub(session.StartedAt).Seconds()))
	if duration < 0 {
		duration = 0
	}

	payload, err := s.evaluator.Evaluate(ctx, article.Content, content)
	if err != nil {
		kind := models.FailureKindEvaluationTransport
		if errors.Is(err, evaluation.ErrParse) {
			kind = models.FailureKindEvaluationParse
		}
		s.fail(session, kind)
		return session, nil, err
	}

	summary := models.SummaryModel{
		ArticleID:              session.ArticleID,
		UserID:                 userID,
		Content:                content,
		ReadingDurationSeconds: duration,
		AIScore:                payload.Score,
		AIFeedback:             *payload,
		IsFeatured:             payload.Score > models.FeaturedScoreThreshold,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&summary).Error; err != nil {
			return err
		}
		return tx.Model(&models.PracticeSessionModel{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"status":     models.PracticeStatusSubmitted,
				"summary_id": summary.ID,
			}).Error
	})
	if err != nil {
		s.fail(session, models.FailureKindPersistence)
		return session, nil, fmt.Errorf("summary persistence failed: %w", err)
	}

	session.Status = models.PracticeStatusSubmitted
	session.SummaryID = &summary.ID
	return session, &summary, nil
}

// fail records the terminal failed state. Best effort: if even this write
// fails the session stays summarizing and the client may retry.
func (s *Service) fail(session *models.PracticeSessionModel, kind string) {
	err := s.db.Model(&models.PracticeSessionModel{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"status":       models.PracticeStatusFailed,
			"failure_kind": kind,
		}).Error
	if err != nil {
		s.logger.Error("failed to mark practice session as failed",
			zap.String("session_id", session.ID),
			zap.String("kind", kind),
			zap.Error(err))
		return
	}
	session.Status = models.PracticeStatusFailed
	session.FailureKind = kind
}
