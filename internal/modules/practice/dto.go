package practice

import (
	"time"

	"github.com/thinkthink/core/internal/models"
)

// StartSessionDTO is the request body for opening a practice session.
type StartSessionDTO struct {
	ArticleID string `json:"articleId" binding:"required"`
}

// SubmitSummaryDTO is the request body for submitting a summary.
type SubmitSummaryDTO struct {
	Content string `json:"content" binding:"required"`
}

// sessionResponse is the API response shape for a practice session.
type sessionResponse struct {
	ID                string     `json:"id"`
	ArticleID         string     `json:"articleId"`
	Status            string     `json:"status"`
	StartedAt         time.Time  `json:"startedAt"`
	FinishedReadingAt *time.Time `json:"finishedReadingAt"`
	FailureKind       string     `json:"failureKind,omitempty"`
	SummaryID         *string    `json:"summaryId,omitempty"`
}

// submitResponse pairs the terminal session with the stored summary.
type submitResponse struct {
	Session sessionResponse          `json:"session"`
	Summary *summaryResultResponse   `json:"summary,omitempty"`
}

type summaryResultResponse struct {
	ID                     string                   `json:"id"`
	ArticleID              string                   `json:"articleId"`
	Content                string                   `json:"content"`
	ReadingDurationSeconds int                      `json:"readingDurationSeconds"`
	Score                  int                      `json:"score"`
	Feedback               models.EvaluationPayload `json:"feedback"`
	IsFeatured             bool                     `json:"isFeatured"`
	Created                time.Time                `json:"created"`
}

func toSessionResponse(s *models.PracticeSessionModel) sessionResponse {
	return sessionResponse{
		ID:                s.ID,
		ArticleID:         s.ArticleID,
		Status:            s.Status,
		StartedAt:         s.StartedAt,
		FinishedReadingAt: s.FinishedReadingAt,
		FailureKind:       s.FailureKind,
		SummaryID:         s.SummaryID,
	}
}

func toSummaryResultResponse(m *models.SummaryModel) *summaryResultResponse {
	return &summaryResultResponse{
		ID:                     m.ID,
		ArticleID:              m.ArticleID,
		Content:                m.Content,
		ReadingDurationSeconds: m.ReadingDurationSeconds,
		Score:                  m.AIScore,
		Feedback:               m.AIFeedback,
		IsFeatured:             m.IsFeatured,
		Created:                m.CreatedAt,
	}
}
