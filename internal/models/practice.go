package models

import "time"

// Practice session states. A session moves Reading → Summarizing → one of
// Submitted or Failed; there is no way back to Reading.
const (
	PracticeStatusReading     = "reading"
	PracticeStatusSummarizing = "summarizing"
	PracticeStatusSubmitted   = "submitted"
	PracticeStatusFailed      = "failed"
)

// Failure kinds recorded on a failed session.
const (
	FailureKindEvaluationTransport = "evaluation_transport"
	FailureKindEvaluationParse     = "evaluation_parse"
	FailureKindPersistence         = "persistence"
)

// PracticeSessionModel is one read-then-summarize cycle over a single
// article. StartedAt is recorded when the article is fetched; the reading
// duration stored on the resulting summary is measured from it.
type PracticeSessionModel struct {
	Base
	ArticleID         string     `json:"article_id"          gorm:"index;not null"`
	UserID            string     `json:"user_id"             gorm:"index;not null"`
	Status            string     `json:"status"              gorm:"default:'reading';index"`
	StartedAt         time.Time  `json:"started_at"          gorm:"not null"`
	FinishedReadingAt *time.Time `json:"finished_reading_at"`
	FailureKind       string     `json:"failure_kind,omitempty"`
	SummaryID         *string    `json:"summary_id,omitempty" gorm:"index"`
}

func (PracticeSessionModel) TableName() string { return "practice_sessions" }
