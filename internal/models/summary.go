package models

// FeaturedScoreThreshold is the exclusive score bound above which a summary
// is featured. IsFeatured is computed once at insert and never recomputed.
const FeaturedScoreThreshold = 90

// EvaluationPayload is the structured AI feedback stored with a summary.
// The keys mirror the JSON object the evaluation model is instructed to emit.
type EvaluationPayload struct {
	Score                int      `json:"score"`
	Feedback             string   `json:"feedback"`
	ParagraphSuggestions []string `json:"paragraph_suggestions"`
	SentenceSuggestions  []string `json:"sentence_suggestions"`
}

// SummaryModel is a user-authored condensation of an article, paired with
// the AI evaluation it received. Rows are insert-only.
type SummaryModel struct {
	Base
	ArticleID              string            `json:"article_id"               gorm:"index;not null"`
	UserID                 string            `json:"user_id"                  gorm:"index;not null"`
	Content                string            `json:"content"                  gorm:"type:longtext;not null"`
	ReadingDurationSeconds int               `json:"reading_duration_seconds"`
	AIScore                int               `json:"ai_score"`
	AIFeedback             EvaluationPayload `json:"ai_feedback"              gorm:"type:json;serializer:json"`
	IsFeatured             bool              `json:"is_featured"              gorm:"default:false;index"`
}

func (SummaryModel) TableName() string { return "summaries" }
