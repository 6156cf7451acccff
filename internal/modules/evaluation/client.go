package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thinkthink/core/internal/config"
	"github.com/thinkthink/core/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrTransport covers failures reaching the model or getting a response
	// back: network errors, auth errors, upstream 5xx, empty completions.
	ErrTransport = errors.New("evaluation transport failed")
	// ErrParse covers responses that arrived but do not contain a valid
	// evaluation document.
	ErrParse = errors.New("evaluation response unparseable")
)

// Client produces structured evaluations of user summaries.
type Client struct {
	cfg    config.AIConfig
	logger *zap.Logger
}

func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	return &Client{cfg: cfg, logger: logger}
}

// Evaluate scores a summary against its source article. The returned payload
// always has a score in [0, 100].
func (c *Client) Evaluate(ctx context.Context, articleText, summaryText string) (*models.EvaluationPayload, error) {
	systemPrompt, prompt := buildEvaluationPrompt(articleText, summaryText)

	raw, err := callModel(ctx, c.cfg, systemPrompt, prompt)
	if err != nil {
		c.logger.Warn("evaluation model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	payload, err := parseEvaluation(raw)
	if err != nil {
		c.logger.Warn("evaluation response rejected",
			zap.Error(err),
			zap.Int("raw_len", len(raw)))
		return nil, err
	}
	return payload, nil
}

func parseEvaluation(raw string) (*models.EvaluationPayload, error) {
	var doc struct {
		Score                *int     `json:"score"`
		Feedback             string   `json:"feedback"`
		ParagraphSuggestions []string `json:"paragraph_suggestions"`
		SentenceSuggestions  []string `json:"sentence_suggestions"`
	}
	if err := unmarshalModelJSON(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if doc.Score == nil {
		return nil, fmt.Errorf("%w: score is missing", ErrParse)
	}
	if strings.TrimSpace(doc.Feedback) == "" {
		return nil, fmt.Errorf("%w: feedback is empty", ErrParse)
	}

	payload := models.EvaluationPayload{
		Score:                *doc.Score,
		Feedback:             doc.Feedback,
		ParagraphSuggestions: doc.ParagraphSuggestions,
		SentenceSuggestions:  doc.SentenceSuggestions,
	}
	if payload.Score < 0 {
		payload.Score = 0
	}
	if payload.Score > 100 {
		payload.Score = 100
	}
	if payload.ParagraphSuggestions == nil {
		payload.ParagraphSuggestions = []string{}
	}
	if payload.SentenceSuggestions == nil {
		payload.SentenceSuggestions = []string{}
	}
	return &payload, nil
}

func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return errors.New("invalid JSON in model response")
}
