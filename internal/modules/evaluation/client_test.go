package evaluation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkthink/core/internal/config"
	"go.uber.org/zap"
)

func TestParseEvaluation(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		payload, err := parseEvaluation(`{"score":85,"feedback":"solid","paragraph_suggestions":["p1"],"sentence_suggestions":[]}`)
		require.NoError(t, err)
		assert.Equal(t, 85, payload.Score)
		assert.Equal(t, "solid", payload.Feedback)
		assert.Equal(t, []string{"p1"}, payload.ParagraphSuggestions)
		assert.Empty(t, payload.SentenceSuggestions)
	})

	t.Run("fenced json", func(t *testing.T) {
		payload, err := parseEvaluation("```json\n{\"score\":42,\"feedback\":\"ok\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, 42, payload.Score)
	})

	t.Run("json embedded in prose", func(t *testing.T) {
		payload, err := parseEvaluation(`Here is my evaluation: {"score":70,"feedback":"fine"} hope it helps`)
		require.NoError(t, err)
		assert.Equal(t, 70, payload.Score)
	})

	t.Run("score clamped to range", func(t *testing.T) {
		payload, err := parseEvaluation(`{"score":130,"feedback":"x"}`)
		require.NoError(t, err)
		assert.Equal(t, 100, payload.Score)

		payload, err = parseEvaluation(`{"score":-5,"feedback":"x"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, payload.Score)
	})

	t.Run("nil suggestion lists become empty", func(t *testing.T) {
		payload, err := parseEvaluation(`{"score":50,"feedback":"x"}`)
		require.NoError(t, err)
		assert.NotNil(t, payload.ParagraphSuggestions)
		assert.NotNil(t, payload.SentenceSuggestions)
	})

	t.Run("non-json is a parse error", func(t *testing.T) {
		_, err := parseEvaluation("I cannot evaluate this summary.")
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("missing feedback is a parse error", func(t *testing.T) {
		_, err := parseEvaluation(`{"score":50}`)
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("missing score is a parse error", func(t *testing.T) {
		_, err := parseEvaluation(`{"feedback":"nicely condensed","paragraph_suggestions":[],"sentence_suggestions":[]}`)
		require.ErrorIs(t, err, ErrParse)
	})
}

func TestClientEvaluate(t *testing.T) {
	newServer := func(handler http.HandlerFunc) (*httptest.Server, *Client) {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		client := NewClient(config.AIConfig{
			Type:     "openai-compatible",
			APIKey:   "test-key",
			Endpoint: srv.URL,
			Model:    "test-model",
		}, zap.NewNop())
		return srv, client
	}

	t.Run("success", func(t *testing.T) {
		_, client := newServer(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{
						"content": "```json\n{\"score\":95,\"feedback\":\"excellent\",\"paragraph_suggestions\":[],\"sentence_suggestions\":[\"s\"]}\n```",
					}},
				},
			})
		})

		payload, err := client.Evaluate(context.Background(), "the article", "the summary")
		require.NoError(t, err)
		assert.Equal(t, 95, payload.Score)
		assert.Equal(t, "excellent", payload.Feedback)
		assert.Equal(t, []string{"s"}, payload.SentenceSuggestions)
	})

	t.Run("upstream error is a transport error", func(t *testing.T) {
		_, client := newServer(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusInternalServerError)
		})

		_, err := client.Evaluate(context.Background(), "a", "s")
		require.ErrorIs(t, err, ErrTransport)
	})

	t.Run("unparseable body is a parse error", func(t *testing.T) {
		_, client := newServer(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"content": "sorry, no JSON today"}},
				},
			})
		})

		_, err := client.Evaluate(context.Background(), "a", "s")
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("empty api key is a transport error", func(t *testing.T) {
		client := NewClient(config.AIConfig{Type: "openai-compatible"}, zap.NewNop())
		_, err := client.Evaluate(context.Background(), "a", "s")
		require.ErrorIs(t, err, ErrTransport)
	})
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 100))

	long := make([]rune, 0, 20)
	for i := 0; i < 20; i++ {
		long = append(long, '字')
	}
	got := truncateText(string(long), 10)
	assert.Equal(t, string(long[:10])+"...", got)
}
