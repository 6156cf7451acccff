package practice

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/modules/evaluation"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authMW := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
	}
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), authMW)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitEndpoint(t *testing.T) {
	t.Run("full lifecycle", func(t *testing.T) {
		eval := &stubEvaluator{payload: goodPayload(96)}
		svc, _, userID, articleID := newTestService(t, eval)
		r := newTestRouter(svc, userID)

		w := postJSON(r, "/api/v1/practice/sessions", gin.H{"articleId": articleID})
		require.Equal(t, http.StatusCreated, w.Code)

		var created struct {
			Session struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"session"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, models.PracticeStatusReading, created.Session.Status)
		sessionID := created.Session.ID

		w = postJSON(r, "/api/v1/practice/sessions/"+sessionID+"/finish-reading", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = postJSON(r, "/api/v1/practice/sessions/"+sessionID+"/submit", gin.H{"content": "my summary"})
		require.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Session struct {
				Status string `json:"status"`
			} `json:"session"`
			Summary struct {
				Score      int  `json:"score"`
				IsFeatured bool `json:"isFeatured"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, models.PracticeStatusSubmitted, result.Session.Status)
		assert.Equal(t, 96, result.Summary.Score)
		assert.True(t, result.Summary.IsFeatured)
	})

	t.Run("submit while reading is a conflict", func(t *testing.T) {
		svc, _, userID, articleID := newTestService(t, &stubEvaluator{payload: goodPayload(50)})
		r := newTestRouter(svc, userID)

		session, _, err := svc.Start(userID, articleID)
		require.NoError(t, err)

		w := postJSON(r, "/api/v1/practice/sessions/"+session.ID+"/submit", gin.H{"content": "x"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("whitespace summary is unprocessable", func(t *testing.T) {
		svc, _, userID, articleID := newTestService(t, &stubEvaluator{payload: goodPayload(50)})
		r := newTestRouter(svc, userID)

		session, _, err := svc.Start(userID, articleID)
		require.NoError(t, err)
		_, err = svc.FinishReading(userID, session.ID)
		require.NoError(t, err)

		w := postJSON(r, "/api/v1/practice/sessions/"+session.ID+"/submit", gin.H{"content": "   "})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("evaluation failure is a bad gateway", func(t *testing.T) {
		svc, _, userID, articleID := newTestService(t, &stubEvaluator{err: evaluation.ErrTransport})
		r := newTestRouter(svc, userID)

		session, _, err := svc.Start(userID, articleID)
		require.NoError(t, err)
		_, err = svc.FinishReading(userID, session.ID)
		require.NoError(t, err)

		w := postJSON(r, "/api/v1/practice/sessions/"+session.ID+"/submit", gin.H{"content": "x"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		svc, _, userID, _ := newTestService(t, &stubEvaluator{})
		r := newTestRouter(svc, userID)

		w := postJSON(r, "/api/v1/practice/sessions/nope/submit", gin.H{"content": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
