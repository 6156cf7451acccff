package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appcfg "github.com/thinkthink/core/internal/config"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	defaultS3PathTemplate = "exports/{Y}/{m}/{filename}"
	exportContentType     = "application/zip"
)

// Handler serves per-user data exports: a zip of the user's articles,
// practice sessions and evaluated summaries.
type Handler struct {
	db *gorm.DB
	s3 appcfg.S3Options
}

func NewHandler(db *gorm.DB, s3 appcfg.S3Options) *Handler {
	return &Handler{db: db, s3: s3}
}

// RegisterRoutes mounts export routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/export", authMW)

	g.GET("", h.download)
	g.POST("/upload-to-s3", h.uploadToS3)
}

// download GET /export  [auth]
func (h *Handler) download(c *gin.Context) {
	buf, err := h.buildExportZip(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	filename := exportFilename()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, exportContentType, buf.Bytes())
}

// uploadToS3 POST /export/upload-to-s3  [auth]
func (h *Handler) uploadToS3(c *gin.Context) {
	uploader, err := newS3Uploader(h.s3)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	buf, err := h.buildExportZip(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	filename := exportFilename()
	key := renderPathTemplate(h.s3.PathTemplate, filename)
	url, err := uploader.Upload(c.Request.Context(), key, buf.Bytes(), exportContentType)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"filename": filename,
		"url":      url,
	})
}

func exportFilename() string {
	return fmt.Sprintf("export-%s.zip", time.Now().Format("2006-01-02T15-04-05"))
}

func renderPathTemplate(tpl, filename string) string {
	if strings.TrimSpace(tpl) == "" {
		tpl = defaultS3PathTemplate
	}
	now := time.Now()
	repl := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{filename}", filename,
	)
	return repl.Replace(tpl)
}

// buildExportZip collects everything the user owns into one archive.
func (h *Handler) buildExportZip(userID string) (*bytes.Buffer, error) {
	var articles []models.ArticleModel
	if err := h.db.Where("uploader_id = ?", userID).Order("created_at").Find(&articles).Error; err != nil {
		return nil, err
	}

	var sessions []models.PracticeSessionModel
	if err := h.db.Where("user_id = ?", userID).Order("created_at").Find(&sessions).Error; err != nil {
		return nil, err
	}

	var summaries []models.SummaryModel
	if err := h.db.Where("user_id = ?", userID).Order("created_at").Find(&summaries).Error; err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	entries := []struct {
		name string
		data interface{}
	}{
		{"articles.json", articles},
		{"practice_sessions.json", sessions},
		{"summaries.json", summaries},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e.data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}
