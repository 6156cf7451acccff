package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thinkthink/core/internal/middleware"
	"github.com/thinkthink/core/internal/modules/auth"
	"github.com/thinkthink/core/internal/modules/catalog"
	"github.com/thinkthink/core/internal/modules/evaluation"
	"github.com/thinkthink/core/internal/modules/export"
	"github.com/thinkthink/core/internal/modules/practice"
	"github.com/thinkthink/core/internal/modules/render"
	"github.com/thinkthink/core/internal/modules/summary"
	"github.com/thinkthink/core/internal/pkg/mail"
	"github.com/thinkthink/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	start := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"uptime": time.Since(start).Round(time.Second).String(),
		})
	})

	// Duplicate submissions are rejected while the first one is in flight.
	r.Use(middleware.Idempotence(a.rc.Raw()))

	api := r.Group(apiPrefix)

	sender := mail.New(a.cfg.Mail)
	authSvc := auth.NewService(db, sender, a.cfg.BaseURL, a.logger)
	auth.NewHandler(db, authSvc, &a.cfg.OAuth, a.logger).RegisterRoutes(api, authMW)

	catalogSvc := catalog.NewService(db)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api, authMW)
	render.NewHandler(catalogSvc).RegisterRoutes(api, authMW)

	evaluator := evaluation.NewClient(a.cfg.AI, a.logger)
	practiceSvc := practice.NewService(db, catalogSvc, evaluator, a.logger)
	practice.NewHandler(practiceSvc).RegisterRoutes(api, authMW)

	summary.NewHandler(summary.NewService(db)).RegisterRoutes(api, authMW)
	export.NewHandler(db, a.cfg.S3).RegisterRoutes(api, authMW)
}
