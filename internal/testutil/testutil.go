package testutil

import (
	"testing"

	"github.com/thinkthink/core/internal/database"
	"github.com/thinkthink/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory database with the full schema. Each call gets
// its own database, so tests never share state.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// Logger returns a no-op logger for tests.
func Logger(tb testing.TB) *zap.Logger {
	tb.Helper()
	return zap.NewNop()
}

// SeedUser inserts a user row.
func SeedUser(tb testing.TB, db *gorm.DB, email string) *models.UserModel {
	tb.Helper()

	user := &models.UserModel{Email: email, Name: "test"}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedArticle inserts an article row owned by the given user.
func SeedArticle(tb testing.TB, db *gorm.DB, uploaderID, title string, community bool) *models.ArticleModel {
	tb.Helper()

	article := &models.ArticleModel{
		Title:       title,
		Content:     "Paragraph one.\n\nParagraph two.",
		UploaderID:  uploaderID,
		IsCommunity: community,
	}
	if err := db.Create(article).Error; err != nil {
		tb.Fatalf("failed to seed article: %v", err)
	}
	return article
}
