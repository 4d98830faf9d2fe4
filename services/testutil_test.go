package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gradtrack/gradtrack-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory SQLite database and migrates the
// schema. Each test gets its own database keyed by the test name.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Program{},
		&model.Requirement{},
		&model.Document{},
		&model.DocumentProgram{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()

	user := model.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Name:         "Test User",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createTestProgram(t *testing.T, db *gorm.DB, userID uint) *model.Program {
	t.Helper()

	program := model.Program{
		UserID:     userID,
		University: "MIT",
		Department: "EECS",
		Deadline:   time.Now().Add(60 * 24 * time.Hour),
		Status:     model.ProgramStatusResearching,
	}
	require.NoError(t, db.Create(&program).Error)
	return &program
}

func createTestDocument(t *testing.T, db *gorm.DB, userID uint, name string) *model.Document {
	t.Helper()

	document := model.Document{
		UserID:       userID,
		Name:         name,
		Type:         model.DocumentTypeSOP,
		Status:       model.DocumentStatusDraft,
		LastModified: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&document).Error)
	return &document
}

func loadProgram(t *testing.T, db *gorm.DB, id uint) model.Program {
	t.Helper()

	var program model.Program
	require.NoError(t, db.First(&program, id).Error)
	return program
}
