package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stackit/stackit/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Comment{},
		&models.Vote{},
		&models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedQuestion(t *testing.T, db *gorm.DB, ownerID uint, title string) models.Question {
	t.Helper()
	question := models.Question{UserID: ownerID, Title: title, Description: "body"}
	require.NoError(t, db.Create(&question).Error)
	return question
}

func seedAnswer(t *testing.T, db *gorm.DB, questionID, authorID uint) models.Answer {
	t.Helper()
	answer := models.Answer{QuestionID: questionID, UserID: authorID, Content: "an answer"}
	require.NoError(t, db.Create(&answer).Error)
	return answer
}

func seedComment(t *testing.T, db *gorm.DB, answer models.Answer, authorID uint) models.Comment {
	t.Helper()
	comment := models.Comment{
		AnswerID:   answer.ID,
		QuestionID: answer.QuestionID,
		UserID:     authorID,
		Content:    "a comment",
	}
	require.NoError(t, db.Create(&comment).Error)
	return comment
}
