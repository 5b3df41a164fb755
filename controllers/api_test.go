package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stackit/stackit/config"
	"github.com/stackit/stackit/middleware"
	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		AppPort:            "0",
		JWTSecret:          "test-secret",
		RedisHost:          "127.0.0.1",
		RedisPort:          6379,
		RateLimitPerMinute: 10000,
	})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", t.Name())
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

// newTestRouter wires only the handlers under test, with real auth middleware.
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	questions := NewQuestionController(db)
	answers := NewAnswerController(db)
	comments := NewCommentController(db)
	notifications := NewNotificationController(db)

	api := r.Group("/api/v1")
	api.GET("/questions/:id/answers", answers.ListForQuestion)
	api.GET("/answers/:id/comments", comments.ListForAnswer)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/questions", questions.CreateQuestion)
	protected.DELETE("/questions/:id", questions.DeleteQuestion)
	protected.POST("/questions/:id/answers", answers.Create)
	protected.POST("/answers/:id/vote", answers.Vote)
	protected.POST("/answers/:id/accept", answers.Accept)
	protected.POST("/answers/:id/comments", comments.Create)
	protected.GET("/notifications", notifications.List)
	protected.GET("/notifications/unread-count", notifications.UnreadCount)
	protected.PATCH("/notifications/:id/read", notifications.MarkRead)
	protected.PATCH("/notifications/read-all", notifications.MarkAllRead)

	return r
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) utils.JSONResponse {
	t.Helper()
	var envelope utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}
