package controllers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit/models"
)

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/answers/1/comments", tokenFor(t, bob),
		map[string]string{"content": "nice answer"})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored models.Comment
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "nice answer", stored.Content)
	assert.Equal(t, bob.ID, stored.UserID)
	assert.Equal(t, question.ID, stored.QuestionID)

	// answer author gets notified, eventually (dispatch is asynchronous)
	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.Notification{}).
			Where("recipient_id = ? AND type = ?", alice.ID, models.NotificationTypeComment).
			Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateCommentTooLong(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/answers/1/comments", tokenFor(t, bob),
		map[string]string{"content": strings.Repeat("a", models.CommentMaxLength+1)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, 40017, envelope.Code)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateCommentAtLimit(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/answers/1/comments", tokenFor(t, bob),
		map[string]string{"content": strings.Repeat("a", models.CommentMaxLength)})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(r, http.MethodPost, "/api/v1/answers/1/comments", "",
		map[string]string{"content": "anonymous"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListCommentsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)

	older := models.Comment{AnswerID: answer.ID, QuestionID: question.ID, UserID: alice.ID,
		Content: "first", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	newer := models.Comment{AnswerID: answer.ID, QuestionID: question.ID, UserID: alice.ID,
		Content: "second"}
	require.NoError(t, db.Create(&newer).Error)

	w := doJSON(r, http.MethodGet, "/api/v1/answers/1/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data := envelope.Data.(map[string]any)
	comments := data["comments"].([]any)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].(map[string]any)["content"])
	assert.Equal(t, "second", comments[1].(map[string]any)["content"])
}
