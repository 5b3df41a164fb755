package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit/models"
)

func TestCreateAnswerNotifiesQuestionOwner(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "How to center a div", Description: "d"}
	require.NoError(t, db.Create(&question).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/questions/1/answers", tokenFor(t, bob),
		map[string]string{"content": "use flexbox"})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Eventually(t, func() bool {
		var stored models.Notification
		err := db.Where("recipient_id = ? AND type = ?", alice.ID, models.NotificationTypeAnswer).
			First(&stored).Error
		return err == nil && stored.Content == `answered your question "How to center a div"`
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateAnswerOnOwnQuestionNoSelfNotification(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/questions/1/answers", tokenFor(t, alice),
		map[string]string{"content": "answering myself"})
	require.Equal(t, http.StatusCreated, w.Code)

	// give the async dispatcher a moment, then confirm silence
	time.Sleep(100 * time.Millisecond)
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func TestVoteAnswerEndpoint(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/answers/1/vote", tokenFor(t, bob),
		map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, float64(1), data["votes"])
	assert.Equal(t, "up", data["user_vote"])

	// self vote rejected
	w = doJSON(r, http.MethodPost, "/api/v1/answers/1/vote", tokenFor(t, alice),
		map[string]string{"direction": "up"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40015, decodeEnvelope(t, w).Code)

	// junk direction rejected
	w = doJSON(r, http.MethodPost, "/api/v1/answers/1/vote", tokenFor(t, bob),
		map[string]string{"direction": "sideways"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40016, decodeEnvelope(t, w).Code)
}

func TestAcceptAnswerEndpoint(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: bob.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)

	// only the question owner may accept
	w := doJSON(r, http.MethodPost, "/api/v1/answers/1/accept", tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/answers/1/accept", tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Answer
	require.NoError(t, db.First(&stored, answer.ID).Error)
	assert.True(t, stored.IsAccepted)

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.Notification{}).
			Where("recipient_id = ? AND type = ?", bob.ID, models.NotificationTypeAccept).
			Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListAnswersSortedByScore(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	low := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "low", Votes: 1}
	require.NoError(t, db.Create(&low).Error)
	high := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "high", Votes: 5}
	require.NoError(t, db.Create(&high).Error)

	w := doJSON(r, http.MethodGet, "/api/v1/questions/1/answers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data := envelope.Data.(map[string]any)
	answers := data["answers"].([]any)
	require.Len(t, answers, 2)
	assert.Equal(t, "high", answers[0].(map[string]any)["content"])
	assert.Equal(t, "low", answers[1].(map[string]any)["content"])
}
