package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/services"
)

func TestCreateQuestion(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")

	w := doJSON(r, http.MethodPost, "/api/v1/questions", tokenFor(t, alice), map[string]any{
		"title":       "How do goroutines leak",
		"description": "long running select without cancel",
		"tags":        []string{"go", "Concurrency", "go"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored models.Question
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "How do goroutines leak", stored.Title)
	assert.Equal(t, alice.ID, stored.UserID)
	// tags lowercased and deduplicated, submission order kept
	assert.Equal(t, []string{"go", "concurrency"}, []string(stored.Tags))
}

func TestDeleteQuestionCascades(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := models.Question{UserID: alice.ID, Title: "q", Description: "d"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, UserID: alice.ID, Content: "a"}
	require.NoError(t, db.Create(&answer).Error)
	comment := models.Comment{AnswerID: answer.ID, QuestionID: question.ID, UserID: alice.ID, Content: "c"}
	require.NoError(t, db.Create(&comment).Error)

	votes := services.NewVoteService(db)
	_, err := votes.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, services.Upvote)
	require.NoError(t, err)
	_, err = votes.Apply(models.VoteTargetComment, comment.ID, bob.ID, services.Upvote)
	require.NoError(t, err)

	// only the owner may delete
	w := doJSON(r, http.MethodDelete, "/api/v1/questions/1", tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/questions/1", tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, model := range []any{&models.Question{}, &models.Answer{}, &models.Comment{}, &models.Vote{}} {
		var count int64
		db.Model(model).Count(&count)
		assert.Zero(t, count)
	}
}
