package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit/models"
)

func TestAcceptMarksAnswer(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "accepting")
	answer := seedAnswer(t, db, question.ID, bob.ID)

	svc := NewAcceptService(db)

	accepted, q, err := svc.Accept(answer.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)
	assert.Equal(t, question.ID, q.ID)

	var stored models.Answer
	require.NoError(t, db.First(&stored, answer.ID).Error)
	assert.True(t, stored.IsAccepted)
}

func TestAcceptMovesToNewAnswer(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	question := seedQuestion(t, db, alice.ID, "at most one")
	first := seedAnswer(t, db, question.ID, bob.ID)
	second := seedAnswer(t, db, question.ID, carol.ID)

	svc := NewAcceptService(db)

	_, _, err := svc.Accept(first.ID, alice.ID)
	require.NoError(t, err)
	_, _, err = svc.Accept(second.ID, alice.ID)
	require.NoError(t, err)

	var acceptedCount int64
	db.Model(&models.Answer{}).
		Where("question_id = ? AND is_accepted = ?", question.ID, true).
		Count(&acceptedCount)
	assert.Equal(t, int64(1), acceptedCount)

	var stored models.Answer
	require.NoError(t, db.First(&stored, second.ID).Error)
	assert.True(t, stored.IsAccepted)
}

func TestAcceptReAcceptIsStable(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "re-accept")
	answer := seedAnswer(t, db, question.ID, bob.ID)

	svc := NewAcceptService(db)

	_, _, err := svc.Accept(answer.ID, alice.ID)
	require.NoError(t, err)
	accepted, _, err := svc.Accept(answer.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)

	var acceptedCount int64
	db.Model(&models.Answer{}).
		Where("question_id = ? AND is_accepted = ?", question.ID, true).
		Count(&acceptedCount)
	assert.Equal(t, int64(1), acceptedCount)
}

func TestAcceptOnlyQuestionOwner(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "ownership")
	answer := seedAnswer(t, db, question.ID, bob.ID)

	svc := NewAcceptService(db)

	_, _, err := svc.Accept(answer.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var stored models.Answer
	require.NoError(t, db.First(&stored, answer.ID).Error)
	assert.False(t, stored.IsAccepted)
}

func TestAcceptMissingAnswer(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")

	svc := NewAcceptService(db)

	_, _, err := svc.Accept(12345, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
