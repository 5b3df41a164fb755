package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit/models"
)

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Upvote, dir)

	dir, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, Downvote, dir)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	_, err = ParseDirection("")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestVoteScoreFollowsLedger(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	question := seedQuestion(t, db, alice.ID, "how do I test this")
	answer := seedAnswer(t, db, question.ID, alice.ID)

	svc := NewVoteService(db)

	score, err := svc.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, Upvote)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	score, err = svc.Apply(models.VoteTargetAnswer, answer.ID, carol.ID, Downvote)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	var stored models.Answer
	require.NoError(t, db.First(&stored, answer.ID).Error)
	assert.Equal(t, 0, stored.Votes)
}

func TestVoteSameDirectionIsNoOp(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "idempotence")
	answer := seedAnswer(t, db, question.ID, alice.ID)

	svc := NewVoteService(db)

	score, err := svc.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, Upvote)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	score, err = svc.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, Upvote)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	var count int64
	db.Model(&models.Vote{}).Where("target_kind = ? AND target_id = ?", models.VoteTargetAnswer, answer.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVoteSwitchNetsTwo(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "switching")
	answer := seedAnswer(t, db, question.ID, alice.ID)

	svc := NewVoteService(db)

	score, err := svc.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, Upvote)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	score, err = svc.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, Downvote)
	require.NoError(t, err)
	assert.Equal(t, -1, score)

	var count int64
	db.Model(&models.Vote{}).Where("user_id = ?", bob.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVoteOwnContentRejected(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	question := seedQuestion(t, db, alice.ID, "self vote")
	answer := seedAnswer(t, db, question.ID, alice.ID)
	comment := seedComment(t, db, answer, alice.ID)

	svc := NewVoteService(db)

	_, err := svc.Apply(models.VoteTargetAnswer, answer.ID, alice.ID, Upvote)
	assert.ErrorIs(t, err, ErrSelfVote)

	_, err = svc.Apply(models.VoteTargetComment, comment.ID, alice.ID, Downvote)
	assert.ErrorIs(t, err, ErrSelfVote)
}

func TestVoteInvalidDirectionRejected(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "bad direction")
	answer := seedAnswer(t, db, question.ID, alice.ID)

	svc := NewVoteService(db)

	_, err := svc.Apply(models.VoteTargetAnswer, answer.ID, bob.ID, Direction("sideways"))
	assert.ErrorIs(t, err, ErrInvalidDirection)

	var count int64
	db.Model(&models.Vote{}).Count(&count)
	assert.Zero(t, count)
}

func TestVoteMissingTarget(t *testing.T) {
	db := newTestDB(t)
	bob := seedUser(t, db, "bob")

	svc := NewVoteService(db)

	_, err := svc.Apply(models.VoteTargetAnswer, 9999, bob.ID, Upvote)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Apply("post", 1, bob.ID, Upvote)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVoteOnComment(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "comment votes")
	answer := seedAnswer(t, db, question.ID, alice.ID)
	comment := seedComment(t, db, answer, alice.ID)

	svc := NewVoteService(db)

	score, err := svc.Apply(models.VoteTargetComment, comment.ID, bob.ID, Downvote)
	require.NoError(t, err)
	assert.Equal(t, -1, score)

	var stored models.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.Equal(t, -1, stored.Votes)

	assert.Equal(t, Downvote, svc.VoteFor(models.VoteTargetComment, comment.ID, bob.ID))
	assert.Equal(t, Direction(""), svc.VoteFor(models.VoteTargetComment, comment.ID, alice.ID))
}

func TestAttachUserVotes(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "vote display")
	first := seedAnswer(t, db, question.ID, alice.ID)
	second := seedAnswer(t, db, question.ID, alice.ID)
	third := seedAnswer(t, db, question.ID, alice.ID)

	svc := NewVoteService(db)
	_, err := svc.Apply(models.VoteTargetAnswer, first.ID, bob.ID, Upvote)
	require.NoError(t, err)
	_, err = svc.Apply(models.VoteTargetAnswer, second.ID, bob.ID, Downvote)
	require.NoError(t, err)

	answers := []models.Answer{first, second, third}
	svc.AttachUserVotes(answers, bob.ID)

	assert.Equal(t, "up", answers[0].UserVote)
	assert.Equal(t, "down", answers[1].UserVote)
	assert.Empty(t, answers[2].UserVote)
}
