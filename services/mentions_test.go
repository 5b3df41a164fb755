package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit/models"
)

func TestExtractMentions(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob_2"}, ExtractMentions("hi @alice and @bob_2!"))
	assert.Equal(t, []string{"dave"}, ExtractMentions("thanks @dave."))
	assert.Empty(t, ExtractMentions("no mentions here"))
	assert.Empty(t, ExtractMentions("dangling @ sign"))
	// hyphen ends the token
	assert.Equal(t, []string{"jean"}, ExtractMentions("cc @jean-luc"))
}

func TestNotifyMentionsResolvesUsers(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	question := seedQuestion(t, db, alice.ID, "mentions")

	n := NewNotifier(db)
	n.NotifyMentions("ping @bob and @carol and @ghost", alice.ID, question.ID, nil)

	var notifications []models.Notification
	require.NoError(t, db.Order("id").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	assert.Equal(t, bob.ID, notifications[0].RecipientID)
	assert.Equal(t, carol.ID, notifications[1].RecipientID)
	for _, notification := range notifications {
		assert.Equal(t, models.NotificationTypeMention, notification.Type)
		assert.Equal(t, "/question/1", notification.Link)
	}
}

func TestNotifyMentionsRepeatedMentionNotifiesOnce(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "repeats")

	n := NewNotifier(db)
	n.NotifyMentions("@bob @bob really, @bob", alice.ID, question.ID, nil)

	var count int64
	db.Model(&models.Notification{}).Where("recipient_id = ?", bob.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestNotifyMentionsSkipsSelf(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	question := seedQuestion(t, db, alice.ID, "self mention")

	n := NewNotifier(db)
	n.NotifyMentions("note to @alice", alice.ID, question.ID, nil)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func TestNotifyMentionsTruncatesQuote(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	question := seedQuestion(t, db, alice.ID, "long text")

	text := "@bob " + strings.Repeat("x", 300)
	n := NewNotifier(db)
	n.NotifyMentions(text, alice.ID, question.ID, nil)

	var stored models.Notification
	require.NoError(t, db.Where("recipient_id = ?", bob.ID).First(&stored).Error)
	assert.Equal(t, "mentioned you: "+text[:100]+"...", stored.Content)
}
