package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/utils"
)

// Notifier creates notification records as a side effect of other mutations.
// Dispatch is best-effort: failures are logged and swallowed so the primary
// operation never fails because a notification could not be written.
type Notifier struct {
	db *gorm.DB
}

// NewNotifier creates a Notifier.
func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Notify creates one unread notification. It returns nil without side effect
// when sender and recipient are the same user, and nil when creation fails.
func (n *Notifier) Notify(recipientID, senderID uint, typ, content, link string, questionID, answerID *uint) *models.Notification {
	if recipientID == senderID {
		return nil
	}

	notification := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		QuestionID:  questionID,
		AnswerID:    answerID,
		Content:     content,
		Link:        link,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to create %s notification for user %d: %v", typ, recipientID, err)
		}
		return nil
	}
	return &notification
}

// NotifyNewAnswer tells a question owner that someone answered their question.
func (n *Notifier) NotifyNewAnswer(questionOwnerID, answerAuthorID, questionID, answerID uint, questionTitle string) *models.Notification {
	content := fmt.Sprintf("answered your question %q", questionTitle)
	link := fmt.Sprintf("/question/%d", questionID)
	return n.Notify(questionOwnerID, answerAuthorID, models.NotificationTypeAnswer, content, link, &questionID, &answerID)
}

// NotifyAnswerAccepted tells an answer author that their answer was accepted.
func (n *Notifier) NotifyAnswerAccepted(answerAuthorID, questionOwnerID, questionID, answerID uint, questionTitle string) *models.Notification {
	content := fmt.Sprintf("accepted your answer on %q", questionTitle)
	link := fmt.Sprintf("/question/%d", questionID)
	return n.Notify(answerAuthorID, questionOwnerID, models.NotificationTypeAccept, content, link, &questionID, &answerID)
}

// NotifyNewComment tells an answer author that someone commented on their answer.
func (n *Notifier) NotifyNewComment(answerAuthorID, commenterID, questionID, answerID uint, commenterName string) *models.Notification {
	content := fmt.Sprintf("%s commented on your answer", commenterName)
	link := fmt.Sprintf("/question/%d", questionID)
	return n.Notify(answerAuthorID, commenterID, models.NotificationTypeComment, content, link, &questionID, &answerID)
}
