package models

import "time"

// Notification types.
const (
	NotificationTypeAnswer  = "answer"
	NotificationTypeComment = "comment"
	NotificationTypeMention = "mention"
	NotificationTypeVote    = "vote"
	NotificationTypeAccept  = "accept"
)

// Notification records an event addressed to a user. Sender always differs
// from recipient; the dispatcher drops self-addressed events before creation.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"index:idx_notifications_recipient;not null" json:"recipient_id"`
	SenderID    uint      `gorm:"not null" json:"sender_id"`
	Type        string    `gorm:"size:16;not null" json:"type"`
	QuestionID  *uint     `json:"question_id,omitempty"`
	AnswerID    *uint     `json:"answer_id,omitempty"`
	Content     string    `gorm:"size:512;not null" json:"content"`
	Link        string    `gorm:"size:512;not null" json:"link"`
	// column named is_read, READ is reserved in MySQL
	Read        bool      `gorm:"column:is_read;default:false;index:idx_notifications_recipient" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	Sender      User      `gorm:"foreignKey:SenderID" json:"sender"`
}
