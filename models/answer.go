package models

import "time"

// Answer is a reply to a question. Votes is derived from the vote rows for
// this answer and is only written inside the same transaction that mutates
// them, so it cannot drift from the sets.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"index;not null" json:"question_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Votes      int       `gorm:"default:0" json:"votes"`
	IsAccepted bool      `gorm:"default:false" json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	// UserVote carries the requesting user's own vote when listing answers
	// for an authenticated caller; it is never persisted.
	UserVote string `gorm:"-" json:"user_vote,omitempty"`
}
