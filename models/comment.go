package models

import "time"

// CommentMaxLength bounds comment text, matching the classic 500 character limit.
const CommentMaxLength = 500

// Comment is a short remark on an answer. QuestionID is denormalized so
// comments can be addressed without loading the answer first.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AnswerID   uint      `gorm:"index;not null" json:"answer_id"`
	QuestionID uint      `gorm:"index;not null" json:"question_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Content    string    `gorm:"size:500;not null" json:"content"`
	Votes      int       `gorm:"default:0" json:"votes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
