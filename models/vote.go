package models

import "time"

// Vote target kinds.
const (
	VoteTargetAnswer  = "answer"
	VoteTargetComment = "comment"
)

// Vote is a single user's vote on one answer or comment. The unique index
// makes the table behave as the up/down vote sets: a user holds at most one
// row per target, so membership in both sets at once is impossible. The row
// doubles as the voter's personal vote history for client display.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_votes_user_target;not null" json:"user_id"`
	TargetKind string    `gorm:"size:16;uniqueIndex:idx_votes_user_target;not null" json:"target_kind"`
	TargetID   uint      `gorm:"uniqueIndex:idx_votes_user_target;index;not null" json:"target_id"`
	Value      int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
