package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question is a post asking for answers. Tags keep their submission order.
type Question struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	UserID      uint                        `gorm:"index;not null" json:"user_id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Views       int64                       `gorm:"default:0" json:"views"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	User        User                        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Answers     []Answer                    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"answers"`
}
