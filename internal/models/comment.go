package models

import (
	"time"
)

// MaxCommentLength mirrors the varchar(500) column on content.
const MaxCommentLength = 500

// Comment hangs off a review. A comment with ParentCommentID set is a
// reply; replies are one level deep, the listing query only expands
// top-level comments.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ReviewID        uint      `gorm:"not null;index" json:"review_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Content         string    `gorm:"size:500;not null" json:"content"`
	University      string    `gorm:"size:100;not null" json:"university"`
	Faculty         string    `gorm:"size:100;not null" json:"faculty"`
	Department      string    `gorm:"size:100;not null" json:"department"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Relations
	User    User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE;" json:"replies"`
}

func (Comment) TableName() string {
	return "comments"
}
