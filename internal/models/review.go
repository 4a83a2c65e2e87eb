package models

import (
	"time"
)

// Review is a course/teacher review posted by a user. The owner never
// changes after creation and Likes only ever grows (see ReviewService.Like).
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseName  string    `gorm:"size:255;not null;index" json:"course_name"`
	TeacherName string    `gorm:"size:255;not null;index" json:"teacher_name"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	ImagePath   string    `gorm:"size:255" json:"image_path,omitempty"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Comments []Comment `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;" json:"comments,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// OwnedBy reports whether the given user may modify or delete this review.
func (r *Review) OwnedBy(userID uint) bool {
	return r.UserID == userID
}
