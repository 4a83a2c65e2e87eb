package services

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/sasa5432-arch/class-review-app/internal/models"
)

// CommentService builds and retrieves the two-level comment tree under a
// review.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// ListForReview returns the review's top-level comments in creation order,
// each with its replies preloaded in creation order. Comments that are
// themselves replies never appear in the root set.
func (s *CommentService) ListForReview(reviewID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Where("review_id = ? AND parent_comment_id IS NULL", reviewID).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Replies.User").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// validateContent enforces the varchar(500) bound here so a too-long
// comment fails fast instead of surfacing as a storage error.
func validateContent(content string) error {
	if content == "" {
		return fmt.Errorf("%w: content must not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return fmt.Errorf("%w: content exceeds %d characters", ErrValidation, models.MaxCommentLength)
	}
	return nil
}

// Add creates a top-level comment on a review.
func (s *CommentService) Add(reviewID, authorID uint, content, university, faculty, department string) (*models.Comment, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ReviewID:   reviewID,
		UserID:     authorID,
		Content:    content,
		University: university,
		Faculty:    faculty,
		Department: department,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// AddReply creates a reply under an existing comment. The parent must
// belong to the same review the reply is posted under; a reply targeting a
// comment from another review is rejected before anything is written.
func (s *CommentService) AddReply(reviewID, parentID, authorID uint, content, university, faculty, department string) (*models.Comment, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	parent, err := s.GetByID(parentID)
	if err != nil {
		return nil, err
	}
	if parent.ReviewID != reviewID {
		return nil, ErrCrossReviewReply
	}

	reply := models.Comment{
		ReviewID:        reviewID,
		UserID:          authorID,
		Content:         content,
		University:      university,
		Faculty:         faculty,
		Department:      department,
		ParentCommentID: &parent.ID,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}
