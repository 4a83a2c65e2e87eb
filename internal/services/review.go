package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sasa5432-arch/class-review-app/internal/models"
)

// ReviewService owns review search, mutation and the like counter.
// Ownership of a review is checked with Review.OwnedBy before every
// mutating operation; liking is open to any authenticated user.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Search targets
const (
	TargetCourse  = "course"
	TargetTeacher = "teacher"
	TargetAll     = "all"
)

// Sort keys
const (
	SortRecent = "recent"
	SortRating = "rating"
	SortLikes  = "likes"
)

// orderClause maps a sort key onto an ORDER BY clause. Unrecognized keys
// (including "recent") fall back to newest-first by id.
func orderClause(sortKey string) string {
	switch sortKey {
	case SortRating:
		return "rating DESC"
	case SortLikes:
		return "likes DESC"
	default:
		return "id DESC"
	}
}

// Search returns reviews matching an optional keyword, ordered per sortKey.
// A blank keyword returns the full store. Matching is a case-insensitive
// substring match against the course name, the teacher name, or either,
// depending on target; unrecognized targets behave like "all".
func (s *ReviewService) Search(keyword, target, sortKey string) ([]models.Review, error) {
	query := s.db.Preload("User").Order(orderClause(sortKey))

	if strings.TrimSpace(keyword) != "" {
		pattern := "%" + strings.ToLower(keyword) + "%"
		switch target {
		case TargetCourse:
			query = query.Where("LOWER(course_name) LIKE ?", pattern)
		case TargetTeacher:
			query = query.Where("LOWER(teacher_name) LIKE ?", pattern)
		default: // all
			query = query.Where("LOWER(course_name) LIKE ? OR LOWER(teacher_name) LIKE ?", pattern, pattern)
		}
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageRating computes the mean rating over reviews whose course name
// contains courseName (case-insensitive). Returns 0 when nothing matches.
func (s *ReviewService) AverageRating(courseName string) (float64, error) {
	var avg float64
	err := s.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("LOWER(course_name) LIKE ?", "%"+strings.ToLower(courseName)+"%").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

// ByCourseName returns reviews for an exact course name.
func (s *ReviewService) ByCourseName(name string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("User").Where("course_name = ?", name).Order("id DESC").Find(&reviews).Error
	return reviews, err
}

// ByTeacherName returns reviews for an exact teacher name.
func (s *ReviewService) ByTeacherName(name string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("User").Where("teacher_name = ?", name).Order("id DESC").Find(&reviews).Error
	return reviews, err
}

// ByOwner returns all reviews posted by the given user, newest first.
func (s *ReviewService) ByOwner(userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("user_id = ?", userID).Order("id DESC").Find(&reviews).Error
	return reviews, err
}

func (s *ReviewService) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.Preload("User").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Create persists a new review owned by review.UserID. CreatedAt is
// assigned by the store at first persistence and is never touched again.
func (s *ReviewService) Create(review *models.Review) error {
	review.Likes = 0
	return s.db.Create(review).Error
}

// ReviewUpdate carries the replacement fields for an update. ImagePath is
// applied only when non-empty; an update without a new image leaves the
// stored image path untouched.
type ReviewUpdate struct {
	CourseName  string
	TeacherName string
	Rating      int
	Comment     string
	ImagePath   string
}

// Update overwrites a review's fields. Only the owner may update.
func (s *ReviewService) Update(id, requesterID uint, in ReviewUpdate) (*models.Review, error) {
	review, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !review.OwnedBy(requesterID) {
		return nil, ErrForbidden
	}

	review.CourseName = in.CourseName
	review.TeacherName = in.TeacherName
	review.Rating = in.Rating
	review.Comment = in.Comment
	if in.ImagePath != "" {
		review.ImagePath = in.ImagePath
	}

	if err := s.db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review together with its comments and replies. Only the
// owner may delete.
func (s *ReviewService) Delete(id, requesterID uint) error {
	review, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !review.OwnedBy(requesterID) {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Replies carry the review id too, one delete covers both levels.
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, id).Error
	})
}

// Like increments the like counter. The increment happens in a single
// UPDATE on the store so concurrent likers never lose updates.
func (s *ReviewService) Like(id uint) error {
	result := s.db.Model(&models.Review{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
