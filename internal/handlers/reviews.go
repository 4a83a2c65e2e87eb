package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sasa5432-arch/class-review-app/internal/models"
	"github.com/sasa5432-arch/class-review-app/internal/services"
)

const MaxImageSize = 5 * 1024 * 1024 // 5 MB

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ListReviews returns reviews matching the keyword/target/sort query
// params. Without a keyword the full list comes back, ordered per sort.
func ListReviews(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyword := c.Query("keyword")
		target := c.DefaultQuery("target", services.TargetAll)
		sortKey := c.DefaultQuery("sort", services.SortRecent)

		result, err := reviews.Search(keyword, target, sortKey)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}

// GetReview returns a single review.
func GetReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}

		review, err := reviews.GetByID(id)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    review,
		})
	}
}

// CreateReview creates a review from a multipart form. An attached image
// is stored best effort: if the image store fails the review is still
// saved, just without an image path.
func CreateReview(reviews *services.ReviewService, storage *services.StorageService, search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		courseName := c.PostForm("course_name")
		teacherName := c.PostForm("teacher_name")
		comment := c.PostForm("comment")
		rating, ratingErr := strconv.Atoi(c.PostForm("rating"))

		if courseName == "" || teacherName == "" || ratingErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "course_name, teacher_name and a numeric rating are required",
				},
			})
			return
		}

		review := models.Review{
			CourseName:  courseName,
			TeacherName: teacherName,
			Rating:      rating,
			Comment:     comment,
			UserID:      userID,
		}

		if imagePath, ok := storeImage(c, storage); ok {
			review.ImagePath = imagePath
		}

		if err := reviews.Create(&review); err != nil {
			respondServiceError(c, err)
			return
		}

		// Index in Meilisearch (async, best effort)
		go func() {
			if err := search.IndexReview(review); err != nil {
				log.Printf("Failed to index review %d: %v", review.ID, err)
			}
		}()

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    review,
		})
	}
}

// UpdateReview overwrites a review's fields. Only the owner may update.
// Unlike creation, an image store failure here fails the whole request.
func UpdateReview(reviews *services.ReviewService, storage *services.StorageService, search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}
		userID := c.GetUint("user_id")

		courseName := c.PostForm("course_name")
		teacherName := c.PostForm("teacher_name")
		comment := c.PostForm("comment")
		rating, ratingErr := strconv.Atoi(c.PostForm("rating"))

		if courseName == "" || teacherName == "" || ratingErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "course_name, teacher_name and a numeric rating are required",
				},
			})
			return
		}

		update := services.ReviewUpdate{
			CourseName:  courseName,
			TeacherName: teacherName,
			Rating:      rating,
			Comment:     comment,
		}

		// A new image replaces the stored path; no image leaves it alone.
		if _, header, err := c.Request.FormFile("image"); err == nil && header.Size > 0 {
			imagePath, uploadErr := uploadImage(c, storage)
			if uploadErr != nil {
				if errors.Is(uploadErr, services.ErrValidation) {
					respondServiceError(c, uploadErr)
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Failed to store image",
					},
				})
				return
			}
			update.ImagePath = imagePath
		}

		review, err := reviews.Update(id, userID, update)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		go func() {
			if err := search.IndexReview(*review); err != nil {
				log.Printf("Failed to reindex review %d: %v", review.ID, err)
			}
		}()

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    review,
		})
	}
}

// DeleteReview removes a review and, by cascade, its comment tree. Only
// the owner may delete.
func DeleteReview(reviews *services.ReviewService, search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}
		userID := c.GetUint("user_id")

		if err := reviews.Delete(id, userID); err != nil {
			respondServiceError(c, err)
			return
		}

		go func() {
			if err := search.DeleteReview(id); err != nil {
				log.Printf("Failed to remove review %d from index: %v", id, err)
			}
		}()

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Review deleted successfully",
		})
	}
}

// LikeReview increments the like counter. Any authenticated user may like;
// there is no ownership check and no upper bound.
func LikeReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}

		if err := reviews.Like(id); err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Review liked",
		})
	}
}

// AverageRating returns the mean rating over reviews whose course name
// contains the given course_name.
func AverageRating(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		courseName := c.Query("course_name")
		if courseName == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "course_name is required",
				},
			})
			return
		}

		avg, err := reviews.AverageRating(courseName)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"course_name": courseName,
				"average":     avg,
			},
		})
	}
}

// ReviewsByCourse returns reviews for an exact course name.
func ReviewsByCourse(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		result, err := reviews.ByCourseName(name)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}

// ReviewsByTeacher returns reviews for an exact teacher name.
func ReviewsByTeacher(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		result, err := reviews.ByTeacherName(name)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}

// MyReviews returns the authenticated user's own reviews.
func MyReviews(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		result, err := reviews.ByOwner(userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}

func parseReviewID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid review ID",
			},
		})
		return 0, err
	}
	return uint(id), nil
}

// storeImage uploads an attached image if there is one, returning the
// stored path. Errors are logged and reported as "no image"; review
// creation must never fail because the image store is down.
func storeImage(c *gin.Context, storage *services.StorageService) (string, bool) {
	_, header, err := c.Request.FormFile("image")
	if err != nil || header.Size == 0 {
		return "", false
	}

	imagePath, err := uploadImage(c, storage)
	if err != nil {
		log.Printf("Failed to store review image: %v", err)
		return "", false
	}
	return imagePath, true
}

func uploadImage(c *gin.Context, storage *services.StorageService) (string, error) {
	if storage == nil {
		return "", errors.New("image storage unavailable")
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds 5MB limit", services.ErrValidation)
	}

	mimeType := header.Header.Get("Content-Type")
	if !AllowedImageTypes[mimeType] {
		return "", fmt.Errorf("%w: unsupported image type %s", services.ErrValidation, mimeType)
	}

	return storage.UploadImage(file, header.Filename, header.Size, mimeType)
}
