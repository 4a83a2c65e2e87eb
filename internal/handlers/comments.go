package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sasa5432-arch/class-review-app/internal/services"
)

type CreateCommentRequest struct {
	Content    string `json:"content" binding:"required"`
	University string `json:"university" binding:"required"`
	Faculty    string `json:"faculty" binding:"required"`
	Department string `json:"department" binding:"required"`
}

// ListComments returns the review's top-level comments with their replies,
// both in creation order.
func ListComments(reviews *services.ReviewService, comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}

		// The review must exist before its tree is fetched
		if _, err := reviews.GetByID(id); err != nil {
			respondServiceError(c, err)
			return
		}

		result, err := comments.ListForReview(id)
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

// CreateComment posts a top-level comment on a review.
func CreateComment(reviews *services.ReviewService, comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}
		userID := c.GetUint("user_id")

		var req CreateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": err.Error(),
				},
			})
			return
		}

		if _, err := reviews.GetByID(id); err != nil {
			respondServiceError(c, err)
			return
		}

		comment, err := comments.Add(id, userID, req.Content, req.University, req.Faculty, req.Department)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    comment,
		})
	}
}

// CreateReply posts a reply under an existing comment of the same review.
func CreateReply(reviews *services.ReviewService, comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseReviewID(c)
		if err != nil {
			return
		}

		parentID, err := strconv.ParseUint(c.Param("commentId"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ID",
					"message": "Invalid comment ID",
				},
			})
			return
		}
		userID := c.GetUint("user_id")

		var req CreateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": err.Error(),
				},
			})
			return
		}

		if _, err := reviews.GetByID(id); err != nil {
			respondServiceError(c, err)
			return
		}

		reply, err := comments.AddReply(id, uint(parentID), userID, req.Content, req.University, req.Faculty, req.Department)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    reply,
		})
	}
}
