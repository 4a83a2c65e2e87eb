package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasa5432-arch/class-review-app/internal/services"
)

// Search runs a full-text query against the Meilisearch review index.
// This complements the database-backed substring search on /reviews.
func Search(search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Query parameter 'q' is required",
				},
			})
			return
		}

		result, err := search.Search(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Search failed",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result.Hits,
		})
	}
}
