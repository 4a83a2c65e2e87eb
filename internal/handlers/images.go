package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"

	"github.com/sasa5432-arch/class-review-app/internal/services"
)

// GetImage streams a stored review image back to the client.
func GetImage(storage *services.StorageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STORAGE_UNAVAILABLE",
					"message": "Image storage is not available",
				},
			})
			return
		}

		objectName := c.Param("name")

		object, err := storage.DownloadImage(objectName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch image",
				},
			})
			return
		}
		defer object.Close()

		stat, err := object.Stat()
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchKey" {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "NOT_FOUND",
						"message": "Image not found",
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch image",
				},
			})
			return
		}

		c.Header("Content-Type", stat.ContentType)
		c.Status(http.StatusOK)
		io.Copy(c.Writer, object)
	}
}
