package router

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sasa5432-arch/class-review-app/internal/config"
	"github.com/sasa5432-arch/class-review-app/internal/handlers"
	"github.com/sasa5432-arch/class-review-app/internal/middleware"
	"github.com/sasa5432-arch/class-review-app/internal/services"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize Services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize storage service: %v", err)
	}

	searchService := services.NewSearchService(cfg)
	reviewService := services.NewReviewService(db)
	commentService := services.NewCommentService(db)

	limiter, err := middleware.NewRateLimiter(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: rate limiting disabled: %v", err)
	}
	limitIP := func(maxRequests, window int) gin.HandlerFunc {
		if limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return limiter.RateLimitByIP(maxRequests, window)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.GET("/health", handlers.HealthCheck(db))

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", limitIP(10, 3600), handlers.Register(db, cfg))
			auth.POST("/login", limitIP(30, 3600), handlers.Login(db, cfg))
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(cfg))
		{
			// Auth
			protected.GET("/auth/me", handlers.GetCurrentUser(db))

			// Reviews
			protected.GET("/reviews", handlers.ListReviews(reviewService))
			protected.POST("/reviews", handlers.CreateReview(reviewService, storageService, searchService))
			protected.GET("/reviews/average", handlers.AverageRating(reviewService))
			protected.GET("/reviews/by-course", handlers.ReviewsByCourse(reviewService))
			protected.GET("/reviews/by-teacher", handlers.ReviewsByTeacher(reviewService))
			protected.GET("/reviews/mine", handlers.MyReviews(reviewService))
			protected.GET("/reviews/:id", handlers.GetReview(reviewService))
			protected.PUT("/reviews/:id", handlers.UpdateReview(reviewService, storageService, searchService))
			protected.DELETE("/reviews/:id", handlers.DeleteReview(reviewService, searchService))
			protected.POST("/reviews/:id/like", limitIP(120, 60), handlers.LikeReview(reviewService))

			// Comments
			protected.GET("/reviews/:id/comments", handlers.ListComments(reviewService, commentService))
			protected.POST("/reviews/:id/comments", handlers.CreateComment(reviewService, commentService))
			protected.POST("/reviews/:id/comments/:commentId/replies", handlers.CreateReply(reviewService, commentService))

			// Images
			protected.GET("/images/:name", handlers.GetImage(storageService))

			// Full-text search
			protected.GET("/search", handlers.Search(searchService))
		}
	}

	return r
}
