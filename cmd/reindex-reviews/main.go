package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sasa5432-arch/class-review-app/internal/config"
	"github.com/sasa5432-arch/class-review-app/internal/database"
	"github.com/sasa5432-arch/class-review-app/internal/models"
	"github.com/sasa5432-arch/class-review-app/internal/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize search service
	searchService := services.NewSearchService(cfg)
	log.Println("Meilisearch service initialized")

	// Get counts
	var dbCount int64
	if err := db.Model(&models.Review{}).Count(&dbCount).Error; err != nil {
		log.Fatalf("Failed to get review count from DB: %v", err)
	}

	meiliCount, err := searchService.GetReviewCount()
	if err != nil {
		log.Fatalf("Failed to get review count from Meilisearch: %v", err)
	}

	log.Printf("Reviews in DB: %d", dbCount)
	log.Printf("Reviews in Meilisearch: %d", meiliCount)

	if meiliCount == dbCount {
		log.Println("Counts match. Reindexing anyway to refresh documents...")
	} else {
		log.Println("Counts do not match. Reindexing all reviews...")
	}

	// Fetch all reviews in batches
	batchSize := 100
	var offset int
	totalIndexed := 0

	for {
		var reviews []models.Review
		if err := db.Limit(batchSize).Offset(offset).Order("id ASC").Find(&reviews).Error; err != nil {
			log.Fatalf("Failed to fetch reviews: %v", err)
		}
		if len(reviews) == 0 {
			break
		}

		if err := searchService.IndexReviews(reviews); err != nil {
			log.Fatalf("Failed to index batch at offset %d: %v", offset, err)
		}

		totalIndexed += len(reviews)
		offset += batchSize
		log.Printf("Indexed %d reviews so far", totalIndexed)
	}

	log.Printf("Done. Indexed %d reviews", totalIndexed)
}
