package services

import (
	"log"
	"strconv"

	"github.com/meilisearch/meilisearch-go"

	"github.com/sasa5432-arch/class-review-app/internal/config"
	"github.com/sasa5432-arch/class-review-app/internal/models"
)

// SearchService mirrors reviews into Meilisearch for full-text search.
// Indexing is best effort; the database stays the source of truth.
type SearchService struct {
	client *meilisearch.Client
	index  string
}

func NewSearchService(cfg *config.Config) *SearchService {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   cfg.MeiliURL,
		APIKey: cfg.MeiliAPIKey,
	})

	// Ensure reviews index exists (best effort)
	_, err := client.GetIndex("reviews")
	if err != nil {
		_, err = client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        "reviews",
			PrimaryKey: "id",
		})
		if err != nil {
			log.Printf("Failed to create meilisearch reviews index: %v", err)
		}

		// Configure searchable attributes
		_, err = client.Index("reviews").UpdateSearchableAttributes(&[]string{"course_name", "teacher_name", "comment"})
		if err != nil {
			log.Printf("Failed to update searchable attributes: %v", err)
		}

		// Configure sortable attributes
		_, err = client.Index("reviews").UpdateSortableAttributes(&[]string{"rating", "likes", "created_at"})
		if err != nil {
			log.Printf("Failed to update sortable attributes: %v", err)
		}
	}

	return &SearchService{
		client: client,
		index:  "reviews",
	}
}

func (s *SearchService) IndexReview(review models.Review) error {
	// Meilisearch accepts a list of documents
	_, err := s.client.Index(s.index).AddDocuments([]models.Review{review})
	return err
}

func (s *SearchService) IndexReviews(reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(reviews)
	return err
}

func (s *SearchService) DeleteReview(reviewID uint) error {
	_, err := s.client.Index(s.index).DeleteDocument(strconv.FormatUint(uint64(reviewID), 10))
	return err
}

func (s *SearchService) Search(query string) (*meilisearch.SearchResponse, error) {
	request := &meilisearch.SearchRequest{
		Limit: 20,
	}
	return s.client.Index(s.index).Search(query, request)
}

func (s *SearchService) GetReviewCount() (int64, error) {
	stats, err := s.client.Index(s.index).GetStats()
	if err != nil {
		return 0, err
	}
	return stats.NumberOfDocuments, nil
}
