package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sasa5432-arch/class-review-app/internal/config"
)

// StorageService keeps review images in MinIO.
type StorageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
	}

	return &StorageService{
		client: client,
		bucket: cfg.MinIOBucket,
	}, nil
}

// UploadImage stores the file under a random object name, keeping only the
// extension of the original filename, and returns the path the API serves
// it back from.
func (s *StorageService) UploadImage(file multipart.File, originalName string, size int64, contentType string) (string, error) {
	ext := filepath.Ext(originalName)
	objectName := uuid.New().String() + ext

	ctx := context.Background()
	_, err := s.client.PutObject(ctx, s.bucket, objectName, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/images/%s", objectName), nil
}

// DownloadImage fetches a stored image object by name.
func (s *StorageService) DownloadImage(objectName string) (*minio.Object, error) {
	ctx := context.Background()
	return s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
}

// DeleteImage removes a stored image object by name.
func (s *StorageService) DeleteImage(objectName string) error {
	ctx := context.Background()
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}
