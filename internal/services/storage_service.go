// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
)

// StorageService persists generated documents in S3. When AWS credentials
// are absent (local development) uploads are skipped and callers keep the
// inline content only.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type StoredObject struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// Configured reports whether uploads actually reach S3.
func (s *StorageService) Configured() bool {
	return s.s3Client != nil
}

// UploadDocument stores rendered document content under a per-sale prefix
// and returns its object URL.
func (s *StorageService) UploadDocument(saleID uuid.UUID, name string, content []byte, contentType string) (*StoredObject, error) {
	if !s.Configured() {
		return nil, nil
	}

	key := fmt.Sprintf("sales/%s/documents/%d-%s", saleID, time.Now().Unix(), name)

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key)
	return &StoredObject{URL: url, Key: key}, nil
}

// PresignDownload returns a time-limited URL for a stored object.
func (s *StorageService) PresignDownload(key string, expires time.Duration) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("storage not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	return req.Presign(expires)
}
