package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fridgechef/backend/config"
)

// ImageStore keeps processed photos in object storage
type ImageStore interface {
	// Put stores data under key and returns its URL
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ImageObjectKey is where the photo of an upload is stored
func ImageObjectKey(uploadID uuid.UUID) string {
	return fmt.Sprintf("fridge-images/%s.jpg", uploadID)
}

// S3ImageStore stores photos in an S3 bucket
type S3ImageStore struct {
	s3 *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3: s3Config}
}

func (s *S3ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.s3.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.s3.ObjectURL(key), nil
}

func (s *S3ImageStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.s3.GeneratePresignedURL(ctx, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}
