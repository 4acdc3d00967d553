package minio

import (
	"context"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage holds the source recordings (video bucket) and the retained frame
// images persisted per job (frame bucket).
type Storage struct {
	client      *miniogo.Client
	videoBucket string
	frameBucket string
}

type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	UseSSL      bool
	VideoBucket string
	FrameBucket string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:      client,
		videoBucket: cfg.VideoBucket,
		frameBucket: cfg.FrameBucket,
	}, nil
}

func (s *Storage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.videoBucket, s.frameBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// FetchVideo downloads a recording addressed by storage key to a local path.
func (s *Storage) FetchVideo(ctx context.Context, objectKey string, destPath string) error {
	return s.client.FGetObject(ctx, s.videoBucket, objectKey, destPath, miniogo.GetObjectOptions{})
}

// UploadFrame stores one retained frame image and returns its locator.
func (s *Storage) UploadFrame(ctx context.Context, jobID string, index int, framePath string) (string, error) {
	objectKey := fmt.Sprintf("%s/frame_%04d.jpg", jobID, index)
	_, err := s.client.FPutObject(ctx, s.frameBucket, objectKey, framePath, miniogo.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("upload frame %d: %w", index, err)
	}
	return fmt.Sprintf("%s/%s", s.frameBucket, objectKey), nil
}
