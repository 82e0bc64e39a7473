// Package files stores uploaded binaries in a MinIO-compatible object
// store. Database records keep only the object key.
package files

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/edilconnect/platform/internal/config"
)

// Store is the file-store contract used by the verification and document
// services.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// MinioStore implements Store on a single bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// opTimeout bounds every object-store call; a timed-out upload is a failed
// upload, never silently retried.
const opTimeout = 30 * time.Second

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.ObjectStore) (*MinioStore, error) {
	const op = "files.NewMinioStore"
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads an object under key.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	const op = "files.Put"
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remove deletes the object under key.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	const op = "files.Remove"
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
