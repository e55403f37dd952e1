// Package minio provides a blob store adapter keeping each job's
// extracted text as an object in a MinIO (or any S3-compatible)
// bucket.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// DefaultBucket is used when the config names none.
const DefaultBucket = "corpusd-content"

// Config holds configuration for the MinIO store.
type Config struct {
	// Endpoint is the host:port of the server (required).
	Endpoint string

	// AccessKey and SecretKey are the static credentials.
	AccessKey string
	SecretKey string

	// Bucket is the bucket holding extracted text (default:
	// corpusd-content). Created on startup if missing.
	Bucket string

	// UseSSL enables TLS on the connection.
	UseSSL bool
}

// Store keeps one object per job, keyed by the job id.
type Store struct {
	client *minio.Client
	bucket string
}

// New creates the store and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio: endpoint is required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("Created bucket %s", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// objectName returns the object key for a job.
func objectName(jobID string) string {
	return jobID + ".txt"
}

// Put stores the content for a job, replacing any previous object.
func (s *Store) Put(ctx context.Context, jobID string, content []byte) (string, error) {
	name := objectName(jobID)
	_, err := s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"},
	)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

// Get retrieves the content for a job.
func (s *Store) Get(ctx context.Context, jobID string) ([]byte, error) {
	name := objectName(jobID)
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", name, err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: object %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("read object %s: %w", name, err)
	}
	return content, nil
}

// Delete removes the content for a job. Returns false when no object
// existed.
func (s *Store) Delete(ctx context.Context, jobID string) (bool, error) {
	name := objectName(jobID)
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", name, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object %s: %w", name, err)
	}
	return true, nil
}

// isNotFound reports whether the error is a missing-key response.
func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return false
}
