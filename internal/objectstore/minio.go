package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docrag/internal/apperr"
)

// MinioOptions configures the MinIO backend.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore stores objects in a MinIO (or S3-compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, apperr.Wrapf(apperr.ErrValidation, "minio endpoint and bucket are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: opts.Bucket}, nil
}

func objectKey(projectID, assetName string) string {
	return projectID + "/" + assetName
}

// Upload stores the object under projectID/assetName.
func (s *MinioStore) Upload(ctx context.Context, projectID, assetName string, r io.Reader, size int64) error {
	if err := validateKey(projectID, assetName); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectKey(projectID, assetName), r, size, minio.PutObjectOptions{})
	if err != nil {
		return apperr.Wrapf(apperr.ErrObjectStore, "failed to put object: %v", err)
	}
	return nil
}

// Download opens the stored object.
func (s *MinioStore) Download(ctx context.Context, projectID, assetName string) (io.ReadCloser, error) {
	if err := validateKey(projectID, assetName); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(projectID, assetName), minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrObjectStore, "failed to get object: %v", err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperr.Wrapf(apperr.ErrNotFound, "object %s/%s", projectID, assetName)
		}
		return nil, apperr.Wrapf(apperr.ErrObjectStore, "failed to stat object: %v", err)
	}
	return obj, nil
}
