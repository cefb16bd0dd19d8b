package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"fortress-go/internal/config"
	"fortress-go/internal/fortress"
)

// minioAPI is the subset of *minio.Client the store uses.
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// minioClientWrapper adapts *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return w.c.GetObject(ctx, bucketName, objectName, opts)
}

func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

// MinioStore keeps each key as the object <prefix><key> on an S3-compatible
// server such as a self-hosted MinIO.
type MinioStore struct {
	api    minioAPI
	bucket string
	prefix string
}

var _ fortress.Store = (*MinioStore)(nil)

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio storage requires endpoint and bucket to be set")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return newMinioStore(minioClientWrapper{c: client}, cfg.Bucket, cfg.Prefix), nil
}

func newMinioStore(api minioAPI, bucket, prefix string) *MinioStore {
	return &MinioStore{api: api, bucket: bucket, prefix: prefix}
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := fortress.ValidateKey(key); err != nil {
		return nil, false, err
	}
	obj, err := s.api.GetObject(ctx, s.bucket, s.prefix+key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("getting object %s: %w", key, err)
	}
	defer obj.Close()

	// minio reports a missing object on the first read, not on GetObject.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading object %s: %w", key, err)
	}
	return data, true, nil
}

func (s *MinioStore) Set(ctx context.Context, key string, value []byte) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.api.PutObject(ctx, s.bucket, s.prefix+key, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	if err := s.api.RemoveObject(ctx, s.bucket, s.prefix+key, minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("removing object %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Close() error { return nil }

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
