package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"fortress-go/internal/config"
	"fortress-go/internal/fortress"
)

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Uploader is the subset of *manager.Uploader the store uses.
type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store keeps each key as the object <prefix><key> in one bucket.
// Values are already encrypted by the vault before they reach the store.
type S3Store struct {
	api      s3API
	uploader s3Uploader
	bucket   string
	prefix   string
}

var _ fortress.Store = (*S3Store)(nil)

// NewS3Store builds a client from the default AWS credential chain, or from
// static credentials when cfg carries them.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, manager.NewUploader(client), cfg.Bucket, cfg.Prefix), nil
}

func newS3Store(api s3API, uploader s3Uploader, bucket, prefix string) *S3Store {
	return &S3Store{api: api, uploader: uploader, bucket: bucket, prefix: prefix}
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + key
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := fortress.ValidateKey(key); err != nil {
		return nil, false, err
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("getting s3 object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("reading s3 object %s: %w", key, err)
	}
	return data, true, nil
}

func (s *S3Store) Set(ctx context.Context, key string, value []byte) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("uploading s3 object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("deleting s3 object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }
