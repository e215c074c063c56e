package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"strata-hq/strata/pkg/ingest"
)

// S3API is the subset of the S3 client used by S3Storage.
type S3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// S3Config contains configuration for the S3 backend.
type S3Config struct {
	Bucket string

	// ArchiveBucket receives archived objects. When empty, Archive rewrites
	// the object in place with the GLACIER storage class.
	ArchiveBucket string

	// KeyPrefix is prepended to every object key.
	KeyPrefix string

	Region string

	// Endpoint overrides the S3 endpoint (MinIO, Localstack).
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	ForcePathStyle bool
}

// S3Storage stores objects in an S3 bucket.
type S3Storage struct {
	client        S3API
	bucket        string
	archiveBucket string
	prefix        string
	logger        *slog.Logger
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
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
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// NewS3Storage creates an S3 backend. The bucket is checked with HeadBucket.
func NewS3Storage(ctx context.Context, client S3API, cfg S3Config, logger *slog.Logger) (*S3Storage, error) {
	if client == nil {
		return nil, ingest.NewConfigError("storage.s3", "S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, ingest.NewConfigError("storage.s3.bucket", "bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, ingest.NewStorageError("s3", "init", "", fmt.Errorf("access bucket %q: %w", cfg.Bucket, err))
	}

	s := &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		archiveBucket: cfg.ArchiveBucket,
		prefix:        cfg.KeyPrefix,
		logger:        logger.With("component", "storage.s3"),
	}
	s.logger.Info("s3 storage initialized",
		"bucket", cfg.Bucket,
		"archive_bucket", cfg.ArchiveBucket,
		"prefix", cfg.KeyPrefix,
	)
	return s, nil
}

// Name implements ingest.Storage.
func (s *S3Storage) Name() string { return "s3" }

func (s *S3Storage) key(id string) string { return s.prefix + id }

// Store implements ingest.Storage. The payload digest is kept in the object
// metadata; an object that already carries the same digest is left alone.
func (s *S3Storage) Store(ctx context.Context, id string, data []byte, meta map[string]string) error {
	if err := validateID(id); err != nil {
		return ingest.NewStorageError("s3", "store", id, err)
	}

	digest := Digest(data)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err == nil && head.Metadata[DigestKey] == digest {
		s.logger.Debug("object already stored", "id", id, "sha256", digest)
		return nil
	}
	if err != nil && !isS3NotFound(err) {
		return ingest.NewStorageError("s3", "store", id, err)
	}

	objMeta := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		objMeta[sanitizeMetaKey(k)] = v
	}
	objMeta[DigestKey] = digest

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata:      objMeta,
	}
	if ct := meta["content-type"]; ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return ingest.NewStorageError("s3", "store", id, err)
	}
	return nil
}

// Retrieve implements ingest.Storage.
func (s *S3Storage) Retrieve(ctx context.Context, id string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var archived *types.InvalidObjectState
		if isS3NotFound(err) || errors.As(err, &archived) {
			return nil, ingest.NewStorageError("s3", "retrieve", id, ingest.NewNotFoundError("object", id))
		}
		return nil, ingest.NewStorageError("s3", "retrieve", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ingest.NewStorageError("s3", "retrieve", id, err)
	}
	return data, nil
}

// Delete implements ingest.Storage.
func (s *S3Storage) Delete(ctx context.Context, id string) error {
	if err := s.exists(ctx, "delete", id); err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	}); err != nil {
		return ingest.NewStorageError("s3", "delete", id, err)
	}
	return nil
}

// Archive implements ingest.Storage.
func (s *S3Storage) Archive(ctx context.Context, id string) error {
	if err := s.exists(ctx, "archive", id); err != nil {
		return err
	}

	source := url.PathEscape(s.bucket) + "/" + url.PathEscape(s.key(id))

	if s.archiveBucket == "" {
		if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:            aws.String(s.bucket),
			Key:               aws.String(s.key(id)),
			CopySource:        aws.String(source),
			StorageClass:      types.StorageClassGlacier,
			MetadataDirective: types.MetadataDirectiveCopy,
		}); err != nil {
			return ingest.NewStorageError("s3", "archive", id, err)
		}
		return nil
	}

	if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.archiveBucket),
		Key:        aws.String(s.key(id)),
		CopySource: aws.String(source),
	}); err != nil {
		return ingest.NewStorageError("s3", "archive", id, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	}); err != nil {
		return ingest.NewStorageError("s3", "archive", id, fmt.Errorf("remove source after copy: %w", err))
	}
	return nil
}

func (s *S3Storage) exists(ctx context.Context, op, id string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err == nil {
		return nil
	}
	if isS3NotFound(err) {
		return ingest.NewStorageError("s3", op, id, ingest.NewNotFoundError("object", id))
	}
	return ingest.NewStorageError("s3", op, id, err)
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

// sanitizeMetaKey maps a metadata key onto the characters S3 accepts in
// x-amz-meta-* headers.
func sanitizeMetaKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, k)
}
