package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

type fakeObject struct {
	data  []byte
	meta  map[string]string
	class types.StorageClass
}

// fakeS3 is an in-memory S3API that mimics the error types of the real service.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string]*fakeObject
	puts    int
}

func newFakeS3(buckets ...string) *fakeS3 {
	f := &fakeS3{buckets: make(map[string]map[string]*fakeObject)}
	for _, b := range buckets {
		f.buckets[b] = make(map[string]*fakeObject)
	}
	return f
}

func (f *fakeS3) bucket(name *string) (map[string]*fakeObject, error) {
	b, ok := f.buckets[*name]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}
	return b, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.bucket(in.Bucket); err != nil {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := b[*in.Key]
	if !ok {
		return nil, &types.NotFound{}
	}
	size := int64(len(obj.data))
	return &s3.HeadObjectOutput{Metadata: obj.meta, ContentLength: &size, StorageClass: obj.class}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := b[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	if obj.class == types.StorageClassGlacier {
		return nil, &types.InvalidObjectState{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data)), Metadata: obj.meta}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b[*in.Key] = &fakeObject{data: data, meta: in.Metadata, class: types.StorageClassStandard}
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	delete(b, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(ctx context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	srcBucket, srcKey, ok := strings.Cut(*in.CopySource, "/")
	if !ok {
		return nil, fmt.Errorf("bad copy source %q", *in.CopySource)
	}
	srcBucket, _ = url.PathUnescape(srcBucket)
	srcKey, _ = url.PathUnescape(srcKey)

	src, err := f.bucket(&srcBucket)
	if err != nil {
		return nil, err
	}
	obj, ok := src[srcKey]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	dst, err := f.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	class := in.StorageClass
	if class == "" {
		class = types.StorageClassStandard
	}
	dst[*in.Key] = &fakeObject{data: obj.data, meta: obj.meta, class: class}
	return &s3.CopyObjectOutput{}, nil
}

func newTestS3(t *testing.T, client *fakeS3, cfg S3Config) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), client, cfg, nil)
	if err != nil {
		t.Fatalf("NewS3Storage() error = %v", err)
	}
	return s
}

func TestS3Storage_Contract(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
	}{
		{"glacier in place", S3Config{Bucket: "live", KeyPrefix: "files/"}},
		{"archive bucket", S3Config{Bucket: "live", ArchiveBucket: "cold"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := &ingesttest.StorageSuite{
				NewStorage: func(t *testing.T) ingest.Storage {
					return newTestS3(t, newFakeS3("live", "cold"), tt.cfg)
				},
			}
			suite.Run(t)
		})
	}
}

func TestS3Storage_MissingBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), newFakeS3(), S3Config{Bucket: "absent"}, nil)
	if err == nil {
		t.Fatal("NewS3Storage() succeeded for missing bucket")
	}
}

func TestS3Storage_IdenticalStoreSkipsPut(t *testing.T) {
	client := newFakeS3("live")
	s := newTestS3(t, client, S3Config{Bucket: "live"})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.Store(ctx, "id-1", []byte("payload"), map[string]string{"Content-Type": "text/plain"}); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	if client.puts != 1 {
		t.Errorf("PutObject calls = %d, want 1", client.puts)
	}
	obj := client.buckets["live"]["id-1"]
	if obj.meta[DigestKey] != Digest([]byte("payload")) {
		t.Errorf("digest metadata = %q", obj.meta[DigestKey])
	}
	if obj.meta["content-type"] != "text/plain" {
		t.Errorf("user metadata not sanitized: %v", obj.meta)
	}
}

func TestS3Storage_ArchiveTargets(t *testing.T) {
	t.Run("archive bucket", func(t *testing.T) {
		client := newFakeS3("live", "cold")
		s := newTestS3(t, client, S3Config{Bucket: "live", ArchiveBucket: "cold"})
		ctx := context.Background()

		if err := s.Store(ctx, "id-1", []byte("x"), nil); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if err := s.Archive(ctx, "id-1"); err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
		if _, ok := client.buckets["cold"]["id-1"]; !ok {
			t.Error("object not copied to archive bucket")
		}
		if _, ok := client.buckets["live"]["id-1"]; ok {
			t.Error("object still in live bucket")
		}
	})

	t.Run("glacier in place", func(t *testing.T) {
		client := newFakeS3("live")
		s := newTestS3(t, client, S3Config{Bucket: "live"})
		ctx := context.Background()

		if err := s.Store(ctx, "id-1", []byte("x"), nil); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if err := s.Archive(ctx, "id-1"); err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
		if got := client.buckets["live"]["id-1"].class; got != types.StorageClassGlacier {
			t.Errorf("storage class = %q, want GLACIER", got)
		}
	})
}
