package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
)

// fakeMinio mimics minio's lazy GetObject: a missing object only fails on read.
type fakeMinio struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{objects: make(map[string][]byte)}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
func (r errReader) Close() error             { return nil }

func (f *fakeMinio) PutObject(_ context.Context, bucket, name string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+name] = data
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: int64(len(data))}, nil
}

func (f *fakeMinio) GetObject(_ context.Context, bucket, name string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+name]
	if !ok {
		return errReader{err: minio.ErrorResponse{Code: "NoSuchKey"}}, nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeMinio) RemoveObject(_ context.Context, bucket, name string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+name)
	return nil
}

func TestMinioStore(t *testing.T) {
	exerciseStore(t, newMinioStore(newFakeMinio(), "notes", "fortress/"))
}

func TestMinioStore_PutError(t *testing.T) {
	fake := newFakeMinio()
	fake.putErr = errors.New("bucket quota exceeded")
	s := newMinioStore(fake, "notes", "")

	if err := s.Set(context.Background(), "theme", []byte("light")); !errors.Is(err, fake.putErr) {
		t.Errorf("Set() error = %v, want wrapping %v", err, fake.putErr)
	}
}
