package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/clinic-records/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWithoutBackendDisablesStorage(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(context.Background(), config.StorageConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.EqualError(t, err, `unknown storage backend "s3"`)
}

func TestMinioClientRequiresCredentials(t *testing.T) {
	_, err := NewMinioClient(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "attachments"})
	assert.EqualError(t, err, "minio access key and secret key are required")

	_, err = Open(context.Background(), config.StorageConfig{
		Backend: "minio",
		Minio:   config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"},
	})
	assert.ErrorContains(t, err, "minio bucket is required")
}

func TestGCSClientRequiresBucket(t *testing.T) {
	_, err := NewGCSClient(context.Background(), config.GCSConfig{ProjectID: "clinic"})
	assert.EqualError(t, err, "gcs bucket is required")
}

type fakeBackend struct {
	ensureErr error
	closed    int
}

func (f *fakeBackend) EnsureBucket(ctx context.Context) error { return f.ensureErr }

func (f *fakeBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (f *fakeBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeBackend) Bucket() string { return "attachments" }

func (f *fakeBackend) Close() error {
	f.closed++
	return nil
}

func TestOpenBackendClosesClientWhenBucketFails(t *testing.T) {
	backend := &fakeBackend{ensureErr: errors.New("permission denied")}

	s, err := openBackend(context.Background(), backend)

	assert.Nil(t, s)
	assert.EqualError(t, err, "ensure bucket attachments: permission denied")
	assert.Equal(t, 1, backend.closed)
}

func TestStorageClose(t *testing.T) {
	backend := &fakeBackend{}
	s, err := openBackend(context.Background(), backend)
	require.NoError(t, err)
	assert.Zero(t, backend.closed)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.closed)

	var disabled *Storage
	assert.NoError(t, disabled.Close())
}
