package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinIOStorage is a thin wrapper around the minio client used by services.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Save uploads data from reader to the configured bucket using the provided key.
// size may be -1 when unknown.
func (s *MinIOStorage) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Open returns a handle on the stored object. The object is fetched lazily:
// Size issues the Stat that initialises the handle, so the first Read never
// has to do it mid-stream.
func (s *MinIOStorage) Open(ctx context.Context, key string) (File, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return openObject(obj)
}

// openObject reports a missing key as ErrNotFound. Other Stat failures only
// mean the size is unknown; the handle is returned and Size keeps failing.
func openObject(obj object) (File, error) {
	f := &minioFile{obj: obj}
	if _, err := f.Size(); err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		obj.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// object is the part of *minio.Object a File needs.
type object interface {
	io.ReadCloser
	Stat() (minio.ObjectInfo, error)
}

type minioFile struct {
	obj object
}

func (f *minioFile) Read(p []byte) (int, error) { return f.obj.Read(p) }
func (f *minioFile) Close() error               { return f.obj.Close() }

func (f *minioFile) Size() (int64, error) {
	info, err := f.obj.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}
