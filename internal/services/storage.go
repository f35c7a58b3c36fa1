package services

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/logger"
)

// ObjectStore keeps uploaded files. Put returns the public URL of the stored
// object.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var ErrInvalidKey = errors.New("invalid object key")

// NewObjectStore returns a bucket-backed store when Firebase is configured and
// a local disk store otherwise. Failing to reach Firebase is not fatal: uploads
// fall back to disk.
func NewObjectStore(ctx context.Context, cfg *config.Config, log logger.Logger) ObjectStore {
	disk := NewDiskStore(cfg.UploadDir)

	if cfg.FirebaseServiceAccount == "" || cfg.StorageBucket == "" {
		log.Info("storage: no bucket configured, keeping uploads on disk", "dir", cfg.UploadDir)
		return disk
	}

	bucket, err := NewBucketStore(ctx, cfg.FirebaseServiceAccount, cfg.StorageBucket)
	if err != nil {
		log.Warn("storage: bucket unavailable, keeping uploads on disk", "err", err)
		return disk
	}

	log.Info("storage: using bucket", "bucket", cfg.StorageBucket)
	return bucket
}

type BucketStore struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewBucketStore(ctx context.Context, serviceAccountPath, bucketName string) (*BucketStore, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, errors.Wrap(err, "init firebase app")
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get storage client")
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, errors.Wrap(err, "open bucket")
	}
	return &BucketStore{bucket: bucket, name: bucketName}, nil
}

func (b *BucketStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	w := b.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "write object %s", key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "finalize object %s", key)
	}
	return b.URL(key), nil
}

func (b *BucketStore) Delete(ctx context.Context, key string) error {
	err := b.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return errors.Wrapf(err, "delete object %s", key)
	}
	return nil
}

func (b *BucketStore) URL(key string) string {
	return "https://storage.googleapis.com/" + b.name + "/" + escapeKey(key)
}

// DiskStore writes objects below a local directory served at /uploads/.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: "/uploads"}
}

func (d *DiskStore) Dir() string {
	return d.dir
}

func (d *DiskStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	dst := d.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", errors.Wrap(err, "create upload directory")
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", errors.Wrap(err, "write upload file")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close upload file")
	}

	return d.baseURL + "/" + escapeKey(key), nil
}

func (d *DiskStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(d.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove upload file")
	}
	return nil
}

func (d *DiskStore) path(key string) string {
	return filepath.Join(d.dir, filepath.FromSlash(key))
}

// checkKey rejects keys that would escape the storage root.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "../") || key == ".." {
		return errors.Wrap(ErrInvalidKey, key)
	}
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
