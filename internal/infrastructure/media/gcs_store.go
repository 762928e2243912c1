// Package media stores avatars and product images in Google Cloud Storage.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// Config is injected at construction; the store keeps no package-level state.
type Config struct {
	Bucket          string
	CredentialsFile string // empty means Application Default Credentials
	PublicBaseURL   string // empty means https://storage.googleapis.com/<bucket>
}

type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCSStore opens a storage client for cfg.Bucket.
func NewGCSStore(ctx context.Context, cfg Config) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "media: new storage client")
	}
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://storage.googleapis.com/%s", cfg.Bucket)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// Upload writes img under folder with a random object name. The object name
// is the public id used for later deletion.
func (s *GCSStore) Upload(ctx context.Context, folder string, img *helpers.DataURI) (entity.Image, error) {
	name := path.Join(folder, uuid.NewString()+img.Ext())
	wc := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = img.ContentType
	wc.ChunkSize = 0 // small files, single request
	if _, err := io.Copy(wc, bytes.NewReader(img.Data)); err != nil {
		_ = wc.Close()
		return entity.Image{}, errors.Wrapf(err, "media: write %s", name)
	}
	if err := wc.Close(); err != nil {
		return entity.Image{}, errors.Wrapf(err, "media: close %s", name)
	}
	return entity.Image{PublicID: name, URL: s.baseURL + "/" + name}, nil
}

// Delete removes the object. A missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(publicID).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrapf(err, "media: delete %s", publicID)
	}
	return nil
}
