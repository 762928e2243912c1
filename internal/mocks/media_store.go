package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// MediaStore records uploads and deletes. UploadErr fails every upload
// after the first FailAfter successful ones.
type MediaStore struct {
	mu        sync.Mutex
	seq       int
	Uploaded  []entity.Image
	Deleted   []string
	UploadErr error
	FailAfter int
	DeleteErr error
}

func NewMediaStore() *MediaStore { return &MediaStore{} }

func (m *MediaStore) Upload(_ context.Context, folder string, img *helpers.DataURI) (entity.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil && len(m.Uploaded) >= m.FailAfter {
		return entity.Image{}, m.UploadErr
	}
	m.seq++
	id := fmt.Sprintf("%s/%d%s", folder, m.seq, img.Ext())
	out := entity.Image{PublicID: id, URL: "https://media.test/" + id}
	m.Uploaded = append(m.Uploaded, out)
	return out, nil
}

func (m *MediaStore) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, publicID)
	return nil
}

// DeletedIDs returns a copy of the deleted public ids.
func (m *MediaStore) DeletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}
