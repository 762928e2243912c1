package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

// MockProductIndex is a testify mock of application.ProductIndex.
type MockProductIndex struct {
	mock.Mock
}

// NewMockProductIndex registers AssertExpectations as test cleanup.
func NewMockProductIndex(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProductIndex {
	m := &MockProductIndex{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProductIndex) Index(ctx context.Context, p *entity.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductIndex) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	args := m.Called(ctx, q, size)
	var ids []string
	if v := args.Get(0); v != nil {
		ids = v.([]string)
	}
	return ids, args.Error(1)
}
