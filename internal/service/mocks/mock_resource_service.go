package mocks

import (
	"context"

	"goout/internal/model"
	"goout/internal/schema"
	"goout/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockResourceService struct {
	mock.Mock
	kind *schema.Kind
}

// NewMockResourceService returns a mock that reports k from Kind.
func NewMockResourceService(k *schema.Kind) *MockResourceService {
	return &MockResourceService{kind: k}
}

func (m *MockResourceService) Kind() *schema.Kind {
	return m.kind
}

func (m *MockResourceService) Create(ctx context.Context, in service.CreateInput) (*model.Resource, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Resource), args.Error(1)
}

func (m *MockResourceService) List(ctx context.Context, p service.ListParams) (*service.ListResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockResourceService) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*service.ListResult, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockResourceService) Get(ctx context.Context, id string) (*model.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Resource), args.Error(1)
}

func (m *MockResourceService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
