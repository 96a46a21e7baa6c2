package embedded_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/walteh/embedls/pkg/embedded"
)

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Name() string {
	return m.Called().String(0)
}

func (m *MockComposer) Create(ctx context.Context, fileName, text string) (*embedded.File, error) {
	args := m.Called(ctx, fileName, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*embedded.File), args.Error(1)
}

func (m *MockComposer) Update(ctx context.Context, existing *embedded.File, text string) (*embedded.File, error) {
	args := m.Called(ctx, existing, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*embedded.File), args.Error(1)
}
