package mocks

import (
	"context"

	"linkgate/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockGatewayService struct {
	mock.Mock
}

func (m *MockGatewayService) Link(ctx context.Context, op service.Operation, path string) (string, error) {
	args := m.Called(ctx, op, path)
	return args.String(0), args.Error(1)
}

func (m *MockGatewayService) Exists(ctx context.Context, path string) bool {
	args := m.Called(ctx, path)
	return args.Bool(0)
}
