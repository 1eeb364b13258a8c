package mocks

import (
	"context"
	"time"

	"linkgate/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PresignGet(ctx context.Context, bucket, key string, creds storage.Credentials, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, creds, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) PresignPut(ctx context.Context, bucket, key string, creds storage.Credentials, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, creds, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Head(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

type MockCredentialProvider struct {
	mock.Mock
}

func (m *MockCredentialProvider) Retrieve(ctx context.Context) (storage.Credentials, error) {
	args := m.Called(ctx)
	return args.Get(0).(storage.Credentials), args.Error(1)
}
