// Package storage contains the object store capabilities the gateway relies on:
// presigning read and write links and probing object metadata.
// Backends are S3-compatible (MinIO client or the AWS SDK); none of them transfer object bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkgate/internal/config"
)

// ErrCredentials is returned when backend credentials cannot be resolved in time
// or are structurally unusable for signing.
var ErrCredentials = errors.New("backend credentials unavailable")

// Credentials is a resolved set of temporary backend credentials.
// A zero Expires means the credentials do not expire.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Expires      time.Time
}

// Valid reports whether both halves of the key pair are present.
func (c Credentials) Valid() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// String keeps secrets out of logs and error messages.
func (c Credentials) String() string {
	return "storage.Credentials{AccessKey:" + c.AccessKey + ", SecretKey:<redacted>}"
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the S3-compatible capability set used by the gateway.
// Implementations are safe for concurrent use by multiple goroutines.
type Storage interface {
	// PresignGet returns a time-limited URL that allows downloading bucket/key without further authentication.
	// It performs no network I/O.
	PresignGet(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error)
	// PresignPut returns a time-limited URL that allows uploading bucket/key without further authentication.
	// It performs no network I/O.
	PresignPut(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error)
	// Head issues a metadata-only lookup for bucket/key.
	Head(ctx context.Context, bucket, key string) (ObjectInfo, error)
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.BackendMinIO:
		return NewMinIO(cfg)
	case config.BackendS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
