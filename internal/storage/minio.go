package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"linkgate/internal/config"
)

// minioStorage implements the Storage interface using an S3-compatible backend (MinIO, AWS S3, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client    *minio.Client
	transport http.RoundTripper
	endpoint  string
	region    string
	secure    bool
}

// NewMinIO creates a new S3-compatible storage backed by the MinIO client.
// The region must be known up front: without it the client would look up the
// bucket location over the network before every presign.
// Buckets are addressed path-style (https://<endpoint>/<bucket>/<key>).
func NewMinIO(cfg config.StorageConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("storage region is required")
	}

	// Per-request signers share the probe client's transport; presigning never dials.
	transport, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}

	m := &minioStorage{
		transport: transport,
		endpoint:  cfg.Endpoint,
		region:    cfg.Region,
		secure:    cfg.UseSSL,
	}
	m.client, err = m.newClient(probeCredentials(cfg))
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return m, nil
}

// newClient builds a path-style client for the configured endpoint. Dualstack is
// switched off so AWS links stay on the plain regional host.
func (m *minioStorage) newClient(creds *credentials.Credentials) (*minio.Client, error) {
	cli, err := minio.New(m.endpoint, &minio.Options{
		Creds:        creds,
		Secure:       m.secure,
		Region:       m.region,
		BucketLookup: minio.BucketLookupPath,
		Transport:    m.transport,
	})
	if err != nil {
		return nil, err
	}
	cli.SetS3EnableDualstack(false)
	return cli, nil
}

// probeCredentials picks the identity used for metadata lookups.
func probeCredentials(cfg config.StorageConfig) *credentials.Credentials {
	if cfg.HasStaticCredentials() {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

// signer returns a client bound to the per-request credentials. Building one is local only.
func (m *minioStorage) signer(creds Credentials) (*minio.Client, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: access and secret key are required for signing", ErrCredentials)
	}
	cli, err := m.newClient(credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, creds.SessionToken))
	if err != nil {
		return nil, fmt.Errorf("create minio signer: %w", err)
	}
	return cli, nil
}

// PresignGet generates a pre-signed URL for GET with the specified expiry.
// An empty key signs the bucket root.
func (m *minioStorage) PresignGet(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error) {
	return m.presign(ctx, http.MethodGet, bucket, key, creds, expiry)
}

// PresignPut generates a pre-signed URL for PUT with the specified expiry.
// An empty key signs the bucket root.
func (m *minioStorage) PresignPut(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error) {
	return m.presign(ctx, http.MethodPut, bucket, key, creds, expiry)
}

// presign uses the generic Presign call: PresignedGetObject and PresignedPutObject
// refuse empty object names.
func (m *minioStorage) presign(ctx context.Context, method, bucket, key string, creds Credentials, expiry time.Duration) (string, error) {
	cli, err := m.signer(creds)
	if err != nil {
		return "", err
	}
	u, err := cli.Presign(ctx, method, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", strings.ToLower(method), err)
	}
	return u.String(), nil
}

// Head stats an object without reading its content.
func (m *minioStorage) Head(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	st, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
	}, nil
}
