package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"linkgate/internal/config"
)

// CredentialProvider resolves backend credentials for a single request.
type CredentialProvider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// NewCredentialProvider returns a static provider when a key pair is configured,
// otherwise the AWS default credential chain bounded by cfg.CredentialTimeout.
func NewCredentialProvider(cfg config.StorageConfig) CredentialProvider {
	if cfg.HasStaticCredentials() {
		return NewStaticProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
	}
	return NewChainProvider(cfg.Region, cfg.CredentialTimeout)
}

type loadFunc func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)

// ChainProvider walks the AWS default credential chain (environment, shared files,
// web identity, container and instance metadata) on every call. Nothing is cached
// between calls.
type ChainProvider struct {
	region  string
	timeout time.Duration
	load    loadFunc
}

// NewChainProvider creates a chain provider. timeout bounds each Retrieve call.
func NewChainProvider(region string, timeout time.Duration) *ChainProvider {
	return &ChainProvider{
		region:  region,
		timeout: timeout,
		load:    awsconfig.LoadDefaultConfig,
	}
}

// Retrieve resolves credentials or fails with ErrCredentials once the timeout elapses.
func (p *ChainProvider) Retrieve(ctx context.Context) (Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	awsCfg, err := p.load(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: load credential chain: %v", ErrCredentials, err)
	}
	if awsCfg.Credentials == nil {
		return Credentials{}, fmt.Errorf("%w: no credential source configured", ErrCredentials)
	}
	return retrieve(ctx, awsCfg.Credentials)
}

// StaticProvider returns a fixed key pair, for S3-compatible endpoints such as MinIO.
type StaticProvider struct {
	provider credentials.StaticCredentialsProvider
}

// NewStaticProvider creates a provider for a fixed key pair.
func NewStaticProvider(accessKey, secretKey, sessionToken string) *StaticProvider {
	return &StaticProvider{
		provider: credentials.NewStaticCredentialsProvider(accessKey, secretKey, sessionToken),
	}
}

// Retrieve returns the configured key pair, or ErrCredentials if either half is empty.
func (p *StaticProvider) Retrieve(ctx context.Context) (Credentials, error) {
	return retrieve(ctx, p.provider)
}

func retrieve(ctx context.Context, provider aws.CredentialsProvider) (Credentials, error) {
	v, err := provider.Retrieve(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	creds := Credentials{
		AccessKey:    v.AccessKeyID,
		SecretKey:    v.SecretAccessKey,
		SessionToken: v.SessionToken,
	}
	if v.CanExpire {
		creds.Expires = v.Expires
	}
	if !creds.Valid() {
		return Credentials{}, fmt.Errorf("%w: incomplete key pair", ErrCredentials)
	}
	return creds, nil
}
