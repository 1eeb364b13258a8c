package storage

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"linkgate/internal/config"
)

const unsignedPayload = "UNSIGNED-PAYLOAD"

// s3Storage implements Storage with the AWS SDK. Head calls use the SDK's own
// credential resolution; presigning uses the credentials handed in per request.
type s3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	signer    *v4.Signer
	endpoint  string
	region    string
}

// NewS3 creates a Storage backed by the AWS SDK S3 client.
// Buckets are addressed path-style against cfg.Endpoint.
func NewS3(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	region := cfg.Region
	if region == "" {
		region = config.DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	scheme := "https"
	if !cfg.UseSSL {
		scheme = "http"
	}
	endpoint := scheme + "://" + cfg.Endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &s3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		signer: v4.NewSigner(func(o *v4.SignerOptions) {
			o.DisableURIPathEscaping = true
		}),
		endpoint: endpoint,
		region:   region,
	}, nil
}

func withCredentials(creds Credentials, expiry time.Duration) func(*s3.PresignOptions) {
	return func(opts *s3.PresignOptions) {
		opts.Expires = expiry
		opts.ClientOptions = append(opts.ClientOptions, func(o *s3.Options) {
			o.Credentials = credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, creds.SessionToken)
		})
	}
}

// PresignGet generates a presigned URL for downloading an object.
// An empty key signs the bucket root.
func (s *s3Storage) PresignGet(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error) {
	if !creds.Valid() {
		return "", fmt.Errorf("%w: access and secret key are required for signing", ErrCredentials)
	}
	if key == "" {
		return s.presignBucketRoot(ctx, http.MethodGet, bucket, creds, expiry)
	}
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	req, err := s.presigner.PresignGetObject(ctx, input, withCredentials(creds, expiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignPut generates a presigned URL for uploading an object.
// An empty key signs the bucket root.
func (s *s3Storage) PresignPut(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error) {
	if !creds.Valid() {
		return "", fmt.Errorf("%w: access and secret key are required for signing", ErrCredentials)
	}
	if key == "" {
		return s.presignBucketRoot(ctx, http.MethodPut, bucket, creds, expiry)
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	req, err := s.presigner.PresignPutObject(ctx, input, withCredentials(creds, expiry))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

// presignBucketRoot signs method against /<bucket>/ directly. The object
// operations serialize Key as a required member and reject an empty one.
func (s *s3Storage) presignBucketRoot(ctx context.Context, method, bucket string, creds Credentials, expiry time.Duration) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+"/"+bucket+"/", nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", strings.ToLower(method), err)
	}
	query := req.URL.Query()
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(expiry/time.Second), 10))
	req.URL.RawQuery = query.Encode()

	awsCreds := aws.Credentials{
		AccessKeyID:     creds.AccessKey,
		SecretAccessKey: creds.SecretKey,
		SessionToken:    creds.SessionToken,
	}
	link, _, err := s.signer.PresignHTTP(ctx, awsCreds, req, unsignedPayload, "s3", s.region, time.Now())
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", strings.ToLower(method), err)
	}
	return link, nil
}

// Head checks that an object exists and returns its metadata.
func (s *s3Storage) Head(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("head object: %w", err)
	}

	info := ObjectInfo{
		Key:  key,
		ETag: aws.ToString(result.ETag),
	}
	if result.ContentLength != nil {
		info.Size = *result.ContentLength
	}
	if result.ContentType != nil {
		info.ContentType = *result.ContentType
	}
	if result.LastModified != nil {
		info.LastModified = *result.LastModified
	}
	return info, nil
}
