// Package service holds the gateway's request-independent logic: mapping paths to
// object keys, building signed links and answering existence checks.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"linkgate/internal/storage"
)

var tracer = otel.Tracer("linkgate/internal/service")

// Operation is the kind of access a signed link grants.
type Operation int

const (
	OperationGet Operation = iota
	OperationPut
)

func (o Operation) String() string {
	switch o {
	case OperationGet:
		return "get"
	case OperationPut:
		return "put"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ObjectKey maps a request path to an object key by dropping a single leading slash.
// Nothing else is decoded or collapsed.
func ObjectKey(path string) string {
	if strings.HasPrefix(path, "/") {
		return path[1:]
	}
	return path
}

// BuildLink presigns op against bucket/key with creds. It performs no network I/O.
func BuildLink(ctx context.Context, store storage.Storage, op Operation, bucket, key string, creds storage.Credentials, expiry time.Duration) (string, error) {
	switch op {
	case OperationGet:
		return store.PresignGet(ctx, bucket, key, creds, expiry)
	case OperationPut:
		return store.PresignPut(ctx, bucket, key, creds, expiry)
	default:
		return "", fmt.Errorf("unsupported operation %s", op)
	}
}

// Exists reports whether bucket/key is present. Any lookup failure counts as absent.
func Exists(ctx context.Context, store storage.Storage, bucket, key string) bool {
	found, _ := lookup(ctx, store, bucket, key)
	return found
}

// lookup is Exists with the failure cause kept for logging.
func lookup(ctx context.Context, store storage.Storage, bucket, key string) (bool, error) {
	if _, err := store.Head(ctx, bucket, key); err != nil {
		return false, err
	}
	return true, nil
}

// GatewayService turns request paths into signed links and presence answers for one bucket.
type GatewayService interface {
	// Link resolves backend credentials and returns a signed URL for op on the object named by path.
	Link(ctx context.Context, op Operation, path string) (string, error)

	// Exists reports whether the object named by path is present.
	Exists(ctx context.Context, path string) bool
}

type gatewayService struct {
	store   storage.Storage
	creds   storage.CredentialProvider
	bucket  string
	expiry  time.Duration
	log     *zap.Logger
	metrics *Metrics
}

// NewGatewayService constructs a GatewayService. log and metrics may be nil.
func NewGatewayService(store storage.Storage, creds storage.CredentialProvider, bucket string, expiry time.Duration, log *zap.Logger, metrics *Metrics) GatewayService {
	if log == nil {
		log = zap.NewNop()
	}
	return &gatewayService{
		store:   store,
		creds:   creds,
		bucket:  bucket,
		expiry:  expiry,
		log:     log,
		metrics: metrics,
	}
}

func (s *gatewayService) Link(ctx context.Context, op Operation, path string) (string, error) {
	key := ObjectKey(path)
	ctx, span := tracer.Start(ctx, "gateway.link", trace.WithAttributes(
		attribute.String("gateway.operation", op.String()),
		attribute.String("gateway.bucket", s.bucket),
		attribute.String("gateway.key", key),
	))
	defer span.End()

	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve credentials")
		return "", fmt.Errorf("resolve credentials: %w", err)
	}

	link, err := BuildLink(ctx, s.store, op, s.bucket, key, creds, s.expiry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build link")
		return "", fmt.Errorf("build %s link: %w", op, err)
	}

	s.metrics.observeLink(op)
	return link, nil
}

func (s *gatewayService) Exists(ctx context.Context, path string) bool {
	key := ObjectKey(path)
	ctx, span := tracer.Start(ctx, "gateway.exists", trace.WithAttributes(
		attribute.String("gateway.bucket", s.bucket),
		attribute.String("gateway.key", key),
	))
	defer span.End()

	found, err := lookup(ctx, s.store, s.bucket, key)
	if !found {
		// Causes are folded into "absent"; keep them visible for operators only.
		s.log.Debug("object probe failed", zap.String("key", key), zap.Error(err))
	}
	span.SetAttributes(attribute.Bool("gateway.found", found))
	s.metrics.observeProbe(found)
	return found
}
