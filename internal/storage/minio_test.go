package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkgate/internal/config"
)

type presignFunc func(ctx context.Context, bucket, key string, creds Credentials, expiry time.Duration) (string, error)

func testCredentials() Credentials {
	return Credentials{AccessKey: "boom", SecretKey: "zoom"}
}

func newAWSMinIO(t *testing.T) Storage {
	t.Helper()
	store, err := NewMinIO(config.StorageConfig{
		Endpoint: config.DefaultEndpoint,
		Region:   config.DefaultRegion,
		UseSSL:   true,
	})
	require.NoError(t, err)
	return store
}

func TestNewMinIO_Validation(t *testing.T) {
	_, err := NewMinIO(config.StorageConfig{Region: "us-east-1"})
	assert.EqualError(t, err, "storage endpoint is required")

	_, err = NewMinIO(config.StorageConfig{Endpoint: "s3.amazonaws.com"})
	assert.EqualError(t, err, "storage region is required")
}

func TestMinIO_PresignLinks(t *testing.T) {
	store := newAWSMinIO(t)
	ctx := context.Background()

	for name, presign := range map[string]presignFunc{"get": store.PresignGet, "put": store.PresignPut} {
		t.Run(name, func(t *testing.T) {
			link, err := presign(ctx, "foo", "bar/car", testCredentials(), time.Hour)
			require.NoError(t, err)

			u, err := url.Parse(link)
			require.NoError(t, err)

			assert.Equal(t, "https", u.Scheme)
			// minio-go signs against the regional endpoint of the configured region.
			assert.Equal(t, "s3.us-east-1.amazonaws.com", u.Host)
			assert.Equal(t, "/foo/bar/car", u.Path)

			q := u.Query()
			assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
			assert.True(t, strings.HasPrefix(q.Get("X-Amz-Credential"), "boom/"))
			assert.Contains(t, q.Get("X-Amz-Credential"), "/us-east-1/s3/aws4_request")
			assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
			assert.Equal(t, "host", q.Get("X-Amz-SignedHeaders"))
			assert.NotEmpty(t, q.Get("X-Amz-Date"))
			assert.NotEmpty(t, q.Get("X-Amz-Signature"))
			assert.Empty(t, q.Get("X-Amz-Security-Token"))
		})
	}
}

func TestMinIO_PresignBucketRoot(t *testing.T) {
	store := newAWSMinIO(t)
	ctx := context.Background()

	for name, presign := range map[string]presignFunc{"get": store.PresignGet, "put": store.PresignPut} {
		t.Run(name, func(t *testing.T) {
			link, err := presign(ctx, "foo", "", testCredentials(), time.Hour)
			require.NoError(t, err)

			u, err := url.Parse(link)
			require.NoError(t, err)
			assert.Equal(t, "s3.us-east-1.amazonaws.com", u.Host)
			assert.Equal(t, "/foo/", u.Path)
			assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
		})
	}
}

func TestMinIO_SignersShareTransport(t *testing.T) {
	store := newAWSMinIO(t).(*minioStorage)
	require.NotNil(t, store.transport)

	cli, err := store.signer(testCredentials())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultEndpoint, cli.EndpointURL().Host)

	link, err := store.PresignGet(context.Background(), "foo", "bar", testCredentials(), time.Minute)
	require.NoError(t, err)
	assert.NotContains(t, link, "dualstack")
}

func TestMinIO_PresignCarriesSessionToken(t *testing.T) {
	store := newAWSMinIO(t)
	creds := testCredentials()
	creds.SessionToken = "session-token"

	link, err := store.PresignGet(context.Background(), "foo", "bar", creds, time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "session-token", u.Query().Get("X-Amz-Security-Token"))
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
}

func TestMinIO_PresignRejectsIncompleteCredentials(t *testing.T) {
	store := newAWSMinIO(t)
	ctx := context.Background()

	for _, creds := range []Credentials{{}, {AccessKey: "boom"}, {SecretKey: "zoom"}} {
		_, err := store.PresignGet(ctx, "foo", "bar", creds, time.Hour)
		assert.ErrorIs(t, err, ErrCredentials)

		_, err = store.PresignPut(ctx, "foo", "bar", creds, time.Hour)
		assert.ErrorIs(t, err, ErrCredentials)
	}
}

func TestMinIO_PresignRejectsOutOfRangeExpiry(t *testing.T) {
	store := newAWSMinIO(t)

	_, err := store.PresignGet(context.Background(), "foo", "bar", testCredentials(), 8*24*time.Hour)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentials)
}

func newObjectServer(t *testing.T) *httptest.Server {
	t.Helper()
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead && r.URL.Path == "/foo/bar/car" {
			w.Header().Set("ETag", `"5d41402abc4b2a76b9719d911017c592"`)
			w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("Content-Length", "5")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMinIO_Head(t *testing.T) {
	srv := newObjectServer(t)
	store, err := NewMinIO(config.StorageConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Region:    config.DefaultRegion,
		AccessKey: "boom",
		SecretKey: "zoom",
	})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		info, err := store.Head(ctx, "foo", "bar/car")
		require.NoError(t, err)
		assert.Equal(t, "bar/car", info.Key)
		assert.Equal(t, int64(5), info.Size)
		assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", info.ETag)
		assert.Equal(t, "text/plain", info.ContentType)
		assert.True(t, info.LastModified.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("absent", func(t *testing.T) {
		_, err := store.Head(ctx, "foo", "missing")
		assert.Error(t, err)
	})
}

func TestCredentials_StringRedactsSecret(t *testing.T) {
	creds := Credentials{AccessKey: "boom", SecretKey: "zoom", SessionToken: "tok"}
	assert.NotContains(t, creds.String(), "zoom")
	assert.NotContains(t, creds.String(), "tok")
	assert.Contains(t, creds.String(), "boom")
}
