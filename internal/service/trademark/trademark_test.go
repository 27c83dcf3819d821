package trademark

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
)

func newRegistry(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("criteria"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientMapsResults(t *testing.T) {
	taken := newRegistry(t, http.StatusOK, `{"results":[{"mark":"ZEN"}]}`)
	status, err := NewClient(taken.URL, "secret", zap.NewNop()).Check(context.Background(), "zen")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTaken, status)

	free := newRegistry(t, http.StatusOK, `{"results":[]}`)
	status, err = NewClient(free.URL, "secret", zap.NewNop()).Check(context.Background(), "zen")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, status)
}

func TestClientNonSuccessIsError(t *testing.T) {
	srv := newRegistry(t, http.StatusUnauthorized, "nope")
	_, err := NewClient(srv.URL, "secret", zap.NewNop()).Check(context.Background(), "zen")
	assert.Error(t, err)
}

func TestNewClientWithoutKey(t *testing.T) {
	assert.Nil(t, NewClient("", "", zap.NewNop()))
}

func TestResolverUnconfiguredIsManual(t *testing.T) {
	r := NewResolver(NewClient("", "", zap.NewNop()), nil, zap.NewNop())
	assert.False(t, r.Configured())

	got := r.Resolve(context.Background(), "bottom up")
	assert.Equal(t, domain.StatusUnknown, got.Status)
	assert.True(t, got.ManualSearch)
	assert.Equal(t, ManualSearchURL("bottom up"), got.ManualSearchURL)
	assert.Contains(t, got.ManualSearchURL, "basicSearch=bottom+up")
}

func TestResolverFailureIsManual(t *testing.T) {
	srv := newRegistry(t, http.StatusInternalServerError, "")
	got := NewResolver(NewClient(srv.URL, "secret", zap.NewNop()), nil, zap.NewNop()).
		Resolve(context.Background(), "zen")

	assert.Equal(t, domain.StatusUnknown, got.Status)
	assert.True(t, got.ManualSearch)
}

func TestResolverReturnsRegistryAnswer(t *testing.T) {
	srv := newRegistry(t, http.StatusOK, `{"results":[]}`)
	got := NewResolver(NewClient(srv.URL, "secret", zap.NewNop()), nil, zap.NewNop()).
		Resolve(context.Background(), "zen")

	assert.Equal(t, Result{Status: domain.StatusAvailable}, got)
}
