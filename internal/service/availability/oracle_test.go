package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
)

func newDoHServer(t *testing.T, handler func(name string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/dns-json", r.Header.Get("Accept"))
		code, body := handler(r.URL.Query().Get("name"))
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDoHOracleMapsRcode(t *testing.T) {
	srv := newDoHServer(t, func(name string) (int, string) {
		if name == "free.com" {
			return http.StatusOK, `{"Status":3}`
		}
		return http.StatusOK, `{"Status":0,"Answer":[]}`
	})
	oracle := NewDoHOracle(srv.URL, zap.NewNop())

	status, err := oracle.Check(context.Background(), "free", ".com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, status)

	status, err = oracle.Check(context.Background(), "busy", ".com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTaken, status)
}

func TestDoHOracleSendsPunycode(t *testing.T) {
	var got string
	srv := newDoHServer(t, func(name string) (int, string) {
		got = name
		return http.StatusOK, `{"Status":3}`
	})

	_, err := NewDoHOracle(srv.URL, zap.NewNop()).Check(context.Background(), "nätmat", ".com")
	require.NoError(t, err)
	assert.Equal(t, "xn--ntmat-gra.com", got)
}

func TestDoHOracleNonSuccessIsError(t *testing.T) {
	srv := newDoHServer(t, func(string) (int, string) {
		return http.StatusServiceUnavailable, "busy"
	})

	_, err := NewDoHOracle(srv.URL, zap.NewNop()).Check(context.Background(), "alpha", ".com")
	assert.Error(t, err)
}

func TestToASCIIKeepsPlainNames(t *testing.T) {
	assert.Equal(t, "example.com", ToASCII("example.com"))
}

func TestCachedOracleServesRepeatLookups(t *testing.T) {
	upstream := newFakeOracle()
	upstream.answers["alpha.com"] = domain.StatusAvailable
	cache := newMemoryCache()
	oracle := NewCachedOracle(upstream, cache, time.Minute, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		status, err := oracle.Check(context.Background(), "alpha", ".com")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAvailable, status)
	}
	assert.Equal(t, 1, upstream.callsFor("alpha.com"))
	assert.Equal(t, time.Minute, cache.ttls["namebender:availability:alpha.com"])
}

func TestCachedOracleDoesNotCacheErrors(t *testing.T) {
	upstream := newFakeOracle()
	upstream.fail["alpha.com"] = true
	cache := newMemoryCache()
	oracle := NewCachedOracle(upstream, cache, time.Minute, nil, zap.NewNop())

	_, err := oracle.Check(context.Background(), "alpha", ".com")
	require.Error(t, err)
	_, err = oracle.Check(context.Background(), "alpha", ".com")
	require.Error(t, err)

	assert.Equal(t, 2, upstream.callsFor("alpha.com"))
	assert.Empty(t, cache.data)
}

func TestCachedOracleFallsThroughOnCacheFailure(t *testing.T) {
	upstream := newFakeOracle()
	cache := newMemoryCache()
	cache.failGet = true

	status, err := NewCachedOracle(upstream, cache, time.Minute, nil, zap.NewNop()).
		Check(context.Background(), "alpha", ".com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTaken, status)
}

func TestCachedOracleCollapsesConcurrentLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	upstream := OracleFunc(func(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error) {
		calls.Add(1)
		<-release
		return domain.StatusAvailable, nil
	})
	oracle := NewCachedOracle(upstream, nil, time.Minute, nil, zap.NewNop())

	var wg sync.WaitGroup
	started := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			status, err := oracle.Check(context.Background(), "alpha", ".com")
			assert.NoError(t, err)
			assert.Equal(t, domain.StatusAvailable, status)
		}()
	}
	for i := 0; i < 5; i++ {
		<-started
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedOracleCancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	upstream := OracleFunc(func(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error) {
		calls.Add(1)
		entered <- struct{}{}
		select {
		case <-release:
			return domain.StatusAvailable, nil
		case <-ctx.Done():
			return domain.StatusUnknown, ctx.Err()
		}
	})
	oracle := NewCachedOracle(upstream, nil, time.Minute, nil, zap.NewNop())

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := oracle.Check(leaderCtx, "alpha", ".com")
		leaderErr <- err
	}()
	<-entered

	type outcome struct {
		status domain.AvailabilityStatus
		err    error
	}
	follower := make(chan outcome, 1)
	go func() {
		status, err := oracle.Check(context.Background(), "alpha", ".com")
		follower <- outcome{status, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelLeader()
	select {
	case err := <-leaderErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(release)
	got := <-follower
	require.NoError(t, got.err)
	assert.Equal(t, domain.StatusAvailable, got.status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedOracleIgnoresUnknownCachedStatus(t *testing.T) {
	upstream := newFakeOracle()
	upstream.answers["alpha.com"] = domain.StatusAvailable
	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), cacheKey("alpha", ".com"), "MAYBE", time.Minute))

	oracle := NewCachedOracle(upstream, cache, time.Minute, nil, zap.NewNop())
	status, err := oracle.Check(context.Background(), "alpha", ".com")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, status)
	assert.Equal(t, 1, upstream.callsFor("alpha.com"))
}
