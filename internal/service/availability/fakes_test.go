package availability

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/kapu/name-bender-go/internal/domain"
)

// fakeOracle answers from a table; unlisted domains are TAKEN. It counts
// calls per domain and can be made to block until released.
type fakeOracle struct {
	mu      sync.Mutex
	answers map[string]domain.AvailabilityStatus
	fail    map[string]bool
	calls   map[string]int
	gate    chan struct{}
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		answers: make(map[string]domain.AvailabilityStatus),
		fail:    make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakeOracle) Check(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error) {
	f.mu.Lock()
	f.calls[name+tld]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[name+tld] {
		return "", errors.New("lookup failed")
	}
	if status, ok := f.answers[name+tld]; ok {
		return status, nil
	}
	return domain.StatusTaken, nil
}

func (f *fakeOracle) callsFor(fqdn string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fqdn]
}

func (f *fakeOracle) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("redis down")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttls[key] = ttl
	return nil
}
