package tld

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
)

func TestSetSelectionRejectsEmpty(t *testing.T) {
	m := NewManager("c1", nil, zap.NewNop())
	before := m.Selected()

	_, err := m.SetSelection(nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, before, m.Selected())
}

func TestSetSelectionRejectsOverCap(t *testing.T) {
	m := NewManager("c1", nil, zap.NewNop())

	_, err := m.SetSelection([]string{".a1", ".a2", ".a3", ".a4", ".a5", ".a6", ".a7"})
	assert.ErrorIs(t, err, ErrSelectionTooLarge)
	assert.Equal(t, domain.DefaultTLDs, m.Selected())
}

func TestSetSelectionRejectsMissingDot(t *testing.T) {
	m := NewManager("c1", nil, zap.NewNop())

	_, err := m.SetSelection([]string{".com", "io"})
	assert.ErrorIs(t, err, ErrInvalidTLD)
	assert.Equal(t, domain.DefaultTLDs, m.Selected())
}

func TestSetSelectionDedupes(t *testing.T) {
	m := NewManager("c1", nil, zap.NewNop())

	got, err := m.SetSelection([]string{".io", ".IO", " .dev ", ".io", ".a", ".b", ".c", ".d"})
	require.NoError(t, err)
	assert.Equal(t, []string{".io", ".dev", ".a", ".b", ".c", ".d"}, got)
}

func TestToggle(t *testing.T) {
	m := NewManager("c1", nil, zap.NewNop())

	got, changed := m.Toggle(".ai")
	assert.True(t, changed)
	assert.Equal(t, []string{".com", ".co"}, got)

	got, changed = m.Toggle(".dev")
	assert.True(t, changed)
	assert.Equal(t, []string{".com", ".co", ".dev"}, got)

	for _, tld := range []string{".io", ".app", ".net"} {
		_, changed = m.Toggle(tld)
		require.True(t, changed)
	}
	_, changed = m.Toggle(".xyz")
	assert.False(t, changed, "adding beyond the cap is a no-op")
	assert.Len(t, m.Selected(), 6)
}

func TestToggleKeepsLastTLD(t *testing.T) {
	m := NewManager("c1", nil, zap.NewNop())
	_, err := m.SetSelection([]string{".com"})
	require.NoError(t, err)

	got, changed := m.Toggle(".com")
	assert.False(t, changed)
	assert.Equal(t, []string{".com"}, got)
}

type failingPrefs struct{}

func (failingPrefs) Load(context.Context, string) ([]string, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingPrefs) Save(context.Context, string, []string) error {
	return errors.New("backend down")
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	m := NewManager("c1", failingPrefs{}, zap.NewNop())
	assert.Equal(t, domain.DefaultTLDs, m.Load(context.Background()))
	assert.Error(t, m.Save(context.Background()))

	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Save(context.Background(), "c2", []string{"com", "ai"}))
	m = NewManager("c2", prefs, zap.NewNop())
	assert.Equal(t, domain.DefaultTLDs, m.Load(context.Background()), "malformed preference")

	m = NewManager("c3", prefs, zap.NewNop())
	assert.Equal(t, domain.DefaultTLDs, m.Load(context.Background()), "nothing saved")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	prefs := NewMemoryPreferences()
	m := NewManager("c1", prefs, zap.NewNop())
	_, err := m.SetSelection([]string{".io", ".dev"})
	require.NoError(t, err)
	require.NoError(t, m.Save(context.Background()))

	restored := NewManager("c1", prefs, zap.NewNop())
	assert.Equal(t, []string{".io", ".dev"}, restored.Load(context.Background()))
}

type jsonCache struct {
	data map[string][]byte
	ttl  time.Duration
}

func (c *jsonCache) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *jsonCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.ttl = ttl
	return nil
}

func TestRedisPreferencesUsesPrefixedKey(t *testing.T) {
	cache := &jsonCache{data: make(map[string][]byte)}
	prefs := NewRedisPreferences(cache)

	_, found, err := prefs.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, prefs.Save(context.Background(), "c1", []string{".io"}))
	assert.Contains(t, cache.data, "namebender:prefs:c1")
	assert.Equal(t, time.Duration(0), cache.ttl)

	tlds, found, err := prefs.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{".io"}, tlds)
}
