package tld

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/pkg/errors"
)

// PreferenceStore persists one TLD selection per client. found is false
// when nothing was saved yet.
type PreferenceStore interface {
	Load(ctx context.Context, clientID string) (tlds []string, found bool, err error)
	Save(ctx context.Context, clientID string, tlds []string) error
}

// MemoryPreferences keeps preferences for the life of the process.
type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[string][]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{prefs: make(map[string][]string)}
}

func (p *MemoryPreferences) Load(_ context.Context, clientID string) ([]string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tlds, ok := p.prefs[clientID]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), tlds...), true, nil
}

func (p *MemoryPreferences) Save(_ context.Context, clientID string, tlds []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefs[clientID] = append([]string(nil), tlds...)
	return nil
}

// KeyValueCache is the part of the Redis cache service the Redis store uses.
type KeyValueCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisPreferences stores the selection as a JSON array under
// namebender:prefs:<client>.
type RedisPreferences struct {
	cache KeyValueCache
}

func NewRedisPreferences(cache KeyValueCache) *RedisPreferences {
	return &RedisPreferences{cache: cache}
}

func preferenceKey(clientID string) string {
	return constants.CacheKeys.PreferencePrefix + clientID
}

func (p *RedisPreferences) Load(ctx context.Context, clientID string) ([]string, bool, error) {
	var tlds []string
	found, err := p.cache.Get(ctx, preferenceKey(clientID), &tlds)
	if err != nil || !found {
		return nil, false, err
	}
	return tlds, true, nil
}

func (p *RedisPreferences) Save(ctx context.Context, clientID string, tlds []string) error {
	return p.cache.Set(ctx, preferenceKey(clientID), tlds, constants.CacheTTL.Preferences)
}

const (
	createPreferencesTable = `CREATE TABLE IF NOT EXISTS tld_preferences (
	client_id  TEXT PRIMARY KEY,
	tlds       TEXT[] NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

	selectPreference = `SELECT tlds FROM tld_preferences WHERE client_id = $1`

	upsertPreference = `INSERT INTO tld_preferences (client_id, tlds, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (client_id) DO UPDATE SET tlds = EXCLUDED.tlds, updated_at = NOW()`
)

// PostgresPreferences stores the selection in tld_preferences as TEXT[].
type PostgresPreferences struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresPreferences(db *sql.DB, logger *zap.Logger) *PostgresPreferences {
	return &PostgresPreferences{db: db, logger: logger}
}

// EnsureSchema creates the preference table if needed.
func (p *PostgresPreferences) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createPreferencesTable); err != nil {
		return errors.NewServiceError("failed to create tld_preferences", "postgres", "migrate", err)
	}
	p.logger.Info("TLD preference table ready")
	return nil
}

func (p *PostgresPreferences) Load(ctx context.Context, clientID string) ([]string, bool, error) {
	var tlds pq.StringArray
	err := p.db.QueryRowContext(ctx, selectPreference, clientID).Scan(&tlds)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewServiceError("failed to load tld preference", "postgres", "load", err)
	}
	return []string(tlds), true, nil
}

func (p *PostgresPreferences) Save(ctx context.Context, clientID string, tlds []string) error {
	if _, err := p.db.ExecContext(ctx, upsertPreference, clientID, pq.Array(tlds)); err != nil {
		return errors.NewServiceError("failed to save tld preference", "postgres", "save", err)
	}
	return nil
}
