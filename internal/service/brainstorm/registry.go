package brainstorm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/metrics"
	"github.com/kapu/name-bender-go/internal/service/availability"
	"github.com/kapu/name-bender-go/internal/service/candidate"
	"github.com/kapu/name-bender-go/internal/service/tld"
	"github.com/kapu/name-bender-go/pkg/errors"
)

// Deps are shared by every session.
type Deps struct {
	Generator      Generator
	Oracle         availability.Oracle
	Trademarks     TrademarkResolver
	Preferences    tld.PreferenceStore
	SweepTLDs      []string // empty means the full universe
	SweepBatchSize int
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
}

// Registry holds live sessions in memory and evicts idle ones.
type Registry struct {
	deps        Deps
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps, idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = constants.SessionConfig.IdleTimeout
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{
		deps:        deps,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Create opens a session for clientID, restoring its saved TLD selection.
func (r *Registry) Create(ctx context.Context, clientID string) *Session {
	id := uuid.NewString()
	if clientID == "" {
		clientID = id
	}
	logger := r.deps.Logger.With(zap.String("session", id))

	store := candidate.NewStore()
	manager := tld.NewManager(clientID, r.deps.Preferences, logger)
	manager.Load(ctx)

	bg, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:         id,
		store:      store,
		engine:     availability.NewEngine(store, r.deps.Oracle, r.deps.Metrics, logger),
		sweeper:    availability.NewSweeper(r.deps.Oracle, r.deps.SweepTLDs, r.deps.SweepBatchSize, r.deps.Metrics, logger),
		tlds:       manager,
		generator:  r.deps.Generator,
		trademarks: r.deps.Trademarks,
		logger:     logger,
		bg:         bg,
		cancel:     cancel,
		lastActive: time.Now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.deps.Metrics.SetActiveSessions(count)
	logger.Info("Session created", zap.String("client", clientID), zap.Strings("tlds", manager.Selected()))
	return s
}

// Get returns the session and marks it active.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	s.touch()
	return s, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	if ok {
		s.Close()
		r.deps.Metrics.SetActiveSessions(count)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle closes every session idle since before now minus the idle
// timeout and returns how many were removed.
func (r *Registry) EvictIdle(now time.Time) int {
	cutoff := now.Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.deps.Metrics.SetActiveSessions(count)
		r.deps.Logger.Info("Idle sessions evicted", zap.Int("evicted", len(expired)), zap.Int("remaining", count))
	}
	return len(expired)
}

// Run evicts idle sessions every interval until ctx is done, then closes
// whatever is left.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.SessionConfig.SweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case now := <-ticker.C:
			r.EvictIdle(now)
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	r.deps.Metrics.SetActiveSessions(0)
}
