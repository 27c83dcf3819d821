package tld

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
)

var (
	ErrEmptySelection    = stderrors.New("at least one TLD must be selected")
	ErrSelectionTooLarge = fmt.Errorf("at most %d TLDs can be selected", constants.SelectionLimits.MaxSelectedTLDs)
	ErrInvalidTLD        = stderrors.New("TLDs must start with a dot")
)

// Validate cleans a requested selection: tokens are trimmed and lower-cased,
// duplicates removed with first occurrence kept.
func Validate(tlds []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tlds))
	out := make([]string, 0, len(tlds))
	for _, raw := range tlds {
		tld := strings.ToLower(strings.TrimSpace(raw))
		if len(tld) < 2 || !strings.HasPrefix(tld, ".") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTLD, raw)
		}
		if _, dup := seen[tld]; dup {
			continue
		}
		seen[tld] = struct{}{}
		out = append(out, tld)
	}

	switch {
	case len(out) == 0:
		return nil, ErrEmptySelection
	case len(out) > constants.SelectionLimits.MaxSelectedTLDs:
		return nil, ErrSelectionTooLarge
	}
	return out, nil
}

// Manager owns one client's selected TLDs. A rejected change leaves the
// selection untouched.
type Manager struct {
	mu       sync.RWMutex
	selected []string
	clientID string
	prefs    PreferenceStore
	logger   *zap.Logger
}

// NewManager starts from the default selection; call Load to restore a
// saved one.
func NewManager(clientID string, prefs PreferenceStore, logger *zap.Logger) *Manager {
	return &Manager{
		selected: append([]string(nil), domain.DefaultTLDs...),
		clientID: clientID,
		prefs:    prefs,
		logger:   logger,
	}
}

// Load restores the saved selection. A missing, unreadable or malformed
// preference falls back to the default set.
func (m *Manager) Load(ctx context.Context) []string {
	selected := m.loadOrDefault(ctx)

	m.mu.Lock()
	m.selected = selected
	m.mu.Unlock()

	return append([]string(nil), selected...)
}

func (m *Manager) loadOrDefault(ctx context.Context) []string {
	defaults := append([]string(nil), domain.DefaultTLDs...)
	if m.prefs == nil {
		return defaults
	}

	stored, found, err := m.prefs.Load(ctx, m.clientID)
	if err != nil {
		m.logger.Warn("Failed to load TLD preference, using defaults",
			zap.String("client", m.clientID),
			zap.Error(err),
		)
		return defaults
	}
	if !found {
		return defaults
	}

	selected, err := Validate(stored)
	if err != nil {
		m.logger.Warn("Stored TLD preference is malformed, using defaults",
			zap.String("client", m.clientID),
			zap.Strings("stored", stored),
			zap.Error(err),
		)
		return defaults
	}
	return selected
}

func (m *Manager) Selected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.selected...)
}

// SetSelection replaces the selection after validation and returns it.
func (m *Manager) SetSelection(tlds []string) ([]string, error) {
	selected, err := Validate(tlds)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.selected = selected
	m.mu.Unlock()

	return append([]string(nil), selected...), nil
}

// Toggle removes tld when selected and adds it otherwise. Adding beyond the
// cap and removing the last TLD are no-ops. changed reports whether the
// selection moved.
func (m *Manager) Toggle(tld string) (selected []string, changed bool) {
	tld = strings.ToLower(strings.TrimSpace(tld))

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, current := range m.selected {
		if current == tld {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0 && len(m.selected) > 1:
		m.selected = append(m.selected[:idx:idx], m.selected[idx+1:]...)
		changed = true
	case idx < 0 && strings.HasPrefix(tld, ".") && len(tld) > 1 &&
		len(m.selected) < constants.SelectionLimits.MaxSelectedTLDs:
		m.selected = append(m.selected, tld)
		changed = true
	}

	return append([]string(nil), m.selected...), changed
}

// Save persists the current selection.
func (m *Manager) Save(ctx context.Context) error {
	if m.prefs == nil {
		return nil
	}
	if err := m.prefs.Save(ctx, m.clientID, m.Selected()); err != nil {
		m.logger.Warn("Failed to save TLD preference",
			zap.String("client", m.clientID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
