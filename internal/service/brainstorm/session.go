package brainstorm

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/service/availability"
	"github.com/kapu/name-bender-go/internal/service/candidate"
	"github.com/kapu/name-bender-go/internal/service/tld"
	"github.com/kapu/name-bender-go/internal/service/trademark"
	"github.com/kapu/name-bender-go/internal/util"
	"github.com/kapu/name-bender-go/pkg/errors"
)

// Generator is the name-generation backend a session talks to.
type Generator interface {
	Generate(ctx context.Context, description string, exclude []string) ([]string, error)
	GenerateAlternatives(ctx context.Context, name string) ([]string, error)
	GenerateQuote(ctx context.Context, description string) string
}

// TrademarkResolver never fails; see trademark.Resolver.
type TrademarkResolver interface {
	Resolve(ctx context.Context, text string) trademark.Result
}

// View is what a client sees of a session.
type View struct {
	ID           string              `json:"id"`
	Prompt       string              `json:"prompt"`
	SelectedTLDs []string            `json:"selectedTlds"`
	Candidates   []domain.Suggestion `json:"candidates"`
}

// Session is one user's brainstorm: the candidate tree, the TLD selection,
// and the engine keeping availability up to date. Availability checks run
// on the session's own context, so they outlive the request that started
// them and stop when the session is closed.
type Session struct {
	ID string

	store      *candidate.Store
	engine     *availability.Engine
	sweeper    *availability.Sweeper
	tlds       *tld.Manager
	generator  Generator
	trademarks TrademarkResolver
	logger     *zap.Logger

	bg       context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	// selMu keeps the TLD selection fixed while candidates are projected
	// onto it, so every candidate carries exactly the selected TLDs.
	selMu sync.Mutex

	mu         sync.Mutex
	lastPrompt string
	lastActive time.Time
}

// Prompt returns the last description passed to Generate.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrompt
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops in-flight availability checks.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) View() View {
	return View{
		ID:           s.ID,
		Prompt:       s.Prompt(),
		SelectedTLDs: s.tlds.Selected(),
		Candidates:   s.store.Snapshot(),
	}
}

// withSelection runs fn against a selection no other call can change until
// fn returns. fn must not block on the generator.
func (s *Session) withSelection(fn func(selected []string)) {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	fn(s.tlds.Selected())
}

func (s *Session) reconcile() *availability.Pass {
	return s.track(s.engine.Reconcile(s.bg))
}

func (s *Session) track(pass *availability.Pass) *availability.Pass {
	if pass.Dispatched == 0 {
		return pass
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		pass.Wait()
	}()
	return pass
}

// Generate starts a new brainstorm for prompt. The primary candidate, if
// the prompt names one, is committed and checked before the generator
// answers. A generation error leaves the primary in place.
func (s *Session) Generate(ctx context.Context, prompt string) (View, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return View{}, errors.NewValidationError("prompt is required", "prompt", prompt)
	}

	s.mu.Lock()
	s.lastPrompt = prompt
	s.mu.Unlock()

	var (
		initial []domain.Suggestion
		epoch   uint64
	)
	exclude := []string{}
	primary, hasPrimary := candidate.PrimaryName(prompt)
	if hasPrimary {
		exclude = append(exclude, primary)
	}
	s.withSelection(func(selected []string) {
		if hasPrimary {
			initial = candidate.NewBatch([]string{primary}, selected)
		}
		s.store.ReplaceAll(initial)
		epoch = s.store.Epoch()
	})
	s.reconcile()

	names, err := s.generator.Generate(ctx, prompt, exclude)
	if err != nil {
		return s.View(), err
	}

	var (
		added      []domain.Suggestion
		superseded bool
	)
	s.withSelection(func(selected []string) {
		if superseded = s.store.Epoch() != epoch; !superseded {
			added = s.store.Append(candidate.NewBatch(names, selected))
		}
	})
	if superseded {
		s.logger.Debug("Generation superseded, dropping results", zap.String("session", s.ID))
		return s.View(), nil
	}
	s.reconcile()

	s.logger.Info("Candidates generated",
		zap.String("session", s.ID),
		zap.Int("received", len(names)),
		zap.Int("added", len(added)),
		zap.Bool("has_primary", len(initial) > 0),
	)
	return s.View(), nil
}

// ShowMore asks for names not yet in the store and appends them.
func (s *Session) ShowMore(ctx context.Context) ([]domain.Suggestion, error) {
	prompt := s.Prompt()
	if prompt == "" {
		return nil, errors.NewValidationError("generate names before asking for more", "prompt", "")
	}

	epoch := s.store.Epoch()
	names, err := s.generator.Generate(ctx, prompt, s.store.Names())
	if err != nil {
		return nil, err
	}
	added := []domain.Suggestion{}
	s.withSelection(func(selected []string) {
		if s.store.Epoch() == epoch {
			added = s.store.Append(candidate.NewBatch(names, selected))
		}
	})
	s.reconcile()
	return added, nil
}

// SuggestAlternatives replaces the alternatives of a top-level candidate.
func (s *Session) SuggestAlternatives(ctx context.Context, id string) (domain.Suggestion, error) {
	target, ok := s.store.Find(id)
	if !ok {
		return domain.Suggestion{}, errors.NewNotFoundError("candidate", id)
	}
	if !s.isTopLevel(id) {
		return domain.Suggestion{}, errors.NewValidationError("alternatives cannot have alternatives", "id", id)
	}

	busy, idle := true, false
	s.store.Merge(id, domain.SuggestionPatch{IsGeneratingAlternatives: &busy})
	defer s.store.Merge(id, domain.SuggestionPatch{IsGeneratingAlternatives: &idle})

	names, err := s.generator.GenerateAlternatives(ctx, target.Name)
	if err != nil {
		return domain.Suggestion{}, err
	}

	taken := make(map[string]struct{})
	replaced := make(map[string]struct{}, len(target.Alternatives))
	for _, alt := range target.Alternatives {
		replaced[alt.Name] = struct{}{}
	}
	for _, name := range s.store.Names() {
		if _, old := replaced[name]; !old {
			taken[name] = struct{}{}
		}
	}

	fresh := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := taken[name]; dup {
			continue
		}
		taken[name] = struct{}{}
		fresh = append(fresh, name)
	}

	merged := false
	s.withSelection(func(selected []string) {
		alts := candidate.NewBatch(fresh, selected)
		merged = s.store.Merge(id, domain.SuggestionPatch{Alternatives: &alts})
	})
	if !merged {
		return domain.Suggestion{}, errors.NewNotFoundError("candidate", id)
	}
	s.reconcile()

	updated, _ := s.store.Find(id)
	updated.IsGeneratingAlternatives = false
	return updated, nil
}

func (s *Session) isTopLevel(id string) bool {
	for _, sg := range s.store.Snapshot() {
		if sg.ID == id {
			return true
		}
	}
	return false
}

// CheckTrademark marks the candidate CHECKING, asks the registry, and
// stores what came back.
func (s *Session) CheckTrademark(ctx context.Context, id string) (trademark.Result, error) {
	target, ok := s.store.Find(id)
	if !ok {
		return trademark.Result{}, errors.NewNotFoundError("candidate", id)
	}

	checking := domain.StatusChecking
	s.store.Merge(id, domain.SuggestionPatch{TrademarkStatus: &checking})

	result := s.trademarks.Resolve(ctx, target.Name)
	status := result.Status
	s.store.Merge(id, domain.SuggestionPatch{TrademarkStatus: &status})
	return result, nil
}

// CheckAvailability triggers a single pair check and waits for it.
func (s *Session) CheckAvailability(ctx context.Context, id, tldName string) (domain.AvailabilityStatus, error) {
	if _, ok := s.store.Find(id); !ok {
		return "", errors.NewNotFoundError("candidate", id)
	}

	pass := s.track(s.engine.CheckPair(s.bg, id, tldName))
	select {
	case <-pass.Done():
	case <-ctx.Done():
		return "", ctx.Err()
	}

	sg, ok := s.store.Find(id)
	if !ok {
		return "", errors.NewNotFoundError("candidate", id)
	}
	return sg.StatusFor(tldName), nil
}

// SetSelection replaces the TLD selection, reprojects every candidate and
// checks the newly added TLDs.
func (s *Session) SetSelection(ctx context.Context, tlds []string) ([]string, error) {
	s.selMu.Lock()
	selected, err := s.tlds.SetSelection(tlds)
	if err != nil {
		s.selMu.Unlock()
		return nil, errors.NewValidationError(err.Error(), "tlds", tlds)
	}
	s.applySelectionLocked(ctx, selected)
	s.selMu.Unlock()

	s.reconcile()
	return selected, nil
}

// ToggleTLD flips one TLD; see tld.Manager.Toggle.
func (s *Session) ToggleTLD(ctx context.Context, tldName string) ([]string, bool) {
	s.selMu.Lock()
	selected, changed := s.tlds.Toggle(tldName)
	if changed {
		s.applySelectionLocked(ctx, selected)
	}
	s.selMu.Unlock()

	if changed {
		s.reconcile()
	}
	return selected, changed
}

func (s *Session) applySelectionLocked(ctx context.Context, selected []string) {
	s.store.ReprojectTLDs(selected)
	_ = s.tlds.Save(ctx)
}

// CheckAll sweeps name across the whole TLD universe. One sweep runs per
// session at a time; a new one restarts the state.
func (s *Session) CheckAll(ctx context.Context, name string, onProgress availability.ProgressFunc) (domain.SweepResult, error) {
	normalized := util.NormalizeName(name)
	if normalized == "" {
		return domain.SweepResult{}, errors.NewValidationError("name is required", "name", name)
	}
	return s.sweeper.Run(ctx, normalized, onProgress), nil
}

// SweepState exposes the live state of the last sweep.
func (s *Session) SweepState() domain.SweepProgress {
	return s.sweeper.State()
}

// Quote never fails.
func (s *Session) Quote(ctx context.Context, prompt string) string {
	if prompt == "" {
		prompt = s.Prompt()
	}
	return s.generator.GenerateQuote(ctx, prompt)
}

// WaitIdle blocks until every dispatched availability check has been
// written back.
func (s *Session) WaitIdle() {
	s.inflight.Wait()
}
