package candidate

import (
	"sync"

	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/util"
)

// New builds a fresh top-level suggestion with every selected TLD UNKNOWN.
func New(name string, tlds []string) domain.Suggestion {
	return domain.Suggestion{
		ID:              util.NewSuggestionID(name),
		Name:            name,
		Availability:    domain.NewAvailability(tlds),
		TrademarkStatus: domain.StatusUnknown,
	}
}

// NewBatch builds suggestions for names in order.
func NewBatch(names []string, tlds []string) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(names))
	for _, name := range names {
		out = append(out, New(name, tlds))
	}
	return out
}

// Claim identifies one (candidate, tld) pair moved from UNKNOWN to CHECKING.
type Claim struct {
	ID   string
	Name string
	TLD  string
}

// Store is the ordered candidate tree of one session. Every method takes the
// lock, so callers never observe a half-applied update.
type Store struct {
	mu    sync.RWMutex
	items []domain.Suggestion
	epoch uint64
}

func NewStore() *Store {
	return &Store{}
}

// ReplaceAll discards every candidate and starts a new generation.
func (s *Store) ReplaceAll(list []domain.Suggestion) []domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.items = nil
	return s.appendLocked(list)
}

// Append adds the suggestions whose names are not already in the store and
// returns what was actually added.
func (s *Store) Append(list []domain.Suggestion) []domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(list)
}

func (s *Store) appendLocked(list []domain.Suggestion) []domain.Suggestion {
	seen := s.namesLocked()
	added := make([]domain.Suggestion, 0, len(list))
	for _, sg := range list {
		if !validName(sg.Name) {
			continue
		}
		if _, dup := seen[sg.Name]; dup {
			continue
		}
		seen[sg.Name] = struct{}{}

		sg = sg.Clone()
		for i := range sg.Alternatives {
			sg.Alternatives[i].Alternatives = nil
		}
		s.items = append(s.items, sg)
		added = append(added, sg.Clone())
	}
	return added
}

// Merge applies patch to the suggestion with id, searching top-level entries
// and their alternatives. A missing id is a no-op.
func (s *Store) Merge(id string, patch domain.SuggestionPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, nested := s.findLocked(id)
	if target == nil {
		return false
	}

	if patch.Availability != nil {
		target.Availability = append([]domain.DomainAvailability(nil), patch.Availability...)
	}
	if patch.Alternatives != nil && !nested {
		alts := make([]domain.Suggestion, 0, len(*patch.Alternatives))
		for _, alt := range *patch.Alternatives {
			alt = alt.Clone()
			alt.Alternatives = nil
			alts = append(alts, alt)
		}
		target.Alternatives = alts
	}
	if patch.TrademarkStatus != nil {
		target.TrademarkStatus = *patch.TrademarkStatus
	}
	if patch.IsGeneratingAlternatives != nil {
		target.IsGeneratingAlternatives = *patch.IsGeneratingAlternatives
	}
	return true
}

// ReprojectTLDs rewrites every availability list to follow tlds: known
// statuses are kept, new TLDs start UNKNOWN, deselected ones are dropped.
func (s *Store) ReprojectTLDs(tlds []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Availability = reproject(s.items[i].Availability, tlds)
		for j := range s.items[i].Alternatives {
			alt := &s.items[i].Alternatives[j]
			alt.Availability = reproject(alt.Availability, tlds)
		}
	}
}

func reproject(current []domain.DomainAvailability, tlds []string) []domain.DomainAvailability {
	known := make(map[string]domain.AvailabilityStatus, len(current))
	for _, entry := range current {
		known[entry.TLD] = entry.Status
	}
	out := make([]domain.DomainAvailability, 0, len(tlds))
	for _, tld := range tlds {
		status, ok := known[tld]
		if !ok {
			status = domain.StatusUnknown
		}
		out = append(out, domain.DomainAvailability{TLD: tld, Status: status})
	}
	return out
}

// ClaimUnknown moves every UNKNOWN pair to CHECKING and returns the claims.
// A pair is handed out at most once until it returns to UNKNOWN.
func (s *Store) ClaimUnknown() []Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claims []Claim
	claim := func(sg *domain.Suggestion) {
		for k := range sg.Availability {
			if sg.Availability[k].Status != domain.StatusUnknown {
				continue
			}
			sg.Availability[k].Status = domain.StatusChecking
			claims = append(claims, Claim{ID: sg.ID, Name: sg.Name, TLD: sg.Availability[k].TLD})
		}
	}
	for i := range s.items {
		claim(&s.items[i])
		for j := range s.items[i].Alternatives {
			claim(&s.items[i].Alternatives[j])
		}
	}
	return claims
}

// ClaimPair claims a single pair unless a check for it is already in
// flight. Resolved pairs are claimed again, so a TAKEN recorded for a failed
// lookup can be re-checked on demand.
func (s *Store) ClaimPair(id, tld string) (Claim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, _ := s.findLocked(id)
	if target == nil {
		return Claim{}, false
	}
	for k := range target.Availability {
		if target.Availability[k].TLD == tld && target.Availability[k].Status != domain.StatusChecking {
			target.Availability[k].Status = domain.StatusChecking
			return Claim{ID: target.ID, Name: target.Name, TLD: tld}, true
		}
	}
	return Claim{}, false
}

// ResolveAvailability records the result of a claimed pair. Results for
// candidates that are gone, TLDs that were deselected, or pairs no longer
// CHECKING are dropped.
func (s *Store) ResolveAvailability(id, tld string, status domain.AvailabilityStatus) bool {
	if !status.IsTerminal() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, _ := s.findLocked(id)
	if target == nil {
		return false
	}
	for k := range target.Availability {
		if target.Availability[k].TLD != tld {
			continue
		}
		if target.Availability[k].Status != domain.StatusChecking {
			return false
		}
		target.Availability[k].Status = status
		return true
	}
	return false
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() []domain.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Suggestion, len(s.items))
	for i, sg := range s.items {
		out[i] = sg.Clone()
	}
	return out
}

// Find returns a copy of the suggestion with id, nested or not.
func (s *Store) Find(id string) (domain.Suggestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, _ := s.findLocked(id)
	if target == nil {
		return domain.Suggestion{}, false
	}
	return target.Clone(), true
}

// Names lists every name in the store, top-level first then alternatives.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.items))
	for _, sg := range s.items {
		names = append(names, sg.Name)
	}
	for _, sg := range s.items {
		for _, alt := range sg.Alternatives {
			names = append(names, alt.Name)
		}
	}
	return names
}

// Epoch changes every time ReplaceAll runs.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) findLocked(id string) (*domain.Suggestion, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], false
		}
		for j := range s.items[i].Alternatives {
			if s.items[i].Alternatives[j].ID == id {
				return &s.items[i].Alternatives[j], true
			}
		}
	}
	return nil, false
}

func (s *Store) namesLocked() map[string]struct{} {
	seen := make(map[string]struct{}, len(s.items))
	for _, sg := range s.items {
		seen[sg.Name] = struct{}{}
		for _, alt := range sg.Alternatives {
			seen[alt.Name] = struct{}{}
		}
	}
	return seen
}

func validName(name string) bool {
	return name != "" && util.NormalizeName(name) == name
}
