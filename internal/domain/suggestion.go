package domain

// Suggestion is a candidate root label under evaluation. Alternatives are
// only ever one level deep: a nested suggestion never owns alternatives.
type Suggestion struct {
	ID                       string               `json:"id"`
	Name                     string               `json:"name"`
	Availability             []DomainAvailability `json:"availability"`
	Alternatives             []Suggestion         `json:"alternatives,omitempty"`
	TrademarkStatus          AvailabilityStatus   `json:"trademarkStatus,omitempty"`
	IsGeneratingAlternatives bool                 `json:"isGeneratingAlternatives"`
}

// StatusFor returns the availability status for tld, or UNKNOWN when the
// candidate has no entry for it.
func (s *Suggestion) StatusFor(tld string) AvailabilityStatus {
	for _, entry := range s.Availability {
		if entry.TLD == tld {
			return entry.Status
		}
	}
	return StatusUnknown
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s Suggestion) Clone() Suggestion {
	out := s
	if s.Availability != nil {
		out.Availability = make([]DomainAvailability, len(s.Availability))
		copy(out.Availability, s.Availability)
	}
	if s.Alternatives != nil {
		out.Alternatives = make([]Suggestion, len(s.Alternatives))
		for i, alt := range s.Alternatives {
			out.Alternatives[i] = alt.Clone()
		}
	}
	return out
}

// SuggestionPatch carries the fields of a shallow merge. Nil fields are left
// untouched.
type SuggestionPatch struct {
	Availability             []DomainAvailability
	Alternatives             *[]Suggestion
	TrademarkStatus          *AvailabilityStatus
	IsGeneratingAlternatives *bool
}
