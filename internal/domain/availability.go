package domain

// AvailabilityStatus is shared by domain and trademark checks.
type AvailabilityStatus string

const (
	StatusUnknown   AvailabilityStatus = "UNKNOWN"
	StatusChecking  AvailabilityStatus = "CHECKING"
	StatusAvailable AvailabilityStatus = "AVAILABLE"
	StatusTaken     AvailabilityStatus = "TAKEN"
)

func (s AvailabilityStatus) String() string {
	return string(s)
}

func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case StatusUnknown, StatusChecking, StatusAvailable, StatusTaken:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a check has resolved to a final answer.
func (s AvailabilityStatus) IsTerminal() bool {
	return s == StatusAvailable || s == StatusTaken
}

// DomainAvailability is the status of one candidate under one TLD.
type DomainAvailability struct {
	TLD    string             `json:"tld"`
	Status AvailabilityStatus `json:"status"`
}

// NewAvailability builds an UNKNOWN entry for every TLD, in order.
func NewAvailability(tlds []string) []DomainAvailability {
	entries := make([]DomainAvailability, 0, len(tlds))
	for _, tld := range tlds {
		entries = append(entries, DomainAvailability{TLD: tld, Status: StatusUnknown})
	}
	return entries
}
