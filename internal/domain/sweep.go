package domain

// CheckResult is one (tld, status) pair produced by a sweep.
type CheckResult struct {
	TLD    string             `json:"tld"`
	Status AvailabilityStatus `json:"status"`
}

// SweepProgress is published after every completed batch.
type SweepProgress struct {
	Name     string        `json:"name"`
	Checked  int           `json:"checked"`
	Total    int           `json:"total"`
	Progress float64       `json:"progress"`
	Results  []CheckResult `json:"results"`
	Done     bool          `json:"done"`
}

// SweepResult partitions a finished sweep. Anything that is not AVAILABLE
// lands in Taken.
type SweepResult struct {
	Name      string        `json:"name"`
	Total     int           `json:"total"`
	Available []CheckResult `json:"available"`
	Taken     []CheckResult `json:"taken"`
	Cancelled bool          `json:"cancelled"`
}
