package constants

import "time"

var SelectionLimits = struct {
	MaxSelectedTLDs int
}{
	MaxSelectedTLDs: 6,
}

var SweepConfig = struct {
	BatchSize int
}{
	BatchSize: 20, // next batch starts only after this one is joined
}

var GenerationConfig = struct {
	IdeasPerRequest     int
	AlternativesPerName int
	RequestTimeout      time.Duration
}{
	IdeasPerRequest:     10,
	AlternativesPerName: 3,
	RequestTimeout:      45 * time.Second,
}

var CacheTTL = struct {
	Availability time.Duration
	Preferences  time.Duration
}{
	Availability: 10 * time.Minute,
	Preferences:  0, // no expiry
}

var CacheKeys = struct {
	AvailabilityPrefix string
	PreferencePrefix   string
}{
	AvailabilityPrefix: "namebender:availability:",
	PreferencePrefix:   "namebender:prefs:",
}

var AIInputLimits = struct {
	MaxPromptLength int
}{
	MaxPromptLength: 500,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // consecutive failures before OPEN
	ResetTimeout:        30 * time.Second, // default retry wait
	RateLimitTimeout:    10 * time.Minute, // retry wait after a 429
	HealthCheckInterval: 2 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var APIConfig = struct {
	DoHBaseURL        string
	DoHTimeout        time.Duration
	TrademarkBaseURL  string
	TrademarkTimeout  time.Duration
	ManualSearchURL   string
	RegistrarCheckURL string
}{
	DoHBaseURL:        "https://cloudflare-dns.com/dns-query",
	DoHTimeout:        8 * time.Second,
	TrademarkBaseURL:  "https://api.euipo.europa.eu/tunnel-web/secure/webapi/service/tm/search",
	TrademarkTimeout:  10 * time.Second,
	ManualSearchURL:   "https://www.tmdn.org/tmview/#/tmview/results?page=1&pageSize=30&criteria=C&basicSearch=",
	RegistrarCheckURL: "https://www.godaddy.com/domainsearch/find?checkAvail=1&domainToCheck=",
}

var SessionConfig = struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}{
	IdleTimeout:   2 * time.Hour,
	SweepInterval: 10 * time.Minute,
}

var WebSocketConfig = struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
}{
	WriteTimeout: 10 * time.Second,
	PingInterval: 30 * time.Second,
}
