package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/pkg/errors"
)

// Oracle answers whether <name><tld> is registrable. An error means the
// oracle could not tell; callers decide what that maps to.
type Oracle interface {
	Check(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error)

func (f OracleFunc) Check(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error) {
	return f(ctx, name, tld)
}

// nxDomain is the DNS RCODE for a name that does not exist.
const nxDomain = 3

type dohResponse struct {
	Status int `json:"Status"`
}

// DoHOracle resolves availability from a DNS-over-HTTPS JSON endpoint.
// NXDOMAIN means AVAILABLE; any other answer means TAKEN, even without
// address records.
type DoHOracle struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewDoHOracle(baseURL string, logger *zap.Logger) *DoHOracle {
	if baseURL == "" {
		baseURL = constants.APIConfig.DoHBaseURL
	}
	return &DoHOracle{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: constants.APIConfig.DoHTimeout,
		},
		logger: logger,
	}
}

// ToASCII converts a full domain to its punycode form. Unconvertible input
// is returned unchanged and left to the resolver to reject.
func ToASCII(fqdn string) string {
	ascii, err := idna.Lookup.ToASCII(fqdn)
	if err != nil {
		return fqdn
	}
	return ascii
}

func (o *DoHOracle) Check(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error) {
	fqdn := ToASCII(name + tld)
	endpoint := o.baseURL + "?name=" + url.QueryEscape(fqdn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errors.NewAPIError("failed to create request", 500, map[string]any{
			"domain": fqdn,
		}).WithCause(err)
	}
	req.Header.Set("Accept", "application/dns-json")

	start := time.Now()
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAPIError("DNS lookup failed", 500, map[string]any{
			"domain": fqdn,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.NewAPIError(
			fmt.Sprintf("DoH error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"domain": fqdn,
				"body":   string(bodyBytes),
			},
		)
	}

	var payload dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.NewAPIError("failed to decode DoH response", 500, map[string]any{
			"domain": fqdn,
		}).WithCause(err)
	}

	o.logger.Debug("DoH lookup",
		zap.String("domain", fqdn),
		zap.Int("rcode", payload.Status),
		zap.Duration("took", time.Since(start)),
	)

	if payload.Status == nxDomain {
		return domain.StatusAvailable, nil
	}
	return domain.StatusTaken, nil
}
