package trademark

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/metrics"
)

// Checker is the registry lookup the resolver falls back from.
type Checker interface {
	Check(ctx context.Context, text string) (domain.AvailabilityStatus, error)
}

// Result carries the resolved status. ManualSearch is set when the registry
// could not answer and the user should search by hand.
type Result struct {
	Status          domain.AvailabilityStatus `json:"status"`
	ManualSearch    bool                      `json:"manualSearch"`
	ManualSearchURL string                    `json:"manualSearchUrl,omitempty"`
}

// Resolver never fails: an unconfigured or failing registry yields UNKNOWN
// plus a manual search link.
type Resolver struct {
	checker Checker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewResolver accepts a nil checker for the manual-only mode.
func NewResolver(checker Checker, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	r := &Resolver{metrics: m, logger: logger}
	// a typed nil *Client must not count as configured
	if c, ok := checker.(*Client); !ok || c != nil {
		r.checker = checker
	}
	return r
}

func (r *Resolver) Configured() bool {
	return r.checker != nil
}

func (r *Resolver) Resolve(ctx context.Context, text string) Result {
	if r.checker == nil {
		r.logger.Debug("Trademark registry not configured, using manual search", zap.String("text", text))
		r.metrics.IncrementTrademark("manual")
		return manual(text)
	}

	status, err := r.checker.Check(ctx, text)
	if err != nil || !status.IsTerminal() {
		r.logger.Warn("Trademark check failed", zap.String("text", text), zap.Error(err))
		r.metrics.IncrementTrademark("manual")
		return manual(text)
	}

	r.metrics.IncrementTrademark(string(status))
	return Result{Status: status}
}

// ManualSearchURL points at the public registry search for text.
func ManualSearchURL(text string) string {
	return constants.APIConfig.ManualSearchURL + url.QueryEscape(text)
}

func manual(text string) Result {
	return Result{
		Status:          domain.StatusUnknown,
		ManualSearch:    true,
		ManualSearchURL: ManualSearchURL(text),
	}
}
