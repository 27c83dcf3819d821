package availability

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/metrics"
	"github.com/kapu/name-bender-go/internal/service/candidate"
)

// Engine keeps a candidate store converging: every UNKNOWN pair gets exactly
// one oracle call, and the answer is written back while the pair is still
// CHECKING.
type Engine struct {
	store   *candidate.Store
	oracle  Oracle
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewEngine(store *candidate.Store, oracle Oracle, m *metrics.Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		store:   store,
		oracle:  oracle,
		metrics: m,
		logger:  logger,
	}
}

// Pass is one batch of dispatched checks.
type Pass struct {
	Dispatched int
	done       chan struct{}
}

// Wait blocks until every check of the pass has been written back.
func (p *Pass) Wait() {
	<-p.done
}

// Done is closed once the pass has finished.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

// Reconcile claims every UNKNOWN pair and checks them concurrently. Pairs
// already CHECKING belong to an earlier pass and are not dispatched again.
func (e *Engine) Reconcile(ctx context.Context) *Pass {
	return e.dispatch(ctx, e.store.ClaimUnknown())
}

// CheckPair checks a single (candidate, tld) pair again unless a check for
// it is already in flight.
func (e *Engine) CheckPair(ctx context.Context, id, tld string) *Pass {
	claim, ok := e.store.ClaimPair(id, tld)
	if !ok {
		return e.dispatch(ctx, nil)
	}
	return e.dispatch(ctx, []candidate.Claim{claim})
}

func (e *Engine) dispatch(ctx context.Context, claims []candidate.Claim) *Pass {
	pass := &Pass{Dispatched: len(claims), done: make(chan struct{})}
	if len(claims) == 0 {
		close(pass.done)
		return pass
	}

	e.logger.Debug("Dispatching availability checks", zap.Int("count", len(claims)))

	p := pool.New()
	for _, claim := range claims {
		claim := claim
		p.Go(func() {
			status := e.resolve(ctx, claim.Name, claim.TLD)
			if !e.store.ResolveAvailability(claim.ID, claim.TLD, status) {
				e.logger.Debug("Dropped stale availability result",
					zap.String("id", claim.ID),
					zap.String("tld", claim.TLD),
				)
			}
		})
	}

	go func() {
		p.Wait()
		close(pass.done)
	}()

	return pass
}

// resolve maps oracle failures to TAKEN. A lookup that cannot be confirmed is
// never reported as registrable.
func (e *Engine) resolve(ctx context.Context, name, tld string) domain.AvailabilityStatus {
	return checkFailClosed(ctx, e.oracle, name, tld, e.metrics, e.logger)
}

func checkFailClosed(ctx context.Context, oracle Oracle, name, tld string, m *metrics.Metrics, logger *zap.Logger) domain.AvailabilityStatus {
	status, err := oracle.Check(ctx, name, tld)
	if err != nil {
		m.IncrementCheck("error")
		logger.Warn("Availability check failed, treating as taken",
			zap.String("domain", name+tld),
			zap.Error(err),
		)
		return domain.StatusTaken
	}
	if !status.IsTerminal() {
		m.IncrementCheck("error")
		return domain.StatusTaken
	}
	if status == domain.StatusAvailable {
		m.IncrementCheck("available")
	} else {
		m.IncrementCheck("taken")
	}
	return status
}
