package availability

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/metrics"
)

// ProgressFunc receives a copy of the sweep state after every batch.
type ProgressFunc func(domain.SweepProgress)

// Sweeper checks one name against a whole TLD list in fixed-size batches.
// A batch is fully joined before the next one starts.
type Sweeper struct {
	oracle    Oracle
	tlds      []string
	batchSize int
	metrics   *metrics.Metrics
	logger    *zap.Logger

	runMu sync.Mutex // one sweep at a time

	mu        sync.RWMutex
	state     domain.SweepProgress
	runID     uint64
	cancelRun context.CancelFunc
}

// NewSweeper sweeps tlds, or the full universe when tlds is empty.
func NewSweeper(oracle Oracle, tlds []string, batchSize int, m *metrics.Metrics, logger *zap.Logger) *Sweeper {
	if len(tlds) == 0 {
		tlds = domain.AllTLDs()
	}
	if batchSize <= 0 {
		batchSize = constants.SweepConfig.BatchSize
	}
	return &Sweeper{
		oracle:    oracle,
		tlds:      tlds,
		batchSize: batchSize,
		metrics:   m,
		logger:    logger,
	}
}

// State returns the live progress, including partial results.
func (s *Sweeper) State() domain.SweepProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProgress(s.state)
}

// Run sweeps name across the TLD list. Starting a run cancels the one in
// progress and discards whatever it left behind. Cancelling ctx stops after
// the current batch; a batch interrupted by cancellation is not recorded, so
// the returned partial result only holds real oracle answers.
func (s *Sweeper) Run(ctx context.Context, name string, onProgress ProgressFunc) domain.SweepResult {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.runID++
	id := s.runID
	s.cancelRun = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.runID == id {
			s.cancelRun = nil
		}
		s.mu.Unlock()
	}()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	total := len(s.tlds)
	if runCtx.Err() != nil {
		// superseded before it started
		return domain.SweepResult{
			Name:      name,
			Total:     total,
			Available: []domain.CheckResult{},
			Taken:     []domain.CheckResult{},
			Cancelled: true,
		}
	}

	s.mu.Lock()
	s.state = domain.SweepProgress{
		Name:    name,
		Total:   total,
		Results: make([]domain.CheckResult, 0, total),
	}
	if total == 0 {
		s.state.Progress = 1
		s.state.Done = true
	}
	s.mu.Unlock()

	s.logger.Info("Sweep started", zap.String("name", name), zap.Int("tlds", total))

	for start := 0; start < total; start += s.batchSize {
		if runCtx.Err() != nil {
			break
		}

		end := min(start+s.batchSize, total)
		results := s.runBatch(runCtx, name, s.tlds[start:end])
		if runCtx.Err() != nil {
			break
		}

		s.mu.Lock()
		s.state.Results = append(s.state.Results, results...)
		s.state.Checked = end
		s.state.Progress = float64(end) / float64(total)
		s.state.Done = end == total
		snapshot := copyProgress(s.state)
		s.mu.Unlock()

		if onProgress != nil {
			onProgress(snapshot)
		}
	}

	final := s.State()
	result := Partition(name, final.Results)
	result.Total = total
	result.Cancelled = !final.Done

	if result.Cancelled {
		s.logger.Info("Sweep cancelled", zap.String("name", name), zap.Int("checked", final.Checked))
		return result
	}

	s.metrics.IncrementSweeps()
	s.logger.Info("Sweep finished",
		zap.String("name", name),
		zap.Int("checked", final.Checked),
		zap.Int("available", len(result.Available)),
	)
	return result
}

// runBatch checks every TLD of batch concurrently and joins them all.
func (s *Sweeper) runBatch(ctx context.Context, name string, batch []string) []domain.CheckResult {
	results := make([]domain.CheckResult, len(batch))
	p := pool.New().WithMaxGoroutines(len(batch))
	for idx, tld := range batch {
		idx, tld := idx, tld
		p.Go(func() {
			results[idx] = domain.CheckResult{
				TLD:    tld,
				Status: checkFailClosed(ctx, s.oracle, name, tld, s.metrics, s.logger),
			}
		})
	}
	p.Wait()
	return results
}

// Partition splits results into AVAILABLE and everything else, each sorted
// ascending by TLD.
func Partition(name string, results []domain.CheckResult) domain.SweepResult {
	out := domain.SweepResult{
		Name:      name,
		Total:     len(results),
		Available: make([]domain.CheckResult, 0),
		Taken:     make([]domain.CheckResult, 0),
	}
	for _, r := range results {
		if r.Status == domain.StatusAvailable {
			out.Available = append(out.Available, r)
		} else {
			out.Taken = append(out.Taken, r)
		}
	}
	sort.Slice(out.Available, func(i, j int) bool { return out.Available[i].TLD < out.Available[j].TLD })
	sort.Slice(out.Taken, func(i, j int) bool { return out.Taken[i].TLD < out.Taken[j].TLD })
	return out
}

func copyProgress(p domain.SweepProgress) domain.SweepProgress {
	out := p
	out.Results = make([]domain.CheckResult, len(p.Results))
	copy(out.Results, p.Results)
	return out
}
