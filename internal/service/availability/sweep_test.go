package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
)

func makeTLDs(n int) []string {
	tlds := make([]string, n)
	for i := range tlds {
		tlds[i] = fmt.Sprintf(".t%03d", n-i)
	}
	return tlds
}

func TestSweepProgressIsMonotonicAndEndsAtOne(t *testing.T) {
	oracle := newFakeOracle()
	tlds := makeTLDs(45)
	sweeper := NewSweeper(oracle, tlds, 20, nil, zap.NewNop())

	var updates []domain.SweepProgress
	result := sweeper.Run(context.Background(), "alpha", func(p domain.SweepProgress) {
		updates = append(updates, p)
	})

	require.Len(t, updates, 3)
	assert.Equal(t, []int{20, 40, 45}, []int{updates[0].Checked, updates[1].Checked, updates[2].Checked})
	for i := 1; i < len(updates); i++ {
		assert.Greater(t, updates[i].Progress, updates[i-1].Progress)
		assert.GreaterOrEqual(t, len(updates[i].Results), len(updates[i-1].Results))
	}
	last := updates[len(updates)-1]
	assert.Equal(t, 1.0, last.Progress)
	assert.True(t, last.Done)
	assert.Len(t, last.Results, 45)
	assert.Equal(t, 45, result.Total)
	assert.Equal(t, 45, oracle.totalCalls())
}

func TestSweepPartitionsAreDisjointAndSorted(t *testing.T) {
	oracle := newFakeOracle()
	tlds := makeTLDs(30)
	for i, tld := range tlds {
		if i%3 == 0 {
			oracle.answers["alpha"+tld] = domain.StatusAvailable
		}
	}
	oracle.fail["alpha"+tlds[0]] = true

	result := NewSweeper(oracle, tlds, 20, nil, zap.NewNop()).Run(context.Background(), "alpha", nil)

	assert.Equal(t, 30, len(result.Available)+len(result.Taken))
	assert.Len(t, result.Available, 9)
	assert.True(t, sort.SliceIsSorted(result.Available, func(i, j int) bool { return result.Available[i].TLD < result.Available[j].TLD }))
	assert.True(t, sort.SliceIsSorted(result.Taken, func(i, j int) bool { return result.Taken[i].TLD < result.Taken[j].TLD }))

	seen := make(map[string]bool)
	for _, r := range append(append([]domain.CheckResult{}, result.Available...), result.Taken...) {
		assert.False(t, seen[r.TLD], "duplicate %s", r.TLD)
		seen[r.TLD] = true
	}
	assert.Contains(t, result.Taken, domain.CheckResult{TLD: tlds[0], Status: domain.StatusTaken})
}

func TestSweepRestartResetsState(t *testing.T) {
	oracle := newFakeOracle()
	sweeper := NewSweeper(oracle, makeTLDs(25), 20, nil, zap.NewNop())

	sweeper.Run(context.Background(), "alpha", nil)
	require.Equal(t, 25, sweeper.State().Checked)

	var first domain.SweepProgress
	seenFirst := false
	sweeper.Run(context.Background(), "beta", func(p domain.SweepProgress) {
		if !seenFirst {
			first = p
			seenFirst = true
		}
	})

	assert.Equal(t, "beta", first.Name)
	assert.Equal(t, 20, first.Checked)
	assert.Len(t, first.Results, 20)
	assert.Equal(t, 1.0, sweeper.State().Progress)
}

func TestSweepEmptyListIsComplete(t *testing.T) {
	sweeper := &Sweeper{oracle: newFakeOracle(), batchSize: 20, logger: zap.NewNop()}
	result := sweeper.Run(context.Background(), "alpha", nil)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 1.0, sweeper.State().Progress)
	assert.True(t, sweeper.State().Done)
}

func TestSweepDefaultsToUniverse(t *testing.T) {
	sweeper := NewSweeper(newFakeOracle(), nil, 0, nil, zap.NewNop())
	assert.Equal(t, len(domain.AllTLDs()), len(sweeper.tlds))
	assert.Equal(t, 20, sweeper.batchSize)
}

func TestSweepStopsOnCancel(t *testing.T) {
	oracle := newFakeOracle()
	sweeper := NewSweeper(oracle, makeTLDs(60), 20, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	result := sweeper.Run(ctx, "alpha", func(p domain.SweepProgress) {
		if p.Checked == 20 {
			cancel()
		}
	})

	assert.Equal(t, 20, sweeper.State().Checked)
	assert.False(t, sweeper.State().Done)
	assert.Equal(t, 20, oracle.totalCalls())
	assert.True(t, result.Cancelled)
	assert.Len(t, result.Taken, 20)
}

// batchRecorder holds every call until its whole batch has arrived, then
// records peak concurrency and any call that starts before the previous
// batch has finished.
type batchRecorder struct {
	mu          sync.Mutex
	batchOf     map[string]int
	sizes       []int
	arrived     []int
	finished    []int
	full        []chan struct{}
	inFlight    int
	maxInFlight int
	early       []string
}

func newBatchRecorder(tlds []string, batchSize int) *batchRecorder {
	r := &batchRecorder{batchOf: make(map[string]int, len(tlds))}
	for i, tld := range tlds {
		b := i / batchSize
		if b == len(r.sizes) {
			r.sizes = append(r.sizes, 0)
			r.full = append(r.full, make(chan struct{}))
		}
		r.sizes[b]++
		r.batchOf[tld] = b
	}
	r.arrived = make([]int, len(r.sizes))
	r.finished = make([]int, len(r.sizes))
	return r
}

func (r *batchRecorder) Check(_ context.Context, _, tld string) (domain.AvailabilityStatus, error) {
	r.mu.Lock()
	b := r.batchOf[tld]
	if b > 0 && r.finished[b-1] < r.sizes[b-1] {
		r.early = append(r.early, tld)
	}
	r.inFlight++
	r.maxInFlight = max(r.maxInFlight, r.inFlight)
	r.arrived[b]++
	if r.arrived[b] == r.sizes[b] {
		close(r.full[b])
	}
	full := r.full[b]
	r.mu.Unlock()

	select {
	case <-full:
	case <-time.After(2 * time.Second):
	}

	r.mu.Lock()
	r.inFlight--
	r.finished[b]++
	r.mu.Unlock()
	return domain.StatusTaken, nil
}

func TestSweepJoinsEachBatchBeforeTheNext(t *testing.T) {
	tlds := makeTLDs(45)
	recorder := newBatchRecorder(tlds, 20)

	result := NewSweeper(recorder, tlds, 20, nil, zap.NewNop()).Run(context.Background(), "alpha", nil)

	assert.False(t, result.Cancelled)
	assert.Len(t, result.Taken, 45)
	assert.Equal(t, 20, recorder.maxInFlight)
	assert.Empty(t, recorder.early, "calls started before the previous batch was joined")
	assert.Equal(t, []int{20, 20, 5}, recorder.finished)
}

func TestSweepNewRunCancelsSupersededRun(t *testing.T) {
	oracle := newFakeOracle()
	oracle.gate = make(chan struct{})
	tlds := makeTLDs(40)
	oracle.answers["beta"+tlds[0]] = domain.StatusAvailable
	sweeper := NewSweeper(oracle, tlds, 20, nil, zap.NewNop())

	first := make(chan domain.SweepResult, 1)
	go func() {
		first <- sweeper.Run(context.Background(), "alpha", nil)
	}()
	require.Eventually(t, func() bool { return oracle.totalCalls() == 20 }, 2*time.Second, 5*time.Millisecond)

	second := make(chan domain.SweepResult, 1)
	go func() {
		second <- sweeper.Run(context.Background(), "beta", nil)
	}()

	select {
	case res := <-first:
		assert.True(t, res.Cancelled)
		assert.Empty(t, res.Available)
		assert.Empty(t, res.Taken, "an interrupted batch must not report TAKEN")
	case <-time.After(2 * time.Second):
		t.Fatal("superseded sweep kept running")
	}

	close(oracle.gate)
	res := <-second
	assert.False(t, res.Cancelled)
	assert.Equal(t, "beta", sweeper.State().Name)
	assert.Len(t, res.Available, 1)
	assert.Len(t, res.Taken, 39)
}
