package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testJob struct {
	id      int
	delay   time.Duration
	fail    bool
	counter *atomic.Int32
}

type testResult struct {
	id  int
	err error
}

func (r *testResult) GetError() error { return r.err }

func (j *testJob) Execute(ctx context.Context) Result {
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &testResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.counter != nil {
		j.counter.Add(1)
	}
	if j.fail {
		return &testResult{id: j.id, err: errors.New("job failed")}
	}
	return &testResult{id: j.id}
}

func TestPool_AllJobsExecuted(t *testing.T) {
	var counter atomic.Int32
	pool := NewPool(4)
	pool.Start()

	for i := 0; i < 20; i++ {
		pool.Submit(&testJob{id: i, counter: &counter})
	}

	results := pool.Wait()

	if len(results) != 20 {
		t.Errorf("Expected 20 results, got %d", len(results))
	}
	if counter.Load() != 20 {
		t.Errorf("Expected 20 executions, got %d", counter.Load())
	}
}

func TestPool_ErrorsPropagated(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&testJob{id: 0})
	pool.Submit(&testJob{id: 1, fail: true})

	results := pool.Wait()

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected 1 failed result, got %d", failed)
	}
}

func TestPool_ResultsReorderable(t *testing.T) {
	// Results arrive in completion order; callers reorder by a stable key.
	pool := NewPool(4)
	pool.Start()

	delays := []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond, 0}
	for i, d := range delays {
		pool.Submit(&testJob{id: i, delay: d})
	}

	results := pool.Wait()
	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}

	seen := make(map[int]bool)
	for _, r := range results {
		seen[r.(*testResult).id] = true
	}
	for i := 0; i < 4; i++ {
		if !seen[i] {
			t.Errorf("Missing result for job %d", i)
		}
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	pool.Submit(&testJob{id: 0, delay: time.Second})
	pool.Submit(&testJob{id: 1, delay: time.Second})

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not complete in time")
	}
}

func TestPool_ZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&testJob{id: 0})
	results := pool.Wait()
	if len(results) != 1 {
		t.Errorf("Expected pool with clamped worker count to execute the job, got %d results", len(results))
	}
}
