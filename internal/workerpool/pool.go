// Package workerpool bounds how many probes run concurrently. Tasks submitted
// in one batch all settle — successfully or as a recorded anomaly — before
// the batch returns; no worker outlives the caller's context.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/opswatch/sentinel/internal/probe"
)

// Task is one unit of work submitted to the Pool.
type Task struct {
	ServiceName string
	Run         func(ctx context.Context) probe.Outcome
}

// Result pairs a Task with its settled Outcome. Err is non-nil only when the
// task panicked or the pool could not schedule it — a scheduler anomaly —
// in which case Outcome is the zero value and the caller should count the
// anomaly rather than treat it as a probe result.
type Result struct {
	Task    Task
	Outcome probe.Outcome
	Err     error
}

// Pool is a bounded gate on in-flight probes. A size of 0 auto-sizes to
// 2x the number of CPUs.
type Pool struct {
	size int
	sem  *semaphore.Weighted
}

// New builds a Pool allowing at most size concurrent tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 2 * runtime.NumCPU()
	}
	return &Pool{size: size, sem: semaphore.NewWeighted(int64(size))}
}

// Size reports the effective worker count.
func (p *Pool) Size() int { return p.size }

// Run submits every task in the batch, blocks until all have settled, and
// returns one Result per task in submission order. A task's own panic or a
// failed semaphore acquisition never aborts the rest of the batch.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Task: task, Err: fmt.Errorf("pool rejected task: %w", err)}
			continue
		}

		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			defer p.sem.Release(1)
			results[i] = runTask(ctx, task)
		}(i, task)
	}

	wg.Wait()
	return results
}

func runTask(ctx context.Context, task Task) (result Result) {
	result.Task = task
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	result.Outcome = task.Run(ctx)
	return result
}
