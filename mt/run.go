package mt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nibrary/nibrary/nlog"
)

// TaskFunc is a unit of work dispatched by Run. It receives the task's
// assigned number/thread id and the barrier shared by every worker in
// the same Run call, for bodies that need an n-way rendezvous.
type TaskFunc func(task Task, barrier *Barrier)

// StopFunc is a unit of work dispatched by RunStop. It returns true when
// the task "succeeded"; RunStop stops dispatching once stopLim tasks succeed.
type StopFunc func(task Task, barrier *Barrier) bool

// Options configures a Run/RunStop call. The zero value runs range tasks
// across MaxThreads() workers with no progress display.
type Options struct {
	Workers int    // 0 means MaxThreads(), capped at range
	Message string // non-empty enables a progress reporter when verbose
}

// Run dispatches range independent tasks across opt.Workers goroutines
// (default MaxThreads()), each fetching-and-incrementing a shared atomic
// counter to claim its next task number. There is no ordering guarantee
// between tasks; a panicking task is recovered and logged, and the pool
// continues with the remaining tasks.
func Run(rangeN int, fn TaskFunc, opts ...Options) {
	if rangeN <= 0 {
		return
	}
	opt := mergeOpts(opts)
	workers := opt.Workers
	if workers <= 0 {
		workers = MaxThreads()
	}
	if workers > rangeN {
		workers = rangeN
	}

	var dispatched int64
	barrier := NewBarrier(workers)

	runWorkers := func() {
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			threadID := w
			go func() {
				defer wg.Done()
				for {
					no := atomic.AddInt64(&dispatched, 1) - 1
					if no >= int64(rangeN) {
						return
					}
					runTask(int(no), threadID, fn, barrier)
				}
			}()
		}
		wg.Wait()
	}

	if opt.Message != "" && verbose() {
		runWithProgress(rangeN, opt.Message, &dispatched, nil, 0, runWorkers)
	} else {
		runWorkers()
	}
}

// RunStop dispatches range tasks, stopping dispatch as soon as either the
// whole range has been handed out or stopLim tasks have reported success.
// Tasks already in flight are allowed to finish; nothing is cancelled
// mid-body. It returns the number of tasks actually dispatched and the
// number that succeeded.
func RunStop(rangeN int, fn StopFunc, stopLim int, opts ...Options) (dispatched, succeeded int) {
	if rangeN <= 0 || stopLim <= 0 {
		return 0, 0
	}
	opt := mergeOpts(opts)
	workers := opt.Workers
	if workers <= 0 {
		workers = MaxThreads()
	}
	if workers > rangeN {
		workers = rangeN
	}

	var dispatchedCount int64
	var successCount int64
	barrier := NewBarrier(workers)

	runWorkers := func() {
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			threadID := w
			go func() {
				defer wg.Done()
				for {
					if atomic.LoadInt64(&dispatchedCount) >= int64(rangeN) ||
						atomic.LoadInt64(&successCount) >= int64(stopLim) {
						return
					}
					no := atomic.AddInt64(&dispatchedCount, 1) - 1
					if no >= int64(rangeN) {
						return
					}
					if runStopTask(int(no), threadID, fn, barrier) {
						atomic.AddInt64(&successCount, 1)
					}
				}
			}()
		}
		wg.Wait()
	}

	if opt.Message != "" && verbose() {
		runWithProgress(rangeN, opt.Message, &dispatchedCount, &successCount, int64(stopLim), runWorkers)
	} else {
		runWorkers()
	}

	d := atomic.LoadInt64(&dispatchedCount)
	if d > int64(rangeN) {
		d = int64(rangeN)
	}
	s := atomic.LoadInt64(&successCount)
	if s > int64(stopLim) {
		s = int64(stopLim)
	}
	return int(d), int(s)
}

func runTask(no, threadID int, fn TaskFunc, barrier *Barrier) {
	defer func() {
		if r := recover(); r != nil {
			nlog.Warn("task panicked", "task", no, "recovered", r)
		}
	}()
	fn(Task{No: no, ThreadID: threadID}, barrier)
}

func runStopTask(no, threadID int, fn StopFunc, barrier *Barrier) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			nlog.Warn("task panicked", "task", no, "recovered", r)
			ok = false
		}
	}()
	return fn(Task{No: no, ThreadID: threadID}, barrier)
}

func mergeOpts(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

// runWithProgress samples the dispatch/success counters every 100ms and
// renders a one- or two-line progress display while runWorkers executes.
func runWithProgress(rangeN int, message string, dispatched, succeeded *int64, stopLim int64, runWorkers func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runWorkers()
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	twoLine := succeeded != nil
	for {
		select {
		case <-done:
			printProgress(message, rangeN, dispatched, stopLim, succeeded, twoLine)
			fmt.Println()
			return
		case <-ticker.C:
			printProgress(message, rangeN, dispatched, stopLim, succeeded, twoLine)
		}
	}
}

func printProgress(message string, rangeN int, dispatched *int64, stopLim int64, succeeded *int64, twoLine bool) {
	total := atomic.LoadInt64(dispatched)
	if total > int64(rangeN) {
		total = int64(rangeN)
	}
	totalPct := 100 * float64(total) / float64(rangeN)
	if twoLine {
		s := atomic.LoadInt64(succeeded)
		if s > stopLim {
			s = stopLim
		}
		succPct := 100.0
		if stopLim > 0 {
			succPct = 100 * float64(s) / float64(stopLim)
		}
		fmt.Printf("\r\033[K%s (success): %.2f%%\n", message, succPct)
		fmt.Printf("\033[A\r\033[K%s (total)  : %.2f%%", message, totalPct)
	} else {
		fmt.Printf("\r\033[K%s: %.2f%%", message, totalPct)
	}
}
