// Package mt provides the fixed-size worker pool used by every other
// package in this module to parallelise independent or commutatively
// accumulating loops over voxels, faces, triangles and directions.
//
// Package mt is provided as part of the nibrary geometry-image core.
package mt

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// PROC_MX is the single global mutex every package in this module shares
// for rare consolidation writes into state built up across parallel
// tasks (appending to a shared slice, merging a histogram, and so on).
// Tasks that can be made commutative or lock-free should avoid it.
var PROC_MX sync.Mutex

var (
	maxThreadsOnce sync.Once
	maxThreads     int32
)

// MaxThreads returns the default worker count, derived once from
// runtime.NumCPU(). SetMaxThreads can override it before the first Run call
// of a program; changing it afterwards is not safe for already-running pools.
func MaxThreads() int {
	maxThreadsOnce.Do(func() {
		n := runtime.NumCPU()
		if n < 1 {
			n = 1
		}
		atomic.StoreInt32(&maxThreads, int32(n))
	})
	return int(atomic.LoadInt32(&maxThreads))
}

// SetMaxThreads overrides the default worker count. Values <= 0 are ignored.
func SetMaxThreads(n int) {
	maxThreadsOnce.Do(func() {})
	if n > 0 {
		atomic.StoreInt32(&maxThreads, int32(n))
	}
}

// Task names a single unit of work within a dispatched range. No is
// monotonically increasing in dispatch order; ThreadID identifies the
// worker executing it and indexes into a pool's per-worker RNG slice.
type Task struct {
	No       int
	ThreadID int
}

// Verbosity controls whether a progress reporter thread is spawned for
// Run calls that carry a progress message.
var Verbosity int32 = 1

// SetVerbosity sets the global verbosity level; 0 disables progress output.
func SetVerbosity(v int) { atomic.StoreInt32(&Verbosity, int32(v)) }

func verbose() bool { return atomic.LoadInt32(&Verbosity) > 0 }

// Pool owns a slice of per-worker random sources, indexed by ThreadID,
// so that parallel tasks can draw random numbers without contention.
type Pool struct {
	rng []paddedRand
}

// NewPool builds a pool sized to n workers (n <= 0 uses MaxThreads()),
// each with its own seeded, cache-line-padded RNG slot.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = MaxThreads()
	}
	p := &Pool{rng: make([]paddedRand, n)}
	seed := time.Now().UnixNano()
	for i := range p.rng {
		p.rng[i].r = rand.New(rand.NewSource(seed + int64(i)*2654435761))
	}
	return p
}

// Rand returns the RNG dedicated to worker threadID. Safe to call
// concurrently as long as each threadID is only ever used by one worker.
func (p *Pool) Rand(threadID int) *rand.Rand {
	return p.rng[threadID%len(p.rng)].r
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.rng) }

var defaultPool = NewPool(0)

// Default returns the package-level pool sized to MaxThreads(), used by
// Run/RunStop when no explicit pool is threaded through.
func Default() *Pool { return defaultPool }
