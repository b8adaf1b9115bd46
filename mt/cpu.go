package mt

import (
	"math/rand"

	"golang.org/x/sys/cpu"
)

// paddedRand pads a per-worker RNG so adjacent slice entries don't share
// a cache line; under heavy seed-generation workloads (the seeder
// package's per-thread RNGs draw on every task) false sharing between
// neighbouring workers' RNG state measurably hurts throughput.
type paddedRand struct {
	r *rand.Rand
	_ cpu.CacheLinePad
}
