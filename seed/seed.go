// Package seed implements the seeder strategies of spec.md §4.8: a small
// closed set of point (and optional direction) generators over a voxel
// mask, a voxel PVF, a surface interior, a surface, a sphere, or an
// explicit list, behind one Strategy interface rather than a class
// hierarchy, per the "small closed set" design note.
package seed

import (
	"sync/atomic"

	"github.com/nibrary/nibrary/math/lin"
)

// Status reports the outcome of a single GetSeed call.
type Status int

const (
	OK Status = iota
	LimitReached
	Empty
	Failed
)

// Strategy produces seed points for tractography and other clients.
// point is always populated on OK; dir is populated only by strategies
// that can derive a direction (interpolated surface vertex normals,
// explicit lists) and
// only when the caller passes a non-nil dir.
type Strategy interface {
	GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status
}

// budget enforces a shared count limit across concurrently calling
// threads; limit<=0 means unlimited.
type budget struct {
	limit int64
	taken int64
}

func (b *budget) take() Status {
	if b.limit <= 0 {
		return OK
	}
	if atomic.AddInt64(&b.taken, 1) > b.limit {
		return LimitReached
	}
	return OK
}
