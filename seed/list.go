package seed

import (
	"sync/atomic"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// listSeeder iterates a caller-supplied sequence of points (and optional
// directions), per spec.md §4.8's list strategy. Safe for concurrent
// callers: each index is handed out to exactly one GetSeed call.
type listSeeder struct {
	points []lin.V3
	dirs   []lin.V3
	next   int64
}

// NewList builds a Strategy replaying points in order, one per GetSeed
// call. dirs, if non-nil, must have one entry per point.
func NewList(points []lin.V3, dirs []lin.V3) (Strategy, error) {
	if len(points) == 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewList", "point list is empty")
	}
	if dirs != nil && len(dirs) != len(points) {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewList", "dir list length must match point list")
	}
	return &listSeeder{points: points, dirs: dirs}, nil
}

func (s *listSeeder) GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status {
	i := atomic.AddInt64(&s.next, 1) - 1
	if i >= int64(len(s.points)) {
		return LimitReached
	}
	*point = s.points[i]
	if s.dirs != nil && dir != nil {
		*dir = s.dirs[i]
	}
	return OK
}
