// Package edt computes signed Euclidean distance transforms of a binary
// mask image via fast marching, grounded on the connectivity tables of
// original_source/src/image/image_morphological.h generalised from the
// original's sweep-pass solver to a min-heap arrival-time solve.
package edt

import (
	"container/heap"
	"math"

	"github.com/nibrary/nibrary/image"
)

type item struct {
	idx  int64
	dist float64
}

type priorityQueue []item

func (p priorityQueue) Len() int            { return len(p) }
func (p priorityQueue) Less(i, j int) bool  { return p[i].dist < p[j].dist }
func (p priorityQueue) Swap(i, j int)       { p[i], p[j] = p[j], p[i] }
func (p *priorityQueue) Push(x interface{}) { *p = append(*p, x.(item)) }
func (p *priorityQueue) Pop() interface{} {
	old := *p
	n := len(old)
	it := old[n-1]
	*p = old[:n-1]
	return it
}

// SignedDistance computes a signed Euclidean distance transform of mask
// (nonzero is "inside", zero is "outside"), negative inside and
// positive outside, in world units scaled by mask.PixDims[0]. conn
// selects the marching neighbourhood (spec.md §4.7).
func SignedDistance[T image.Number](mask *image.Image[T], conn image.Connectivity) *image.Image[float32] {
	out := image.CreateFromTemplate[float32](mask, false)
	n := out.NumEl()

	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	inside := func(i int64) bool { return mask.Data[i] != 0 }
	offsets := image.NeighbourOffsets(conn)
	scale := mask.PixDims[0]

	neighbour := func(idx int64, o [3]int64) (int64, bool) {
		sub := mask.Ind2sub(idx)
		ni, nj, nk := sub[0]+o[0], sub[1]+o[1], sub[2]+o[2]
		if !mask.InBounds3(ni, nj, nk) {
			return 0, false
		}
		return mask.Sub2ind([image.NDIMS]int64{ni, nj, nk, 0, 0, 0, 0}), true
	}

	pq := &priorityQueue{}
	heap.Init(pq)

	// every voxel with a neighbour on the other side of the mask starts at
	// the step length to that neighbour; marching then stays on its own side.
	for idx := int64(0); idx < n; idx++ {
		isIn := inside(idx)
		for _, o := range offsets {
			nidx, ok := neighbour(idx, o)
			if ok && inside(nidx) != isIn {
				step := math.Sqrt(float64(o[0]*o[0]+o[1]*o[1]+o[2]*o[2])) * scale
				if step < dist[idx] {
					dist[idx] = step
				}
			}
		}
		if !math.IsInf(dist[idx], 1) {
			heap.Push(pq, item{idx: idx, dist: dist[idx]})
		}
	}

	for pq.Len() > 0 {
		it := heap.Pop(pq).(item)
		if it.dist > dist[it.idx] {
			continue
		}
		for _, o := range offsets {
			nidx, ok := neighbour(it.idx, o)
			if !ok || inside(nidx) != inside(it.idx) {
				continue
			}
			step := math.Sqrt(float64(o[0]*o[0]+o[1]*o[1]+o[2]*o[2])) * scale
			nd := dist[it.idx] + step
			if nd < dist[nidx] {
				dist[nidx] = nd
				heap.Push(pq, item{idx: nidx, dist: nd})
			}
		}
	}

	for idx := int64(0); idx < n; idx++ {
		d := dist[idx]
		if math.IsInf(d, 1) {
			d = 0
		}
		if inside(idx) {
			out.Data[idx] = float32(-d)
		} else {
			out.Data[idx] = float32(d)
		}
	}
	return out
}
