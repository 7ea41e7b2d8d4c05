package callgraph

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// reachSet tracks entry-point reachability over node indices. It is written
// only during Build; afterwards the bitmap is read-only and safe to share
// across the per-function analysis goroutines.
type reachSet struct {
	bitmap *roaring.Bitmap
}

func newReachSet() *reachSet {
	return &reachSet{bitmap: roaring.New()}
}

func (r *reachSet) set(index uint32) {
	r.bitmap.Add(index)
}

func (r *reachSet) isSet(index uint32) bool {
	return r.bitmap.Contains(index)
}

func (r *reachSet) count() uint64 {
	return r.bitmap.GetCardinality()
}
