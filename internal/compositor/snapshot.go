package compositor

import "sync"

// snapshotPool recycles the previous-frame snapshot buffer across Compositor
// lifetimes. Unlike a general-purpose allocator pool, it needs no size
// classes: a Compositor only ever asks for one buffer, sized to its
// (frozen) canvas in width*height*4 bytes, and reuses it for the rest of
// its life, so a single untyped pool with a grow-on-miss Get is all the
// restore-previous snapshot path exercises.
var snapshotPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0)
		return &b
	},
}

// getSnapshot borrows a byte slice of at least size bytes from the pool.
// The returned slice has length size; its backing array may be larger if
// a prior, bigger snapshot was recycled into the pool.
func getSnapshot(size int) []byte {
	bp := snapshotPool.Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		return make([]byte, size)
	}
	return b[:size]
}

// putSnapshot returns a snapshot buffer to the pool for reuse by the next
// Compositor that needs one.
func putSnapshot(b []byte) {
	snapshotPool.Put(&b)
}
