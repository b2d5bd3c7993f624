package nsgif

// Bitmap is an opaque handle to a client-owned canvas pixel buffer. The
// decoder never interprets it directly; it is only ever passed back to the
// Callbacks methods that created it.
type Bitmap any

// Callbacks is the narrow interface the decoder uses to allocate and mutate
// the canvas. It mirrors libnsgif's nsgif_bitmap_cb_vt function-pointer
// table, rendered as a Go interface: required methods are enforced by the
// compiler instead of a runtime null-function-pointer check.
type Callbacks interface {
	// Create allocates a bitmap of the given dimensions. GetBuffer on the
	// returned handle must yield width*height*4 zero-initialised bytes.
	Create(width, height int) (Bitmap, error)

	// Destroy releases a bitmap previously returned by Create.
	Destroy(b Bitmap)

	// GetBuffer returns the mutable pixel buffer: R, G, B, A bytes in
	// ascending address order, row-major, origin top-left.
	GetBuffer(b Bitmap) []byte
}

// OpaqueSetter is an optional Callbacks extension the decoder uses to tell
// the client whether the canvas is currently fully opaque. Absence (a
// failed type assertion on the Callbacks value) is equivalent to a no-op.
type OpaqueSetter interface {
	SetOpaque(b Bitmap, opaque bool)
}

// OpaqueTester is an optional Callbacks extension the decoder queries, once
// per frame the first time it is decoded, to learn whether the canvas is
// fully opaque. Absence is equivalent to always returning false.
type OpaqueTester interface {
	TestOpaque(b Bitmap) bool
}

// Modifier is an optional Callbacks extension the decoder calls after every
// successful or best-effort frame paint, so the client can invalidate
// caches, texture uploads, and the like. Absence is equivalent to a no-op.
type Modifier interface {
	Modified(b Bitmap)
}
