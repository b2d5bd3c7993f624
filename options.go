package nsgif

import "log/slog"

// Option configures a Decoder at construction time. The idiomatic Go shape
// for optional constructor parameters, used in place of the teacher's
// non-variadic NewParser: Create remains a one-line call for ordinary
// callers, with WithLogger/WithMaxFrames available when they're needed.
type Option func(*Decoder)

// WithLogger overrides the decoder's diagnostic logger (default
// slog.Default()). Nothing on the decode path depends on a logger being
// configured; a nil logger passed here is replaced with slog.Default()
// rather than left nil, since logging must never be load-bearing.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMaxFrames overrides the default frame-count safety cap
// (container.MaxFrames). Mainly useful for tests that want to exercise the
// ResultFrameCount path without constructing a 4096-frame GIF.
func WithMaxFrames(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxFrames = n
		}
	}
}
