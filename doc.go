// Package nsgif implements a progressive, animated GIF image decoder.
//
// Given a byte buffer holding GIF87a/GIF89a data — possibly supplied
// incrementally as more bytes arrive — it produces an ordered sequence of
// decoded frames as 32-bit RGBA pixel buffers, plus per-frame timing and the
// animation's loop count. The package does not write GIFs, does not sleep
// for frame timing, and does not do any file or network I/O: those are left
// to the caller.
//
// The decoder composites frames in an internal RGBA canvas and, after each
// frame decode, copies the result into a pixel buffer it obtains from a
// client-supplied Callbacks implementation, so embedding programs can back
// the visible canvas with whatever image type (or hardware surface) they
// already use.
//
// Basic usage:
//
//	dec, err := nsgif.Create(myCallbacks)
//	...
//	result, err := dec.DataScan(data)
//	...
//	rect, delayCS, idx, result, err := dec.FramePrepare()
//	...
//	bitmap, result, err := dec.FrameDecode(idx)
//	...
//	dec.Destroy()
package nsgif
