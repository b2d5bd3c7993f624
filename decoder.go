package nsgif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tenox7/nsgif/internal/compositor"
	"github.com/tenox7/nsgif/internal/container"
)

// noFrame is the "none" sentinel for a frame index, used for decodedFrame
// and nextFrame before anything has been prepared or decoded.
const noFrame = -1

// Rect is a redraw rectangle in canvas coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) union(o Rect) Rect {
	if o.W == 0 || o.H == 0 {
		return r
	}
	if r.W == 0 || r.H == 0 {
		return o
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Info is a read-only snapshot of the animation's properties, as returned by
// GetInfo.
type Info struct {
	Width, Height int
	FrameCount    int
	LoopMax       int // from the NETSCAPE2.0 extension; LoopInfinite for "forever"
	LoopCount     int // number of loop iterations completed so far
}

// LoopInfinite is the sentinel LoopMax value meaning "loop forever",
// surfaced from the NETSCAPE2.0 loop extension's wire value of 0.
const LoopInfinite = container.LoopInfinite

// Decoder is the stateful façade over the container parser, LZW decoder,
// and frame compositor. Operations return a Result alongside an ordinary
// Go error; see the package doc and Result for the contract.
//
// A Decoder is not safe for concurrent use: the public API is strictly
// serial, matching the single-threaded, cooperative control flow described
// in the package spec.
type Decoder struct {
	logger    *slog.Logger
	maxFrames int

	callbacks Callbacks
	bitmap    Bitmap
	destroyed bool

	parser *container.Parser
	comp   *compositor.Compositor
	data   []byte

	decodedFrame int // mirrors comp.DecodedFrame(), kept here before comp exists
	nextFrame    int // index FramePrepare will return next
	loopsPlayed  int

	canvasReady bool
}

// Create allocates a Decoder bound to the given bitmap callbacks. The
// canvas itself is not allocated yet: that waits until DataScan has
// discovered the logical screen descriptor and the first frame commits
// (see container.Parser's canvas-freeze invariant).
func Create(callbacks Callbacks, opts ...Option) (*Decoder, error) {
	if callbacks == nil {
		return nil, ErrNilCallbacks
	}
	d := &Decoder{
		callbacks:    callbacks,
		parser:       container.NewParser(),
		logger:       slog.Default(),
		maxFrames:    container.MaxFrames,
		decodedFrame: noFrame,
		nextFrame:    0,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.parser.SetMaxFrames(d.maxFrames)
	return d, nil
}

// DataScan attaches data (which must be a prefix-extension of any
// previously scanned buffer — the caller guarantees all previously seen
// bytes are unchanged, though the slice header may differ) and resumes
// pass-1 scanning from the stored cursor toward the trailer or end of
// input.
func (d *Decoder) DataScan(data []byte) (Result, error) {
	if d.destroyed {
		return ResultData, ErrAlreadyDestroyed
	}
	d.data = data
	status, err := d.parser.Scan(data)
	switch status {
	case container.ParseOK:
		return ResultOK, nil
	case container.ParseNeedMoreData:
		return ResultEndOfData, nil
	default:
		if errors.Is(err, container.ErrTooManyFrames) {
			d.logger.Debug("nsgif: frame count cap reached", "max", d.maxFrames)
			return ResultFrameCount, err
		}
		d.logger.Debug("nsgif: scan error", "data_len", len(d.data), "err", err)
		return ResultData, fmt.Errorf("nsgif: scanning container: %w", err)
	}
}

// FramePrepare computes which frame should be shown next, given the
// animation's loop budget and the frame last returned by FramePrepare. The
// redraw rectangle is the frame's own redraw rectangle, unioned with the
// previous frame's rectangle when the previous frame's disposal forces a
// background/previous restore (since that area is repainted too).
func (d *Decoder) FramePrepare() (Rect, int, int, Result, error) {
	total := d.parser.FrameCount
	if total == 0 {
		return Rect{}, 0, noFrame, ResultData, ErrNoFrames
	}

	idx := d.nextFrame
	if idx >= total {
		if d.parser.LoopCount != container.LoopInfinite && d.loopsPlayed+1 >= d.parser.LoopCount {
			return Rect{}, 0, total - 1, ResultAnimationEnd, nil
		}
		d.loopsPlayed++
		idx = 0
	}

	rec := d.parser.Frames[idx]
	redraw := Rect{X: rec.X, Y: rec.Y, W: rec.W, H: rec.H}
	if idx > 0 {
		prev := d.parser.Frames[idx-1]
		if prev.Disposal == container.DisposalRestoreBackground || prev.Disposal == container.DisposalRestorePrevious {
			redraw = redraw.union(Rect{X: prev.X, Y: prev.Y, W: prev.W, H: prev.H})
		}
	}

	d.nextFrame = idx + 1
	return redraw, rec.DelayCS, idx, ResultOK, nil
}

// FrameDecode drives the compositor to paint frame index frameIndex into
// the client bitmap, allocating the bitmap on first use. Frame-local
// corruption leaves best-effort pixels in the canvas and is reported as
// ResultDataFrame rather than aborting the call.
func (d *Decoder) FrameDecode(frameIndex int) (Bitmap, Result, error) {
	if d.destroyed {
		return nil, ResultData, ErrAlreadyDestroyed
	}
	if frameIndex < 0 || frameIndex >= d.parser.FrameCountPartial {
		return nil, ResultBadFrame, container.ErrBadFrameIndex
	}
	rec := d.parser.Frames[frameIndex]
	if !rec.Display {
		return nil, ResultFrameDisplay, ErrFrameNotDisplayable
	}

	if err := d.ensureCanvas(); err != nil {
		return nil, ResultOutOfMemory, err
	}

	palette := rec.LocalPalette
	if palette == nil {
		palette = d.parser.GlobalPalette()
	}

	err := d.comp.DecodeFrame(frameIndex, rec, palette, d.data)
	d.decodedFrame = frameIndex
	d.parser.Frames[frameIndex].Decoded = true
	d.syncBitmap()
	d.notifyClient(frameIndex)

	if err != nil {
		d.logger.Debug("nsgif: frame decode recovered", "frame", frameIndex, "offset", rec.Offset, "err", err)
		return d.bitmap, ResultDataFrame, err
	}
	return d.bitmap, ResultOK, nil
}

// ensureCanvas allocates the compositor and the client bitmap the first
// time a frame is about to be painted. Canvas dimensions are frozen by the
// container parser once the first frame record commits, which is always
// true by the time FrameDecode reaches a displayable frame.
func (d *Decoder) ensureCanvas() error {
	if d.canvasReady {
		return nil
	}
	w, h := d.parser.Width(), d.parser.Height()
	bitmap, err := d.callbacks.Create(w, h)
	if err != nil {
		return fmt.Errorf("nsgif: allocating bitmap: %w", err)
	}
	d.bitmap = bitmap
	d.comp = compositor.New(w, h, d.parser.BackgroundColor)
	d.canvasReady = true
	return nil
}

// syncBitmap copies the compositor's canvas (packed uint32 RGBA words)
// into the client's byte buffer. The uint32 packing (R | G<<8 | B<<16 |
// A<<24, from container.parseColourTable) is exactly the little-endian
// byte order GetBuffer's contract requires, so this is a straight
// little-endian store per pixel.
func (d *Decoder) syncBitmap() {
	buf := d.callbacks.GetBuffer(d.bitmap)
	canvas := d.comp.Canvas()
	for i, px := range canvas.Pix {
		binary.LittleEndian.PutUint32(buf[i*4:], px)
	}
}

// notifyClient runs the post-decode opacity probe (the first time frame
// frameIndex itself is decoded, cached on its FrameRecord thereafter) and
// informs the client of that frame's opacity and that the bitmap was
// modified. All three callbacks are optional; their absence (a failed type
// assertion) is a no-op.
func (d *Decoder) notifyClient(frameIndex int) {
	rec := &d.parser.Frames[frameIndex]
	if !rec.OpaqueKnown {
		if tester, ok := d.callbacks.(OpaqueTester); ok {
			rec.Opaque = tester.TestOpaque(d.bitmap)
		}
		rec.OpaqueKnown = true
	}
	if setter, ok := d.callbacks.(OpaqueSetter); ok {
		setter.SetOpaque(d.bitmap, rec.Opaque)
	}
	if modifier, ok := d.callbacks.(Modifier); ok {
		modifier.Modified(d.bitmap)
	}
}

// Reset rewinds decodedFrame, loopCount, and the next-frame-to-prepare
// cursor so the animation replays from the beginning without rescanning
// the source data.
func (d *Decoder) Reset() {
	d.nextFrame = 0
	d.loopsPlayed = 0
	d.decodedFrame = noFrame
	if d.comp != nil {
		d.comp.Reset()
	}
}

// GetInfo returns a read-only snapshot of the animation's properties.
func (d *Decoder) GetInfo() Info {
	return Info{
		Width:      d.parser.Width(),
		Height:     d.parser.Height(),
		FrameCount: d.parser.FrameCount,
		LoopMax:    d.parser.LoopCount,
		LoopCount:  d.loopsPlayed,
	}
}

// Destroy releases all resources the Decoder owns, including the client
// bitmap via Callbacks.Destroy and any pooled compositor buffers. It is
// safe to call after Create alone, after any error return, and after
// successful decodes; it never invokes Callbacks.Create.
func (d *Decoder) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.comp != nil {
		d.comp.Release()
		d.comp = nil
	}
	if d.bitmap != nil {
		d.callbacks.Destroy(d.bitmap)
		d.bitmap = nil
	}
	d.data = nil
}
