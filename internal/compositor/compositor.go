// Package compositor implements the disposal/restore state machine that
// turns one frame's decoded pixels into a full-canvas RGBA image, honouring
// transparency, disposal methods, interlacing, and clipping against the
// canvas, whose size is fixed when the Compositor is created.
package compositor

import (
	"encoding/binary"
	"errors"

	"github.com/tenox7/nsgif/internal/container"
	"github.com/tenox7/nsgif/internal/lzw"
)

// ErrTruncatedImage is returned when a frame's LZW stream ends before the
// canvas rectangle it declares is fully decoded. Rows already painted are
// left as-is; this mirrors a recoverable, not fatal, stream defect.
var ErrTruncatedImage = errors.New("compositor: LZW stream ended before frame was fully decoded")

// Canvas is the materialised RGBA pixel buffer, row-major, origin top-left.
type Canvas struct {
	Width, Height int
	Pix           []uint32
}

// NewCanvas allocates a canvas cleared to the transparent sentinel.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, Pix: make([]uint32, w*h)}
}

func (c *Canvas) clear() {
	for i := range c.Pix {
		c.Pix[i] = 0
	}
}

func (c *Canvas) fillRect(x, y, w, h int, color uint32) {
	x0, y0, x1, y1 := clipRect(x, y, w, h, c.Width, c.Height)
	for yy := y0; yy < y1; yy++ {
		row := yy * c.Width
		for xx := x0; xx < x1; xx++ {
			c.Pix[row+xx] = color
		}
	}
}

func clipRect(x, y, w, h, cw, ch int) (x0, y0, x1, y1 int) {
	x0, y0 = x, y
	x1, y1 = x+w, y+h
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > cw {
		x1 = cw
	}
	if y1 > ch {
		y1 = ch
	}
	if x0 > x1 {
		x0 = x1
	}
	if y0 > y1 {
		y0 = y1
	}
	return
}

type rect struct{ X, Y, W, H int }

// Compositor holds the canvas plus the disposal bookkeeping needed to paint
// frames in any order a caller chooses to decode them, matching frame_decode
// in the façade: calling it with index 0 always resets to a fresh canvas,
// while any later index inspects the disposal of whichever frame was most
// recently materialised.
type Compositor struct {
	canvas     *Canvas
	background uint32

	decodedFrame int // index of the currently materialised frame, or -1

	lastRect        rect
	lastDisposal    container.Disposal
	lastTransparent bool

	snapshot    []byte // pool-backed, width*height*4 bytes, little-endian RGBA
	snapshotSet bool
}

// New creates a compositor over a canvas of the given dimensions. width and
// height are expected to already be frozen (the container parser stops
// growing them once the first frame commits).
func New(width, height int, background uint32) *Compositor {
	return &Compositor{
		canvas:       NewCanvas(width, height),
		background:   background,
		decodedFrame: -1,
	}
}

// Canvas returns the live canvas buffer (not a copy).
func (c *Compositor) Canvas() *Canvas { return c.canvas }

// DecodedFrame returns the index of the frame currently materialised in the
// canvas, or -1 if none has been painted yet.
func (c *Compositor) DecodedFrame() int { return c.decodedFrame }

// DecodeFrame paints frame idx's pixels onto the canvas. rec describes the
// frame (from container.Parser.Frames), palette is the colour table already
// resolved by the caller (rec.LocalPalette if set, otherwise the global
// table), and data is the full source buffer the container offsets index
// into.
func (c *Compositor) DecodeFrame(idx int, rec container.FrameRecord, palette []uint32, data []byte) error {
	transparencyIndex := container.NoTransparency
	if rec.Transparent {
		transparencyIndex = rec.TransparencyIndex
	}

	c.applyPrePaintDisposal(idx)

	if rec.Disposal == container.DisposalRestorePrevious {
		c.snapshotCanvas()
	}

	var err error
	if c.isSimplePath(rec) {
		err = c.paintSimple(rec, palette, transparencyIndex, data)
	} else {
		err = c.paintComplex(rec, palette, transparencyIndex, data)
	}

	c.decodedFrame = idx
	c.lastRect = rect{rec.X, rec.Y, rec.W, rec.H}
	c.lastDisposal = rec.Disposal
	c.lastTransparent = rec.Transparent
	return err
}

// applyPrePaintDisposal runs the cleanup step that happens before frame idx
// is painted: a full reset when idx is the first frame or nothing has been
// decoded yet, otherwise the disposal action recorded for whichever frame
// was last materialised.
func (c *Compositor) applyPrePaintDisposal(idx int) {
	if idx == 0 || c.decodedFrame < 0 {
		c.canvas.clear()
		c.snapshotSet = false
		return
	}

	switch c.lastDisposal {
	case container.DisposalRestoreBackground:
		c.fillLastRectBackground()
	case container.DisposalRestorePrevious:
		if !c.snapshotSet {
			// No snapshot is held; fall back to the
			// restore-background behaviour.
			c.fillLastRectBackground()
			return
		}
		c.restoreSnapshot(c.lastRect)
	}
}

func (c *Compositor) fillLastRectBackground() {
	bg := c.background
	if c.lastTransparent {
		bg = 0
	}
	c.canvas.fillRect(c.lastRect.X, c.lastRect.Y, c.lastRect.W, c.lastRect.H, bg)
}

func (c *Compositor) isSimplePath(rec container.FrameRecord) bool {
	return !rec.Interlaced && rec.X == 0 && rec.W == c.canvas.Width
}

func (c *Compositor) paintSimple(rec container.FrameRecord, palette []uint32, transparencyIndex int, data []byte) error {
	dec, err := lzw.NewMapped(data, rec.LZWOffset, rec.MinCodeSize, transparencyIndex, palette)
	if err != nil {
		return err
	}

	start := rec.Y * c.canvas.Width
	end := start + rec.W*rec.H
	if start > len(c.canvas.Pix) {
		start = len(c.canvas.Pix)
	}
	if end > len(c.canvas.Pix) {
		end = len(c.canvas.Pix)
	}
	dst := c.canvas.Pix[start:end]

	written, _, err := dec.DecodeMapped(dst, len(dst))
	if err != nil {
		return err
	}
	if written < len(dst) {
		return ErrTruncatedImage
	}
	return nil
}

// paintComplex handles frames needing per-pixel translation: interlaced
// frames, and frames offset or narrower than the canvas width.
func (c *Compositor) paintComplex(rec container.FrameRecord, palette []uint32, transparencyIndex int, data []byte) error {
	dec, err := lzw.New(data, rec.LZWOffset, rec.MinCodeSize)
	if err != nil {
		return err
	}

	rows := rowOrder(rec.H, rec.Interlaced)

	// Once every row that lands inside the canvas has been painted, the rest
	// of the LZW stream is left undecoded.
	inCanvas := 0
	for _, r := range rows {
		if y := rec.Y + r; y >= 0 && y < c.canvas.Height {
			inCanvas++
		}
	}

	var pending []byte
	readRow := func(n int) ([]byte, error) {
		for len(pending) < n {
			out, status, derr := dec.Decode()
			if derr != nil {
				return nil, derr
			}
			if status != lzw.StatusOK {
				return nil, ErrTruncatedImage
			}
			pending = append(pending, out...)
		}
		row := pending[:n]
		pending = pending[n:]
		return row, nil
	}

	for _, r := range rows {
		if inCanvas == 0 {
			break
		}
		indices, rerr := readRow(rec.W)
		if rerr != nil {
			return rerr
		}

		canvasY := rec.Y + r
		if canvasY < 0 || canvasY >= c.canvas.Height {
			continue
		}
		inCanvas--
		rowBase := canvasY * c.canvas.Width
		for x, px := range indices {
			canvasX := rec.X + x
			if canvasX < 0 || canvasX >= c.canvas.Width {
				continue
			}
			if int(px) == transparencyIndex || int(px) >= len(palette) {
				continue
			}
			c.canvas.Pix[rowBase+canvasX] = palette[px]
		}
	}
	return nil
}

// rowOrder returns the sequence of destination row offsets (within the
// frame) in the order the LZW stream delivers them: top-to-bottom for a
// progressive frame, four interleaved passes for an interlaced one.
func rowOrder(h int, interlaced bool) []int {
	if !interlaced {
		rows := make([]int, h)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}

	offsets := [4]int{0, 4, 2, 1}
	strides := [4]int{8, 8, 4, 2}
	rows := make([]int, 0, h)
	for pass := 0; pass < 4; pass++ {
		for row := offsets[pass]; row < h; row += strides[pass] {
			rows = append(rows, row)
		}
	}
	return rows
}

func (c *Compositor) snapshotCanvas() {
	need := c.canvas.Width * c.canvas.Height * 4
	if cap(c.snapshot) < need {
		if c.snapshot != nil {
			putSnapshot(c.snapshot)
		}
		c.snapshot = getSnapshot(need)
	}
	c.snapshot = c.snapshot[:need]
	for i, px := range c.canvas.Pix {
		binary.LittleEndian.PutUint32(c.snapshot[i*4:], px)
	}
	c.snapshotSet = true
}

func (c *Compositor) restoreSnapshot(r rect) {
	if !c.snapshotSet {
		return
	}
	x0, y0, x1, y1 := clipRect(r.X, r.Y, r.W, r.H, c.canvas.Width, c.canvas.Height)
	for y := y0; y < y1; y++ {
		row := y * c.canvas.Width
		for x := x0; x < x1; x++ {
			i := row + x
			c.canvas.Pix[i] = binary.LittleEndian.Uint32(c.snapshot[i*4:])
		}
	}
}

// Release returns pooled buffers. Callers that discard a Compositor rather
// than letting it be garbage collected should call this first.
func (c *Compositor) Release() {
	if c.snapshot != nil {
		putSnapshot(c.snapshot)
		c.snapshot = nil
	}
}

// Reset rewinds the disposal bookkeeping so the next DecodeFrame call clears
// the canvas from scratch, as if nothing had been painted yet. It does not
// itself touch canvas pixels; applyPrePaintDisposal does that the next time
// DecodeFrame(0) (or any index, since decodedFrame < 0) runs.
func (c *Compositor) Reset() {
	c.decodedFrame = -1
	c.snapshotSet = false
}
