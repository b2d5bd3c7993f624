// Package container parses the GIF87a/GIF89a bitstream container: header,
// logical screen descriptor, colour tables, extension blocks, and frame
// (image descriptor) records. It does not decode LZW pixel data itself —
// that is internal/lzw's job — but it locates each frame's payload and
// resolves the palette and disposal metadata that governs how the
// compositor paints it.
package container

import "encoding/binary"

// Block introducer / label bytes.
const (
	ExtensionIntroducer = 0x21
	ImageSeparator      = 0x2C
	Trailer             = 0x3B

	LabelGraphicControl = 0xF9
	LabelComment        = 0xFE
	LabelPlainText      = 0x01
	LabelApplication    = 0xFF
)

// netscapeBlockSize and netscapeID identify the Netscape looping extension.
const (
	netscapeBlockSize = 0x0B
	netscapeID        = "NETSCAPE2.0"
)

// LZW code-size limits (see internal/lzw for the decoder itself).
const (
	MinLZWCodeSize = 2
	MaxLZWCodeSize = 11 // a declared size of 12 is a structural error
)

// MaxFrames is the default safety clamp against pathological inputs that
// declare an unbounded number of frames.
const MaxFrames = 4096

// LoopInfinite is the sentinel loop-count value representing "loop forever"
// (encoded on the wire as a NETSCAPE2.0 loop count of 0).
const LoopInfinite = 1<<16 - 1

// NoTransparency is the sentinel transparency-index value meaning "this
// frame has no transparent colour".
const NoTransparency = 0x100

// readLE16 reads a little-endian uint16.
func readLE16(b []byte) int {
	return int(binary.LittleEndian.Uint16(b))
}

// brokenSize pairs up the "design surface" canvas dimensions that real-world
// encoders sometimes emit as a placeholder; the decoder rewrites these (and
// zero, and anything exceeding maxBrokenDim in either axis) to 1x1 so that
// the first image descriptor can grow the canvas organically instead of
// preserving a bogus fixed size.
type brokenSize struct{ w, h int }

var brokenSizes = []brokenSize{
	{640, 480},
	{640, 512},
	{800, 600},
	{1024, 768},
	{1280, 1024},
	{1600, 1200},
}

const maxBrokenDim = 2048

// isBrokenCanvasSize reports whether (w, h) should be rewritten to (1, 1).
func isBrokenCanvasSize(w, h int) bool {
	if w == 0 || h == 0 {
		return true
	}
	if w > maxBrokenDim || h > maxBrokenDim {
		return true
	}
	for _, bs := range brokenSizes {
		if bs.w == w && bs.h == h {
			return true
		}
	}
	return false
}
