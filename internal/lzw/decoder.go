package lzw

import "errors"

// Status reports the outcome of a single Decode/DecodeMapped call.
type Status int

const (
	// StatusOK means the output slice/buffer holds new bytes and the
	// caller may call Decode again for more.
	StatusOK Status = iota
	// StatusEndOfData means the EOI code was read, or the sub-block chain
	// terminator was reached; decoding of this stream is complete.
	StatusEndOfData
	// StatusNoData means the sub-block chain ran out of bytes mid-code;
	// the caller should append more source bytes and retry.
	StatusNoData
)

// Sentinel errors for the per-frame error taxonomy (see internal/container
// and the root package for how these are translated to public results).
var (
	ErrBadMinCodeSize = errors.New("lzw: minimum code size must be < 12")
	ErrBadInitialCode = errors.New("lzw: first code after clear exceeds dictionary size")
	ErrBadCode        = errors.New("lzw: code exceeds next assignable code")
	ErrEOIUnexpected  = errors.New("lzw: decode continued past end-of-information")
)

const maxCodes = 4096

// entry is one dictionary slot: the code it extends (prefix), the byte it
// appends (suffix), and the total decoded length of its chain.
type entry struct {
	prefix int32
	suffix byte
	length int32
}

// Decoder decodes a GIF LZW stream (scalar or colour-mapped) from a
// sub-block chain embedded in a byte slice.
type Decoder struct {
	br *bitReader

	minCodeSize int
	clearCode   int
	eoiCode     int
	firstCode   int

	width    int // current code width in bits
	nextCode int // next code to be assigned

	dict  [maxCodes]entry
	stack [maxCodes]byte // scratch for walking a code's chain backward

	prevCode  int  // previous code read (-1 before the first real code)
	prevFirst byte // first output byte of the previous code's expansion
	sawClear  bool

	eoiSeen bool

	// mapped-decode only
	mapped      bool
	palette     []uint32
	transparent int // transparency index, or a value > 0xff for "none"
}

// New creates a Decoder producing raw dictionary index bytes.
func New(src []byte, offset int, minCodeSize int) (*Decoder, error) {
	return newDecoder(src, offset, minCodeSize, false, nil, 0x100)
}

// NewMapped creates a Decoder that resolves each index through palette,
// leaving transparent pixels in the destination untouched.
func NewMapped(src []byte, offset int, minCodeSize int, transparencyIndex int, palette []uint32) (*Decoder, error) {
	return newDecoder(src, offset, minCodeSize, true, palette, transparencyIndex)
}

func newDecoder(src []byte, offset int, minCodeSize int, mapped bool, palette []uint32, transparencyIndex int) (*Decoder, error) {
	if minCodeSize < 2 || minCodeSize >= 12 {
		return nil, ErrBadMinCodeSize
	}
	d := &Decoder{
		br:          newBitReader(src, offset),
		minCodeSize: minCodeSize,
		clearCode:   1 << uint(minCodeSize),
		mapped:      mapped,
		palette:     palette,
		transparent: transparencyIndex,
	}
	d.eoiCode = d.clearCode + 1
	d.firstCode = d.clearCode + 2
	d.resetDict()
	return d, nil
}

// resetDict restores the dictionary to its just-cleared state: codes
// 0..clearCode-1 map to themselves, width resets to minCodeSize+1.
func (d *Decoder) resetDict() {
	for i := 0; i < d.clearCode; i++ {
		d.dict[i] = entry{prefix: -1, suffix: byte(i), length: 1}
	}
	d.nextCode = d.firstCode
	d.width = d.minCodeSize + 1
	d.prevCode = -1
	d.sawClear = true
}

// expand walks code c's prefix chain backward into d.stack and returns the
// slice (in forward order) of decoded bytes, plus the first byte emitted.
func (d *Decoder) expand(c int) ([]byte, byte) {
	n := 0
	for c >= 0 {
		e := d.dict[c]
		d.stack[len(d.stack)-1-n] = e.suffix
		n++
		c = int(e.prefix)
	}
	out := d.stack[len(d.stack)-n:]
	return out, out[0]
}

// readNextCode pulls one code from the bit reader and applies clear/EOI
// handling, returning the raw dictionary code for a data code, or reporting
// status for control codes / stream exhaustion.
func (d *Decoder) readNextCode() (code int, status Status, err error) {
	c, ok, eoc := d.br.readCode(d.width)
	if !ok {
		if eoc {
			return 0, StatusEndOfData, nil
		}
		return 0, StatusNoData, nil
	}
	if d.eoiSeen {
		return 0, StatusEndOfData, ErrEOIUnexpected
	}
	if c == d.clearCode {
		d.resetDict()
		return d.readNextCode()
	}
	if c == d.eoiCode {
		d.eoiSeen = true
		return 0, StatusEndOfData, nil
	}
	return c, StatusOK, nil
}

// step decodes exactly one code into a byte run, advancing dictionary state.
// Returns the decoded bytes (valid until the next call), status, and error.
func (d *Decoder) step() (out []byte, status Status, err error) {
	code, status, err := d.readNextCode()
	if status != StatusOK || err != nil {
		return nil, status, err
	}

	if d.prevCode == -1 {
		// First code after a clear must already be in the dictionary: only
		// the literal byte codes (< clearCode) are populated at this point.
		if code >= d.nextCode {
			return nil, StatusOK, ErrBadInitialCode
		}
		out, first := d.expand(code)
		d.prevCode = code
		d.prevFirst = first
		return out, StatusOK, nil
	}

	var bytes []byte
	var first byte
	switch {
	case code < d.nextCode:
		bytes, first = d.expand(code)
	case code == d.nextCode:
		// KwKwK: code for the previous expansion plus its own first byte.
		prevBytes, prevFirst := d.expand(d.prevCode)
		n := len(prevBytes)
		copy(d.stack[len(d.stack)-n-1:len(d.stack)-1], prevBytes)
		d.stack[len(d.stack)-1] = prevFirst
		bytes = d.stack[len(d.stack)-n-1:]
		first = prevFirst
	default:
		return nil, StatusOK, ErrBadCode
	}

	// Add a new dictionary entry for (prevCode, first byte of this code).
	if d.nextCode < maxCodes {
		prevLen := d.dict[d.prevCode].length
		d.dict[d.nextCode] = entry{prefix: int32(d.prevCode), suffix: first, length: prevLen + 1}
		d.nextCode++
		if d.nextCode == (1<<uint(d.width)) && d.width < 12 {
			d.width++
		}
	}

	d.prevCode = code
	d.prevFirst = first
	return bytes, StatusOK, nil
}

// Decode produces the next run of decoded index bytes. The returned slice
// is only valid until the next call to Decode or DecodeMapped.
func (d *Decoder) Decode() ([]byte, Status, error) {
	return d.step()
}

// DecodeMapped decodes up to pixelCap more pixels into dst, resolving each
// index through the palette and skipping over (not overwriting) pixels
// equal to the transparency index. It keeps decoding codes until pixelCap
// pixels have been written or a terminal condition occurs; it does not stop
// at the end of a code's run, and indices of the final run that do not fit
// under pixelCap are dropped.
func (d *Decoder) DecodeMapped(dst []uint32, pixelCap int) (written int, status Status, err error) {
	if !d.mapped {
		return 0, StatusEndOfData, errors.New("lzw: DecodeMapped called on a scalar decoder")
	}
	for written < pixelCap {
		out, st, derr := d.step()
		if derr != nil {
			return written, StatusOK, derr
		}
		if st != StatusOK {
			return written, st, nil
		}
		for _, idx := range out {
			if written >= pixelCap {
				return written, StatusOK, nil
			}
			if int(idx) != d.transparent && int(idx) < len(d.palette) {
				dst[written] = d.palette[idx]
			}
			written++
		}
	}
	return written, StatusOK, nil
}
