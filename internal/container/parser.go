package container

import "log/slog"

// ParseStatus indicates the result of an incremental Scan call.
type ParseStatus int

const (
	ParseOK           ParseStatus = iota
	ParseNeedMoreData             // not enough data yet; append and retry
	ParseError                    // unrecoverable structural error
)

// Disposal is the action applied to a frame's region before the next frame
// is painted.
type Disposal int

const (
	DisposalUnspecified Disposal = iota
	DisposalNone
	DisposalRestoreBackground
	DisposalRestorePrevious
)

// FrameRecord holds everything the compositor needs to paint one frame,
// resolved once during the scanning pass (see the "two-pass re-parse"
// design note: this implementation caches results during the scan rather
// than replaying container bytes from a stored offset).
type FrameRecord struct {
	Offset int // byte offset of the frame's image separator; its extensions lie before it

	X, Y, W, H int
	Interlaced bool

	Display bool // true once the image-data sub-block chain is known complete
	Decoded bool // true once composited, including a best-effort decode that reported an error

	OpaqueKnown bool // true once Opaque has been probed for this frame
	Opaque      bool // cached result of the client's opacity probe

	Disposal          Disposal
	DelayCS           int
	Transparent       bool
	TransparencyIndex int // NoTransparency when Transparent is false

	LocalPalette []uint32 // nil if the frame uses the global palette
	MinCodeSize  int
	LZWOffset    int // byte offset of the first LZW sub-block length byte
}

// Parser performs incremental, resumable parsing of a GIF byte stream. Scan
// is the only method that changes the parsed structure; the root package
// writes the per-frame Decoded, OpaqueKnown and Opaque fields itself.
type Parser struct {
	data   []byte
	cursor int // confirmed-parsed position; never rewound

	headerParsed bool
	lsdParsed    bool
	lsd          LogicalScreenDescriptor

	globalPalette []uint32

	canvasFrozen bool // true once the first frame has committed

	maxFrames int // safety clamp against pathological inputs; see SetMaxFrames

	BackgroundColor uint32
	LoopCount       int // default 1; LoopInfinite for NETSCAPE2.0 loop=0

	Frames            []FrameRecord
	FrameCount        int // frames whose pixel data is known complete
	FrameCountPartial int // frames whose header has been parsed

	pendingGC    graphicControl
	hasPendingGC bool

	done bool // trailer seen
}

// NewParser creates an empty parser with no data attached yet.
func NewParser() *Parser {
	return &Parser{LoopCount: 1, maxFrames: MaxFrames}
}

// logStructuralError reports an unrecoverable parse error at the package's
// default slog logger. These are diagnostic only: the caller always learns
// of the same failure through the returned (ParseError, err) pair, so a
// missing or discarded logger never changes decode behaviour.
func (p *Parser) logStructuralError(where string, err error) {
	slog.Debug("container: structural parse error", "where", where, "cursor", p.cursor, "err", err)
}

// SetMaxFrames overrides the frame-count safety clamp (default MaxFrames).
// Exposed so the façade's WithMaxFrames option can shrink it for tests
// without a production caller ever needing to touch it.
func (p *Parser) SetMaxFrames(n int) { p.maxFrames = n }

// Width and Height return the current (possibly still-growing) canvas size.
func (p *Parser) Width() int  { return p.lsd.Width }
func (p *Parser) Height() int { return p.lsd.Height }

// GlobalPalette returns the resolved global colour table (including the
// built-in default when the GIF declares none).
func (p *Parser) GlobalPalette() []uint32 { return p.globalPalette }

// BackgroundIndex returns the background colour index from the LSD.
func (p *Parser) BackgroundIndex() byte { return p.lsd.BackgroundIndex }

// Scan attaches data (which must be a prefix-extension of any previously
// scanned buffer) and resumes parsing from the stored cursor toward the
// trailer or end of input.
func (p *Parser) Scan(data []byte) (ParseStatus, error) {
	p.data = data
	if p.done {
		return ParseOK, nil
	}

	if !p.headerParsed {
		_, n, ok, err := parseHeader(p.data[p.cursor:])
		if err != nil {
			p.logStructuralError("header", err)
			return ParseError, err
		}
		if !ok {
			return ParseNeedMoreData, nil
		}
		p.cursor += n
		p.headerParsed = true
	}

	if !p.lsdParsed {
		lsd, n, ok, err := parseLSD(p.data[p.cursor:])
		if err != nil {
			p.logStructuralError("logical screen descriptor", err)
			return ParseError, err
		}
		if !ok {
			return ParseNeedMoreData, nil
		}
		p.lsd = lsd
		p.cursor += n
		p.lsdParsed = true

		if lsd.GlobalTablePresent {
			// Deferred until the table bytes are parsed below.
		} else {
			p.globalPalette = defaultColourTable()
			p.BackgroundColor = p.globalPalette[0]
		}
	}

	if p.lsd.GlobalTablePresent && p.globalPalette == nil {
		table, n, ok := parseColourTable(p.data[p.cursor:], p.lsd.GlobalTableSize)
		if !ok {
			return ParseNeedMoreData, nil
		}
		p.globalPalette = table
		p.cursor += n
		if int(p.lsd.BackgroundIndex) < len(table) {
			p.BackgroundColor = table[p.lsd.BackgroundIndex]
		} else {
			p.BackgroundColor = table[0]
		}
	}

	for {
		if p.cursor >= len(p.data) {
			return ParseNeedMoreData, nil
		}
		switch p.data[p.cursor] {
		case Trailer:
			p.cursor++
			p.done = true
			return ParseOK, nil

		case ExtensionIntroducer:
			status, err := p.scanExtension()
			if status != ParseOK {
				return status, err
			}

		case ImageSeparator:
			status, err := p.scanFrame()
			if status != ParseOK {
				return status, err
			}

		default:
			p.logStructuralError("block introducer", ErrMissingImageSep)
			return ParseError, ErrMissingImageSep
		}
	}
}

// scanExtension parses one extension block (0x21 already seen at cursor)
// and folds graphic-control / loop-count results into parser state.
func (p *Parser) scanExtension() (ParseStatus, error) {
	n, gc, hasGC, loopCount, hasLoop, ok, err := parseExtension(p.data[p.cursor+1:])
	if err != nil {
		p.logStructuralError("extension block", err)
		return ParseError, err
	}
	if !ok {
		return ParseNeedMoreData, nil
	}
	if hasGC {
		p.pendingGC = gc
		p.hasPendingGC = true
	}
	if hasLoop {
		p.LoopCount = loopCount
	}
	p.cursor += 1 + n
	return ParseOK, nil
}

// scanFrame parses one image descriptor, its optional local colour table,
// and its LZW header + sub-block chain (0x2C already seen at cursor).
func (p *Parser) scanFrame() (ParseStatus, error) {
	start := p.cursor
	body := p.data[start+1:]
	if len(body) < 9 {
		return ParseNeedMoreData, nil
	}
	x := readLE16(body[0:2])
	y := readLE16(body[2:4])
	w := readLE16(body[4:6])
	h := readLE16(body[6:8])
	flags := body[8]
	pos := 9

	var local []uint32
	if flags&0x80 != 0 {
		size := 1 << (uint(flags&0x07) + 1)
		table, n, ok := parseColourTable(body[pos:], size)
		if !ok {
			return ParseNeedMoreData, nil
		}
		local = table
		pos += n
	}

	if pos >= len(body) {
		return ParseNeedMoreData, nil
	}
	minCodeSize := int(body[pos])
	pos++
	if minCodeSize > MaxLZWCodeSize {
		p.logStructuralError("image descriptor", ErrBadMinCodeSize)
		return ParseError, ErrBadMinCodeSize
	}

	lzwOffset := start + 1 + pos
	chainLen, chainOK := skipSubBlocks(body[pos:])

	rec := FrameRecord{
		Offset:       start,
		X:            x,
		Y:            y,
		W:            w,
		H:            h,
		Interlaced:   flags&0x40 != 0,
		LocalPalette: local,
		MinCodeSize:  minCodeSize,
		LZWOffset:    lzwOffset,
	}
	isNewFrame := len(p.Frames) == 0 ||
		p.Frames[len(p.Frames)-1].Display ||
		p.Frames[len(p.Frames)-1].Offset != start

	switch {
	case p.hasPendingGC:
		rec.Disposal = p.pendingGC.disposal
		rec.DelayCS = p.pendingGC.delayCS
		rec.Transparent = p.pendingGC.transparent
		rec.TransparencyIndex = p.pendingGC.transparencyIndex
	case !isNewFrame:
		// Rescanning a frame whose chain was truncated last time: the
		// graphic control extension was already consumed on the first
		// attempt, so carry its fields over from the existing record.
		old := p.Frames[len(p.Frames)-1]
		rec.Disposal = old.Disposal
		rec.DelayCS = old.DelayCS
		rec.Transparent = old.Transparent
		rec.TransparencyIndex = old.TransparencyIndex
	default:
		rec.TransparencyIndex = NoTransparency
	}

	if isNewFrame {
		if p.FrameCountPartial >= p.maxFrames {
			p.logStructuralError("image descriptor", ErrTooManyFrames)
			return ParseError, ErrTooManyFrames
		}
		p.Frames = append(p.Frames, rec)
		p.FrameCountPartial++
	} else {
		p.Frames[len(p.Frames)-1] = rec
	}
	p.hasPendingGC = false

	if !chainOK {
		return ParseNeedMoreData, nil
	}

	idx := len(p.Frames) - 1
	p.Frames[idx].Display = true
	p.FrameCount++

	if !p.canvasFrozen {
		if x+w > p.lsd.Width {
			p.lsd.Width = x + w
		}
		if y+h > p.lsd.Height {
			p.lsd.Height = y + h
		}
	}
	p.canvasFrozen = true

	p.cursor = lzwOffset + chainLen
	return ParseOK, nil
}
