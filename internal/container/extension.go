package container

// graphicControl holds the fields decoded from a 0xF9 graphic control
// extension, pending application to the next image descriptor.
type graphicControl struct {
	disposal          Disposal
	delayCS           int
	transparent       bool
	transparencyIndex int
}

// skipSubBlocks walks a GIF sub-block chain (length byte, payload, repeat)
// starting at data[0] until a zero-length terminator is found. Returns the
// number of bytes consumed including the terminator. ok is false if the
// chain runs past the end of data before terminating.
func skipSubBlocks(data []byte) (consumed int, ok bool) {
	pos := 0
	for {
		if pos >= len(data) {
			return 0, false
		}
		n := int(data[pos])
		pos++
		if n == 0 {
			return pos, true
		}
		if pos+n > len(data) {
			return 0, false
		}
		pos += n
	}
}

// parseExtension dispatches on the extension label byte at data[0] (the
// 0x21 introducer has already been consumed by the caller) and returns the
// number of bytes consumed (label byte through the sub-block terminator).
// gc is populated (and its zero value otherwise) when the extension is a
// graphic control block; loopCount is >= 0 when a NETSCAPE2.0 loop
// extension was recognised.
func parseExtension(data []byte) (consumed int, gc graphicControl, hasGC bool, loopCount int, hasLoop bool, ok bool, err error) {
	if len(data) < 1 {
		return 0, graphicControl{}, false, 0, false, false, nil
	}
	label := data[0]
	body := data[1:]

	switch label {
	case LabelGraphicControl:
		n, gcParsed, parsedOK := parseGraphicControlBody(body)
		if !parsedOK {
			return 0, graphicControl{}, false, 0, false, false, nil
		}
		return 1 + n, gcParsed, true, 0, false, true, nil

	case LabelApplication:
		n, lc, loopOK, bodyOK := parseApplicationBody(body)
		if !bodyOK {
			return 0, graphicControl{}, false, 0, false, false, nil
		}
		return 1 + n, graphicControl{}, false, lc, loopOK, true, nil

	default:
		// Comment (0xFE), plain text (0x01), and any other label are
		// recognised only enough to be skipped: parsed past, never acted
		// upon, per the non-goals for text rendering.
		n, chainOK := skipSubBlocks(body)
		if !chainOK {
			return 0, graphicControl{}, false, 0, false, false, nil
		}
		return 1 + n, graphicControl{}, false, 0, false, true, nil
	}
}

// parseGraphicControlBody parses the 6-byte graphic control block body
// (block size + 4 data bytes + terminator) following the label byte.
func parseGraphicControlBody(body []byte) (consumed int, gc graphicControl, ok bool) {
	// 1 (block size, must be 4) + 4 (data) + 1 (terminator) = 6.
	if len(body) < 6 {
		return 0, graphicControl{}, false
	}
	packed := body[1]
	disposalBits := (packed >> 2) & 0x07
	gc.disposal = disposalFromBits(disposalBits)
	gc.transparent = packed&0x01 != 0
	gc.delayCS = readLE16(body[2:4])
	gc.transparencyIndex = NoTransparency
	if gc.transparent {
		gc.transparencyIndex = int(body[4])
	}
	if body[5] != 0 {
		// Malformed, but the sub-block chain logic below still finds the
		// real terminator if there happens to be extra vendor data;
		// graphic control blocks are defined to carry none, so treat a
		// nonzero terminator byte as the start of a (possibly empty)
		// continuation chain.
		n, chainOK := skipSubBlocks(body[5:])
		if !chainOK {
			return 0, graphicControl{}, false
		}
		return 5 + n, gc, true
	}
	return 6, gc, true
}

// disposalFromBits maps the 3-bit disposal field to the Disposal enum.
// Value 4 is folded into restore-previous (value 3) for compatibility with
// encoders that emit the deprecated "overwrite last" method the same way.
func disposalFromBits(bits byte) Disposal {
	switch bits {
	case 1:
		return DisposalNone
	case 2:
		return DisposalRestoreBackground
	case 3, 4:
		return DisposalRestorePrevious
	default:
		return DisposalUnspecified
	}
}

// parseApplicationBody parses an application extension, recognising only
// the NETSCAPE2.0 looping extension; any other identifier is skipped.
func parseApplicationBody(body []byte) (consumed int, loopCount int, hasLoop bool, ok bool) {
	if len(body) < 1 {
		return 0, 0, false, false
	}
	blockSize := int(body[0])
	if len(body) < 1+blockSize {
		return 0, 0, false, false
	}
	isNetscape := blockSize == netscapeBlockSize && string(body[1:1+blockSize]) == netscapeID
	rest := body[1+blockSize:]

	if !isNetscape {
		n, chainOK := skipSubBlocks(rest)
		if !chainOK {
			return 0, 0, false, false
		}
		return 1 + blockSize + n, 0, false, true
	}

	// NETSCAPE2.0 sub-block: 0x03, 0x01, then a LE loop-count short.
	if len(rest) < 1 {
		return 0, 0, false, false
	}
	subLen := int(rest[0])
	if subLen != 3 || len(rest) < 1+subLen || rest[1] != 0x01 {
		n, chainOK := skipSubBlocks(rest)
		if !chainOK {
			return 0, 0, false, false
		}
		return 1 + blockSize + n, 0, false, true
	}
	sub := rest[1 : 1+subLen]
	loop := readLE16(sub[1:3])
	if loop == 0 {
		loopCount = LoopInfinite
	} else {
		loopCount = loop
	}

	// Consume the remainder of the chain (normally just the terminator).
	afterSub := rest[1+subLen:]
	n, chainOK := skipSubBlocks(afterSub)
	if !chainOK {
		return 0, 0, false, false
	}
	return 1 + blockSize + 1 + subLen + n, loopCount, true, true
}
