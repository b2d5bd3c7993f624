package lzw

import (
	"bytes"
	"testing"
)

// bitPacker accumulates LSB-first variable-width codes into bytes, mirroring
// how a GIF encoder packs its code stream.
type bitPacker struct {
	acc     uint32
	accBits int
	out     []byte
}

func (p *bitPacker) put(code, width int) {
	p.acc |= uint32(code) << uint(p.accBits)
	p.accBits += width
	for p.accBits >= 8 {
		p.out = append(p.out, byte(p.acc))
		p.acc >>= 8
		p.accBits -= 8
	}
}

func (p *bitPacker) bytes() []byte {
	if p.accBits > 0 {
		return append(p.out, byte(p.acc))
	}
	return p.out
}

// encodeLiterals builds a synthetic LZW stream (clear, one literal code per
// index, eoi) that mirrors the decoder's own dictionary/width-growth rule,
// since emitting pure literal codes still grows the dictionary (and widens
// the code width) exactly as real LZW compression would.
func encodeLiterals(minCodeSize int, indices []int) []byte {
	clear := 1 << uint(minCodeSize)
	eoi := clear + 1
	first := clear + 2

	width := minCodeSize + 1
	nextCode := first
	prevCode := -1

	p := &bitPacker{}
	p.put(clear, width)
	for _, idx := range indices {
		p.put(idx, width)
		if prevCode != -1 && nextCode < 4096 {
			nextCode++
			if nextCode == (1<<uint(width)) && width < 12 {
				width++
			}
		}
		prevCode = idx
	}
	p.put(eoi, width)
	return p.bytes()
}

// subBlocks wraps payload bytes into a GIF sub-block chain terminated by a
// zero-length block.
func subBlocks(payload []byte) []byte {
	var out []byte
	for len(payload) > 0 {
		n := len(payload)
		if n > 255 {
			n = 255
		}
		out = append(out, byte(n))
		out = append(out, payload[:n]...)
		payload = payload[n:]
	}
	out = append(out, 0)
	return out
}

func TestDecodeScalar_SimpleIndices(t *testing.T) {
	payload := subBlocks(encodeLiterals(2, []int{0, 1, 2, 3}))

	d, err := New(payload, 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var got []byte
	for {
		out, status, err := d.Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got = append(got, out...)
		if status == StatusEndOfData {
			break
		}
		if status == StatusNoData {
			t.Fatalf("unexpected StatusNoData with complete input")
		}
	}

	want := []byte{0, 1, 2, 3}
	if !bytes.Equal(got, want) {
		t.Errorf("decoded = %v, want %v", got, want)
	}
}

func TestDecodeMapped_TransparencySkip(t *testing.T) {
	// Palette: 0=opaque black, 1=opaque white, 2=transparent-marker index.
	palette := []uint32{
		0xFF000000,
		0xFFFFFFFF,
		0x00000000,
	}
	payload := subBlocks(encodeLiterals(2, []int{0, 2, 1}))

	d, err := NewMapped(payload, 0, 2, 2, palette)
	if err != nil {
		t.Fatalf("NewMapped: %v", err)
	}

	dst := make([]uint32, 3)
	dst[1] = 0xAAAAAAAA // pre-painted; index 2 must leave this untouched

	written, status, err := d.DecodeMapped(dst, 3)
	if err != nil {
		t.Fatalf("DecodeMapped: %v", err)
	}
	if written != 3 {
		t.Fatalf("written = %d, want 3", written)
	}
	if status != StatusEndOfData && status != StatusOK {
		t.Fatalf("unexpected status %v", status)
	}

	if dst[0] != palette[0] {
		t.Errorf("dst[0] = %#x, want %#x", dst[0], palette[0])
	}
	if dst[1] != 0xAAAAAAAA {
		t.Errorf("dst[1] was overwritten by transparency index: %#x", dst[1])
	}
	if dst[2] != palette[1] {
		t.Errorf("dst[2] = %#x, want %#x", dst[2], palette[1])
	}
}

func TestDecode_BadInitialCode(t *testing.T) {
	// After clear, nextCode is 6 (clearCode+2); a first code of 7 is not
	// yet an assignable dictionary entry.
	p := &bitPacker{}
	p.put(4, 3)
	p.put(7, 3)
	payload := subBlocks(p.bytes())

	d, err := New(payload, 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, err = d.Decode()
	if err != ErrBadInitialCode {
		t.Fatalf("err = %v, want ErrBadInitialCode", err)
	}
}

func TestDecode_NoDataThenResume(t *testing.T) {
	full := encodeLiterals(2, []int{0, 1, 2, 3})

	// Truncate mid-stream: only the first byte of the sub-block, no terminator.
	truncated := append([]byte{byte(len(full))}, full[:1]...)

	d, err := New(truncated, 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sawNoData := false
	for i := 0; i < 10; i++ {
		_, status, err := d.Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if status == StatusNoData {
			sawNoData = true
			break
		}
	}
	if !sawNoData {
		t.Fatalf("expected StatusNoData on truncated input")
	}
}

func TestDecode_KwKwKSelfReference(t *testing.T) {
	// Code sequence, hand-derived against the decoder's own dictionary
	// growth rule (minCodeSize=2, clear=4, eoi=5, first=6):
	//   clear(w3), 1(w3), 2(w3)   -> dict[6] = "1,2"
	//   6(w3)                     -> emits "1,2", dict[7] = "2,1", width->4
	//   8(w4)                     -> equals nextCode: the KwKwK case,
	//                                emits prevExpansion("1,2") + its own
	//                                first byte ("1") = "1,2,1"
	//   eoi(w4)
	// Concatenated output: 1,2,1,2,1,2,1
	p := &bitPacker{}
	p.put(4, 3)
	p.put(1, 3)
	p.put(2, 3)
	p.put(6, 3)
	p.put(8, 4)
	p.put(5, 4)
	payload := subBlocks(p.bytes())

	d, err := New(payload, 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var got []byte
	for i := 0; i < 20; i++ {
		out, status, err := d.Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got = append(got, out...)
		if status == StatusEndOfData {
			break
		}
	}
	want := []byte{1, 2, 1, 2, 1, 2, 1}
	if !bytes.Equal(got, want) {
		t.Errorf("decoded = %v, want %v", got, want)
	}
}

func TestNew_RejectsMinCodeSizeTwelve(t *testing.T) {
	if _, err := New([]byte{0}, 0, 12); err != ErrBadMinCodeSize {
		t.Fatalf("err = %v, want ErrBadMinCodeSize", err)
	}
	if _, err := New([]byte{0}, 0, 11); err != nil {
		t.Fatalf("minCodeSize 11 should be accepted, got %v", err)
	}
}
