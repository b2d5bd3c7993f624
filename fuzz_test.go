package nsgif

import "testing"

// addSeeds hands the fuzzer a few structurally complete GIFs built with the
// same helpers the unit tests use, so mutation starts from valid headers,
// palettes, extension chains, and LZW payloads rather than random bytes.
func addSeeds(f *testing.F) {
	f.Helper()
	f.Add(newGIFBuilder(2, 2, blackWhiteRedGreen).
		frame(0, 0, 2, 2, nil, 2, []int{0, 1, 2, 3}).
		trailer())
	f.Add(newGIFBuilder(2, 2, blackWhiteRedGreen).
		netscapeLoop(0).
		graphicControl(2, 10, true, 1).
		frame(0, 0, 2, 2, nil, 2, []int{0, 0, 0, 0}).
		graphicControl(3, 5, false, 0).
		frame(0, 0, 1, 1, nil, 2, []int{1}).
		trailer())
	f.Add(newGIFBuilder(640, 480, nil).trailer())
	f.Add([]byte("GIF89a"))
	f.Add([]byte("not a gif at all"))
}

// FuzzDecode ensures no input can panic the scanner, the LZW decoder, or the
// compositor: every byte sequence must come back as a Result, never a crash.
func FuzzDecode(f *testing.F) {
	addSeeds(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		dec, err := Create(&fakeCallbacks{})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		defer dec.Destroy()

		if _, err := dec.DataScan(data); err != nil {
			return
		}
		info := dec.GetInfo()
		// Skip pathological canvases; the interesting surface is the frame
		// machinery, not a giant allocation.
		if info.Width*info.Height > 1<<20 {
			return
		}
		for i := 0; i < info.FrameCount && i < 16; i++ {
			_, _, idx, res, _ := dec.FramePrepare()
			if res != ResultOK {
				break
			}
			dec.FrameDecode(idx) //nolint:errcheck
		}
	})
}
