package container

import "errors"

// Sentinel errors for structural failures. These are distinct from the
// "need more data" signal (ParseNeedMoreData), which is not an error
// at all but a request for the caller to retry once more bytes arrive.
var (
	ErrBadMagic        = errors.New("container: not a GIF file")
	ErrBadMinCodeSize  = errors.New("container: LZW minimum code size out of range")
	ErrMissingImageSep = errors.New("container: expected image separator")
	ErrTooManyFrames   = errors.New("container: frame count exceeds the safety cap")
	ErrBadFrameIndex   = errors.New("container: frame index out of range")
)
