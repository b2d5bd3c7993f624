package nsgif

// Result is the stable, machine-checkable outcome code every public
// operation returns alongside an ordinary Go error. Where the error is nil,
// String is still meaningful ("ok", "need more source data", ...); where it
// is non-nil, the error carries the lower-level cause (unwrap with
// errors.Is/errors.As) and Result identifies which row of the error
// taxonomy it belongs to.
type Result int

const (
	ResultOK           Result = iota
	ResultOutOfMemory         // bitmap allocation failed
	ResultData                // file structurally invalid
	ResultBadFrame             // frame index out of range
	ResultDataFrame            // frame pixels corrupt; best-effort pixels left in canvas
	ResultFrameCount           // frame count exceeds the safety cap
	ResultEndOfData            // need more source bytes; state preserved
	ResultEndOfFrame           // LZW reported end-of-information
	ResultFrameDisplay         // frame not yet displayable
	ResultAnimationEnd         // loop budget exhausted
)

// String returns a stable, human-readable description of r.
func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultOutOfMemory:
		return "out of memory"
	case ResultData:
		return "invalid GIF data"
	case ResultBadFrame:
		return "frame index out of range"
	case ResultDataFrame:
		return "frame pixel data corrupt"
	case ResultFrameCount:
		return "frame count exceeds the safety cap"
	case ResultEndOfData:
		return "need more source data"
	case ResultEndOfFrame:
		return "end of frame information reached"
	case ResultFrameDisplay:
		return "frame not displayable"
	case ResultAnimationEnd:
		return "animation loop budget exhausted"
	default:
		return "unknown result"
	}
}
