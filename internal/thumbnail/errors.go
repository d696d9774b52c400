package thumbnail

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline step that failed.
type Stage int

const (
	// StageLoad indicates the source file could not be read.
	StageLoad Stage = iota
	// StageDecode indicates the bytes are not a recognized or valid image.
	StageDecode
	// StageResize indicates the target geometry was invalid or resampling failed.
	StageResize
	// StageEncode indicates the thumbnail could not be serialized.
	StageEncode
)

// Sentinel errors matched by errors.Is against an *Error of the same stage.
var (
	ErrLoad   = errors.New("thumbnail: load failed")
	ErrDecode = errors.New("thumbnail: decode failed")
	ErrResize = errors.New("thumbnail: resize failed")
	ErrEncode = errors.New("thumbnail: encode failed")
)

// String returns the lower-case stage name used in logs and API responses.
func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageDecode:
		return "decode"
	case StageResize:
		return "resize"
	case StageEncode:
		return "encode"
	default:
		return "unknown"
	}
}

func (s Stage) sentinel() error {
	switch s {
	case StageLoad:
		return ErrLoad
	case StageDecode:
		return ErrDecode
	case StageResize:
		return ErrResize
	case StageEncode:
		return ErrEncode
	default:
		return nil
	}
}

func (s Stage) verb() string {
	switch s {
	case StageLoad:
		return "failed to open image"
	case StageDecode:
		return "failed to decode image"
	case StageResize:
		return "failed to resize image"
	case StageEncode:
		return "failed to encode thumbnail"
	default:
		return "thumbnail generation failed"
	}
}

// Error is returned by Generate. It records which stage failed and wraps the
// cause reported by the I/O or codec layer.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Stage.verb(), e.Err)
	}
	return e.Stage.verb()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's stage.
func (e *Error) Is(target error) bool {
	s := e.Stage.sentinel()
	return s != nil && target == s
}

// StageOf returns the failing stage of err, and false if err did not come
// from the thumbnail pipeline.
func StageOf(err error) (Stage, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Stage, true
	}
	return 0, false
}
