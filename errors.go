package present

import (
	"errors"
	"fmt"
)

// Common errors reported by the presentation stage.
var (
	// ErrProcessingConfiguration is returned when a transformation chain
	// produces a geometry that does not match the requested output target.
	// It is fatal for that target configuration.
	ErrProcessingConfiguration = errors.New("present: transformation output does not match target")

	// ErrGPUResource marks failures creating surfaces or programs, or
	// issuing draw and present calls.
	ErrGPUResource = errors.New("present: gpu resource failure")

	// ErrReleased is returned when a released stage is used again. It is a
	// programming error and is never retried.
	ErrReleased = errors.New("present: stage released")
)

// GPUError wraps err as an ErrGPUResource failure of the named operation.
// It returns nil if err is nil, and err unchanged if it already is a GPU
// resource failure.
func GPUError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGPUResource) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrGPUResource, op, err)
}

// FrameProcessingError is a failure tied to the frame with the given
// presentation timestamp.
type FrameProcessingError struct {
	// PresentationTimeUs is the timestamp of the offending frame.
	PresentationTimeUs int64
	Err                error
}

// NewFrameProcessingError tags err with a presentation timestamp. An error
// that already carries a timestamp is returned as is.
func NewFrameProcessingError(err error, presentationTimeUs int64) *FrameProcessingError {
	var fpe *FrameProcessingError
	if errors.As(err, &fpe) {
		return fpe
	}
	return &FrameProcessingError{PresentationTimeUs: presentationTimeUs, Err: err}
}

func (e *FrameProcessingError) Error() string {
	return fmt.Sprintf("present: frame at %dus: %v", e.PresentationTimeUs, e.Err)
}

func (e *FrameProcessingError) Unwrap() error { return e.Err }
