package present

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGPUError(t *testing.T) {
	if GPUError("swap", nil) != nil {
		t.Error("GPUError(nil) should be nil")
	}

	cause := errors.New("context lost")
	err := GPUError("swap buffers", cause)
	if !errors.Is(err, ErrGPUResource) {
		t.Errorf("GPUError() = %v, want ErrGPUResource", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("GPUError() = %v, want wrapped cause", err)
	}
	if !strings.Contains(err.Error(), "swap buffers") {
		t.Errorf("GPUError() = %q, want op name", err.Error())
	}

	if again := GPUError("present", err); again != err {
		t.Errorf("GPUError() double wrapped: %v", again)
	}
}

func TestNewFrameProcessingError(t *testing.T) {
	cause := fmt.Errorf("draw: %w", ErrProcessingConfiguration)
	fpe := NewFrameProcessingError(cause, 33_366)

	if fpe.PresentationTimeUs != 33_366 {
		t.Errorf("PresentationTimeUs = %d, want 33366", fpe.PresentationTimeUs)
	}
	if !errors.Is(fpe, ErrProcessingConfiguration) {
		t.Error("FrameProcessingError should unwrap to its cause")
	}
	if !strings.Contains(fpe.Error(), "33366us") {
		t.Errorf("Error() = %q, want timestamp", fpe.Error())
	}

	wrapped := fmt.Errorf("submit: %w", fpe)
	if got := NewFrameProcessingError(wrapped, 1); got != fpe {
		t.Errorf("NewFrameProcessingError re-tagged an already tagged error: %+v", got)
	}
}
