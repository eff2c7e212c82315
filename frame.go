package present

// TextureID identifies a GPU texture owned by an upstream stage.
type TextureID uint32

// TextureFrame is one input frame. The texture is borrowed: it is only
// valid for the duration of the call that receives it and stays owned
// by the upstream stage.
type TextureFrame struct {
	Texture TextureID
	Width   int
	Height  int
}

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether the size is unset.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Listener receives pipeline-wide events from the final stage.
//
// Callbacks are invoked on the GPU goroutine. They must not call back into
// the stage's Submit or Release.
type Listener interface {
	// OnOutputSizeChanged is called whenever the output size before fitting
	// to the target changes.
	OnOutputSizeChanged(width, height int)

	// OnProcessingError is called when a frame could not be processed. The
	// error is a *FrameProcessingError tagged with presentationTimeUs.
	OnProcessingError(err error, presentationTimeUs int64)

	// OnStreamEnded is called after the end of the input stream has been
	// signalled. No further frames are expected.
	OnStreamEnded()
}

// FrameListener is notified when an input frame has been consumed and
// its texture may be reused by the upstream stage.
type FrameListener interface {
	OnFrameConsumed(frame TextureFrame)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are
// ignored.
type ListenerFuncs struct {
	OutputSizeChanged func(width, height int)
	ProcessingError   func(err error, presentationTimeUs int64)
	StreamEnded       func()
}

// OnOutputSizeChanged implements Listener.
func (l ListenerFuncs) OnOutputSizeChanged(width, height int) {
	if l.OutputSizeChanged != nil {
		l.OutputSizeChanged(width, height)
	}
}

// OnProcessingError implements Listener.
func (l ListenerFuncs) OnProcessingError(err error, presentationTimeUs int64) {
	if l.ProcessingError != nil {
		l.ProcessingError(err, presentationTimeUs)
	}
}

// OnStreamEnded implements Listener.
func (l ListenerFuncs) OnStreamEnded() {
	if l.StreamEnded != nil {
		l.StreamEnded()
	}
}

// FrameListenerFunc adapts a function to a FrameListener.
type FrameListenerFunc func(frame TextureFrame)

// OnFrameConsumed implements FrameListener.
func (f FrameListenerFunc) OnFrameConsumed(frame TextureFrame) { f(frame) }

// TextureConsumer is implemented by every stage that accepts input
// textures.
type TextureConsumer interface {
	// Submit offers a frame. It returns false if the frame was not consumed
	// and must be offered again later.
	Submit(frame TextureFrame, presentationTimeUs int64) bool

	// SetFrameListener sets the listener notified once an input frame is
	// consumed.
	SetFrameListener(l FrameListener)

	// SignalEndOfStream reports that no further frames will be submitted.
	SignalEndOfStream()

	// Release frees owned GPU resources. It is called once, on the GPU
	// goroutine.
	Release() error
}

// TextureProducer is implemented by intermediate stages that render into
// textures handed downstream. The final stage renders into a surface and
// therefore is a TextureConsumer only.
type TextureProducer interface {
	TextureConsumer

	// ReleaseOutputFrame returns an output texture to the producing stage.
	ReleaseOutputFrame(frame TextureFrame) error
}

var (
	_ Listener      = ListenerFuncs{}
	_ FrameListener = FrameListenerFunc(nil)
)
