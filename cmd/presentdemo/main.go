// Command presentdemo runs the presentation stage on the software platform.
//
// It renders a generated test pattern through the configured
// transformations, switches the output target halfway through the stream
// and writes the last presented output frame as a PNG.
//
//	presentdemo -config present.yaml -frames 60 -output out.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/present"
	"github.com/gogpu/present/config"
	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/metrics"
	"github.com/gogpu/present/preview"
	"github.com/gogpu/present/stage"
)

const frameDurationUs = 33_333

func main() {
	var (
		configPath    = flag.String("config", "", "YAML configuration file")
		frames        = flag.Int("frames", 30, "number of frames to present")
		inputWidth    = flag.Int("input-width", 640, "input frame width")
		inputHeight   = flag.Int("input-height", 360, "input frame height")
		output        = flag.String("output", "present.png", "output PNG file")
		previewOutput = flag.String("preview-output", "", "debug preview PNG file")
		metricsAddr   = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
		validate      = flag.Bool("validate-shaders", true, "compile the transform shader with naga")
		halNoop       = flag.Bool("hal-noop", false, "share a noop wgpu HAL device for shader modules and drains")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "presentdemo: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	present.SetLogger(log)

	if err := run(cfg, log, demo{
		frames:        *frames,
		inputWidth:    *inputWidth,
		inputHeight:   *inputHeight,
		output:        *output,
		previewOutput: *previewOutput,
		metricsAddr:   *metricsAddr,
		validate:      *validate,
		halNoop:       *halNoop,
	}); err != nil {
		log.Error("presentdemo failed", "err", err)
		os.Exit(1)
	}
}

type demo struct {
	frames        int
	inputWidth    int
	inputHeight   int
	output        string
	previewOutput string
	metricsAddr   string
	validate      bool
	halNoop       bool
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Parse([]byte("target: {width: 640, height: 360}\n"))
}

func run(cfg *config.Config, log *slog.Logger, d demo) error {
	if d.frames <= 0 || d.inputWidth <= 0 || d.inputHeight <= 0 {
		return errors.New("frames and input size must be positive")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if d.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(d.metricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", "addr", d.metricsAddr, "err", err)
			}
		}()
		log.Info("serving metrics", "addr", d.metricsAddr)
	}

	popts := []gpu.SoftwareOption{gpu.WithShaderValidation(d.validate)}
	if d.halNoop {
		open, err := (&noop.Adapter{}).Open(0, gputypes.DefaultLimits())
		if err != nil {
			return fmt.Errorf("open noop device: %w", err)
		}
		defer open.Device.Destroy()
		popts = append(popts, gpu.WithHALDevice(open.Device))
		log.Info("sharing HAL device", "backend", "noop")
	}
	platform := gpu.NewSoftwarePlatform(popts...)

	var previewWindow gpu.Handle
	var views preview.ViewProvider
	if p := cfg.DebugPreview; p != nil {
		previewWindow = platform.NewWindow(p.Width, p.Height)
		views = preview.ViewProviderFunc(func(int, int) preview.View {
			return windowView{platform: platform, handle: previewWindow}
		})
	}

	opts, err := cfg.StageOptions(views, m)
	if err != nil {
		return err
	}

	var (
		errs    int
		lastErr error
	)
	st := stage.New(platform, present.ListenerFuncs{
		OutputSizeChanged: func(w, h int) {
			log.Info("output size changed", "width", w, "height", h)
		},
		ProcessingError: func(err error, pts int64) {
			errs++
			lastErr = err
			log.Warn("frame dropped", "pts_us", pts, "err", err)
		},
		StreamEnded: func() {
			log.Info("stream ended")
		},
	}, opts...)
	defer st.Release()

	target := cfg.Descriptor(0)
	if !cfg.HasTarget() {
		target.Width, target.Height = d.inputWidth, d.inputHeight
	}
	target.Handle = platform.NewWindow(target.Width, target.Height)
	st.SetTarget(&target)

	img := image.NewRGBA(image.Rect(0, 0, d.inputWidth, d.inputHeight))
	tex := platform.UploadTexture(img)
	for i := 0; i < d.frames; i++ {
		if i == d.frames/2 {
			// Continue on a portrait window of the same area.
			next := target
			next.Width, next.Height = target.Height, target.Width
			next.Handle = platform.NewWindow(next.Width, next.Height)
			st.SetTarget(&next)
			target = next
		}

		drawPattern(img, i, d.frames)
		pts := int64(i) * frameDurationUs
		if !st.Submit(present.TextureFrame{Texture: tex, Width: d.inputWidth, Height: d.inputHeight}, pts) {
			return fmt.Errorf("frame %d declined with state %s", i, st.State())
		}
	}
	st.SignalEndOfStream()

	if err := writePNG(d.output, platform.Window(target.Handle).Snapshot()); err != nil {
		return err
	}
	log.Info("output saved", "file", d.output, "width", target.Width, "height", target.Height, "errors", errs)

	if d.previewOutput != "" && previewWindow != 0 {
		if err := writePNG(d.previewOutput, platform.Window(previewWindow).Snapshot()); err != nil {
			return err
		}
		log.Info("preview saved", "file", d.previewOutput)
	}
	if errs > 0 {
		return fmt.Errorf("%d of %d frames dropped: %w", errs, d.frames, lastErr)
	}
	return nil
}

// windowView is a static debug preview view over a software window.
type windowView struct {
	platform *gpu.SoftwarePlatform
	handle   gpu.Handle
}

func (v windowView) Handle() gpu.Handle { return v.handle }

func (v windowView) Size() (int, int) {
	if w := v.platform.Window(v.handle); w != nil {
		return w.Size()
	}
	return preview.SizeUnset, preview.SizeUnset
}

func (v windowView) Events() <-chan preview.Event { return nil }

// drawPattern fills img with a gradient and a vertical bar that moves
// across the frame as the stream progresses.
func drawPattern(img *image.RGBA, frame, frames int) {
	b := img.Bounds()
	barX := b.Dx() * frame / frames
	barW := max(b.Dx()/20, 1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBA{
				R: uint8(255 * x / b.Dx()),
				G: uint8(255 * y / b.Dy()),
				B: 96,
				A: 255,
			}
			if x >= barX && x < barX+barW {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
