// Package raycast renders a first-person view of a 2D wall grid. A cast
// pass computes one ray per screen column into an offscreen image, then a
// blit pass copies that image to the destination with nearest sampling.
package raycast

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/render/lighting"
)

//go:embed shaders/cast.kage
var castSource []byte

//go:embed shaders/blit.kage
var blitSource []byte

var (
	ErrUnsupported = render.ErrUnsupported
	ErrNoAdapter   = render.ErrNoAdapter
	ErrDisposed    = errors.New("raycast: renderer disposed")
	ErrBadMap      = errors.New("raycast: invalid map")
)

// Config fixes the output resolution.
type Config struct {
	Width, Height int
	// FOV is the default horizontal field of view in radians.
	FOV float64
	// MaxSteps bounds the grid walk per ray.
	MaxSteps int
}

// Camera is the viewer pose. A zero FOV uses the configured default.
type Camera struct {
	X, Y  float64
	Angle float64
	FOV   float64
}

// binding ties shader inputs to the map generation they were built for.
type binding struct {
	version  uint64
	images   [4]render.Image
	uniforms map[string]any
}

// Renderer owns the device, both shader passes and the uploaded map.
type Renderer struct {
	cfg    Config
	logger *log.Logger

	ready   chan struct{}
	initErr error
	cancel  context.CancelFunc

	mu       sync.Mutex
	dev      render.Device
	cast     render.Shader
	blit     render.Shader
	output   render.Image
	mapImg   render.Image
	mapW     int
	mapH     int
	version  uint64
	castBind *binding
	blitBind *binding
	camera   Camera
	light    lighting.Level
	disposed bool
}

// New starts acquiring a device from gpu. It fails synchronously only when
// there is no GPU at all; adapter failures surface from Ready and every
// call that waits on it.
func New(gpu render.GPU, cfg Config, logger *log.Logger) (*Renderer, error) {
	if gpu == nil {
		return nil, ErrUnsupported
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("raycast: resolution %dx%d must be positive", cfg.Width, cfg.Height)
	}
	if cfg.FOV <= 0 {
		cfg.FOV = math.Pi / 3
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 64
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		cfg:    cfg,
		logger: logger,
		ready:  make(chan struct{}),
		cancel: cancel,
		light:  lighting.Level{Ambient: 1},
	}
	go r.init(ctx, gpu)
	return r, nil
}

func (r *Renderer) init(ctx context.Context, gpu render.GPU) {
	defer close(r.ready)

	dev, err := gpu.RequestDevice(ctx)
	if err != nil {
		r.initErr = err
		r.logger.Error("GPU device unavailable", "err", err)
		return
	}
	cast, err := dev.CompileShader(castSource)
	if err != nil {
		r.initErr = fmt.Errorf("raycast: compile cast shader: %w", err)
		return
	}
	blit, err := dev.CompileShader(blitSource)
	if err != nil {
		cast.Dispose()
		r.initErr = fmt.Errorf("raycast: compile blit shader: %w", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		cast.Dispose()
		blit.Dispose()
		r.initErr = ErrDisposed
		return
	}
	r.dev = dev
	r.cast = cast
	r.blit = blit
	r.output = dev.NewImage(r.cfg.Width, r.cfg.Height)
	r.logger.Debug("raycaster ready", "width", r.cfg.Width, "height", r.cfg.Height)
}

// Ready waits for device acquisition and returns its outcome.
func (r *Renderer) Ready(ctx context.Context) error {
	select {
	case <-r.ready:
		return r.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadMap uploads a row-major grid (0 open, >0 wall material). Any
// previously uploaded map is released and the shader bindings are rebuilt
// against the new one.
func (r *Renderer) LoadMap(ctx context.Context, cells []uint32, width, height int) error {
	if err := r.Ready(ctx); err != nil {
		return err
	}
	if width <= 0 || height <= 0 || len(cells) != width*height {
		return fmt.Errorf("%w: %d cells for %dx%d", ErrBadMap, len(cells), width, height)
	}
	if width > r.cfg.Width || height > r.cfg.Height {
		return fmt.Errorf("%w: %dx%d exceeds the %dx%d viewport", ErrBadMap, width, height, r.cfg.Width, r.cfg.Height)
	}

	pix := make([]byte, 4*r.cfg.Width*r.cfg.Height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := 4 * (y*r.cfg.Width + x)
			pix[i] = byte(min(cells[y*width+x], 255))
			pix[i+3] = 0xff
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	if r.mapImg != nil {
		r.mapImg.Dispose()
	}
	r.mapImg = r.dev.NewImage(r.cfg.Width, r.cfg.Height)
	r.mapImg.WritePixels(pix)
	r.mapW, r.mapH = width, height
	r.version++
	r.rebind()
	r.logger.Debug("dungeon map uploaded", "width", width, "height", height, "version", r.version)
	return nil
}

// rebind rebuilds both bindings for the current map. Caller holds mu.
func (r *Renderer) rebind() {
	r.castBind = &binding{
		version: r.version,
		images:  [4]render.Image{r.mapImg},
		uniforms: map[string]any{
			"Resolution": []float32{float32(r.cfg.Width), float32(r.cfg.Height)},
			"MapSize":    []float32{float32(r.mapW), float32(r.mapH)},
			"MaxSteps":   float32(r.cfg.MaxSteps),
		},
	}
	r.blitBind = &binding{
		version:  r.version,
		images:   [4]render.Image{r.output},
		uniforms: map[string]any{},
	}
}

// SetCamera sets the pose used by the next Frame.
func (r *Renderer) SetCamera(c Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.camera = c
}

// SetLight sets the shading used by the next Frame. The default is fully
// lit.
func (r *Renderer) SetLight(l lighting.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.light = l
}

// MapVersion counts map uploads.
func (r *Renderer) MapVersion() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// Loaded reports whether a map has been uploaded.
func (r *Renderer) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.castBind != nil
}

// Frame runs both passes into dst. It does nothing until a map is loaded.
func (r *Renderer) Frame(dst render.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || r.castBind == nil || r.castBind.version != r.version {
		return
	}
	fov := r.camera.FOV
	if fov <= 0 {
		fov = r.cfg.FOV
	}
	uniforms := make(map[string]any, len(r.castBind.uniforms)+2)
	for k, v := range r.castBind.uniforms {
		uniforms[k] = v
	}
	uniforms["Camera"] = []float32{float32(r.camera.X), float32(r.camera.Y), float32(r.camera.Angle), float32(fov)}
	uniforms["Light"] = []float32{float32(r.light.Ambient), float32(r.light.Radius), float32(r.light.Intensity)}

	r.output.DrawRectShader(r.cfg.Width, r.cfg.Height, r.cast, &render.DrawRectShaderOptions{
		Images:   r.castBind.images,
		Uniforms: uniforms,
	})
	dst.DrawRectShader(r.cfg.Width, r.cfg.Height, r.blit, &render.DrawRectShaderOptions{
		Images:   r.blitBind.images,
		Uniforms: r.blitBind.uniforms,
	})
}

// Dispose releases every GPU resource. Pending initialization is abandoned.
func (r *Renderer) Dispose() {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true
	for _, img := range []render.Image{r.mapImg, r.output} {
		if img != nil {
			img.Dispose()
		}
	}
	for _, s := range []render.Shader{r.cast, r.blit} {
		if s != nil {
			s.Dispose()
		}
	}
	r.mapImg, r.output = nil, nil
	r.castBind, r.blitBind = nil, nil
}
