// Package rendertest provides in-memory fakes of the render interfaces that
// record what was drawn, for tests that must run without a GPU.
package rendertest

import (
	"context"
	"image"
	"image/color"
	"sync"

	"chosenoffset.com/goldbox/internal/render"
)

// ShaderCall records one DrawRectShader call.
type ShaderCall struct {
	Width, Height int
	Shader        *Shader
	Images        [4]render.Image
	Uniforms      map[string]any
}

// Image is a fake render.Image.
type Image struct {
	mu sync.Mutex

	ID       int
	W, H     int
	Pixels   []byte
	Fills    []color.Color
	Draws    []render.Image
	Shaders  []ShaderCall
	Disposed bool
}

var _ render.Image = (*Image)(nil)

func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, i.W, i.H) }
func (i *Image) Size() (int, int) { return i.W, i.H }
func (i *Image) SubImage(image.Rectangle) render.Image { return i }

func (i *Image) Fill(clr color.Color) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Fills = append(i.Fills, clr)
}

func (i *Image) Clear() { i.Fill(color.Transparent) }

func (i *Image) WritePixels(pix []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Pixels = append([]byte(nil), pix...)
}

func (i *Image) DrawImage(src render.Image, _ *render.DrawImageOptions) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Draws = append(i.Draws, src)
}

func (i *Image) DrawRectShader(w, h int, s render.Shader, opts *render.DrawRectShaderOptions) {
	i.mu.Lock()
	defer i.mu.Unlock()
	call := ShaderCall{Width: w, Height: h}
	call.Shader, _ = s.(*Shader)
	if opts != nil {
		call.Images = opts.Images
		call.Uniforms = make(map[string]any, len(opts.Uniforms))
		for k, v := range opts.Uniforms {
			call.Uniforms[k] = v
		}
	}
	i.Shaders = append(i.Shaders, call)
}

func (i *Image) Dispose() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Disposed = true
}

// IsDisposed reports whether Dispose was called.
func (i *Image) IsDisposed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Disposed
}

// ShaderCalls returns a copy of the recorded shader draws.
func (i *Image) ShaderCalls() []ShaderCall {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]ShaderCall(nil), i.Shaders...)
}

// DrawCount returns how many images were drawn onto this one.
func (i *Image) DrawCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.Draws)
}

// LastFill returns the most recent fill colour.
func (i *Image) LastFill() color.Color {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.Fills) == 0 {
		return nil
	}
	return i.Fills[len(i.Fills)-1]
}

// Shader is a fake render.Shader.
type Shader struct {
	Source   []byte
	Disposed bool
}

func (s *Shader) Dispose() { s.Disposed = true }

// Renderer is a fake render.Renderer. It also satisfies render.Device.
type Renderer struct {
	mu sync.Mutex

	Images     []*Image
	ShaderList []*Shader
	Texts      []string
	Rects      int
	CompileErr error
}

var _ render.Renderer = (*Renderer)(nil)

func (r *Renderer) NewImage(w, h int) render.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	img := &Image{ID: len(r.Images) + 1, W: w, H: h}
	r.Images = append(r.Images, img)
	return img
}

func (r *Renderer) FillRect(render.Image, float32, float32, float32, float32, color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rects++
}

func (r *Renderer) StrokeRect(render.Image, float32, float32, float32, float32, float32, color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rects++
}

func (r *Renderer) FillCircle(render.Image, float32, float32, float32, color.Color) {}

func (r *Renderer) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {}

func (r *Renderer) DrawText(_ render.Image, text string, _, _ int, _ color.Color, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Texts = append(r.Texts, text)
}

func (r *Renderer) MeasureText(text string, scale float64) (int, int) {
	return int(float64(len(text)) * 7 * scale), int(14 * scale)
}

func (r *Renderer) CompileShader(src []byte) (render.Shader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CompileErr != nil {
		return nil, r.CompileErr
	}
	s := &Shader{Source: src}
	r.ShaderList = append(r.ShaderList, s)
	return s, nil
}

// AllImages returns every image allocated so far.
func (r *Renderer) AllImages() []*Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Image(nil), r.Images...)
}

// TextDrawn reports whether text was drawn.
func (r *Renderer) TextDrawn(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.Texts {
		if t == text {
			return true
		}
	}
	return false
}

// GPU is a fake render.GPU. When Gate is non-nil RequestDevice blocks until
// it is closed.
type GPU struct {
	Device render.Device
	Err    error
	Gate   chan struct{}
}

func (g *GPU) RequestDevice(ctx context.Context) (render.Device, error) {
	if g.Gate != nil {
		select {
		case <-g.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Device, nil
}

// GeoM is a fake render.GeoM that tracks translation and scale.
type GeoM struct {
	TX, TY float64
	SX, SY float64
}

func (g *GeoM) Translate(tx, ty float64) {
	g.TX += tx
	g.TY += ty
}

func (g *GeoM) Scale(sx, sy float64) {
	g.SX *= sx
	g.SY *= sy
	g.TX *= sx
	g.TY *= sy
}

func (g *GeoM) Reset() { *g = GeoM{SX: 1, SY: 1} }

func init() {
	if render.NewGeoM == nil {
		render.NewGeoM = func() render.GeoM { return &GeoM{SX: 1, SY: 1} }
	}
}
