// Package ebiten implements the render interfaces on top of Ebitengine.
package ebiten

import (
	"bytes"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"chosenoffset.com/goldbox/internal/render"
)

// baseFontSize is the text size at scale 1.
const baseFontSize = 14

// EbitenRenderer implements the Renderer interface using Ebiten.
type EbitenRenderer struct {
	faceOnce sync.Once
	source   *text.GoTextFaceSource
	faceErr  error
	faces    map[float64]*text.GoTextFace
	mu       sync.Mutex
}

// init sets up the global functions for the ebiten render.
func init() {
	render.NewGeoM = func() render.GeoM {
		return NewGeoM()
	}
}

// NewRenderer creates a new Ebiten-based render.
func NewRenderer() *EbitenRenderer {
	return &EbitenRenderer{faces: make(map[float64]*text.GoTextFace)}
}

// NewImage creates a new image with the given dimensions.
func (r *EbitenRenderer) NewImage(width, height int) render.Image {
	return &EbitenImage{img: ebiten.NewImage(width, height)}
}

// FillRect draws a filled rectangle on the destination image.
func (r *EbitenRenderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	vector.DrawFilledRect(unwrap(dst), x, y, width, height, clr, false)
}

// StrokeRect draws a rectangle outline on the destination image.
func (r *EbitenRenderer) StrokeRect(dst render.Image, x, y, width, height, strokeWidth float32, clr color.Color) {
	vector.StrokeRect(unwrap(dst), x, y, width, height, strokeWidth, clr, false)
}

// FillCircle draws a filled circle on the destination image.
func (r *EbitenRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	vector.DrawFilledCircle(unwrap(dst), x, y, radius, clr, true)
}

// StrokeLine draws a line segment on the destination image.
func (r *EbitenRenderer) StrokeLine(dst render.Image, x0, y0, x1, y1, strokeWidth float32, clr color.Color) {
	vector.StrokeLine(unwrap(dst), x0, y0, x1, y1, strokeWidth, clr, true)
}

func (r *EbitenRenderer) face(scale float64) *text.GoTextFace {
	r.faceOnce.Do(func() {
		r.source, r.faceErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	})
	if r.faceErr != nil {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faces[scale]
	if !ok {
		f = &text.GoTextFace{Source: r.source, Size: baseFontSize * scale}
		r.faces[scale] = f
	}
	return f
}

// DrawText draws text with its top-left corner at (x, y).
func (r *EbitenRenderer) DrawText(dst render.Image, str string, x, y int, clr color.Color, scale float64) {
	face := r.face(scale)
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(unwrap(dst), str, face, op)
}

// MeasureText measures the width and height of text with the given scale.
func (r *EbitenRenderer) MeasureText(str string, scale float64) (width, height int) {
	face := r.face(scale)
	if face == nil {
		return 0, 0
	}
	w, h := text.Measure(str, face, 0)
	return int(w), int(h)
}

// CompileShader compiles Kage source into a Shader.
func (r *EbitenRenderer) CompileShader(src []byte) (render.Shader, error) {
	shader, err := ebiten.NewShader(src)
	if err != nil {
		return nil, err
	}
	return &EbitenShader{shader: shader}, nil
}

// EbitenShader wraps an ebiten.Shader to implement the render.Shader interface.
type EbitenShader struct {
	shader *ebiten.Shader
}

// Dispose releases shader resources.
func (s *EbitenShader) Dispose() {
	if s.shader != nil {
		s.shader.Deallocate()
	}
}

// EbitenImage wraps an ebiten.Image to implement the render.Image interface.
type EbitenImage struct {
	img *ebiten.Image
}

func unwrap(img render.Image) *ebiten.Image {
	return img.(*EbitenImage).img
}

// Bounds returns the bounds of the image.
func (i *EbitenImage) Bounds() image.Rectangle {
	return i.img.Bounds()
}

// Size returns the width and height of the image.
func (i *EbitenImage) Size() (width, height int) {
	return i.img.Bounds().Dx(), i.img.Bounds().Dy()
}

// SubImage returns a sub-image of the image.
func (i *EbitenImage) SubImage(r image.Rectangle) render.Image {
	return &EbitenImage{img: i.img.SubImage(r).(*ebiten.Image)}
}

// Fill fills the entire image with the given color.
func (i *EbitenImage) Fill(clr color.Color) {
	i.img.Fill(clr)
}

// Clear clears the image to transparent.
func (i *EbitenImage) Clear() {
	i.img.Clear()
}

// WritePixels replaces the image contents with RGBA bytes.
func (i *EbitenImage) WritePixels(pix []byte) {
	i.img.WritePixels(pix)
}

// Dispose releases the image resources.
func (i *EbitenImage) Dispose() {
	if i.img != nil {
		i.img.Deallocate()
	}
}

// DrawImage draws the source image onto this image.
func (i *EbitenImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	srcImg := unwrap(src)

	if opts == nil {
		i.img.DrawImage(srcImg, nil)
		return
	}

	ebitenOpts := &ebiten.DrawImageOptions{}
	if opts.GeoM != nil {
		ebitenOpts.GeoM = opts.GeoM.(*EbitenGeoM).geoM
	}
	if opts.Alpha > 0 {
		ebitenOpts.ColorScale.ScaleAlpha(opts.Alpha)
	}

	i.img.DrawImage(srcImg, ebitenOpts)
}

// DrawRectShader draws a rectangle using the specified shader.
func (i *EbitenImage) DrawRectShader(width, height int, shader render.Shader, opts *render.DrawRectShaderOptions) {
	ebitenShader := shader.(*EbitenShader).shader

	ebitenOpts := &ebiten.DrawRectShaderOptions{}
	if opts != nil {
		for idx, img := range opts.Images {
			if img != nil {
				ebitenOpts.Images[idx] = unwrap(img)
			}
		}
		ebitenOpts.Uniforms = opts.Uniforms
	}

	i.img.DrawRectShader(width, height, ebitenShader, ebitenOpts)
}

// WrapEbitenImage wraps an existing ebiten.Image as a render.Image.
func WrapEbitenImage(img *ebiten.Image) render.Image {
	return &EbitenImage{img: img}
}

// EbitenGeoM wraps ebiten's GeoM to implement the render.GeoM interface.
type EbitenGeoM struct {
	geoM ebiten.GeoM
}

// NewGeoM creates a new geometric transformation matrix.
func NewGeoM() render.GeoM {
	return &EbitenGeoM{geoM: ebiten.GeoM{}}
}

// Translate shifts the image by (tx, ty).
func (g *EbitenGeoM) Translate(tx, ty float64) {
	g.geoM.Translate(tx, ty)
}

// Scale scales the image by (sx, sy).
func (g *EbitenGeoM) Scale(sx, sy float64) {
	g.geoM.Scale(sx, sy)
}

// Reset resets the matrix to identity.
func (g *EbitenGeoM) Reset() {
	g.geoM.Reset()
}
