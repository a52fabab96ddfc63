// Package render is the drawing abstraction the screens are written
// against. The ebiten subpackage implements it for the real window and
// rendertest fakes it for tests.
package render

import (
	"context"
	"errors"
	"image"
	"image/color"
)

// Shader is a compiled shader program.
type Shader interface {
	Dispose()
}

// DrawRectShaderOptions carries the source images (up to 4) and uniform
// values for a shader draw.
type DrawRectShaderOptions struct {
	Images   [4]Image
	Uniforms map[string]any
}

// Device allocates images and compiles shaders.
type Device interface {
	NewImage(width, height int) Image
	CompileShader(src []byte) (Shader, error)
}

// Renderer is a Device with 2D shape and text drawing.
type Renderer interface {
	Device

	FillRect(dst Image, x, y, width, height float32, clr color.Color)
	StrokeRect(dst Image, x, y, width, height, strokeWidth float32, clr color.Color)
	FillCircle(dst Image, x, y, radius float32, clr color.Color)
	StrokeLine(dst Image, x0, y0, x1, y1, strokeWidth float32, clr color.Color)

	// DrawText draws with the top-left corner at (x, y).
	DrawText(dst Image, text string, x, y int, clr color.Color, scale float64)
	MeasureText(text string, scale float64) (width, height int)
}

// Image is something that can be drawn to or drawn from.
type Image interface {
	Bounds() image.Rectangle
	Size() (width, height int)
	SubImage(r image.Rectangle) Image

	Fill(clr color.Color)
	Clear()
	// WritePixels replaces the contents with RGBA bytes (4 * width * height).
	WritePixels(pix []byte)

	DrawImage(src Image, opts *DrawImageOptions)
	DrawRectShader(width, height int, shader Shader, opts *DrawRectShaderOptions)

	Dispose()
}

// DrawImageOptions positions a draw.
type DrawImageOptions struct {
	GeoM GeoM
	// Alpha scales the source alpha. Zero means opaque.
	Alpha float32
}

// GeoM is a 2D transform.
type GeoM interface {
	Translate(tx, ty float64)
	Scale(sx, sy float64)
	Reset()
}

// NewGeoM returns an identity transform. The active backend sets it.
var NewGeoM func() GeoM

// Errors reported while acquiring a GPU device.
var (
	// ErrUnsupported means the platform has no GPU rendering capability.
	ErrUnsupported = errors.New("GPU rendering is not supported on this platform")
	// ErrNoAdapter means GPU support exists but no device could be acquired.
	ErrNoAdapter = errors.New("no GPU adapter found")
)

// GPU acquires devices. RequestDevice may block until the graphics backend
// is running.
type GPU interface {
	RequestDevice(ctx context.Context) (Device, error)
}

// Game is driven by an Engine once per tick.
type Game interface {
	Update() error
	Draw(screen Image)
	// Layout returns the logical screen size for a window of the given size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine owns the window and the game loop.
type Engine interface {
	SetWindowSize(width, height int)
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)
	// RunGame blocks until the game stops.
	RunGame(game Game) error
}
