package ebiten

import (
	"context"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"chosenoffset.com/goldbox/internal/render"
)

// GPU hands out the Ebiten graphics device once the game loop is running
// and a graphics library has been chosen.
type GPU struct {
	renderer *EbitenRenderer
	ready    chan struct{}
	once     sync.Once
}

// NewGPU creates a GPU that allocates through renderer.
func NewGPU(renderer *EbitenRenderer) *GPU {
	return &GPU{renderer: renderer, ready: make(chan struct{})}
}

func (g *GPU) markReady() {
	g.once.Do(func() { close(g.ready) })
}

// RequestDevice blocks until the first frame, then reports ErrNoAdapter if
// Ebiten could not settle on a graphics library.
func (g *GPU) RequestDevice(ctx context.Context) (render.Device, error) {
	select {
	case <-g.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var info ebiten.DebugInfo
	ebiten.ReadDebugInfo(&info)
	if info.GraphicsLibrary == ebiten.GraphicsLibraryUnknown {
		return nil, render.ErrNoAdapter
	}
	return g.renderer, nil
}

// EbitenEngine implements the Engine interface using Ebiten.
type EbitenEngine struct {
	gpu *GPU
}

// NewEngine creates a new Ebiten-based game engine. gpu, if non-nil, is
// released on the first frame.
func NewEngine(gpu *GPU) *EbitenEngine {
	return &EbitenEngine{gpu: gpu}
}

// SetWindowSize sets the window size in pixels.
func (e *EbitenEngine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle sets the window title.
func (e *EbitenEngine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetWindowResizable enables or disables window resizing.
func (e *EbitenEngine) SetWindowResizable(resizable bool) {
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
}

// RunGame runs the game loop with the provided game.
func (e *EbitenEngine) RunGame(game render.Game) error {
	return ebiten.RunGame(&gameAdapter{game: game, gpu: e.gpu})
}

// gameAdapter adapts a render.Game to ebiten.Game interface.
type gameAdapter struct {
	game render.Game
	gpu  *GPU
}

// Update implements ebiten.Game.
func (a *gameAdapter) Update() error {
	if a.gpu != nil {
		a.gpu.markReady()
	}
	return a.game.Update()
}

// Draw implements ebiten.Game.
func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.game.Draw(WrapEbitenImage(screen))
}

// Layout implements ebiten.Game.
func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.game.Layout(outsideWidth, outsideHeight)
}
