// Package dungeon is first-person dungeon exploration drawn by the GPU
// raycaster.
package dungeon

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/render/lighting"
	"chosenoffset.com/goldbox/internal/render/raycast"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/world/grid"
	"chosenoffset.com/goldbox/internal/world/maploader"
)

const (
	exitDistance = 1.0
	fadeDuration = 500 * time.Millisecond
)

// VisitedFlag is the quest flag set when the party enters a map.
func VisitedFlag(mapID string) string { return "visited_" + mapID }

var (
	hudColor     = color.RGBA{212, 175, 55, 255}
	dimColor     = color.RGBA{136, 136, 136, 255}
	errorColor   = color.RGBA{255, 107, 107, 255}
	errorBgColor = color.RGBA{20, 10, 10, 255}
)

// Screen is the dungeon view.
type Screen struct {
	sc   *screen.Context
	cfg  config.DungeonConfig
	rcfg raycast.Config

	rc    *raycast.Renderer
	light *lighting.Manager

	mapID string
	level *maploader.Map
	walls *grid.Grid

	camX, camY, angle float64
	mouseDx           float64

	// unavailable explains why the GPU view could not start.
	unavailable string
}

// New creates the dungeon screen. The raycaster is created on first Enter.
func New(cfg config.DungeonConfig, rcfg raycast.Config) *Screen {
	return &Screen{cfg: cfg, rcfg: rcfg, light: lighting.NewManager()}
}

func (s *Screen) ID() screen.ID { return screen.Dungeon }

// UsesGPU marks the dungeon as the raycaster-backed screen.
func (s *Screen) UsesGPU() bool { return true }

func (s *Screen) Init(_ context.Context, sc *screen.Context) error {
	s.sc = sc
	return nil
}

// Enter loads the dungeon named by the dungeonId param, or the configured
// default, and places the camera at the saved position or the map start.
func (s *Screen) Enter(ctx context.Context, from screen.ID, params screen.Params) error {
	s.mouseDx = 0
	id := params.String("dungeonId")
	if id == "" {
		id = s.cfg.Map
	}

	if err := s.load(ctx, id); err != nil {
		var unavailable *unavailableError
		if errors.As(err, &unavailable) {
			s.unavailable = unavailable.Error()
			s.sc.Logger.Error("dungeon view unavailable", "err", err)
			return nil
		}
		return err
	}
	s.unavailable = ""

	if pos := s.sc.Store.Snapshot().Party.Position; pos.MapID == id {
		s.camX, s.camY, s.angle = pos.X, pos.Y, pos.Facing
	} else {
		s.camX, s.camY, s.angle = s.level.Data.Start.X, s.level.Data.Start.Y, 0
	}
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{World: &gamestate.WorldPatch{CurrentMap: &id}}
	})
	s.sc.Store.SetFlag(VisitedFlag(id), true)
	s.syncCamera()
	s.sc.Logger.Debug("entered dungeon", "from", from, "map", id, "x", s.camX, "y", s.camY)
	return nil
}

type unavailableError struct{ err error }

func (e *unavailableError) Error() string {
	switch {
	case errors.Is(e.err, raycast.ErrUnsupported):
		return "GPU rendering is not supported on this system"
	case errors.Is(e.err, raycast.ErrNoAdapter):
		return "No GPU adapter could be acquired"
	default:
		return e.err.Error()
	}
}

func (e *unavailableError) Unwrap() error { return e.err }

// load creates the raycaster if needed and uploads map id unless it is
// already current.
func (s *Screen) load(ctx context.Context, id string) error {
	if s.rc == nil {
		rc, err := raycast.New(s.sc.GPU, s.rcfg, s.sc.Logger)
		if err != nil {
			return &unavailableError{err}
		}
		s.rc = rc
	}
	if err := s.rc.Ready(ctx); err != nil {
		if errors.Is(err, raycast.ErrUnsupported) || errors.Is(err, raycast.ErrNoAdapter) {
			return &unavailableError{err}
		}
		return fmt.Errorf("dungeon: %w", err)
	}
	if id == s.mapID && s.rc.Loaded() {
		return nil
	}

	level, err := maploader.Load(id)
	if err != nil {
		return fmt.Errorf("dungeon %s: %w", id, err)
	}
	walls, err := level.Grid()
	if err != nil {
		return fmt.Errorf("dungeon %s: %w", id, err)
	}
	if err := s.rc.LoadMap(ctx, walls.Cells(), walls.Width(), walls.Height()); err != nil {
		return fmt.Errorf("dungeon %s: %w", id, err)
	}
	s.mapID, s.level, s.walls = id, level, walls
	return nil
}

// Exit releases the pointer and records the camera pose.
func (s *Screen) Exit(context.Context, screen.ID) error {
	if p := s.sc.Pointer; p != nil && p.IsPointerLocked() {
		p.ReleasePointerLock()
	}
	if s.unavailable != "" || s.level == nil {
		return nil
	}
	pos := gamestate.WorldPosition{MapID: s.mapID, X: s.camX, Y: s.camY, Facing: s.angle}
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{Party: &gamestate.PartyPatch{Position: gamestate.PositionTo(pos)}}
	})
	return nil
}

// Resume continues exploring after a modal closes.
func (s *Screen) Resume(context.Context) error {
	s.mouseDx = 0
	return nil
}

// Close releases the raycaster.
func (s *Screen) Close() {
	if s.rc != nil {
		s.rc.Dispose()
		s.rc = nil
	}
}

// Unavailable returns why the view could not start, or "".
func (s *Screen) Unavailable() string { return s.unavailable }

// Camera returns the camera pose.
func (s *Screen) Camera() (x, y, angle float64) { return s.camX, s.camY, s.angle }

// Place sets the camera pose.
func (s *Screen) Place(x, y, angle float64) {
	s.camX, s.camY, s.angle = x, y, angle
	s.syncCamera()
}

// Torch returns the lighting state.
func (s *Screen) Torch() *lighting.Manager { return s.light }

func (s *Screen) Update(dt float64) {
	if s.unavailable != "" || s.walls == nil {
		return
	}

	fx, fy := math.Cos(s.angle), math.Sin(s.angle)
	rx, ry := -fy, fx
	var dx, dy float64
	if s.sc.KeyDown("w", "arrowup") {
		dx += fx
		dy += fy
	}
	if s.sc.KeyDown("s", "arrowdown") {
		dx -= fx
		dy -= fy
	}
	if s.sc.KeyDown("a") {
		dx -= rx
		dy -= ry
	}
	if s.sc.KeyDown("d") {
		dx += rx
		dy += ry
	}
	if l := math.Hypot(dx, dy); l > 0 {
		dx /= l
		dy /= l
		nx := s.camX + dx*s.cfg.MoveSpeed*dt
		ny := s.camY + dy*s.cfg.MoveSpeed*dt
		s.camX, s.camY = s.walls.Slide(s.camX, s.camY, nx, ny, s.cfg.CollisionMargin)
	}

	if s.mouseDx != 0 {
		s.angle += s.mouseDx * s.cfg.LookSpeed * s.cfg.MouseSensitivity
		s.mouseDx = 0
	}
	if s.sc.KeyDown("arrowleft") {
		s.angle -= s.cfg.LookSpeed * dt
	}
	if s.sc.KeyDown("arrowright") {
		s.angle += s.cfg.LookSpeed * dt
	}

	s.light.Update(dt)
	s.syncCamera()
}

func (s *Screen) syncCamera() {
	if s.rc == nil {
		return
	}
	s.rc.SetLight(s.light.Current())
	s.rc.SetCamera(raycast.Camera{X: s.camX, Y: s.camY, Angle: s.angle})
}

// NearbyExit returns the way out within reach, if any.
func (s *Screen) NearbyExit() (maploader.PointOfInterest, bool) {
	if s.level == nil {
		return maploader.PointOfInterest{}, false
	}
	return s.level.Nearest(s.camX, s.camY, exitDistance, "exit")
}

func (s *Screen) HandleInput(ev input.Event) bool {
	switch ev.Type {
	case input.KeyDown:
		switch ev.Key {
		case "c":
			s.openModal(screen.CharacterSheet)
		case "i":
			s.openModal(screen.Inventory)
		case "l":
			on := s.light.ToggleTorch()
			s.sc.Logger.Debug("torch toggled", "on", on)
		case "enter":
			if _, ok := s.NearbyExit(); ok {
				s.leave()
			}
		}
		return true
	case input.KeyUp:
		return true
	case input.MouseMove:
		s.mouseDx += ev.MovementX
		return true
	case input.MouseDown, input.MouseUp:
		return true
	}
	return false
}

func (s *Screen) openModal(id screen.ID) {
	if err := s.sc.Manager.PushModal(id, nil); err != nil {
		s.sc.Logger.Warn("modal unavailable", "id", id, "err", err)
	}
}

func (s *Screen) leave() {
	s.sc.Play(audio.CueDoor)
	if err := s.sc.Manager.Go(context.Background(), screen.Overworld, screen.Options{
		Effect:   screen.Fade,
		Duration: fadeDuration,
	}); err != nil {
		s.sc.Logger.Error("failed to leave dungeon", "err", err)
	}
}

func (s *Screen) Draw(dst render.Image) {
	r := s.sc.Renderer
	w, h := dst.Size()
	if s.unavailable != "" {
		dst.Fill(errorBgColor)
		title := "3D dungeon mode unavailable"
		tw, _ := r.MeasureText(title, 2)
		r.DrawText(dst, title, (w-tw)/2, h/2-40, errorColor, 2)
		mw, _ := r.MeasureText(s.unavailable, 1.2)
		r.DrawText(dst, s.unavailable, (w-mw)/2, h/2, dimColor, 1.2)
		hint := "Press ESC to return to the menu"
		hw, _ := r.MeasureText(hint, 1)
		r.DrawText(dst, hint, (w-hw)/2, h/2+30, dimColor, 1)
		return
	}

	s.rc.Frame(dst)

	torch := "Torch: off"
	if s.light.TorchOn() {
		torch = "Torch: lit"
	}
	r.DrawText(dst, s.level.Data.Name, 10, 10, hudColor, 1.2)
	r.DrawText(dst, torch, 10, 30, dimColor, 1)
	r.DrawText(dst, "WASD move  Mouse/Arrows look  L torch  C/I sheets", 10, h-22, dimColor, 1)

	if p, ok := s.NearbyExit(); ok {
		msg := "Press ENTER: " + p.Name
		mw, _ := r.MeasureText(msg, 1.2)
		r.DrawText(dst, msg, (w-mw)/2, h-60, hudColor, 1.2)
	}
}
