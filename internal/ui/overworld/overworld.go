// Package overworld is the top-down travel map: party movement, dungeon
// entrances and random encounters.
package overworld

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/dice"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/placeholders"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/world/maploader"
)

const (
	TileSize       = placeholders.TileSize
	ViewportWidth  = 30
	ViewportHeight = 22

	interactDistance = 1.0
	diagonal         = 0.707
	fadeDuration     = 500 * time.Millisecond
)

var (
	barColor    = color.RGBA{0, 0, 0, 178}
	promptColor = color.RGBA{0, 0, 0, 204}
	goldColor   = color.RGBA{212, 175, 55, 255}
	dimColor    = color.RGBA{136, 136, 136, 255}
)

// Screen is the overworld map.
type Screen struct {
	sc     *screen.Context
	cfg    config.OverworldConfig
	roller *dice.Roller

	world *maploader.Map
	tiles []render.Image
	party render.Image

	partyX, partyY float64
	viewX, viewY   float64
	encounterTimer float64
}

// New creates the overworld screen. roller decides random encounters.
func New(cfg config.OverworldConfig, roller *dice.Roller) *Screen {
	return &Screen{cfg: cfg, roller: roller}
}

func (s *Screen) ID() screen.ID { return screen.Overworld }

// Init loads the map and uploads the placeholder tile atlas.
func (s *Screen) Init(_ context.Context, sc *screen.Context) error {
	s.sc = sc
	m, err := maploader.Load(s.cfg.Map)
	if err != nil {
		return fmt.Errorf("overworld: %w", err)
	}
	s.world = m
	s.partyX, s.partyY = m.Data.Start.X, m.Data.Start.Y

	cols := placeholders.TerrainCount()
	atlas := placeholders.CreateAtlas(placeholders.TerrainTiles(), cols)
	img := sc.Renderer.NewImage(atlas.Bounds().Dx(), atlas.Bounds().Dy())
	img.WritePixels(atlas.Pix)
	s.tiles = make([]render.Image, cols)
	for i := range s.tiles {
		s.tiles[i] = img.SubImage(placeholders.AtlasRect(i, cols))
	}

	sprite := placeholders.CreateCircle(placeholders.ColorPalette.Party, placeholders.ColorPalette.PartyTrim)
	s.party = sc.Renderer.NewImage(TileSize, TileSize)
	s.party.WritePixels(sprite.Pix)
	return nil
}

// Enter resumes from the saved position when it is on this map. A position
// inside a dungeon resumes at that dungeon's entrance.
func (s *Screen) Enter(_ context.Context, from screen.ID, _ screen.Params) error {
	pos := s.sc.Store.Snapshot().Party.Position
	if pos.MapID == s.world.Data.Name {
		s.partyX, s.partyY = pos.X, pos.Y
	} else if p, ok := s.world.Point(pos.MapID); ok {
		s.partyX, s.partyY = p.X, p.Y
	}
	name := s.world.Data.Name
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{World: &gamestate.WorldPatch{CurrentMap: &name}}
	})
	s.centerView()
	s.encounterTimer = 0
	s.sc.Logger.Debug("entered overworld", "from", from, "x", s.partyX, "y", s.partyY)
	return nil
}

// Exit records the party position.
func (s *Screen) Exit(context.Context, screen.ID) error {
	s.savePosition()
	return nil
}

// Resume keeps the party where it was when a modal closes.
func (s *Screen) Resume(context.Context) error { return nil }

// Position returns the party position in tiles.
func (s *Screen) Position() (x, y float64) { return s.partyX, s.partyY }

// Place moves the party.
func (s *Screen) Place(x, y float64) {
	s.partyX, s.partyY = x, y
	s.centerView()
}

// View returns the viewport origin in tiles.
func (s *Screen) View() (x, y float64) { return s.viewX, s.viewY }

func (s *Screen) Update(dt float64) {
	var dx, dy float64
	if s.sc.KeyDown("w", "arrowup") {
		dy--
	}
	if s.sc.KeyDown("s", "arrowdown") {
		dy++
	}
	if s.sc.KeyDown("a", "arrowleft") {
		dx--
	}
	if s.sc.KeyDown("d", "arrowright") {
		dx++
	}
	if dx == 0 && dy == 0 {
		return
	}
	if dx != 0 && dy != 0 {
		dx *= diagonal
		dy *= diagonal
	}

	nx := s.partyX + dx*s.cfg.MoveSpeed*dt
	ny := s.partyY + dy*s.cfg.MoveSpeed*dt
	tile, ok := s.world.TileAt(nx, ny)
	if !ok || !Walkable(tile) {
		return
	}
	s.partyX, s.partyY = nx, ny
	s.centerView()

	if tile != placeholders.Grass && tile != placeholders.Forest {
		return
	}
	s.encounterTimer += dt
	if s.encounterTimer < s.cfg.EncounterInterval.Seconds() {
		return
	}
	s.encounterTimer = 0
	if s.roller.Chance(s.cfg.EncounterChance) {
		s.startEncounter()
	}
}

// Walkable reports whether the party may stand on a terrain code.
func Walkable(tile int) bool {
	return tile != placeholders.Mountain && tile != placeholders.Water
}

// NearbyDungeon returns the dungeon entrance within reach, if any.
func (s *Screen) NearbyDungeon() (maploader.PointOfInterest, bool) {
	return s.world.Nearest(s.partyX, s.partyY, interactDistance, "dungeon")
}

func (s *Screen) startEncounter() {
	s.sc.Logger.Info("random encounter", "x", s.partyX, "y", s.partyY)
	s.sc.Play(audio.CueEncounter)
	if err := s.sc.Manager.Go(context.Background(), screen.Combat, screen.Options{
		Effect: screen.Instant,
		Params: screen.Params{"encounterType": "random"},
	}); err != nil {
		s.sc.Logger.Error("failed to start encounter", "err", err)
	}
}

func (s *Screen) enterDungeon(p maploader.PointOfInterest) {
	s.savePosition()
	id := p.ID
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{World: &gamestate.WorldPatch{CurrentMap: &id}}
	})
	s.sc.Play(audio.CueDoor)
	if err := s.sc.Manager.Go(context.Background(), screen.Dungeon, screen.Options{
		Effect:   screen.Fade,
		Duration: fadeDuration,
		Params:   screen.Params{"dungeonId": id},
	}); err != nil {
		s.sc.Logger.Error("failed to enter dungeon", "dungeon", id, "err", err)
	}
}

func (s *Screen) savePosition() {
	pos := gamestate.WorldPosition{MapID: s.world.Data.Name, X: s.partyX, Y: s.partyY}
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{Party: &gamestate.PartyPatch{Position: gamestate.PositionTo(pos)}}
	})
}

func (s *Screen) HandleInput(ev input.Event) bool {
	if ev.Type == input.KeyUp {
		return isMoveKey(ev.Key)
	}
	if ev.Type != input.KeyDown {
		return false
	}
	switch ev.Key {
	case "enter":
		if p, ok := s.NearbyDungeon(); ok {
			s.enterDungeon(p)
		}
		return true
	case "c":
		s.openModal(screen.CharacterSheet)
		return true
	case "i":
		s.openModal(screen.Inventory)
		return true
	}
	return isMoveKey(ev.Key)
}

func (s *Screen) openModal(id screen.ID) {
	if err := s.sc.Manager.PushModal(id, nil); err != nil {
		s.sc.Logger.Warn("modal unavailable", "id", id, "err", err)
	}
}

func isMoveKey(key string) bool {
	switch key {
	case "w", "a", "s", "d", "arrowup", "arrowdown", "arrowleft", "arrowright":
		return true
	}
	return false
}

// centerView centers the viewport on the party, clamped to the map.
func (s *Screen) centerView() {
	d := s.world.Data
	s.viewX = math.Max(0, math.Min(s.partyX-ViewportWidth/2, float64(d.Width-ViewportWidth)))
	s.viewY = math.Max(0, math.Min(s.partyY-ViewportHeight/2, float64(d.Height-ViewportHeight)))
}

func (s *Screen) Draw(dst render.Image) {
	dst.Fill(color.Black)
	d := s.world.Data

	startX, startY := int(math.Floor(s.viewX)), int(math.Floor(s.viewY))
	endX := min(int(math.Ceil(s.viewX+ViewportWidth)), d.Width)
	endY := min(int(math.Ceil(s.viewY+ViewportHeight)), d.Height)
	for ty := startY; ty < endY; ty++ {
		for tx := startX; tx < endX; tx++ {
			sx := (float64(tx) - s.viewX) * TileSize
			sy := (float64(ty) - s.viewY) * TileSize
			s.drawTile(dst, d.Tiles[ty*d.Width+tx], sx, sy)
		}
	}

	opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	opts.GeoM.Translate((s.partyX-s.viewX)*TileSize-TileSize/2, (s.partyY-s.viewY)*TileSize-TileSize/2)
	dst.DrawImage(s.party, opts)

	s.drawUI(dst)
}

func (s *Screen) drawTile(dst render.Image, code int, x, y float64) {
	if code < 0 || code >= len(s.tiles) {
		s.sc.Renderer.FillRect(dst, float32(x), float32(y), TileSize, TileSize, placeholders.ColorPalette.Unknown)
		return
	}
	opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	opts.GeoM.Translate(x, y)
	dst.DrawImage(s.tiles[code], opts)
}

func (s *Screen) drawUI(dst render.Image) {
	r := s.sc.Renderer
	w, h := dst.Size()
	st := s.sc.Store.Snapshot()

	r.FillRect(dst, 0, 0, float32(w), 40, barColor)
	r.DrawText(dst, fmt.Sprintf("Gold: %d", st.Party.Gold), w-150, 12, goldColor, 1.2)
	r.DrawText(dst, "C: Character  I: Inventory", 10, 12, dimColor, 1)

	r.FillRect(dst, 0, float32(h-30), 200, 30, barColor)
	r.DrawText(dst, fmt.Sprintf("Pos: (%d, %d)", int(s.partyX), int(s.partyY)), 10, h-22, dimColor, 1)

	p, ok := s.NearbyDungeon()
	if !ok {
		return
	}
	y := h - 60
	r.FillRect(dst, 0, float32(y), float32(w), 60, promptColor)
	nw, _ := r.MeasureText(p.Name, 1.4)
	r.DrawText(dst, p.Name, (w-nw)/2, y+8, goldColor, 1.4)
	hint := "Press ENTER to enter dungeon"
	hw, _ := r.MeasureText(hint, 1)
	r.DrawText(dst, hint, (w-hw)/2, y+36, goldColor, 1)
}
