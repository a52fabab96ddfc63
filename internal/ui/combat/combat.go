// Package combat is the tactical battle screen: an initiative-ordered turn
// loop on a grid with an action menu, target selection and a simple enemy
// AI.
package combat

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"chosenoffset.com/goldbox/internal/audio"
	encounter "chosenoffset.com/goldbox/internal/combat"
	"chosenoffset.com/goldbox/internal/combat/turn"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/dice"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/ui/narrative"
)

// Phase is where the screen is in the turn loop.
type Phase int

const (
	SelectingAction Phase = iota
	SelectingTarget
	Animating
	Victory
	Defeat
)

func (p Phase) String() string {
	switch p {
	case SelectingAction:
		return "selecting-action"
	case SelectingTarget:
		return "selecting-target"
	case Animating:
		return "animating"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Action is an entry of the action menu.
type Action int

const (
	Attack Action = iota
	Move
	Defend
	End
)

func (a Action) String() string {
	switch a {
	case Attack:
		return "ATTACK"
	case Move:
		return "MOVE"
	case Defend:
		return "DEFEND"
	case End:
		return "END"
	default:
		return "?"
	}
}

var actions = []Action{Attack, Move, Defend, End}

// World counters bumped when a fight ends.
const (
	CounterVictories = "combat_victories"
	CounterDefeats   = "combat_defeats"
)

const (
	CellSize = 48

	attackDelay  = 1.0
	defendDelay  = 0.5
	enemyDelay   = 0.8
	bannerDelay  = 2.0
	goldPerEnemy = 10
	fadeDuration = 500 * time.Millisecond
)

var (
	backgroundColor = color.RGBA{26, 26, 26, 255}
	gridColor       = color.RGBA{51, 51, 51, 255}
	barColor        = color.RGBA{0, 0, 0, 204}
	goldColor       = color.RGBA{212, 175, 55, 255}
	heroColor       = color.RGBA{65, 105, 225, 255}
	enemyColor      = color.RGBA{139, 0, 0, 255}
	heroNameColor   = color.RGBA{77, 171, 247, 255}
	enemyNameColor  = color.RGBA{255, 107, 107, 255}
	activeColor     = color.RGBA{255, 215, 0, 77}
	highlightColor  = color.RGBA{212, 175, 55, 77}
	shadowColor     = color.RGBA{0, 0, 0, 102}
	dimColor        = color.RGBA{170, 170, 170, 255}
	victoryColor    = color.RGBA{74, 222, 128, 255}
	defeatColor     = color.RGBA{239, 68, 68, 255}
	hpMidColor      = color.RGBA{251, 146, 60, 255}
	overlayColor    = color.RGBA{0, 0, 0, 178}
)

// Cell is a grid coordinate.
type Cell struct{ X, Y int }

// Screen is the combat screen.
type Screen struct {
	sc       *screen.Context
	roller   *dice.Roller
	narrator *narrative.TurnNarrator
	panel    *narrative.Panel

	turns  *turn.Manager
	phase  Phase
	action Action
	menu   int
	cursor *Cell

	timer, delay float64
	leaving      bool
	reward       int
}

// New creates the combat screen. roller decides initiative and damage and
// prose varies the log wording.
func New(roller *dice.Roller, prose *narrative.ProseGenerator) *Screen {
	return &Screen{roller: roller, narrator: narrative.NewTurnNarrator(prose)}
}

func (s *Screen) ID() screen.ID { return screen.Combat }

func (s *Screen) Init(_ context.Context, sc *screen.Context) error {
	s.sc = sc
	return nil
}

// Enter resumes the encounter saved in the game state, or builds a new one
// from the encounterType param.
func (s *Screen) Enter(_ context.Context, from screen.ID, params screen.Params) error {
	w, h := s.size()
	s.panel = narrative.NewPanel(w-180, 360, 170, max(h-380, 60))
	s.narrator.Reset()
	s.phase, s.action, s.menu, s.cursor = SelectingAction, Attack, 0, nil
	s.timer, s.delay, s.leaving, s.reward = 0, 0, false, 0

	st := s.sc.Store.Snapshot()
	if st.Combat != nil {
		s.turns = encounter.Restore(*st.Combat)
		s.panel.AddSystemMessage("The battle resumes.", s.turns.Round())
	} else {
		tmpl := encounter.Lookup(params.String("encounterType"))
		list, err := encounter.Build(st.Party.Characters, tmpl, s.roller)
		if err != nil {
			return fmt.Errorf("combat: %w", err)
		}
		s.turns = turn.New(list)
		var names []string
		for _, e := range tmpl.Enemies {
			names = append(names, e.Name+"s")
		}
		s.log(narrative.TurnEvent{Type: narrative.EventEncounter, Target: strings.Join(names, ","), Value: len(tmpl.Enemies)}, narrative.ColorDanger)
	}
	s.turns.OnRoundStart = func(round int) {
		s.log(narrative.TurnEvent{Type: narrative.EventRoundStart, Value: round}, narrative.ColorSystem)
	}
	s.sc.Logger.Info("combat started", "from", from, "combatants", len(s.turns.All()), "round", s.turns.Round())

	s.mirror()
	if s.resolve() {
		return nil
	}
	if cur := s.turns.Current(); cur != nil && cur.IsEnemy {
		s.enemyTurn()
	}
	return nil
}

// Exit keeps the encounter in the game state so it can be resumed.
func (s *Screen) Exit(context.Context, screen.ID) error {
	if s.phase != Victory && s.phase != Defeat {
		s.mirror()
	}
	return nil
}

// Cancel backs out of target selection.
func (s *Screen) Cancel() bool {
	if s.phase != SelectingTarget {
		return false
	}
	s.phase, s.cursor = SelectingAction, nil
	return true
}

// Phase returns the current phase.
func (s *Screen) Phase() Phase { return s.phase }

// Turns returns the turn manager of the running encounter.
func (s *Screen) Turns() *turn.Manager { return s.turns }

// Cursor returns the highlighted cell while selecting a target.
func (s *Screen) Cursor() (Cell, bool) {
	if s.cursor == nil {
		return Cell{}, false
	}
	return *s.cursor, true
}

// Log returns the combat log panel.
func (s *Screen) Log() *narrative.Panel { return s.panel }

func (s *Screen) Update(dt float64) {
	switch s.phase {
	case Animating:
		s.timer += dt
		if s.timer >= s.delay {
			s.timer = 0
			s.phase = SelectingAction
			s.advance()
		}
	case Victory, Defeat:
		s.timer += dt
		if s.timer >= bannerDelay && !s.leaving {
			s.leaving = true
			s.finish()
		}
	}
}

// advance passes the turn and lets the enemy act if it is theirs.
func (s *Screen) advance() {
	s.turns.NextTurn()
	if s.resolve() {
		return
	}
	cur := s.turns.Current()
	cur.Guarding = false
	s.mirror()
	if cur.IsEnemy {
		s.enemyTurn()
	}
}

// resolve ends the fight when one side is down, writing hero hit points
// back to the party and paying out the reward.
func (s *Screen) resolve() bool {
	res := s.turns.IsCombatOver()
	if !res.Over {
		return false
	}
	s.timer, s.cursor = 0, nil
	round := s.turns.Round()

	st := s.sc.Store.Snapshot()
	chars := encounter.WriteBack(st.Party.Characters, s.turns)
	patch := gamestate.Patch{ClearCombat: true, Party: &gamestate.PartyPatch{Characters: chars}}

	if res.HeroesWon {
		s.phase = Victory
		s.reward = goldPerEnemy * (len(s.turns.All()) - len(s.heroes()))
		patch.Party.Gold = gamestate.Ptr(st.Party.Gold + s.reward)
		s.log(narrative.TurnEvent{Type: narrative.EventVictory}, narrative.ColorSystem)
		s.panel.AddSystemMessage(fmt.Sprintf("Found %d gold.", s.reward), round)
		s.sc.Play(audio.CueVictory)
	} else {
		s.phase = Defeat
		// The party is dragged clear of the field with 1 HP each.
		for i := range chars {
			chars[i].HitPoints.Current = max(chars[i].HitPoints.Current, 1)
		}
		s.log(narrative.TurnEvent{Type: narrative.EventDefeat}, narrative.ColorDanger)
		s.sc.Play(audio.CueDefeat)
	}
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch { return patch })
	if res.HeroesWon {
		s.sc.Store.IncrementCounter(CounterVictories, 1)
	} else {
		s.sc.Store.IncrementCounter(CounterDefeats, 1)
	}
	s.sc.Logger.Info("combat over", "heroes_won", res.HeroesWon, "round", round, "reward", s.reward)
	return true
}

func (s *Screen) heroes() []*turn.Combatant {
	var out []*turn.Combatant
	for _, c := range s.turns.All() {
		if !c.IsEnemy {
			out = append(out, c)
		}
	}
	return out
}

func (s *Screen) finish() {
	if err := s.sc.Manager.Go(context.Background(), screen.Overworld, screen.Options{
		Effect:   screen.Fade,
		Duration: fadeDuration,
	}); err != nil {
		s.sc.Logger.Error("failed to leave combat", "err", err)
	}
}

func (s *Screen) mirror() {
	cs := encounter.Mirror(s.turns)
	s.sc.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{Combat: cs}
	})
}

func (s *Screen) log(ev narrative.TurnEvent, clr color.RGBA) {
	if line := s.narrator.Record(ev); line != "" {
		s.panel.AddLogEntry(line, clr, s.turns.Round())
	}
}

func (s *Screen) animate(delay float64) {
	s.phase, s.timer, s.delay = Animating, 0, delay
}

// enemyTurn attacks the first living hero.
func (s *Screen) enemyTurn() {
	ai := s.turns.Current()
	if target := encounter.ChooseTarget(s.turns); target != nil {
		dmg := encounter.Attack(s.turns, s.roller, ai, target)
		for _, line := range s.narrator.RecordAttack(ai.Name, target.Name, dmg, true, !target.Alive()) {
			s.panel.AddLogEntry(line, narrative.ColorDanger, s.turns.Round())
		}
		s.sc.Play(audio.CueHit)
	}
	s.mirror()
	s.animate(enemyDelay)
}

func (s *Screen) HandleInput(ev input.Event) bool {
	switch s.phase {
	case SelectingAction:
		s.handleAction(ev)
	case SelectingTarget:
		s.handleTarget(ev)
	}
	return true
}

func (s *Screen) handleAction(ev input.Event) {
	cur := s.turns.Current()
	if cur == nil || cur.IsEnemy || ev.Type != input.KeyDown {
		return
	}
	switch ev.Key {
	case "arrowup", "w":
		s.menu = (s.menu - 1 + len(actions)) % len(actions)
		s.sc.Play(audio.CueSelect)
	case "arrowdown", "s":
		s.menu = (s.menu + 1) % len(actions)
		s.sc.Play(audio.CueSelect)
	case "enter", " ":
		s.choose(cur)
	}
}

func (s *Screen) choose(cur *turn.Combatant) {
	s.action = actions[s.menu]
	s.sc.Play(audio.CueConfirm)
	switch s.action {
	case End:
		s.log(narrative.TurnEvent{Type: narrative.EventWait, Actor: cur.Name}, narrative.ColorPlain)
		s.advance()
	case Defend:
		cur.Guarding = true
		s.log(narrative.TurnEvent{Type: narrative.EventDefend, Actor: cur.Name}, narrative.ColorPlain)
		s.mirror()
		s.animate(defendDelay)
	case Attack:
		s.phase = SelectingTarget
		c := Cell{cur.GridX, cur.GridY}
		if foes := s.turns.Living(!cur.IsEnemy); len(foes) > 0 {
			c = Cell{foes[0].GridX, foes[0].GridY}
		}
		s.cursor = &c
	case Move:
		s.phase = SelectingTarget
		s.cursor = &Cell{cur.GridX, cur.GridY}
	}
}

func (s *Screen) handleTarget(ev input.Event) {
	switch ev.Type {
	case input.KeyDown:
		switch ev.Key {
		case "escape", "backspace":
			s.Cancel()
		case "arrowup", "w":
			s.nudge(0, -1)
		case "arrowdown", "s":
			s.nudge(0, 1)
		case "arrowleft", "a":
			s.nudge(-1, 0)
		case "arrowright", "d":
			s.nudge(1, 0)
		case "enter", " ":
			if s.cursor != nil {
				s.perform(*s.cursor)
			}
		}
	case input.MouseMove:
		if c, ok := s.ScreenToGrid(ev.X, ev.Y); ok {
			s.cursor = &c
		}
	case input.MouseDown:
		if ev.Button == input.ButtonRight {
			s.Cancel()
			return
		}
		if c, ok := s.ScreenToGrid(ev.X, ev.Y); ok && ev.Button == input.ButtonLeft {
			s.cursor = &c
			s.perform(c)
		}
	}
}

func (s *Screen) nudge(dx, dy int) {
	if s.cursor == nil {
		return
	}
	c := Cell{
		X: max(0, min(s.cursor.X+dx, encounter.GridWidth-1)),
		Y: max(0, min(s.cursor.Y+dy, encounter.GridHeight-1)),
	}
	s.cursor = &c
}

func (s *Screen) perform(c Cell) {
	cur := s.turns.Current()
	if cur == nil {
		return
	}
	switch s.action {
	case Attack:
		target := s.turns.At(c.X, c.Y)
		if target == nil || target.IsEnemy == cur.IsEnemy {
			s.sc.Play(audio.CueMiss)
			return
		}
		dmg := encounter.Attack(s.turns, s.roller, cur, target)
		for _, line := range s.narrator.RecordAttack(cur.Name, target.Name, dmg, false, !target.Alive()) {
			s.panel.AddCombatMessage(line, s.turns.Round())
		}
		s.sc.Play(audio.CueHit)
		s.cursor = nil
		s.mirror()
		s.animate(attackDelay)
	case Move:
		if s.turns.At(c.X, c.Y) != nil {
			s.sc.Play(audio.CueMiss)
			return
		}
		cur.GridX, cur.GridY = c.X, c.Y
		s.log(narrative.TurnEvent{Type: narrative.EventMovement, Actor: cur.Name}, narrative.ColorPlain)
		s.phase, s.cursor = SelectingAction, nil
		s.mirror()
	}
}

func (s *Screen) size() (int, int) {
	if surf := s.sc.Surface(); surf != nil {
		return surf.Size()
	}
	return 960, 720
}

func boardOrigin(w, h int) (float64, float64) {
	return float64(w-encounter.GridWidth*CellSize) / 2,
		float64(h-encounter.GridHeight*CellSize)/2 + 40
}

// ScreenToGrid converts surface coordinates to a board cell.
func (s *Screen) ScreenToGrid(x, y float64) (Cell, bool) {
	w, h := s.size()
	ox, oy := boardOrigin(w, h)
	if x < ox || y < oy {
		return Cell{}, false
	}
	c := Cell{int((x - ox) / CellSize), int((y - oy) / CellSize)}
	if c.X >= encounter.GridWidth || c.Y >= encounter.GridHeight {
		return Cell{}, false
	}
	return c, true
}

// CellCenter returns the surface coordinates of a cell's center.
func (s *Screen) CellCenter(c Cell) (float64, float64) {
	w, h := s.size()
	ox, oy := boardOrigin(w, h)
	return ox + float64(c.X*CellSize) + CellSize/2, oy + float64(c.Y*CellSize) + CellSize/2
}

func (s *Screen) Draw(dst render.Image) {
	r := s.sc.Renderer
	w, h := dst.Size()
	dst.Fill(backgroundColor)

	ox, oy := boardOrigin(w, h)
	bw, bh := float32(encounter.GridWidth*CellSize), float32(encounter.GridHeight*CellSize)
	for x := 0; x <= encounter.GridWidth; x++ {
		sx := float32(ox) + float32(x*CellSize)
		r.StrokeLine(dst, sx, float32(oy), sx, float32(oy)+bh, 1, gridColor)
	}
	for y := 0; y <= encounter.GridHeight; y++ {
		sy := float32(oy) + float32(y*CellSize)
		r.StrokeLine(dst, float32(ox), sy, float32(ox)+bw, sy, 1, gridColor)
	}

	cur := s.turns.Current()
	for _, c := range s.turns.All() {
		if c.Alive() {
			s.drawCombatant(dst, c, c == cur)
		}
	}
	if s.cursor != nil {
		x, y := ox+float64(s.cursor.X*CellSize), oy+float64(s.cursor.Y*CellSize)
		r.FillRect(dst, float32(x), float32(y), CellSize, CellSize, activeColor)
		r.StrokeRect(dst, float32(x), float32(y), CellSize, CellSize, 2, goldColor)
	}

	s.drawUI(dst, cur)
	s.panel.Draw(r, dst)
	if s.phase == Victory || s.phase == Defeat {
		s.drawBanner(dst)
	}
}

func (s *Screen) drawCombatant(dst render.Image, c *turn.Combatant, active bool) {
	r := s.sc.Renderer
	x, y := s.CellCenter(Cell{c.GridX, c.GridY})
	cx, cy := float32(x), float32(y)
	radius := float32(CellSize) / 3

	r.FillCircle(dst, cx, cy+radius*0.8, radius*0.8, shadowColor)
	if active {
		r.FillCircle(dst, cx, cy, radius*1.5, activeColor)
	}
	body := heroColor
	if c.IsEnemy {
		body = enemyColor
	}
	r.FillCircle(dst, cx, cy, radius, body)
	if c.Guarding {
		r.StrokeRect(dst, cx-radius, cy-radius, radius*2, radius*2, 2, goldColor)
	}

	// HP bar
	pct := float32(c.CurrentHP) / float32(max(c.MaxHP, 1))
	pct = max(0, min(pct, 1))
	hp := victoryColor
	switch {
	case pct <= 0.25:
		hp = defeatColor
	case pct <= 0.5:
		hp = hpMidColor
	}
	bx, by := cx-20, cy-radius-10
	r.FillRect(dst, bx, by, 40, 6, gridColor)
	r.FillRect(dst, bx, by, 40*pct, 6, hp)

	nw, _ := r.MeasureText(c.Name, 0.8)
	r.DrawText(dst, c.Name, int(cx)-nw/2, int(cy+radius)+6, color.White, 0.8)
}

func (s *Screen) drawUI(dst render.Image, cur *turn.Combatant) {
	r := s.sc.Renderer
	w, h := dst.Size()

	r.FillRect(dst, 0, 0, float32(w), 40, barColor)
	r.DrawText(dst, fmt.Sprintf("Round %d", s.turns.Round()), 10, 12, goldColor, 1.2)
	if cur != nil {
		r.DrawText(dst, "Turn: "+cur.Name, w/2-60, 12, goldColor, 1.2)
	}

	if s.phase == SelectingAction && cur != nil && !cur.IsEnemy {
		mx, my := 20, h-180
		r.FillRect(dst, float32(mx), float32(my), 200, 160, barColor)
		r.StrokeRect(dst, float32(mx), float32(my), 200, 160, 2, goldColor)
		r.DrawText(dst, "ACTIONS", mx+10, my+10, goldColor, 1.2)
		for i, a := range actions {
			y := my + 40 + i*25
			clr := color.Color(goldColor)
			if i == s.menu {
				r.FillRect(dst, float32(mx+5), float32(y-4), 190, 20, goldColor)
				clr = color.Black
			}
			r.DrawText(dst, a.String(), mx+15, y, clr, 1)
		}
	}
	if s.phase == SelectingTarget {
		hint := fmt.Sprintf("%s: choose a cell (ENTER/click), ESC to cancel", strings.ToLower(s.action.String()))
		r.DrawText(dst, hint, 20, h-30, dimColor, 1)
	}

	// Turn order
	x, y := w-180, 50
	r.FillRect(dst, float32(x), float32(y), 170, 300, barColor)
	r.DrawText(dst, "TURN ORDER", x+10, y+8, goldColor, 1)
	row := 0
	for i, c := range s.turns.All() {
		if !c.Alive() {
			continue
		}
		iy := y + 35 + row*35
		row++
		if i == s.turns.Index() {
			r.FillRect(dst, float32(x+5), float32(iy-4), 160, 30, highlightColor)
		}
		name := heroNameColor
		if c.IsEnemy {
			name = enemyNameColor
		}
		r.DrawText(dst, c.Name, x+10, iy, name, 1)
		r.DrawText(dst, fmt.Sprintf("HP: %d/%d", c.CurrentHP, c.MaxHP), x+10, iy+13, dimColor, 0.8)
	}
}

func (s *Screen) drawBanner(dst render.Image) {
	r := s.sc.Renderer
	w, h := dst.Size()
	r.FillRect(dst, 0, 0, float32(w), float32(h), overlayColor)

	msg, clr := "VICTORY!", victoryColor
	if s.phase == Defeat {
		msg, clr = "DEFEAT...", defeatColor
	}
	mw, _ := r.MeasureText(msg, 4)
	r.DrawText(dst, msg, (w-mw)/2, h/2-30, clr, 4)
	if s.reward > 0 {
		g := fmt.Sprintf("+%d gold", s.reward)
		gw, _ := r.MeasureText(g, 1.4)
		r.DrawText(dst, g, (w-gw)/2, h/2+20, goldColor, 1.4)
	}
	sub := "Returning to overworld..."
	sw, _ := r.MeasureText(sub, 1.4)
	r.DrawText(dst, sub, (w-sw)/2, h/2+50, goldColor, 1.4)
}
