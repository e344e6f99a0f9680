package main

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/input"
	"github.com/1siamBot/rts-combat/engine/render"
	"github.com/1siamBot/rts-combat/engine/scenario"
)

const minimapSize = 160

// viewer implements ebiten.Game on top of a built match
type viewer struct {
	app      *app
	match    *scenario.Match
	renderer *render.Renderer
	input    *input.InputState
	selected []core.EntityID
	minimap  bool
	status   string
	width    int
	height   int
}

func newViewer(a *app, w, h int) *viewer {
	v := &viewer{
		app:      a,
		match:    a.match,
		renderer: render.NewRenderer(w, h),
		input:    input.NewInputState(),
		minimap:  true,
		width:    w,
		height:   h,
	}
	tm := v.match.Map
	v.renderer.Camera.SetMapBounds(tm.Width, tm.Height)
	v.renderer.Camera.CenterOn(float64(tm.Width)/2, float64(tm.Height)/2)
	v.renderer.Camera.SetZoom(float64(min(w/tm.Width, h/tm.Height)) / float64(v.renderer.Camera.TileSize))

	world := v.match.World
	world.Events.OnAny(func(e core.Event) { v.renderer.Observe(world, e) })
	world.Events.On(core.EvtInvalidPath, func(e core.Event) { v.status = "path invalid" })

	v.match.Loop.Play()
	return v
}

func (v *viewer) Update() error {
	f := input.Poll()
	if f.Quit {
		return ebiten.Termination
	}
	cam := v.renderer.Camera
	loop := v.match.Loop
	world := v.match.World

	step := cam.Speed / 60
	if f.PanX != 0 || f.PanY != 0 {
		cam.Pan(f.PanX*step, f.PanY*step)
	}
	if f.ScrollY != 0 {
		cam.ZoomAt(f.ScrollY*0.1, f.MouseX, f.MouseY)
	}
	if f.ToggleRanges {
		v.renderer.Options.Ranges = !v.renderer.Options.Ranges
	}
	if f.TogglePaths {
		v.renderer.Options.Paths = !v.renderer.Options.Paths
	}
	if f.ToggleGrid {
		v.renderer.Options.Grid = !v.renderer.Options.Grid
	}
	if f.Pause {
		if loop.State == core.StatePlaying {
			loop.Pause()
		} else if loop.State == core.StatePaused {
			loop.Play()
		}
	}
	if f.Step && loop.State == core.StatePaused {
		loop.Step()
	}

	v.selected = prune(world, v.selected)
	wx, wy := cam.ScreenToWorld(f.MouseX, f.MouseY)
	at := core.V(wx, wy)
	switch v.input.Apply(f) {
	case input.GestureClick:
		id := pick(world, at)
		if !f.Shift {
			v.selected = v.selected[:0]
		}
		if id != 0 && world.Owner(id) != nil && world.Owner(id).FactionID == v.match.Factions.LocalFactionID {
			v.selected = append(v.selected, id)
		}
	case input.GestureBoxSelect:
		sx, sy := cam.ScreenToWorld(v.input.DragStartX, v.input.DragStartY)
		v.selected = boxSelect(world, v.match.Factions.LocalFactionID, core.V(sx, sy), at)
	case input.GestureOrder:
		if code := order(v.match.Combat, v.selected, at); code != core.CodeNone {
			v.status = code.String()
		} else {
			v.status = ""
		}
	}
	if f.NextAttack {
		for _, id := range v.selected {
			if sw := combat.SwitcherOf(world, id); sw != nil && sw.Len() > 1 {
				if code := sw.EnableAttack((sw.ActiveID() + 1) % sw.Len()); code != core.CodeNone {
					v.status = code.String()
				}
			}
		}
	}

	if v.app.audio != nil {
		v.app.audio.SetListener(core.V(cam.X, cam.Y))
	}
	if loop.State == core.StatePlaying {
		if _, ok := v.match.Winner(); ok {
			loop.State = core.StateFinished
		}
	}
	loop.Update()
	v.renderer.Fade()
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})
	world := v.match.World

	v.renderer.DrawMap(screen, v.match.Map)
	v.renderer.DrawWorld(screen, world)
	v.renderer.DrawSelected(screen, world, v.selected)
	if x1, y1, x2, y2, active := v.input.DragRect(); active {
		v.renderer.DrawSelectionBox(screen, x1, y1, x2, y2)
	}
	if v.minimap {
		v.renderer.DrawMinimap(screen, v.match.Map, world, v.width-minimapSize-10, v.height-minimapSize-10, minimapSize)
	}
	v.renderer.DrawText(screen, v.hud(), 8, 8)
}

func (v *viewer) hud() []string {
	loop := v.match.Loop
	fm := v.match.Factions
	state := "playing"
	switch loop.State {
	case core.StatePaused:
		state = "paused"
	case core.StateFinished:
		state = "finished"
		if f, ok := v.match.Winner(); ok {
			state = fmt.Sprintf("finished, faction %d wins", f)
		}
	}
	lines := []string{
		fmt.Sprintf("%s | tick %d | %s | FPS %.0f", v.match.Settings.Scenario.Name, loop.CurrentTick(), state, ebiten.ActualFPS()),
	}
	if fm.InPeaceTime() {
		lines = append(lines, fmt.Sprintf("peace time %.1fs", fm.PeaceTime))
	}

	alive := v.match.Alive()
	factions := make([]int, 0, len(alive))
	for f := range alive {
		factions = append(factions, f)
	}
	sort.Ints(factions)
	for _, id := range factions {
		line := fmt.Sprintf("faction %d: %d alive", id, alive[id])
		if f := fm.GetFaction(id); f != nil {
			line = fmt.Sprintf("%s: %d alive, %d credits", f.Name, alive[id], f.Resources["credits"])
		}
		lines = append(lines, line)
	}

	if len(v.selected) == 1 {
		lines = append(lines, v.describe(v.selected[0])...)
	} else if len(v.selected) > 1 {
		lines = append(lines, fmt.Sprintf("%d selected", len(v.selected)))
	}
	if v.status != "" {
		lines = append(lines, "! "+v.status)
	}
	lines = append(lines, "[WASD] pan [wheel] zoom [space] pause [N] step [R] ranges [P] paths [G] grid [tab] switch attack")
	return lines
}

func (v *viewer) describe(id core.EntityID) []string {
	w := v.match.World
	b := w.Body(id)
	h := w.Health(id)
	out := []string{fmt.Sprintf("#%d %s %d/%d hp", id, b.Code, h.Current, h.Max)}
	if sw := combat.SwitcherOf(w, id); sw != nil {
		a := sw.Active()
		line := fmt.Sprintf("attack %s: %s", a.Code(), a.State())
		if a.HasTarget() {
			line += fmt.Sprintf(" -> #%d", a.Target())
		}
		if a.CooldownActive() {
			line += fmt.Sprintf(" (cooldown %.1fs)", a.CooldownTimer())
		}
		out = append(out, line)
	}
	return out
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}
