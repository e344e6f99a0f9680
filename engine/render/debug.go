package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/maplib"
	"github.com/1siamBot/rts-combat/engine/movement"
)

// TerrainColors maps terrain types to flat debug colors
var TerrainColors = map[maplib.TerrainType]color.RGBA{
	maplib.TerrainGrass:  {34, 139, 34, 255},
	maplib.TerrainDirt:   {139, 119, 101, 255},
	maplib.TerrainSand:   {238, 214, 175, 255},
	maplib.TerrainWater:  {30, 144, 255, 255},
	maplib.TerrainRock:   {128, 128, 128, 255},
	maplib.TerrainCliff:  {105, 105, 105, 255},
	maplib.TerrainRoad:   {169, 169, 169, 255},
	maplib.TerrainForest: {0, 100, 0, 255},
}

// FactionColors tints entities by owner. Unknown factions draw white.
var FactionColors = map[int]color.RGBA{
	1: {60, 120, 255, 255},
	2: {230, 50, 50, 255},
	3: {240, 200, 40, 255},
	4: {170, 80, 220, 255},
}

var (
	freeColor       = color.RGBA{220, 220, 220, 255}
	rangeColor      = color.RGBA{255, 255, 255, 60}
	targetColor     = color.RGBA{255, 80, 80, 160}
	pathColor       = color.RGBA{255, 255, 255, 120}
	projectileColor = color.RGBA{255, 230, 90, 255}
	selColor        = color.RGBA{0, 255, 0, 200}
)

// Options toggles debug overlays.
type Options struct {
	Ranges bool
	Paths  bool
	Health bool
	Grid   bool
}

// flash is a short-lived marker spawned from a simulation event.
type flash struct {
	from, to core.Vec
	radius   float64
	clr      color.RGBA
	frames   int
}

const flashFrames = 12

// Renderer draws the simulation state with flat shapes.
type Renderer struct {
	Camera  *Camera
	Options Options
	face    *text.GoXFace
	flashes []flash
}

// NewRenderer creates a renderer with all overlays on
func NewRenderer(screenW, screenH int) *Renderer {
	return &Renderer{
		Camera:  NewCamera(screenW, screenH),
		Options: Options{Ranges: true, Paths: true, Health: true},
		face:    text.NewGoXFace(basicfont.Face7x13),
	}
}

// Observe turns combat events into transient markers.
func (r *Renderer) Observe(w *core.World, e core.Event) {
	switch e.Type {
	case core.EvtAttackPerformed:
		from, ok := w.CommittedPosition(e.Source)
		if !ok || !e.Flag {
			return
		}
		r.flashes = append(r.flashes, flash{from: from, to: e.Pos, clr: projectileColor, frames: flashFrames})
	case core.EvtProjectileHit:
		r.flashes = append(r.flashes, flash{from: e.Pos, radius: 0.6, clr: color.RGBA{255, 140, 0, 220}, frames: flashFrames})
	case core.EvtEntityDead:
		r.flashes = append(r.flashes, flash{from: e.Pos, radius: 1, clr: color.RGBA{255, 0, 0, 255}, frames: flashFrames * 2})
	}
}

// FlashCount is the number of markers still on screen.
func (r *Renderer) FlashCount() int { return len(r.flashes) }

// Fade ages markers by one frame and drops the expired ones.
func (r *Renderer) Fade() {
	live := r.flashes[:0]
	for _, f := range r.flashes {
		f.frames--
		if f.frames > 0 {
			live = append(live, f)
		}
	}
	r.flashes = live
}

// DrawMap fills the visible tiles
func (r *Renderer) DrawMap(screen *ebiten.Image, tm *maplib.TileMap) {
	minX, minY, maxX, maxY := r.Camera.VisibleTileRange(tm.Width, tm.Height)
	s := float32(r.Camera.Scale())
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			tile := tm.At(x, y)
			if tile == nil {
				continue
			}
			clr, ok := TerrainColors[tile.Terrain]
			if !ok {
				clr = color.RGBA{128, 128, 128, 255}
			}
			sx, sy := r.Camera.WorldToScreen(float64(x), float64(y))
			vector.DrawFilledRect(screen, float32(sx), float32(sy), s+1, s+1, shade(clr, tile.Height), false)
			if r.Options.Grid {
				vector.StrokeRect(screen, float32(sx), float32(sy), s, s, 1, color.RGBA{0, 0, 0, 40}, false)
			}
		}
	}
}

// shade brightens higher ground.
func shade(c color.RGBA, level int8) color.RGBA {
	boost := int(level) * 12
	return color.RGBA{clampByte(int(c.R) + boost), clampByte(int(c.G) + boost), clampByte(int(c.B) + boost), c.A}
}

func clampByte(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

// DrawWorld draws every entity with its overlays, then projectiles and markers.
func (r *Renderer) DrawWorld(screen *ebiten.Image, w *core.World) {
	s := r.Camera.Scale()
	for _, id := range w.Query(core.CompPosition, core.CompBody) {
		pos := w.Position(id)
		body := w.Body(id)
		clr := factionColor(w.Owner(id))
		sx, sy := r.Camera.WorldToScreen(pos.X, pos.Y)
		radius := float32(math.Max(body.Radius, 0.2) * s)

		if r.Options.Paths {
			if m, ok := w.Get(id, core.CompMover).(*movement.Mover); ok && m.IsMoving() {
				r.drawPath(screen, pos.Vec(), m.Corners())
			}
		}
		if set := combat.SwitcherOf(w, id); set != nil && !w.Dead(id) {
			r.drawAttack(screen, pos.Vec(), set.Active())
		}

		if body.Kind == core.KindBuilding {
			vector.DrawFilledRect(screen, float32(sx)-radius, float32(sy)-radius, radius*2, radius*2, clr, false)
		} else {
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), radius, clr, true)
			fx := sx + math.Cos(pos.Facing)*float64(radius)*1.4
			fy := sy + math.Sin(pos.Facing)*float64(radius)*1.4
			vector.StrokeLine(screen, float32(sx), float32(sy), float32(fx), float32(fy), 2, color.Black, true)
		}
		if body.Flying {
			vector.StrokeCircle(screen, float32(sx), float32(sy), radius+3, 1, color.White, true)
		}

		if r.Options.Health {
			if h := w.Health(id); h != nil && h.Max > 0 {
				r.drawHealthBar(screen, sx, sy-float64(radius)-6, float64(radius)*2, h.Ratio())
			}
		}
	}

	for _, id := range w.Query(core.CompPosition, core.CompProjectile) {
		pos := w.Position(id)
		sx, sy := r.Camera.WorldToScreen(pos.X, pos.Y)
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), 3, projectileColor, true)
	}

	r.drawFlashes(screen)
}

func (r *Renderer) drawAttack(screen *ebiten.Image, at core.Vec, a *combat.Attacker) {
	sx, sy := r.Camera.WorldToScreen(at.X, at.Y)
	s := r.Camera.Scale()
	if r.Options.Ranges && a.Spec().SearchRange > 0 {
		vector.StrokeCircle(screen, float32(sx), float32(sy), float32(a.Spec().SearchRange*s), 1, rangeColor, true)
	}
	if a.WeaponVisible() {
		wx := sx + math.Cos(a.WeaponFacing())*s*0.8
		wy := sy + math.Sin(a.WeaponFacing())*s*0.8
		vector.StrokeLine(screen, float32(sx), float32(sy), float32(wx), float32(wy), 3, color.RGBA{40, 40, 40, 255}, true)
	}
	if a.HasTarget() || a.TerrainAttack() {
		tp := a.TargetPosition()
		tx, ty := r.Camera.WorldToScreen(tp.X, tp.Y)
		vector.StrokeLine(screen, float32(sx), float32(sy), float32(tx), float32(ty), 1, targetColor, true)
	}
}

func (r *Renderer) drawPath(screen *ebiten.Image, from core.Vec, corners []core.Vec) {
	px, py := r.Camera.WorldToScreen(from.X, from.Y)
	for _, c := range corners {
		cx, cy := r.Camera.WorldToScreen(c.X, c.Y)
		vector.StrokeLine(screen, float32(px), float32(py), float32(cx), float32(cy), 1, pathColor, true)
		vector.DrawFilledCircle(screen, float32(cx), float32(cy), 2, pathColor, true)
		px, py = cx, cy
	}
}

func (r *Renderer) drawHealthBar(screen *ebiten.Image, cx, top, width, ratio float64) {
	x := float32(cx - width/2)
	vector.DrawFilledRect(screen, x, float32(top), float32(width), 3, color.RGBA{0, 0, 0, 200}, false)
	clr := color.RGBA{0, 220, 0, 255}
	switch {
	case ratio < 0.3:
		clr = color.RGBA{220, 0, 0, 255}
	case ratio < 0.6:
		clr = color.RGBA{230, 200, 0, 255}
	}
	vector.DrawFilledRect(screen, x, float32(top), float32(width*ratio), 3, clr, false)
}

func (r *Renderer) drawFlashes(screen *ebiten.Image) {
	s := r.Camera.Scale()
	for _, f := range r.flashes {
		clr := f.clr
		clr.A = uint8(int(clr.A) * f.frames / (flashFrames * 2))
		fx, fy := r.Camera.WorldToScreen(f.from.X, f.from.Y)
		if f.radius > 0 {
			vector.StrokeCircle(screen, float32(fx), float32(fy), float32(f.radius*s), 2, clr, true)
			continue
		}
		tx, ty := r.Camera.WorldToScreen(f.to.X, f.to.Y)
		vector.StrokeLine(screen, float32(fx), float32(fy), float32(tx), float32(ty), 2, clr, true)
	}
}

func factionColor(o *core.Owner) color.RGBA {
	if o == nil || o.Free {
		return freeColor
	}
	if c, ok := FactionColors[o.FactionID]; ok {
		return c
	}
	return color.RGBA{255, 255, 255, 255}
}

// DrawSelectionBox draws the drag rectangle in screen space
func (r *Renderer) DrawSelectionBox(screen *ebiten.Image, x1, y1, x2, y2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	vector.StrokeRect(screen, float32(x1), float32(y1), float32(x2-x1), float32(y2-y1), 1, selColor, false)
}

// DrawSelected rings the given entities
func (r *Renderer) DrawSelected(screen *ebiten.Image, w *core.World, ids []core.EntityID) {
	s := r.Camera.Scale()
	for _, id := range ids {
		pos, body := w.Position(id), w.Body(id)
		if pos == nil || body == nil {
			continue
		}
		sx, sy := r.Camera.WorldToScreen(pos.X, pos.Y)
		vector.StrokeCircle(screen, float32(sx), float32(sy), float32(math.Max(body.Radius, 0.2)*s)+2, 1, selColor, true)
	}
}

// DrawMinimap draws the map, entity dots and the viewport in a corner
func (r *Renderer) DrawMinimap(screen *ebiten.Image, tm *maplib.TileMap, w *core.World, posX, posY, size int) {
	minimap := ebiten.NewImage(size, size)
	defer minimap.Deallocate()
	minimap.Fill(color.RGBA{0, 0, 0, 180})

	scaleX := float64(size) / float64(tm.Width)
	scaleY := float64(size) / float64(tm.Height)

	for y := 0; y < tm.Height; y++ {
		for x := 0; x < tm.Width; x++ {
			tile := tm.At(x, y)
			clr, ok := TerrainColors[tile.Terrain]
			if !ok {
				clr = color.RGBA{128, 128, 128, 255}
			}
			vector.DrawFilledRect(minimap, float32(float64(x)*scaleX), float32(float64(y)*scaleY), float32(scaleX)+1, float32(scaleY)+1, clr, false)
		}
	}

	for _, id := range w.Query(core.CompPosition, core.CompBody) {
		pos := w.Position(id)
		vector.DrawFilledRect(minimap, float32(pos.X*scaleX)-1, float32(pos.Y*scaleY)-1, 3, 3, factionColor(w.Owner(id)), false)
	}

	wx0, wy0 := r.Camera.ScreenToWorld(0, 0)
	wx1, wy1 := r.Camera.ScreenToWorld(r.Camera.ScreenW, r.Camera.ScreenH)
	vector.StrokeRect(minimap, float32(wx0*scaleX), float32(wy0*scaleY), float32((wx1-wx0)*scaleX), float32((wy1-wy0)*scaleY), 1, color.RGBA{255, 255, 255, 200}, false)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(posX), float64(posY))
	screen.DrawImage(minimap, op)
}

// DrawText prints lines top-left of (x, y)
func (r *Renderer) DrawText(screen *ebiten.Image, lines []string, x, y int) {
	lineH := r.face.Metrics().HAscent + r.face.Metrics().HDescent + 2
	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x), float64(y)+float64(i)*lineH)
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, l, r.face, op)
	}
}
