package pathfind

import (
	"errors"
	"fmt"
	"math"

	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/maplib"
)

var (
	ErrNoPath      = errors.New("no path")
	ErrOutOfBounds = errors.New("point outside the map")
)

// GridNavigator answers path queries in world units over a NavGrid.
// Flying agents use a separate navigator built with PassAir.
type GridNavigator struct {
	Grid *NavGrid
	Flag maplib.PassFlag
}

func NewGridNavigator(tm *maplib.TileMap, flag maplib.PassFlag) *GridNavigator {
	return &GridNavigator{Grid: NewNavGrid(tm), Flag: flag}
}

// ComputePath returns the corner list from `from` to `to`. The first corner is `from`
// and the last is `to` exactly; intermediate corners are cell centers.
func (n *GridNavigator) ComputePath(from, to core.Vec, agentRadius float64) ([]core.Vec, error) {
	start, ok := n.cell(from)
	if !ok {
		return nil, fmt.Errorf("start %v: %w", from, ErrOutOfBounds)
	}
	goal, ok := n.cell(to)
	if !ok {
		return nil, fmt.Errorf("goal %v: %w", to, ErrOutOfBounds)
	}
	clearance := clearanceCells(agentRadius)
	cells := FindPath(n.Grid, start, goal, n.Flag, clearance)
	if cells == nil {
		return nil, fmt.Errorf("%v -> %v: %w", from, to, ErrNoPath)
	}
	cells = SmoothPath(n.Grid, cells, n.Flag, clearance)

	corners := make([]core.Vec, 0, len(cells)+1)
	corners = append(corners, from)
	if len(cells) > 2 {
		for _, c := range cells[1 : len(cells)-1] {
			corners = append(corners, core.V(float64(c.X)+0.5, float64(c.Y)+0.5))
		}
	}
	if !from.Equal(to) {
		corners = append(corners, to)
	}
	return corners, nil
}

// Walkable reports whether an agent of the given radius may stand at p.
func (n *GridNavigator) Walkable(p core.Vec, agentRadius float64) bool {
	c, ok := n.cell(p)
	return ok && n.Grid.Clear(c.X, c.Y, clearanceCells(agentRadius), n.Flag)
}

func (n *GridNavigator) cell(p core.Vec) (Point, bool) {
	x := int(math.Floor(p.X))
	y := int(math.Floor(p.Y))
	if x < 0 || y < 0 || x >= n.Grid.Width || y >= n.Grid.Height {
		return Point{}, false
	}
	return Point{x, y}, true
}
