package pathfind

import (
	"container/heap"
	"math"

	"github.com/1siamBot/rts-combat/engine/maplib"
)

// Point represents a 2D integer coordinate
type Point struct{ X, Y int }

// MaxExpanded bounds a single search so an unreachable goal cannot stall a tick.
const MaxExpanded = 20000

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath finds a path from start to goal using A*. Every cell on the path other than
// the start keeps clearance free cells around it. Returns nil when there is no path.
func FindPath(ng *NavGrid, start, goal Point, flag maplib.PassFlag, clearance int) []Point {
	if !ng.Clear(goal.X, goal.Y, clearance, flag) {
		return nil
	}
	if start == goal {
		return []Point{start}
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{p: start, g: 0, f: heuristic(start, goal)})

	came := make(map[Point]Point)
	gScore := map[Point]float64{start: 0}
	expanded := 0

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.p == goal {
			return reconstructPath(came, goal)
		}
		if cur.g > gScore[cur.p] {
			continue // stale heap entry
		}
		expanded++
		if expanded > MaxExpanded {
			return nil
		}

		for _, d := range dirs {
			nx, ny := cur.p.X+d[0], cur.p.Y+d[1]
			if !ng.Clear(nx, ny, clearance, flag) {
				continue
			}
			// Prevent diagonal cutting through walls
			if d[0] != 0 && d[1] != 0 {
				if !ng.Clear(cur.p.X+d[0], cur.p.Y, clearance, flag) || !ng.Clear(cur.p.X, cur.p.Y+d[1], clearance, flag) {
					continue
				}
			}
			np := Point{nx, ny}
			moveCost := ng.Cost(nx, ny)
			if d[0] != 0 && d[1] != 0 {
				moveCost *= math.Sqrt2
			}
			tentG := gScore[cur.p] + moveCost
			if old, ok := gScore[np]; ok && tentG >= old {
				continue
			}
			gScore[np] = tentG
			came[np] = cur.p
			heap.Push(open, &node{p: np, g: tentG, f: tentG + heuristic(np, goal)})
		}
	}
	return nil // no path
}

// SmoothPath removes unnecessary waypoints using line-of-sight checks
func SmoothPath(ng *NavGrid, path []Point, flag maplib.PassFlag, clearance int) []Point {
	if len(path) <= 2 {
		return path
	}
	smooth := []Point{path[0]}
	cur := 0
	for cur < len(path)-1 {
		farthest := cur + 1
		for i := len(path) - 1; i > cur+1; i-- {
			if lineOfSight(ng, path[cur], path[i], flag, clearance) {
				farthest = i
				break
			}
		}
		smooth = append(smooth, path[farthest])
		cur = farthest
	}
	return smooth
}

// lineOfSight walks a supercover line so diagonal steps never clip a blocked corner.
func lineOfSight(ng *NavGrid, a, b Point, flag maplib.PassFlag, clearance int) bool {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy
	x, y := a.X, a.Y
	for {
		if (x != a.X || y != a.Y) && !ng.Clear(x, y, clearance, flag) {
			return false
		}
		if x == b.X && y == b.Y {
			return true
		}
		e2 := err * 2
		if e2 > -dy && e2 < dx {
			// diagonal step: both side cells must be open too
			if !ng.Clear(x+sx, y, clearance, flag) || !ng.Clear(x, y+sy, clearance, flag) {
				return false
			}
		}
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func heuristic(a, b Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

func reconstructPath(came map[Point]Point, goal Point) []Point {
	path := []Point{goal}
	cur := goal
	for {
		prev, ok := came[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// --- Priority queue ---

type node struct {
	p    Point
	g, f float64
}

type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
