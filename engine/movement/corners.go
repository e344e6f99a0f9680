package movement

import "github.com/1siamBot/rts-combat/engine/core"

// BuildCorners turns a navigation polyline into the corner queue. A point closer than
// minDist to the last kept corner is dropped, and the queue always ends on the real
// final point of the polyline.
func BuildCorners(path []core.Vec, minDist float64) []core.Vec {
	if len(path) == 0 {
		return nil
	}
	corners := make([]core.Vec, 0, len(path))
	corners = append(corners, path[0])
	for _, p := range path[1:] {
		if p.Dist(corners[len(corners)-1]) <= minDist {
			continue
		}
		corners = append(corners, p)
	}
	final := path[len(path)-1]
	if last := corners[len(corners)-1]; !last.Equal(final) {
		corners[len(corners)-1] = final
	}
	return corners
}

// pathLength is the distance left along the queue starting at from.
func pathLength(from core.Vec, corners []core.Vec) float64 {
	total := 0.0
	prev := from
	for _, c := range corners {
		total += prev.Dist(c)
		prev = c
	}
	return total
}
