package render

import "math"

// Camera is a top-down viewport. One world unit is TileSize pixels at zoom 1.
type Camera struct {
	X, Y     float64 // world point at the screen center
	Zoom     float64
	MinZoom  float64
	MaxZoom  float64
	ScreenW  int
	ScreenH  int
	TileSize int
	Speed    float64 // pan speed (pixels per second)

	// Map bounds for clamping, in tiles; zero disables clamping
	MapWidth  int
	MapHeight int
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:     1.0,
		MinZoom:  0.25,
		MaxZoom:  4.0,
		ScreenW:  screenW,
		ScreenH:  screenH,
		TileSize: 24,
		Speed:    600,
	}
}

// SetMapBounds sets the map size for camera clamping
func (c *Camera) SetMapBounds(w, h int) {
	c.MapWidth = w
	c.MapHeight = h
	c.clamp()
}

// Scale is the current pixels per world unit.
func (c *Camera) Scale() float64 { return float64(c.TileSize) * c.Zoom }

// Pan moves the camera by pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Scale()
	c.Y += dy / c.Scale()
	c.clamp()
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms toward a screen point, keeping the world point under it fixed
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	c.X += wx - wx2
	c.Y += wy - wy2
	c.clamp()
}

// CenterOn centers the camera on a world position
func (c *Camera) CenterOn(wx, wy float64) {
	c.X, c.Y = wx, wy
	c.clamp()
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	s := c.Scale()
	return (wx-c.X)*s + float64(c.ScreenW)/2, (wy-c.Y)*s + float64(c.ScreenH)/2
}

// ScreenToWorld converts a screen pixel to world coords
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	s := c.Scale()
	return (float64(sx)-float64(c.ScreenW)/2)/s + c.X, (float64(sy)-float64(c.ScreenH)/2)/s + c.Y
}

// VisibleTileRange returns the tiles on screen, padded by one and clipped to the map
func (c *Camera) VisibleTileRange(mapW, mapH int) (minX, minY, maxX, maxY int) {
	wx0, wy0 := c.ScreenToWorld(0, 0)
	wx1, wy1 := c.ScreenToWorld(c.ScreenW, c.ScreenH)
	minX = max(int(math.Floor(wx0))-1, 0)
	minY = max(int(math.Floor(wy0))-1, 0)
	maxX = min(int(math.Ceil(wx1))+1, mapW-1)
	maxY = min(int(math.Ceil(wy1))+1, mapH-1)
	return
}

// clamp keeps the view center on the map.
func (c *Camera) clamp() {
	if c.MapWidth > 0 {
		c.X = math.Max(0, math.Min(float64(c.MapWidth), c.X))
	}
	if c.MapHeight > 0 {
		c.Y = math.Max(0, math.Min(float64(c.MapHeight), c.Y))
	}
}
