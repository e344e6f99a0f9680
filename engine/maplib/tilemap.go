package maplib

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/1siamBot/rts-combat/engine/core"
)

// TerrainType defines the terrain of a tile
type TerrainType uint8

const (
	TerrainGrass TerrainType = iota
	TerrainDirt
	TerrainSand
	TerrainWater
	TerrainRock
	TerrainCliff
	TerrainRoad
	TerrainForest
)

// Passability flags
type PassFlag uint8

const (
	PassInfantry PassFlag = 1 << iota
	PassVehicle
	PassNaval
	PassAir
	PassGround PassFlag = PassInfantry | PassVehicle
	PassAll    PassFlag = PassInfantry | PassVehicle | PassNaval | PassAir
)

// Tile represents a single map tile
type Tile struct {
	Terrain  TerrainType `json:"terrain"`
	Height   int8        `json:"height"` // elevation level (0-7)
	Passable PassFlag    `json:"passable"`
	Occupied bool        `json:"-"` // runtime: building placed here
}

// TileMap represents the battlefield. One tile is one world unit.
type TileMap struct {
	Name        string  `json:"name"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	HeightScale float64 `json:"height_scale"` // world units per elevation level
	Tiles       []Tile  `json:"tiles"`
}

// NewTileMap creates a new flat grass map
func NewTileMap(name string, width, height int) *TileMap {
	tm := &TileMap{
		Name:        name,
		Width:       width,
		Height:      height,
		HeightScale: 0.5,
		Tiles:       make([]Tile, width*height),
	}
	for i := range tm.Tiles {
		tm.Tiles[i] = Tile{
			Terrain:  TerrainGrass,
			Passable: PassAll &^ PassNaval,
		}
	}
	return tm
}

// ParseRows builds a map from text rows, one rune per tile:
// '.' grass, ',' road, 'f' forest, '~' water, '#' cliff, 'r' rock, '0'-'7' grass at that elevation.
func ParseRows(name string, rows []string) (*TileMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("map %q has no rows", name)
	}
	w := len(rows[0])
	tm := NewTileMap(name, w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("map %q row %d has width %d, want %d", name, y, len(row), w)
		}
		for x, c := range row {
			switch {
			case c == '.':
			case c == ',':
				tm.SetTerrain(x, y, x, y, TerrainRoad)
			case c == 'f':
				tm.SetTerrain(x, y, x, y, TerrainForest)
			case c == '~':
				tm.SetTerrain(x, y, x, y, TerrainWater)
			case c == '#':
				tm.SetTerrain(x, y, x, y, TerrainCliff)
			case c == 'r':
				tm.SetTerrain(x, y, x, y, TerrainRock)
			case c >= '0' && c <= '7':
				tm.At(x, y).Height = int8(c - '0')
			default:
				return nil, fmt.Errorf("map %q: unknown tile %q at %d,%d", name, c, x, y)
			}
		}
	}
	return tm, nil
}

// At returns a pointer to the tile at (x, y)
func (tm *TileMap) At(x, y int) *Tile {
	if x < 0 || y < 0 || x >= tm.Width || y >= tm.Height {
		return nil
	}
	return &tm.Tiles[y*tm.Width+x]
}

// InBounds checks if coordinates are within map bounds
func (tm *TileMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < tm.Width && y < tm.Height
}

// IsPassable checks if a tile can be traversed by a given movement type
func (tm *TileMap) IsPassable(x, y int, flag PassFlag) bool {
	t := tm.At(x, y)
	if t == nil {
		return false
	}
	return t.Passable&flag != 0 && !t.Occupied
}

// SampleHeight returns the ground height under a world point, bilinearly
// interpolated between tile centers.
func (tm *TileMap) SampleHeight(at core.Vec) float64 {
	fx := at.X - 0.5
	fy := at.Y - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	h00 := tm.levelAt(x0, y0)
	h10 := tm.levelAt(x0+1, y0)
	h01 := tm.levelAt(x0, y0+1)
	h11 := tm.levelAt(x0+1, y0+1)
	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return (top + (bottom-top)*ty) * tm.HeightScale
}

// levelAt clamps to the map edge so sampling outside the map stays continuous.
func (tm *TileMap) levelAt(x, y int) float64 {
	x = max(0, min(x, tm.Width-1))
	y = max(0, min(y, tm.Height-1))
	return float64(tm.Tiles[y*tm.Width+x].Height)
}

// SaveJSON saves the map to a JSON file
func (tm *TileMap) SaveJSON(path string) error {
	data, err := json.MarshalIndent(tm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode map %q: %w", tm.Name, err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJSON loads a map from a JSON file
func LoadJSON(path string) (*TileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tm TileMap
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("decode map %s: %w", path, err)
	}
	if len(tm.Tiles) != tm.Width*tm.Height {
		return nil, fmt.Errorf("map %s: %d tiles for %dx%d", path, len(tm.Tiles), tm.Width, tm.Height)
	}
	return &tm, nil
}

// SetTerrain sets terrain for a rectangular region
func (tm *TileMap) SetTerrain(x1, y1, x2, y2 int, terrain TerrainType) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if t := tm.At(x, y); t != nil {
				t.Terrain = terrain
				// Update passability based on terrain
				switch terrain {
				case TerrainWater:
					t.Passable = PassNaval | PassAir
				case TerrainCliff:
					t.Passable = PassAir
				case TerrainRock:
					t.Passable = PassInfantry | PassAir
				default:
					t.Passable = PassAll &^ PassNaval
				}
			}
		}
	}
}

// SetOccupied marks a tile as occupied/unoccupied by a building
func (tm *TileMap) SetOccupied(x, y int, occupied bool) {
	if t := tm.At(x, y); t != nil {
		t.Occupied = occupied
	}
}
