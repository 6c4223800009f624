package main

import "math/rand"

// Cell classification. The numeric values are part of the wire format:
// clients index the grid directly.
type Cell int

const (
	CellEmpty Cell = 0
	CellBlock Cell = 1 // destructible
	CellWall  Cell = 2 // indestructible
)

const (
	MapWidth  = 15
	MapHeight = 13

	// Probability that an eligible interior cell gets a destructible block
	blockFillChance = 0.4
)

// GameMap is the grid for one match. Destructible cells turn empty as
// bombs destroy them; walls never change.
type GameMap struct {
	Grid   [][]Cell `json:"grid" msgpack:"grid"`
	Width  int      `json:"width" msgpack:"width"`
	Height int      `json:"height" msgpack:"height"`
}

// SpawnPositions returns the start corners in seating order:
// top-left, bottom-right, top-right, bottom-left.
func SpawnPositions() []Position {
	return []Position{
		{X: 1, Y: 1},
		{X: MapWidth - 2, Y: MapHeight - 2},
		{X: MapWidth - 2, Y: 1},
		{X: 1, Y: MapHeight - 2},
	}
}

// cornerArea is a rectangular clearance kept free of blocks around a spawn
type cornerArea struct {
	x, y, w, h int
}

func (a cornerArea) contains(x, y int) bool {
	return x >= a.x && x < a.x+a.w && y >= a.y && y < a.y+a.h
}

// clearAreas returns the 2x2 corner clearances for the given player count.
// The clearance order matches SpawnPositions.
func clearAreas(playerCount int) []cornerArea {
	areas := []cornerArea{
		{x: 1, y: 1, w: 2, h: 2},
		{x: MapWidth - 3, y: MapHeight - 3, w: 2, h: 2},
	}
	if playerCount >= 3 {
		areas = append(areas, cornerArea{x: MapWidth - 3, y: 1, w: 2, h: 2})
	}
	if playerCount >= 4 {
		areas = append(areas, cornerArea{x: 1, y: MapHeight - 3, w: 2, h: 2})
	}
	return areas
}

// GenerateMap builds a fresh 15x13 grid: border cells and even/even
// interior cells are walls, spawn corners stay clear, every other
// interior cell rolls independently for a destructible block.
func GenerateMap(playerCount int, rng *rand.Rand) *GameMap {
	grid := make([][]Cell, MapHeight)
	for y := range grid {
		grid[y] = make([]Cell, MapWidth)
	}

	for y := 0; y < MapHeight; y++ {
		for x := 0; x < MapWidth; x++ {
			if x == 0 || y == 0 || x == MapWidth-1 || y == MapHeight-1 {
				grid[y][x] = CellWall
				continue
			}
			if x%2 == 0 && y%2 == 0 {
				grid[y][x] = CellWall
			}
		}
	}

	areas := clearAreas(playerCount)
	for y := 1; y < MapHeight-1; y++ {
	cells:
		for x := 1; x < MapWidth-1; x++ {
			if grid[y][x] == CellWall {
				continue
			}
			for _, a := range areas {
				if a.contains(x, y) {
					continue cells
				}
			}
			if rng.Float64() < blockFillChance {
				grid[y][x] = CellBlock
			}
		}
	}

	return &GameMap{Grid: grid, Width: MapWidth, Height: MapHeight}
}

// CellAt returns the classification of a cell. Out-of-bounds coordinates
// read as walls so movement and blast walks never index out of range.
func (m *GameMap) CellAt(x, y int) Cell {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return CellWall
	}
	return m.Grid[y][x]
}

// IsWall reports whether the cell is indestructible (or out of bounds)
func (m *GameMap) IsWall(x, y int) bool {
	return m.CellAt(x, y) == CellWall
}

// IsBlock reports whether the cell holds a destructible block
func (m *GameMap) IsBlock(x, y int) bool {
	return m.CellAt(x, y) == CellBlock
}

// DestroyBlock turns a destructible cell empty. Returns false if the
// cell was not a block.
func (m *GameMap) DestroyBlock(x, y int) bool {
	if !m.IsBlock(x, y) {
		return false
	}
	m.Grid[y][x] = CellEmpty
	return true
}
