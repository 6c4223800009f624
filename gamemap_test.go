package main

import (
	"math/rand"
	"testing"
)

func TestGenerateMapStructure(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		m := GenerateMap(4, rand.New(rand.NewSource(seed)))

		if m.Width != MapWidth || m.Height != MapHeight {
			t.Fatalf("dimensions = %dx%d, want %dx%d", m.Width, m.Height, MapWidth, MapHeight)
		}
		for y := 0; y < MapHeight; y++ {
			for x := 0; x < MapWidth; x++ {
				border := x == 0 || y == 0 || x == MapWidth-1 || y == MapHeight-1
				pillar := x%2 == 0 && y%2 == 0
				if (border || pillar) && m.Grid[y][x] != CellWall {
					t.Errorf("seed %d: (%d,%d) = %v, want wall", seed, x, y, m.Grid[y][x])
				}
				if !border && !pillar && m.Grid[y][x] == CellWall {
					t.Errorf("seed %d: unexpected wall at (%d,%d)", seed, x, y)
				}
			}
		}
	}
}

func TestGenerateMapCornerClearances(t *testing.T) {
	for players := 2; players <= 4; players++ {
		for seed := int64(0); seed < 10; seed++ {
			m := GenerateMap(players, rand.New(rand.NewSource(seed)))
			for _, a := range clearAreas(players) {
				for y := a.y; y < a.y+a.h; y++ {
					for x := a.x; x < a.x+a.w; x++ {
						if m.Grid[y][x] == CellBlock {
							t.Errorf("players=%d seed=%d: block inside clearance at (%d,%d)", players, seed, x, y)
						}
					}
				}
			}
		}
	}
}

func TestGenerateMapTwoPlayersKeepsFarCornersUncleared(t *testing.T) {
	// With 2 players only the top-left and bottom-right corners are
	// reserved; over many seeds the other corners must see blocks.
	blocked := false
	for seed := int64(0); seed < 30 && !blocked; seed++ {
		m := GenerateMap(2, rand.New(rand.NewSource(seed)))
		if m.IsBlock(MapWidth-2, 1) || m.IsBlock(1, MapHeight-2) {
			blocked = true
		}
	}
	if !blocked {
		t.Error("unreserved corners never received a block across 30 seeds")
	}
}

func TestGenerateMapBlockFill(t *testing.T) {
	// Fill ratio over eligible cells should track the configured chance.
	total, blocks := 0, 0
	for seed := int64(0); seed < 50; seed++ {
		m := GenerateMap(2, rand.New(rand.NewSource(seed)))
		areas := clearAreas(2)
		for y := 1; y < MapHeight-1; y++ {
		cells:
			for x := 1; x < MapWidth-1; x++ {
				if m.Grid[y][x] == CellWall {
					continue
				}
				for _, a := range areas {
					if a.contains(x, y) {
						continue cells
					}
				}
				total++
				if m.Grid[y][x] == CellBlock {
					blocks++
				}
			}
		}
	}
	ratio := float64(blocks) / float64(total)
	if ratio < 0.3 || ratio > 0.5 {
		t.Errorf("block fill ratio = %.3f over %d cells, want near %.1f", ratio, total, blockFillChance)
	}
}

func TestSpawnPositionsAreDistinctAndClear(t *testing.T) {
	spawns := SpawnPositions()
	if len(spawns) != MaxPlayersPerMatch {
		t.Fatalf("spawn count = %d, want %d", len(spawns), MaxPlayersPerMatch)
	}
	seen := make(map[Position]bool)
	m := GenerateMap(4, rand.New(rand.NewSource(7)))
	for i, s := range spawns {
		if seen[s] {
			t.Errorf("duplicate spawn %+v", s)
		}
		seen[s] = true
		if m.CellAt(s.X, s.Y) != CellEmpty {
			t.Errorf("spawn %d at %+v is not empty", i, s)
		}
	}
	// First two spawns are opposite corners
	if spawns[0] != (Position{X: 1, Y: 1}) || spawns[1] != (Position{X: MapWidth - 2, Y: MapHeight - 2}) {
		t.Errorf("first spawns = %+v, %+v; want opposite corners", spawns[0], spawns[1])
	}
}

func TestCellAtOutOfBounds(t *testing.T) {
	m := GenerateMap(2, rand.New(rand.NewSource(1)))
	for _, pos := range []Position{{-1, 0}, {0, -1}, {MapWidth, 0}, {0, MapHeight}, {-5, -5}} {
		if m.CellAt(pos.X, pos.Y) != CellWall {
			t.Errorf("CellAt%+v = %v, want wall", pos, m.CellAt(pos.X, pos.Y))
		}
	}
}

func TestDestroyBlock(t *testing.T) {
	m := testMap()
	m.Grid[5][5] = CellBlock

	if !m.DestroyBlock(5, 5) {
		t.Error("DestroyBlock on a block returned false")
	}
	if m.CellAt(5, 5) != CellEmpty {
		t.Error("destroyed block is not empty")
	}
	if m.DestroyBlock(5, 5) {
		t.Error("DestroyBlock on an empty cell returned true")
	}
	if m.DestroyBlock(0, 0) {
		t.Error("DestroyBlock on a wall returned true")
	}
	if m.CellAt(0, 0) != CellWall {
		t.Error("wall mutated by DestroyBlock")
	}
}
