package main

import (
	"testing"
	"time"
)

func TestCanOccupy(t *testing.T) {
	m := testMap()
	m.Grid[3][5] = CellBlock
	bombs := []*Bomb{{ID: "b1", Pos: Position{X: 3, Y: 3}, PlacedAt: time.Now(), Flames: 1}}

	tests := []struct {
		name                 string
		x, y                 int
		passBombs, passBlock bool
		want                 bool
	}{
		{"empty cell", 1, 1, false, false, true},
		{"border wall", 0, 1, false, false, false},
		{"pillar wall", 2, 2, false, false, false},
		{"out of bounds", -1, 3, false, false, false},
		{"block", 5, 3, false, false, false},
		{"block with passBlocks", 5, 3, false, true, true},
		{"bomb", 3, 3, false, false, false},
		{"bomb with passBombs", 3, 3, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanOccupy(m, bombs, tt.x, tt.y, tt.passBombs, tt.passBlock); got != tt.want {
				t.Errorf("CanOccupy(%d,%d,%v,%v) = %v, want %v", tt.x, tt.y, tt.passBombs, tt.passBlock, got, tt.want)
			}
		})
	}
}

func cellSet(cells []Position) map[Position]bool {
	set := make(map[Position]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	return set
}

func TestBlastCellsWallStopsBeforeItsCell(t *testing.T) {
	m := testMap()
	m.Grid[4][3] = CellWall // directly below the bomb

	cells := BlastCells(m, 3, 3, 2)
	set := cellSet(cells)

	want := []Position{
		{X: 3, Y: 3},                 // origin
		{X: 3, Y: 2}, {X: 3, Y: 1},   // up
		{X: 4, Y: 3}, {X: 5, Y: 3},   // right
		{X: 2, Y: 3}, {X: 1, Y: 3},   // left
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("blast missing cell %+v", w)
		}
	}
	if set[(Position{X: 3, Y: 4})] || set[(Position{X: 3, Y: 5})] {
		t.Error("blast passed through a wall")
	}
	if len(cells) != len(want) {
		t.Errorf("blast cell count = %d, want %d (%v)", len(cells), len(want), cells)
	}
}

func TestBlastCellsBlockAbsorbs(t *testing.T) {
	m := testMap()
	m.Grid[2][3] = CellBlock // one cell up from the bomb

	cells := BlastCells(m, 3, 3, 2)
	set := cellSet(cells)

	if !set[(Position{X: 3, Y: 2})] {
		t.Error("block cell itself must be in the blast")
	}
	if set[(Position{X: 3, Y: 1})] {
		t.Error("blast continued past an absorbing block")
	}
}

func TestBlastCellsOriginFirst(t *testing.T) {
	m := testMap()
	cells := BlastCells(m, 5, 5, 1)
	if len(cells) == 0 || cells[0] != (Position{X: 5, Y: 5}) {
		t.Fatalf("cells[0] = %v, want origin (5,5)", cells)
	}
}

func TestBlastCellsRadiusRespectsPillars(t *testing.T) {
	// Bomb at (1,1): up and left hit the border, right and down run free.
	m := testMap()
	cells := BlastCells(m, 1, 1, 3)
	set := cellSet(cells)

	for _, w := range []Position{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}, {X: 1, Y: 4}} {
		if !set[w] {
			t.Errorf("blast missing cell %+v", w)
		}
	}
	if len(cells) != 7 {
		t.Errorf("blast cell count = %d, want 7 (%v)", len(cells), cells)
	}
}

func TestDirectionStepsAreCardinal(t *testing.T) {
	for dir, step := range directionSteps {
		if abs(step.X)+abs(step.Y) != 1 {
			t.Errorf("direction %q step %+v is not a unit cardinal move", dir, step)
		}
	}
	if _, ok := directionSteps["up-left"]; ok {
		t.Error("diagonal direction accepted")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
