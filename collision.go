package main

// Movement directions, one unit step per intent
var directionSteps = map[string]Position{
	"up":    {X: 0, Y: -1},
	"down":  {X: 0, Y: 1},
	"left":  {X: -1, Y: 0},
	"right": {X: 1, Y: 0},
}

// blastDirs is the walk order for explosion propagation: up, right, down, left
var blastDirs = []Position{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// CanOccupy reports whether an entity may stand on cell (x,y). Walls
// always refuse; blocks refuse unless passBlocks; a bomb on the cell
// refuses unless passBombs.
func CanOccupy(m *GameMap, bombs []*Bomb, x, y int, passBombs, passBlocks bool) bool {
	switch m.CellAt(x, y) {
	case CellWall:
		return false
	case CellBlock:
		if !passBlocks {
			return false
		}
	}
	if !passBombs {
		for _, b := range bombs {
			if b.Pos.X == x && b.Pos.Y == y {
				return false
			}
		}
	}
	return true
}

// BlastCells computes the cells an explosion from (x,y) with the given
// radius reaches. The origin comes first; each direction then walks
// outward. A wall stops the walk before its own cell; a block is
// included and then stops the walk.
func BlastCells(m *GameMap, x, y, radius int) []Position {
	cells := []Position{{X: x, Y: y}}
	for _, d := range blastDirs {
		for i := 1; i <= radius; i++ {
			cx := x + d.X*i
			cy := y + d.Y*i
			if m.IsWall(cx, cy) {
				break
			}
			cells = append(cells, Position{X: cx, Y: cy})
			if m.IsBlock(cx, cy) {
				break
			}
		}
	}
	return cells
}
