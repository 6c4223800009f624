package main

import "time"

const (
	// BombFuse is how long a bomb sits before the tick sweep detonates it
	BombFuse = 2 * time.Second
	// ExplosionTTL is the display/collision window of an explosion
	ExplosionTTL = time.Second
)

// Bomb is a live bomb on the grid. Flames is captured from the owner's
// stat at placement time; later power-ups do not change it.
type Bomb struct {
	ID       string
	OwnerID  string
	Pos      Position
	PlacedAt time.Time
	Flames   int
}

// Fused reports whether the bomb's fuse has elapsed at the given instant
func (b *Bomb) Fused(now time.Time) bool {
	return now.Sub(b.PlacedAt) >= BombFuse
}

// ToState converts to the wire form
func (b *Bomb) ToState() BombState {
	return BombState{
		ID:       b.ID,
		PlayerID: b.OwnerID,
		X:        b.Pos.X,
		Y:        b.Pos.Y,
		PlacedAt: b.PlacedAt.UnixMilli(),
		Flames:   b.Flames,
	}
}

// Explosion is the transient aftermath of a detonation. Its id is the
// triggering bomb's id. While live it is lethal to players on its cells;
// expiry removes it without re-checking collision.
type Explosion struct {
	ID        string
	Cells     []Position
	CreatedAt time.Time
}

// Expired reports whether the display window has elapsed
func (e *Explosion) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= ExplosionTTL
}

// Covers reports whether the explosion reaches cell (x,y)
func (e *Explosion) Covers(x, y int) bool {
	for _, c := range e.Cells {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}

// ToState converts to the wire form
func (e *Explosion) ToState() ExplosionState {
	return ExplosionState{
		ID:        e.ID,
		Cells:     e.Cells,
		CreatedAt: e.CreatedAt.UnixMilli(),
	}
}
