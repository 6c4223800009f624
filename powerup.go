package main

import "math/rand"

// Power-up types. The strings are the wire names.
const (
	PowerUpBomb  = "bomb"  // +1 concurrent bomb
	PowerUpFlame = "flame" // +1 blast radius
	PowerUpSpeed = "speed" // +1 move speed
)

// PowerUpChance is the spawn roll per destroyed block
const PowerUpChance = 0.3

var powerUpTypes = []string{PowerUpBomb, PowerUpFlame, PowerUpSpeed}

// PowerUp sits on a cell until a player occupies it. Collection applies
// its effect exactly once; the record is removed in the same mutation.
type PowerUp struct {
	ID   string
	Type string
	Pos  Position
}

// rollPowerUp decides whether a destroyed block spawns a power-up.
// Returns nil on a failed roll; type is uniform over the three kinds.
func rollPowerUp(rng *rand.Rand, pos Position) *PowerUp {
	if rng.Float64() >= PowerUpChance {
		return nil
	}
	return &PowerUp{
		ID:   GenerateID(4),
		Type: powerUpTypes[rng.Intn(len(powerUpTypes))],
		Pos:  pos,
	}
}

// Apply bumps the matching stat on the collector
func (pu *PowerUp) Apply(p *Player) {
	switch pu.Type {
	case PowerUpBomb:
		p.MaxBombs++
	case PowerUpFlame:
		p.Flames++
	case PowerUpSpeed:
		p.Speed++
	}
}

// ToState converts to the wire form
func (pu *PowerUp) ToState() PowerUpState {
	return PowerUpState{ID: pu.ID, Type: pu.Type, X: pu.Pos.X, Y: pu.Pos.Y}
}
