package main

import "time"

// Player lifecycle states
const (
	StateWaiting = "waiting"
	StatePlaying = "playing"
)

const (
	StartingLives  = 3
	StartingBombs  = 1
	StartingFlames = 1
	StartingSpeed  = 1
)

// Player is the canonical record for one logical player. The lobby owns
// it while waiting; a Game owns it (by reference) while a match runs.
// Identity survives a reconnect within the grace window.
type Player struct {
	ID       string
	Nickname string
	State    string
	GameID   string
	Pos      Position
	Lives    int
	MaxBombs int // concurrent live-bomb cap
	Flames   int // blast radius
	Speed    int

	Disconnected bool
	JoinedAt     time.Time
}

// NewPlayer creates a waiting-room player with base stats
func NewPlayer(id, nickname string) *Player {
	return &Player{
		ID:       id,
		Nickname: nickname,
		State:    StateWaiting,
		Lives:    StartingLives,
		MaxBombs: StartingBombs,
		Flames:   StartingFlames,
		Speed:    StartingSpeed,
		JoinedAt: time.Now(),
	}
}

// Alive reports whether the player can still act in a match
func (p *Player) Alive() bool {
	return p.Lives > 0
}

// EnterMatch resets the stat block and places the player at a spawn corner
func (p *Player) EnterMatch(gameID string, pos Position) {
	p.State = StatePlaying
	p.GameID = gameID
	p.Pos = pos
	p.Lives = StartingLives
	p.MaxBombs = StartingBombs
	p.Flames = StartingFlames
	p.Speed = StartingSpeed
	p.Disconnected = false
}

// ReturnToLobby reverts the player to waiting-room ownership
func (p *Player) ReturnToLobby() {
	p.State = StateWaiting
	p.GameID = ""
}

// Info returns the roster listing entry
func (p *Player) Info() PlayerInfo {
	return PlayerInfo{ID: p.ID, Nickname: p.Nickname}
}

// ToState converts to the wire snapshot
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:       p.ID,
		Nickname: p.Nickname,
		Position: p.Pos,
		Lives:    p.Lives,
		Bombs:    p.MaxBombs,
		Flames:   p.Flames,
		Speed:    p.Speed,
	}
}
