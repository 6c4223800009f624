package main

import "testing"

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	if p.State != StateWaiting {
		t.Errorf("state = %q, want waiting", p.State)
	}
	if p.Lives != StartingLives || p.MaxBombs != StartingBombs || p.Flames != StartingFlames || p.Speed != StartingSpeed {
		t.Errorf("stat block = %+v, want starting values", p)
	}
	if !p.Alive() {
		t.Error("new player not alive")
	}
	if p.JoinedAt.IsZero() {
		t.Error("JoinedAt not set")
	}
}

func TestEnterMatchResetsStats(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	p.Lives = 1
	p.MaxBombs = 4
	p.Flames = 3
	p.Disconnected = true

	p.EnterMatch("g1", Position{X: 1, Y: 1})

	if p.State != StatePlaying || p.GameID != "g1" {
		t.Errorf("state/game = %q/%q, want playing/g1", p.State, p.GameID)
	}
	if p.Pos != (Position{X: 1, Y: 1}) {
		t.Errorf("position = %+v, want spawn", p.Pos)
	}
	if p.Lives != StartingLives || p.MaxBombs != StartingBombs || p.Flames != StartingFlames {
		t.Errorf("stats carried over into a new match: %+v", p)
	}
	if p.Disconnected {
		t.Error("disconnected flag survived match entry")
	}
}

func TestReturnToLobby(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	p.EnterMatch("g1", Position{X: 1, Y: 1})
	p.ReturnToLobby()

	if p.State != StateWaiting || p.GameID != "" {
		t.Errorf("state/game = %q/%q, want waiting with no game", p.State, p.GameID)
	}
}

func TestPlayerToState(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	p.EnterMatch("g1", Position{X: 13, Y: 11})
	s := p.ToState()
	if s.ID != "p1" || s.Nickname != "Alice" || s.Position != (Position{X: 13, Y: 11}) {
		t.Errorf("state = %+v", s)
	}
	if s.Lives != StartingLives || s.Bombs != StartingBombs {
		t.Errorf("state stats = %+v", s)
	}
}
