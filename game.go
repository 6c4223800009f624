package main

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // simulation ticks per second
	TickDuration   = time.Second / TickRate
	BroadcastRate  = 30 // full-state broadcasts per second
	BroadcastEvery = TickRate / BroadcastRate
)

// MatchEndDelay is how long a finished match lingers before teardown.
// Variable so tests can shorten it.
var MatchEndDelay = 5 * time.Second

// GamePhase is the match lifecycle
type GamePhase int

const (
	PhaseActive GamePhase = iota
	PhaseOver
)

// Broadcaster sends messages to one connected client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game owns one match's mutable state exclusively. All intent handling
// and tick-driven mutation serialize through its mutex; cross-component
// access happens only via emitted messages and the onEnd callback.
type Game struct {
	mu         sync.Mutex
	id         string
	gameMap    *GameMap
	players    []*Player // seating order, fixed at start
	bombs      []*Bomb   // insertion order; detonation order is stable
	powerUps   []*PowerUp
	explosions []*Explosion
	clients    map[string]Broadcaster
	phase      GamePhase
	winner     *Player
	draw       bool
	tick       uint64
	running    bool
	stop       chan struct{}
	rng        *rand.Rand
	startedAt  time.Time
	onEnd      func(*Game)
}

// NewGame creates a match over the given map and participants. onEnd
// fires once, MatchEndDelay after the outcome is determined.
func NewGame(id string, m *GameMap, players []*Player, rng *rand.Rand, onEnd func(*Game)) *Game {
	return &Game{
		id:        id,
		gameMap:   m,
		players:   players,
		clients:   make(map[string]Broadcaster),
		stop:      make(chan struct{}),
		rng:       rng,
		startedAt: time.Now(),
		onEnd:     onEnd,
	}
}

// ID returns the match id
func (g *Game) ID() string { return g.id }

// Run starts the fixed-tick loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the tick loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// SetClient attaches a broadcaster to a participant
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// Reattach binds a reconnecting player's fresh connection. The match
// owns the disconnect flag for its players, so clearing it happens here
// under the match lock.
func (g *Game) Reattach(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.playerByID(playerID); p != nil {
		p.Disconnected = false
	}
	g.clients[playerID] = client
}

// Phase returns the current match phase
func (g *Game) Phase() GamePhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Outcome returns the winner (nil on draw or unfinished) and the draw flag
func (g *Game) Outcome() (*Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.draw
}

// Players returns the participants in seating order
func (g *Game) Players() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Duration returns wall-clock seconds since match start
func (g *Game) Duration() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return time.Since(g.startedAt).Seconds()
}

// StartMessage builds the GAME_STARTED payload for one participant
func (g *Game) StartMessage(yourID string) GameStartedMsg {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GameStartedMsg{
		Type:    MsgGameStarted,
		GameID:  g.id,
		Map:     g.gameMap,
		Players: g.playerStates(),
		YourID:  yourID,
	}
}

// MovePlayer applies a movement intent: one whole-cell step, validated
// against walls, blocks and bombs. Collecting a power-up and walking
// into a live explosion resolve in the same mutation.
func (g *Game) MovePlayer(playerID, direction string) {
	step, ok := directionSteps[direction]
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseActive {
		return
	}
	p := g.playerByID(playerID)
	if p == nil || !p.Alive() || p.Disconnected {
		return
	}

	nx, ny := p.Pos.X+step.X, p.Pos.Y+step.Y
	if !CanOccupy(g.gameMap, g.bombs, nx, ny, false, false) {
		return
	}
	p.Pos = Position{X: nx, Y: ny}

	for i, pu := range g.powerUps {
		if pu.Pos.X == nx && pu.Pos.Y == ny {
			pu.Apply(p)
			g.powerUps = append(g.powerUps[:i], g.powerUps[i+1:]...)
			g.broadcast(PowerUpCollectedMsg{
				Type:        MsgPowerUpCollected,
				PlayerID:    p.ID,
				PowerUpID:   pu.ID,
				PowerUpType: pu.Type,
			})
			break
		}
	}

	for _, e := range g.explosions {
		if e.Covers(nx, ny) {
			g.hitPlayer(p)
			g.checkGameOver()
			break
		}
	}
}

// PlaceBomb applies a bomb intent at the player's current cell. Rejected
// silently when the player is at their live-bomb cap or the cell already
// holds a bomb.
func (g *Game) PlaceBomb(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseActive {
		return
	}
	p := g.playerByID(playerID)
	if p == nil || !p.Alive() || p.Disconnected {
		return
	}

	live := 0
	for _, b := range g.bombs {
		if b.OwnerID == playerID {
			live++
		}
		if b.Pos == p.Pos {
			return
		}
	}
	if live >= p.MaxBombs {
		return
	}

	b := &Bomb{
		ID:       GenerateID(4),
		OwnerID:  playerID,
		Pos:      p.Pos,
		PlacedAt: time.Now(),
		Flames:   p.Flames, // captured now; later power-ups don't apply
	}
	g.bombs = append(g.bombs, b)
	g.broadcast(BombPlacedMsg{Type: MsgBombPlaced, Bomb: b.ToState()})
}

// EliminateDisconnected handles a participant's connection loss: the
// player is treated as eliminated and the match outcome re-evaluated.
func (g *Game) EliminateDisconnected(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return
	}
	p.Disconnected = true
	delete(g.clients, playerID)

	g.broadcast(PlayerIDMsg{Type: MsgPlayerDisconnected, PlayerID: playerID})
	if g.phase == PhaseActive && p.Alive() {
		p.Lives = 0
		g.checkGameOver()
	}
}

// Broadcast sends a message to every connected participant
func (g *Game) Broadcast(msg interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcast(msg)
}

func (g *Game) playerByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// update runs one tick: fuse sweep, explosion expiry, state broadcast
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	now := time.Now()

	if g.phase == PhaseActive {
		g.sweepBombs(now)
	}
	g.sweepExplosions(now)

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// sweepBombs detonates every bomb whose fuse elapsed, in insertion
// order. Blast reaching another live bomb does not trigger it early.
func (g *Game) sweepBombs(now time.Time) {
	var fused []*Bomb
	remaining := g.bombs[:0]
	for _, b := range g.bombs {
		if b.Fused(now) {
			fused = append(fused, b)
		} else {
			remaining = append(remaining, b)
		}
	}
	g.bombs = remaining

	for _, b := range fused {
		if g.phase != PhaseActive {
			break
		}
		g.detonate(b, now)
	}
}

// detonate resolves one explosion: blast shape, block destruction with
// power-up rolls, player hits, and the event broadcasts.
func (g *Game) detonate(b *Bomb, now time.Time) {
	cells := BlastCells(g.gameMap, b.Pos.X, b.Pos.Y, b.Flames)

	for _, c := range cells {
		if !g.gameMap.DestroyBlock(c.X, c.Y) {
			continue
		}
		if pu := rollPowerUp(g.rng, c); pu != nil {
			g.powerUps = append(g.powerUps, pu)
			g.broadcast(PowerUpSpawnedMsg{Type: MsgPowerUpSpawned, PowerUp: pu.ToState()})
		}
		g.broadcast(BlockDestroyedMsg{Type: MsgBlockDestroyed, Position: c})
	}

	ex := &Explosion{ID: b.ID, Cells: cells, CreatedAt: now}
	g.explosions = append(g.explosions, ex)

	for _, p := range g.players {
		if !p.Alive() {
			continue
		}
		if ex.Covers(p.Pos.X, p.Pos.Y) {
			g.hitPlayer(p)
		}
	}
	// One outcome check per blast: a blast that fells the last players
	// together is a draw, not a win for whoever was hit last.
	g.checkGameOver()

	g.broadcast(BombExplodedMsg{Type: MsgBombExploded, BombID: b.ID, ExplosionCells: cells})
}

// hitPlayer applies one life loss. Callers re-run win detection once
// per damage event, after every victim of that event took its hit.
func (g *Game) hitPlayer(p *Player) {
	if !p.Alive() {
		return
	}
	p.Lives--
	g.broadcast(PlayerHitMsg{Type: MsgPlayerHit, PlayerID: p.ID, LivesLeft: p.Lives})
	if p.Lives <= 0 {
		g.broadcast(PlayerIDMsg{Type: MsgPlayerEliminated, PlayerID: p.ID})
	}
}

// checkGameOver transitions to Over when at most one player is alive.
// Live bombs and ground power-ups do not survive the outcome.
func (g *Game) checkGameOver() {
	if g.phase != PhaseActive {
		return
	}
	var alive []*Player
	for _, p := range g.players {
		if p.Alive() {
			alive = append(alive, p)
		}
	}
	if len(alive) > 1 {
		return
	}

	g.phase = PhaseOver
	g.bombs = nil
	g.powerUps = nil

	if len(alive) == 1 {
		g.winner = alive[0]
		info := alive[0].Info()
		g.broadcast(GameOverMsg{Type: MsgGameOver, Winner: &info})
	} else {
		g.draw = true
		g.broadcast(GameOverMsg{Type: MsgGameOver, Draw: true})
	}

	if g.onEnd != nil {
		end := g.onEnd
		time.AfterFunc(MatchEndDelay, func() { end(g) })
	}
}

// sweepExplosions drops explosions past their display window. No
// collision re-check: a cell is safe the instant its explosion expires.
func (g *Game) sweepExplosions(now time.Time) {
	remaining := g.explosions[:0]
	for _, e := range g.explosions {
		if !e.Expired(now) {
			remaining = append(remaining, e)
		}
	}
	g.explosions = remaining
}

func (g *Game) playerStates() []PlayerState {
	states := make([]PlayerState, 0, len(g.players))
	for _, p := range g.players {
		states = append(states, p.ToState())
	}
	return states
}

// snapshot builds the full wire state under the lock
func (g *Game) snapshot() GameState {
	state := GameState{
		Players:    g.playerStates(),
		Bombs:      make([]BombState, 0, len(g.bombs)),
		PowerUps:   make([]PowerUpState, 0, len(g.powerUps)),
		Explosions: make([]ExplosionState, 0, len(g.explosions)),
	}
	for _, b := range g.bombs {
		state.Bombs = append(state.Bombs, b.ToState())
	}
	for _, pu := range g.powerUps {
		state.PowerUps = append(state.PowerUps, pu.ToState())
	}
	for _, e := range g.explosions {
		state.Explosions = append(state.Explosions, e.ToState())
	}
	return state
}

// broadcastState sends the full snapshot to every participant as a
// msgpack binary frame
func (g *Game) broadcastState() {
	data, err := msgpack.Marshal(GameStateMsg{Type: MsgGameState, State: g.snapshot()})
	if err != nil {
		log.Printf("state marshal error: %v", err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcast sends an event message to every participant as JSON
func (g *Game) broadcast(msg interface{}) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
