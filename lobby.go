package main

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	MinPlayersPerMatch = 2
	MaxPlayersPerMatch = 4
	maxNicknameLen     = 16
	maxChatLen         = 256
)

// Lobby timers. Variables so tests can shorten them.
var (
	WaitingPeriod    = 20 * time.Second // grace window at 2-3 waiters
	CountdownSeconds = 10               // final countdown length
	CountdownTick    = time.Second      // countdown decrement interval
	ReconnectGrace   = 10 * time.Second // identity reclaim window
)

// LobbyPhase is the waiting-room state machine
type LobbyPhase int

const (
	LobbyIdle LobbyPhase = iota
	LobbyFilling
	LobbyCountdownPending
	LobbyStarting
)

type countdown struct {
	value  int
	cancel chan struct{}
}

// Lobby is the single shared waiting room. It owns the roster and the
// start-countdown state machine exclusively; matches own their state
// and report back only through the end callback.
type Lobby struct {
	mu        sync.Mutex
	players   map[string]*Player // every live logical identity
	clients   map[string]Broadcaster
	games     map[string]*Game
	phase     LobbyPhase
	waitTimer *time.Timer // 20s grace window
	cd        *countdown
	removals  map[string]*time.Timer // reconnect grace timers

	db        *DB
	analytics *Analytics
	tokens    *TokenIssuer
}

// NewLobby creates the shared lobby. db, analytics and tokens may be nil
// (tests run without persistence).
func NewLobby(db *DB, analytics *Analytics, tokens *TokenIssuer) *Lobby {
	return &Lobby{
		players:   make(map[string]*Player),
		clients:   make(map[string]Broadcaster),
		games:     make(map[string]*Game),
		removals:  make(map[string]*time.Timer),
		db:        db,
		analytics: analytics,
		tokens:    tokens,
	}
}

// Phase returns the waiting-room state
func (l *Lobby) Phase() LobbyPhase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// WaitingCount returns the number of connected waiting players
func (l *Lobby) WaitingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waitingLocked())
}

// GameCount returns the number of running matches
func (l *Lobby) GameCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.games)
}

// AddPlayer admits a new identity to the waiting room. Duplicate
// nicknames (case-insensitive, across waiting and in-match players) are
// rejected with no state change.
func (l *Lobby) AddPlayer(client Broadcaster, nickname string) (*Player, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("nickname required")
	}
	if len(nickname) > maxNicknameLen {
		nickname = nickname[:maxNicknameLen]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.players {
		if strings.EqualFold(p.Nickname, nickname) {
			return nil, fmt.Errorf("Nickname already taken")
		}
	}

	p := NewPlayer(GenerateID(4), nickname)
	l.players[p.ID] = p
	l.clients[p.ID] = client

	var token string
	if l.tokens != nil {
		t, err := l.tokens.Issue(p.ID)
		if err != nil {
			log.Printf("reconnect token issue error: %v", err)
		} else {
			token = t
		}
	}

	roster := l.waitingRosterLocked()
	client.SendJSON(JoinSuccessMsg{
		Type:         MsgJoinSuccess,
		ID:           p.ID,
		Token:        token,
		PlayersCount: len(roster),
		Players:      roster,
	})
	l.broadcastWaitingLocked(PlayerJoinedMsg{
		Type:         MsgPlayerJoined,
		Player:       p.Info(),
		PlayersCount: len(roster),
	}, p.ID)

	if l.analytics != nil {
		l.analytics.Track(EvtPlayerJoin, p.ID, "", p.Nickname)
	}

	l.checkStartLocked()
	l.refreshPhaseLocked()
	return p, nil
}

// Reconnect reattaches a fresh connection to a disconnected logical
// identity within the grace window. Nickname, lives and match
// membership are preserved.
func (l *Lobby) Reconnect(client Broadcaster, playerID, nickname, token string) (*Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.players[playerID]
	if p == nil || !p.Disconnected {
		return nil, fmt.Errorf("unknown or expired player id")
	}
	if token != "" && l.tokens != nil {
		id, err := l.tokens.Validate(token)
		if err != nil || id != playerID {
			return nil, fmt.Errorf("invalid reconnect token")
		}
	}
	if nickname != "" && !strings.EqualFold(nickname, p.Nickname) {
		return nil, fmt.Errorf("nickname does not match player id")
	}

	if t, ok := l.removals[playerID]; ok {
		t.Stop()
		delete(l.removals, playerID)
	}
	l.clients[playerID] = client

	if p.State == StatePlaying {
		if g := l.games[p.GameID]; g != nil {
			g.Reattach(playerID, client)
			client.SendJSON(g.StartMessage(playerID))
			return p, nil
		}
		// match torn down while away
		p.ReturnToLobby()
	}
	p.Disconnected = false

	roster := l.waitingRosterLocked()
	client.SendJSON(JoinSuccessMsg{
		Type:         MsgJoinSuccess,
		ID:           p.ID,
		PlayersCount: len(roster),
		Players:      roster,
	})
	l.broadcastWaitingLocked(PlayerJoinedMsg{
		Type:         MsgPlayerJoined,
		Player:       p.Info(),
		PlayersCount: len(roster),
	}, p.ID)

	l.checkStartLocked()
	l.refreshPhaseLocked()
	return p, nil
}

// HandleDisconnect routes a connection loss: waiting players depart the
// roster immediately, in-match players are eliminated in place. Either
// way the logical identity lingers for ReconnectGrace.
func (l *Lobby) HandleDisconnect(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.players[playerID]
	if p == nil {
		return
	}
	delete(l.clients, playerID)

	if p.State == StatePlaying {
		// The match owns the disconnect flag while the player is seated;
		// EliminateDisconnected sets it under the match lock.
		if g := l.games[p.GameID]; g != nil {
			g.EliminateDisconnected(playerID)
		} else {
			p.Disconnected = true
		}
		if l.analytics != nil {
			l.analytics.Track(EvtPlayerLeave, playerID, p.GameID, "")
		}
	} else {
		p.Disconnected = true
		waiting := l.waitingLocked()
		l.broadcastWaitingLocked(PlayerLeftMsg{
			Type:         MsgPlayerLeft,
			PlayerID:     playerID,
			PlayersCount: len(waiting),
		}, "")
		if len(waiting) < MinPlayersPerMatch {
			l.cancelTimersLocked(true)
		}
		if l.analytics != nil {
			l.analytics.Track(EvtPlayerLeave, playerID, "", "")
		}
	}

	l.scheduleRemovalLocked(playerID)
	l.refreshPhaseLocked()
}

// HandleMove routes a movement intent into the player's active match
func (l *Lobby) HandleMove(playerID, direction string) {
	if g := l.gameFor(playerID); g != nil {
		g.MovePlayer(playerID, direction)
	}
}

// HandlePlaceBomb routes a bomb intent into the player's active match
func (l *Lobby) HandlePlaceBomb(playerID string) {
	if g := l.gameFor(playerID); g != nil {
		g.PlaceBomb(playerID)
	}
}

// Chat relays a chat line to the sender's current room
func (l *Lobby) Chat(senderID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(text) > maxChatLen {
		text = text[:maxChatLen]
	}

	l.mu.Lock()
	p := l.players[senderID]
	if p == nil {
		l.mu.Unlock()
		return
	}
	msg := ChatMessageMsg{
		Type:      MsgChatMessage,
		SenderID:  senderID,
		Sender:    p.Nickname,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	}
	if p.State == StatePlaying {
		g := l.games[p.GameID]
		l.mu.Unlock()
		if g != nil {
			g.Broadcast(msg)
		}
		return
	}
	l.broadcastWaitingLocked(msg, "")
	l.mu.Unlock()
}

func (l *Lobby) gameFor(playerID string) *Game {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.players[playerID]
	if p == nil || p.State != StatePlaying {
		return nil
	}
	return l.games[p.GameID]
}

// waitingLocked returns connected waiting players in first-come order
func (l *Lobby) waitingLocked() []*Player {
	var waiting []*Player
	for _, p := range l.players {
		if p.State == StateWaiting && !p.Disconnected {
			waiting = append(waiting, p)
		}
	}
	sort.Slice(waiting, func(i, j int) bool {
		if waiting[i].JoinedAt.Equal(waiting[j].JoinedAt) {
			return waiting[i].ID < waiting[j].ID
		}
		return waiting[i].JoinedAt.Before(waiting[j].JoinedAt)
	})
	return waiting
}

func (l *Lobby) waitingRosterLocked() []PlayerInfo {
	waiting := l.waitingLocked()
	roster := make([]PlayerInfo, 0, len(waiting))
	for _, p := range waiting {
		roster = append(roster, p.Info())
	}
	return roster
}

func (l *Lobby) broadcastWaitingLocked(msg interface{}, excludeID string) {
	for _, p := range l.waitingLocked() {
		if p.ID == excludeID {
			continue
		}
		if c, ok := l.clients[p.ID]; ok {
			c.SendJSON(msg)
		}
	}
}

// checkStartLocked advances the start state machine: 4 waiters begin
// the short countdown immediately, 2-3 open the grace window first.
func (l *Lobby) checkStartLocked() {
	if l.cd != nil {
		return
	}
	waiting := l.waitingLocked()
	switch {
	case len(waiting) >= MaxPlayersPerMatch:
		l.stopWaitTimerLocked()
		l.startCountdownLocked(CountdownSeconds)
	case len(waiting) >= MinPlayersPerMatch && l.waitTimer == nil:
		secs := int(WaitingPeriod / time.Second)
		l.broadcastWaitingLocked(SecondsMsg{Type: MsgWaitingPeriod, Seconds: secs}, "")
		l.waitTimer = time.AfterFunc(WaitingPeriod, l.waitingPeriodExpired)
	}
}

func (l *Lobby) waitingPeriodExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waitTimer = nil
	if l.cd == nil && len(l.waitingLocked()) >= MinPlayersPerMatch {
		l.startCountdownLocked(CountdownSeconds)
	}
	l.refreshPhaseLocked()
}

func (l *Lobby) startCountdownLocked(seconds int) {
	cd := &countdown{value: seconds, cancel: make(chan struct{})}
	l.cd = cd
	l.phase = LobbyCountdownPending
	l.broadcastWaitingLocked(SecondsMsg{Type: MsgCountdownStarted, Seconds: seconds}, "")
	go l.runCountdown(cd)
}

// runCountdown decrements once per CountdownTick, broadcasting each
// value, and starts the match at zero. Cancellation wins races via the
// l.cd identity check.
func (l *Lobby) runCountdown(cd *countdown) {
	ticker := time.NewTicker(CountdownTick)
	defer ticker.Stop()

	for {
		select {
		case <-cd.cancel:
			return
		case <-ticker.C:
			l.mu.Lock()
			if l.cd != cd {
				l.mu.Unlock()
				return
			}
			cd.value--
			l.broadcastWaitingLocked(SecondsMsg{Type: MsgCountdownUpdate, Seconds: cd.value}, "")
			if cd.value <= 0 {
				l.cd = nil
				l.startGameLocked()
				l.refreshPhaseLocked()
				l.mu.Unlock()
				return
			}
			l.mu.Unlock()
		}
	}
}

func (l *Lobby) stopWaitTimerLocked() {
	if l.waitTimer != nil {
		l.waitTimer.Stop()
		l.waitTimer = nil
	}
}

// cancelTimersLocked aborts a pending start; with notify, lobby members
// hear TIMER_CANCELED
func (l *Lobby) cancelTimersLocked(notify bool) {
	cancelled := false
	if l.waitTimer != nil {
		l.waitTimer.Stop()
		l.waitTimer = nil
		cancelled = true
	}
	if l.cd != nil {
		close(l.cd.cancel)
		l.cd = nil
		cancelled = true
	}
	if cancelled && notify {
		l.broadcastWaitingLocked(TimerCanceledMsg{Type: MsgTimerCanceled}, "")
	}
}

// startGameLocked selects up to four waiters first-come, builds the map
// and the match, and hands the players over
func (l *Lobby) startGameLocked() {
	waiting := l.waitingLocked()
	if len(waiting) < MinPlayersPerMatch {
		return
	}
	selected := waiting
	if len(selected) > MaxPlayersPerMatch {
		selected = selected[:MaxPlayersPerMatch]
	}
	players := append([]*Player(nil), selected...)

	l.phase = LobbyStarting
	gameID := uuid.New().String()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	m := GenerateMap(len(players), rng)
	spawns := SpawnPositions()

	for i, p := range players {
		p.EnterMatch(gameID, spawns[i])
	}

	g := NewGame(gameID, m, players, rng, l.endGame)
	l.games[gameID] = g
	for _, p := range players {
		if c, ok := l.clients[p.ID]; ok {
			g.SetClient(p.ID, c)
			c.SendJSON(g.StartMessage(p.ID))
		}
	}
	go g.Run()
	log.Printf("match %s started with %d players", gameID, len(players))

	if l.analytics != nil {
		l.analytics.Track(EvtMatchStart, "", gameID, "")
	}

	// leftover waiters immediately re-trigger the start conditions
	l.checkStartLocked()
}

// endGame fires MatchEndDelay after a match outcome: the loop stops,
// connected participants return to the waiting room, the result is
// persisted.
func (l *Lobby) endGame(g *Game) {
	l.mu.Lock()
	if _, ok := l.games[g.ID()]; !ok {
		l.mu.Unlock()
		return
	}
	delete(l.games, g.ID())

	participants := g.Players()
	winner, draw := g.Outcome()
	duration := g.Duration()
	g.Stop()

	for _, p := range participants {
		if !p.Disconnected {
			p.ReturnToLobby()
		}
	}
	roster := l.waitingRosterLocked()
	for _, p := range participants {
		if p.Disconnected {
			continue
		}
		if c, ok := l.clients[p.ID]; ok {
			c.SendJSON(ReturnedToWaitingMsg{
				Type:         MsgReturnedToWaiting,
				PlayersCount: len(roster),
				Players:      roster,
			})
		}
	}

	rec := MatchRecord{
		ID:          g.ID(),
		Duration:    duration,
		Draw:        draw,
		PlayerCount: len(participants),
	}
	if winner != nil {
		rec.Winner = winner.Nickname
	}
	for _, p := range participants {
		rec.Players = append(rec.Players, MatchPlayerRecord{
			Nickname:     p.Nickname,
			LivesLeft:    p.Lives,
			Won:          winner != nil && p.ID == winner.ID,
			Disconnected: p.Disconnected,
		})
	}

	l.checkStartLocked()
	l.refreshPhaseLocked()
	l.mu.Unlock()

	if l.analytics != nil {
		l.analytics.Track(EvtMatchEnd, "", g.ID(), "")
	}
	if l.db != nil {
		go func() {
			if err := l.db.RecordMatch(rec); err != nil {
				log.Printf("record match %s: %v", rec.ID, err)
			}
		}()
	}
	log.Printf("match %s ended (draw=%v winner=%q)", g.ID(), draw, rec.Winner)
}

func (l *Lobby) scheduleRemovalLocked(playerID string) {
	if t, ok := l.removals[playerID]; ok {
		t.Stop()
	}
	l.removals[playerID] = time.AfterFunc(ReconnectGrace, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.removals, playerID)
		if p := l.players[playerID]; p != nil && p.Disconnected {
			delete(l.players, playerID)
		}
	})
}

func (l *Lobby) refreshPhaseLocked() {
	if l.cd != nil || l.waitTimer != nil {
		l.phase = LobbyCountdownPending
		return
	}
	if len(l.waitingLocked()) == 0 {
		l.phase = LobbyIdle
	} else {
		l.phase = LobbyFilling
	}
}
