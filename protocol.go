package main

// Client -> Server message types
const (
	MsgJoin      = "JOIN"
	MsgReconnect = "RECONNECT"
	MsgMove      = "PLAYER_MOVE"
	MsgPlaceBomb = "PLACE_BOMB"
	MsgChat      = "CHAT"
)

// Server -> Client message types
const (
	MsgJoinSuccess        = "JOIN_SUCCESS"
	MsgError              = "ERROR"
	MsgPlayerJoined       = "PLAYER_JOINED"
	MsgPlayerLeft         = "PLAYER_LEFT"
	MsgWaitingPeriod      = "WAITING_PERIOD_STARTED"
	MsgCountdownStarted   = "GAME_COUNTDOWN_STARTED"
	MsgCountdownUpdate    = "GAME_COUNTDOWN_UPDATE"
	MsgTimerCanceled      = "TIMER_CANCELED"
	MsgGameStarted        = "GAME_STARTED"
	MsgGameState          = "GAME_STATE_UPDATE"
	MsgBombPlaced         = "BOMB_PLACED"
	MsgBombExploded       = "BOMB_EXPLODED"
	MsgBlockDestroyed     = "BLOCK_DESTROYED"
	MsgPowerUpSpawned     = "POWER_UP_SPAWNED"
	MsgPowerUpCollected   = "POWER_UP_COLLECTED"
	MsgPlayerHit          = "PLAYER_HIT"
	MsgPlayerEliminated   = "PLAYER_ELIMINATED"
	MsgPlayerDisconnected = "PLAYER_DISCONNECTED"
	MsgChatMessage        = "CHAT_MESSAGE"
	MsgGameOver           = "GAME_OVER"
	MsgReturnedToWaiting  = "RETURNED_TO_WAITING_ROOM"
)

// InMessage covers every inbound message shape. Messages are flat JSON
// objects with a "type" discriminator; one decode at the transport
// boundary is enough to dispatch.
type InMessage struct {
	Type      string `json:"type"`
	Nickname  string `json:"nickname,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
	Token     string `json:"token,omitempty"`
	Direction string `json:"direction,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Position is a grid cell coordinate
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// PlayerInfo identifies a player in roster listings
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// PlayerState is the per-player slice of a state broadcast
type PlayerState struct {
	ID       string   `json:"id" msgpack:"id"`
	Nickname string   `json:"nickname" msgpack:"nickname"`
	Position Position `json:"position" msgpack:"position"`
	Lives    int      `json:"lives" msgpack:"lives"`
	Bombs    int      `json:"bombs" msgpack:"bombs"`
	Flames   int      `json:"flames" msgpack:"flames"`
	Speed    int      `json:"speed" msgpack:"speed"`
}

// BombState is the wire form of an active bomb
type BombState struct {
	ID       string `json:"id" msgpack:"id"`
	PlayerID string `json:"playerId" msgpack:"playerId"`
	X        int    `json:"x" msgpack:"x"`
	Y        int    `json:"y" msgpack:"y"`
	PlacedAt int64  `json:"placedAt" msgpack:"placedAt"` // unix millis
	Flames   int    `json:"flameSize" msgpack:"flameSize"`
}

// PowerUpState is the wire form of a power-up on the ground
type PowerUpState struct {
	ID   string `json:"id" msgpack:"id"`
	Type string `json:"type" msgpack:"type"`
	X    int    `json:"x" msgpack:"x"`
	Y    int    `json:"y" msgpack:"y"`
}

// ExplosionState is the wire form of a live explosion
type ExplosionState struct {
	ID        string     `json:"id" msgpack:"id"`
	Cells     []Position `json:"cells" msgpack:"cells"`
	CreatedAt int64      `json:"createdAt" msgpack:"createdAt"` // unix millis
}

// GameState is the full per-tick snapshot
type GameState struct {
	Players    []PlayerState    `json:"players" msgpack:"players"`
	Bombs      []BombState      `json:"bombs" msgpack:"bombs"`
	PowerUps   []PowerUpState   `json:"powerUps" msgpack:"powerUps"`
	Explosions []ExplosionState `json:"explosions" msgpack:"explosions"`
}

// JoinSuccessMsg confirms a JOIN, carrying the reconnect token
type JoinSuccessMsg struct {
	Type         string       `json:"type"`
	ID           string       `json:"id"`
	Token        string       `json:"token,omitempty"`
	PlayersCount int          `json:"playersCount"`
	Players      []PlayerInfo `json:"players"`
}

// ErrorMsg reports a validation rejection to the originating connection
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PlayerJoinedMsg tells the waiting room about a new arrival
type PlayerJoinedMsg struct {
	Type         string     `json:"type"`
	Player       PlayerInfo `json:"player"`
	PlayersCount int        `json:"playersCount"`
}

// PlayerLeftMsg tells the waiting room a player departed
type PlayerLeftMsg struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	PlayersCount int    `json:"playersCount"`
}

// SecondsMsg carries waiting-period and countdown notifications
type SecondsMsg struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

// TimerCanceledMsg notifies that a pending countdown was cancelled
type TimerCanceledMsg struct {
	Type string `json:"type"`
}

// GameStartedMsg delivers the initial match state to one participant
type GameStartedMsg struct {
	Type    string        `json:"type"`
	GameID  string        `json:"gameId"`
	Map     *GameMap      `json:"map"`
	Players []PlayerState `json:"players"`
	YourID  string        `json:"yourId"`
}

// GameStateMsg is the periodic full-state broadcast. It is the only
// message also sent msgpack-encoded over a binary frame.
type GameStateMsg struct {
	Type  string    `json:"type" msgpack:"type"`
	State GameState `json:"state" msgpack:"state"`
}

// BombPlacedMsg announces a newly placed bomb
type BombPlacedMsg struct {
	Type string    `json:"type"`
	Bomb BombState `json:"bomb"`
}

// BombExplodedMsg announces a detonation and its blast shape
type BombExplodedMsg struct {
	Type           string     `json:"type"`
	BombID         string     `json:"bombId"`
	ExplosionCells []Position `json:"explosionCells"`
}

// BlockDestroyedMsg announces a destructible block turning empty
type BlockDestroyedMsg struct {
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

// PowerUpSpawnedMsg announces a power-up appearing on a cell
type PowerUpSpawnedMsg struct {
	Type    string       `json:"type"`
	PowerUp PowerUpState `json:"powerUp"`
}

// PowerUpCollectedMsg announces a power-up pickup
type PowerUpCollectedMsg struct {
	Type        string `json:"type"`
	PlayerID    string `json:"playerId"`
	PowerUpID   string `json:"powerUpId"`
	PowerUpType string `json:"powerUpType"`
}

// PlayerHitMsg announces a life loss
type PlayerHitMsg struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	LivesLeft int    `json:"livesLeft"`
}

// PlayerIDMsg carries elimination and disconnection notices
type PlayerIDMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// ChatMessageMsg relays a chat line to the sender's current room
type ChatMessageMsg struct {
	Type      string `json:"type"`
	SenderID  string `json:"senderId"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// GameOverMsg reports the match outcome; exactly one of Winner/Draw is set
type GameOverMsg struct {
	Type   string      `json:"type"`
	Winner *PlayerInfo `json:"winner,omitempty"`
	Draw   bool        `json:"draw,omitempty"`
}

// ReturnedToWaitingMsg sends a player back to the waiting room roster
type ReturnedToWaitingMsg struct {
	Type         string       `json:"type"`
	PlayersCount int          `json:"playersCount"`
	Players      []PlayerInfo `json:"players"`
}
