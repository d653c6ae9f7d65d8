package service

// WebSocket event names emitted by the match lifecycle.
const (
	EventGameStarted     = "game_started"
	EventMoveMade        = "move_made"
	EventGameEnded       = "game_ended"
	EventPlayerForfeited = "player_forfeited"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToMatch(matchID string, event string, payload interface{})
	BroadcastToPlayer(matchID, playerID string, event string, payload interface{})
	DisconnectMatch(matchID string)
}

// MatchEvent is the common payload shape of lifecycle broadcasts.
type MatchEvent struct {
	EventID       string      `json:"event_id"`
	MatchID       string      `json:"match_id"`
	Result        string      `json:"result,omitempty"`
	WinnerID      string      `json:"winner_identifier,omitempty"`
	CurrentTurnID string      `json:"current_turn_identifier,omitempty"`
	GameState     interface{} `json:"game_state,omitempty"`
}
