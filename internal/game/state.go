package game

import (
	"encoding/json"
	"time"
)

// Result is the lifecycle outcome of a match.
type Result string

const (
	ResultInProgress Result = "in_progress"
	ResultPlayerWin  Result = "player_win"
	ResultDraw       Result = "draw"
	ResultForfeit    Result = "forfeit"
	ResultTimeout    Result = "timeout"
	ResultPlayerLeft Result = "player_left"
)

// Terminal reports whether the match has ended.
func (r Result) Terminal() bool {
	return r != ResultInProgress && r != ""
}

// TimeoutKind selects the clock mode of a match.
type TimeoutKind string

const (
	TimeoutNone      TimeoutKind = "none"
	TimeoutTotalTime TimeoutKind = "total_time"
	TimeoutPerTurn   TimeoutKind = "per_turn"
)

// TimeoutAction is the consequence applied when a player's clock expires.
type TimeoutAction string

const (
	ActionEndGame         TimeoutAction = "end_game"
	ActionSkipTurn        TimeoutAction = "skip_turn"
	ActionEliminatePlayer TimeoutAction = "eliminate_player"
)

// Timing is the clock bookkeeping embedded in every match state.
// TurnStartedAt is non-nil exactly while a turn is open in a timed match;
// it is cleared by ConsumeTurnTime on every completed move or forfeiture.
type Timing struct {
	TimeoutKind    TimeoutKind        `json:"timeout_kind"`
	TimeoutSeconds int                `json:"timeout_seconds"`
	TurnStartedAt  *time.Time         `json:"turn_started_at,omitempty"`
	Remaining      map[string]float64 `json:"player_time_remaining,omitempty"`
}

// State is the mutable match document: a common envelope composed with a
// kind-specific payload that only the owning engine interprets. States are
// read-modify-written by value and never shared across requests.
type State struct {
	Result        Result          `json:"result"`
	WinnerID      string          `json:"winner_identifier,omitempty"`
	CurrentTurnID string          `json:"current_turn_identifier,omitempty"`
	MoveCount     int             `json:"move_count"`
	LastMove      json.RawMessage `json:"last_move,omitempty"`
	ForfeitedBy   string          `json:"forfeited_by,omitempty"`
	LeftBy        string          `json:"left_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Timing        Timing          `json:"timing"`
	Payload       json.RawMessage `json:"payload"`
}

func (s *State) decodePayload(v interface{}) error {
	return json.Unmarshal(s.Payload, v)
}

func (s *State) encodePayload(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Payload = raw
	return nil
}

func (s *State) setLastMove(v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.LastMove = raw
}

// Config is the persisted engine configuration: everything needed to
// reconstruct an engine from storage.
type Config struct {
	MatchID   string   `json:"match_id"`
	GameKind  string   `json:"game_kind"`
	Players   []string `json:"participants"`
	Rules     RuleSet  `json:"rules"`
	TurnIndex int      `json:"current_turn_index"`
}
