package game

import (
	"encoding/json"
	"sort"
)

// Constructor builds an engine for one match from its participants and
// validated rule overrides.
type Constructor func(matchID string, players []string, rules RuleSet) (Engine, error)

type registration struct {
	construct Constructor
	info      func() Info
}

// engines maps a game kind to its constructor and static metadata. The
// orchestration layer only ever dispatches through this table.
var engines = map[string]registration{
	"tictactoe": {construct: NewTicTacToe, info: ticTacToeInfo},
	"checkers":  {construct: NewCheckers, info: checkersInfo},
	"ludo":      {construct: NewLudo, info: ludoInfo},
	"soccer":    {construct: NewSoccer, info: soccerInfo},
	"clobber":   {construct: NewClobber, info: clobberInfo},
}

// Kinds lists the available game kinds in stable order.
func Kinds() []string {
	kinds := make([]string, 0, len(engines))
	for kind := range engines {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// InfoFor returns the static metadata of a game kind.
func InfoFor(kind string) (Info, bool) {
	reg, ok := engines[kind]
	if !ok {
		return Info{}, false
	}
	return reg.info(), true
}

// New builds an engine for a fresh match, validating the rule overrides
// and participant count.
func New(kind, matchID string, players []string, rules RuleSet) (Engine, error) {
	reg, ok := engines[kind]
	if !ok {
		return nil, configError("unknown game kind %q", kind)
	}
	return reg.construct(matchID, players, rules)
}

// FromConfig reconstructs an engine from a stored configuration, restoring
// the persisted turn position.
func FromConfig(cfg *Config) (Engine, error) {
	engine, err := New(cfg.GameKind, cfg.MatchID, cfg.Players, cfg.Rules)
	if err != nil {
		return nil, err
	}
	engine.SetTurnIndex(cfg.TurnIndex)
	return engine, nil
}

// decodeMove unmarshals a raw move into the kind's move struct.
func decodeMove(move json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(move, v); err != nil {
		return illegalMove("malformed move data")
	}
	return nil
}
