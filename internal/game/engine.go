package game

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine encapsulates one game kind's rules for one match: move legality,
// state mutation, win/draw detection, turn order, and the shared clock and
// forfeit machinery. Engines are cheap to build and are reconstructed from
// the stored configuration on every operation.
type Engine interface {
	Kind() string
	Info() Info
	Players() []string
	CurrentPlayer() string
	TurnIndex() int
	SetTurnIndex(i int)

	// InitializeState builds the starting payload plus common fields and
	// opens the first turn's timer.
	InitializeState() (*State, error)

	// ValidateMove checks clock, turn order, terminal result, and the
	// kind-specific legality of a move. It never mutates the state.
	ValidateMove(st *State, playerID string, move json.RawMessage) error

	// ApplyMove mutates the state for a move that already passed
	// ValidateMove, updating move count and last move.
	ApplyMove(st *State, playerID string, move json.RawMessage) error

	// CheckResult runs kind-specific terminal detection and records the
	// outcome on the engine instance.
	CheckResult(st *State) (Result, string)

	AdvanceTurn()
	StartTurn(st *State)
	ConsumeTurnTime(st *State)
	CheckTimeout(st *State) (occurred bool, winnerID string)
	RemainingTime(st *State, playerID string) (float64, bool)
	Forfeit(playerID string) (Result, string)
	EloAdjustments(st *State) map[string]int
	Outcome() (Result, string)
}

// core carries the machinery shared by all engines: participants, turn
// rotation, rule access, the timing state machine, forfeits, and the
// default rating policy. Concrete engines embed it.
type core struct {
	matchID string
	players []string
	rules   RuleSet

	turnIdx int
	result  Result
	winner  string

	timeoutKind    TimeoutKind
	timeoutSeconds int
	timeoutAction  TimeoutAction

	now func() time.Time
}

func newCore(matchID string, players []string, rules RuleSet, info Info) (core, error) {
	if rules == nil {
		rules = RuleSet{}
	}
	if err := rules.validate(info.SupportedRules); err != nil {
		return core{}, err
	}
	if len(players) < info.MinPlayers || len(players) > info.MaxPlayers {
		return core{}, configError("%s requires between %d and %d players, got %d",
			info.DisplayName, info.MinPlayers, info.MaxPlayers, len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, dup := seen[p]; dup {
			return core{}, configError("duplicate participant %q", p)
		}
		seen[p] = struct{}{}
	}

	c := core{
		matchID:        matchID,
		players:        append([]string(nil), players...),
		rules:          rules,
		result:         ResultInProgress,
		timeoutKind:    TimeoutKind(rules.String("timeout_type", string(TimeoutNone))),
		timeoutSeconds: rules.Int("timeout_seconds", 0),
		timeoutAction:  TimeoutAction(rules.String("timeout_action", string(ActionEndGame))),
		now:            time.Now,
	}
	if c.timeoutKind != TimeoutNone && c.timeoutSeconds <= 0 {
		return core{}, configError("timeout_seconds must be positive when a timeout is enabled")
	}
	return c, nil
}

func (c *core) Players() []string {
	return append([]string(nil), c.players...)
}

func (c *core) CurrentPlayer() string {
	return c.players[c.turnIdx]
}

func (c *core) TurnIndex() int { return c.turnIdx }

func (c *core) SetTurnIndex(i int) {
	if i >= 0 && i < len(c.players) {
		c.turnIdx = i
	}
}

// AdvanceTurn rotates to the next participant. Kinds with extra-turn rules
// override this.
func (c *core) AdvanceTurn() {
	c.turnIdx = (c.turnIdx + 1) % len(c.players)
}

func (c *core) Outcome() (Result, string) {
	return c.result, c.winner
}

// newState assembles the common envelope around a kind payload and opens
// the first turn.
func (c *core) newState(payload interface{}) (*State, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	st := &State{
		Result:        ResultInProgress,
		CurrentTurnID: c.CurrentPlayer(),
		CreatedAt:     c.now().UTC(),
		Timing:        c.initTiming(),
		Payload:       raw,
	}
	c.StartTurn(st)
	return st, nil
}

func (c *core) initTiming() Timing {
	t := Timing{
		TimeoutKind:    c.timeoutKind,
		TimeoutSeconds: c.timeoutSeconds,
	}
	if c.timeoutKind == TimeoutTotalTime {
		t.Remaining = make(map[string]float64, len(c.players))
		for _, p := range c.players {
			t.Remaining[p] = float64(c.timeoutSeconds)
		}
	}
	return t
}

// commonValidate runs the checks shared by every kind: clock first, then
// turn order, then terminal result.
func (c *core) commonValidate(st *State, playerID string) error {
	if occurred, _ := c.CheckTimeout(st); occurred {
		return illegalMove("time limit exceeded")
	}
	if playerID != c.CurrentPlayer() {
		return illegalMove("it's not your turn")
	}
	if c.result.Terminal() || st.Result.Terminal() {
		return illegalMove("game has already ended")
	}
	return nil
}

// StartTurn opens the turn timer, but only when the previous turn was
// properly closed; multi-step turns must not reset an open clock.
func (c *core) StartTurn(st *State) {
	if c.timeoutKind == TimeoutNone {
		return
	}
	if st.Timing.TurnStartedAt != nil {
		return
	}
	now := c.now().UTC()
	st.Timing.TurnStartedAt = &now
}

// ConsumeTurnTime closes the turn timer. In total_time mode the elapsed
// seconds are debited from the acting participant's budget, floored at 0.
func (c *core) ConsumeTurnTime(st *State) {
	if c.timeoutKind == TimeoutNone || st.Timing.TurnStartedAt == nil {
		return
	}
	elapsed := c.now().Sub(*st.Timing.TurnStartedAt).Seconds()
	if c.timeoutKind == TimeoutTotalTime {
		cur := c.CurrentPlayer()
		if st.Timing.Remaining == nil {
			st.Timing.Remaining = make(map[string]float64)
		}
		st.Timing.Remaining[cur] = math.Max(0, st.Timing.Remaining[cur]-elapsed)
	}
	st.Timing.TurnStartedAt = nil
}

// CheckTimeout reports whether the current turn-holder's clock has expired
// and, if so, applies the configured timeout action.
func (c *core) CheckTimeout(st *State) (bool, string) {
	if c.timeoutKind == TimeoutNone || st.Timing.TurnStartedAt == nil {
		return false, ""
	}
	elapsed := c.now().Sub(*st.Timing.TurnStartedAt).Seconds()
	cur := c.CurrentPlayer()

	switch c.timeoutKind {
	case TimeoutPerTurn:
		if elapsed > float64(c.timeoutSeconds) {
			return c.applyTimeoutAction(cur)
		}
	case TimeoutTotalTime:
		if elapsed > st.Timing.Remaining[cur] {
			return c.applyTimeoutAction(cur)
		}
	}
	return false, ""
}

func (c *core) applyTimeoutAction(timedOut string) (bool, string) {
	switch c.timeoutAction {
	case ActionSkipTurn, ActionEliminatePlayer:
		// eliminate_player currently behaves as skip_turn.
		logrus.WithFields(logrus.Fields{"match_id": c.matchID, "player": timedOut}).
			Info("player timed out, turn skipped")
		return true, ""
	case ActionEndGame:
		c.result = ResultTimeout
		c.winner = ""
		if len(c.players) == 2 {
			c.winner = c.otherPlayer(timedOut)
		}
		logrus.WithFields(logrus.Fields{"match_id": c.matchID, "player": timedOut}).
			Info("player timed out, game ended")
		return true, c.winner
	}
	return false, ""
}

// RemainingTime returns the seconds left on playerID's clock, clamped at
// zero. An empty playerID means the current turn-holder. The second return
// is false when no timeout is configured.
func (c *core) RemainingTime(st *State, playerID string) (float64, bool) {
	if c.timeoutKind == TimeoutNone {
		return 0, false
	}
	if playerID == "" {
		playerID = c.CurrentPlayer()
	}

	switch c.timeoutKind {
	case TimeoutPerTurn:
		if st.Timing.TurnStartedAt == nil {
			return float64(c.timeoutSeconds), true
		}
		elapsed := c.now().Sub(*st.Timing.TurnStartedAt).Seconds()
		return math.Max(0, float64(c.timeoutSeconds)-elapsed), true
	case TimeoutTotalTime:
		remaining := st.Timing.Remaining[playerID]
		if playerID == c.CurrentPlayer() && st.Timing.TurnStartedAt != nil {
			elapsed := c.now().Sub(*st.Timing.TurnStartedAt).Seconds()
			remaining = math.Max(0, remaining-elapsed)
		}
		return remaining, true
	}
	return 0, false
}

// Forfeit concedes the match for playerID. With exactly two participants
// the remaining one wins; with more there is no single winner.
func (c *core) Forfeit(playerID string) (Result, string) {
	c.result = ResultForfeit
	if len(c.players) == 2 {
		c.winner = c.otherPlayer(playerID)
	}
	return ResultForfeit, c.winner
}

// EloAdjustments implements the default rating policy: winner +1, everyone
// else -1 when the state names a winner, otherwise no adjustments.
func (c *core) EloAdjustments(st *State) map[string]int {
	if st.WinnerID == "" {
		return nil
	}
	adjustments := make(map[string]int, len(c.players))
	for _, p := range c.players {
		if p == st.WinnerID {
			adjustments[p] = 1
		} else {
			adjustments[p] = -1
		}
	}
	return adjustments
}

func (c *core) otherPlayer(playerID string) string {
	for _, p := range c.players {
		if p != playerID {
			return p
		}
	}
	return ""
}
