package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, kind string, players []string, rules RuleSet) (Engine, *State) {
	t.Helper()
	e, err := New(kind, "match-1", players, rules)
	require.NoError(t, err)
	st, err := e.InitializeState()
	require.NoError(t, err)
	return e, st
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New("chess", "m1", []string{"a", "b"}, nil)
	require.Error(t, err)
	assert.IsType(t, &ConfigurationError{}, err)
}

func TestNewRejectsUnknownRule(t *testing.T) {
	_, err := New("tictactoe", "m1", []string{"a", "b"}, RuleSet{"gravity": true})
	require.Error(t, err)
	assert.IsType(t, &ConfigurationError{}, err)
}

func TestNewRejectsOutOfRangeRule(t *testing.T) {
	_, err := New("tictactoe", "m1", []string{"a", "b"}, RuleSet{"board_size": 7})
	require.Error(t, err)
}

func TestNewRejectsBadPlayerCount(t *testing.T) {
	_, err := New("tictactoe", "m1", []string{"a"}, nil)
	require.Error(t, err)

	_, err = New("tictactoe", "m1", []string{"a", "b", "c"}, nil)
	require.Error(t, err)
}

func TestNewRejectsDuplicateParticipants(t *testing.T) {
	_, err := New("tictactoe", "m1", []string{"a", "a"}, nil)
	require.Error(t, err)
}

func TestKindsListsAllGames(t *testing.T) {
	assert.Equal(t, []string{"checkers", "clobber", "ludo", "soccer", "tictactoe"}, Kinds())
	for _, kind := range Kinds() {
		info, ok := InfoFor(kind)
		require.True(t, ok)
		assert.Equal(t, kind, info.GameKind)
		assert.Contains(t, info.SupportedRules, "timeout_type")
		assert.Contains(t, info.SupportedRules, "timeout_seconds")
	}
}

func TestFromConfigRestoresTurnIndex(t *testing.T) {
	cfg := &Config{
		MatchID:   "m1",
		GameKind:  "tictactoe",
		Players:   []string{"a", "b"},
		Rules:     RuleSet{},
		TurnIndex: 1,
	}
	e, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "b", e.CurrentPlayer())
}

func TestUntimedMatchHasNoClock(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	assert.Nil(t, st.Timing.TurnStartedAt)
	_, ok := e.RemainingTime(st, "a")
	assert.False(t, ok)

	occurred, _ := e.CheckTimeout(st)
	assert.False(t, occurred)
}

func TestPerTurnClockRemainingTime(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"},
		RuleSet{"timeout_type": "per_turn", "timeout_seconds": 10})

	require.NotNil(t, st.Timing.TurnStartedAt)
	remaining, ok := e.RemainingTime(st, "")
	require.True(t, ok)
	assert.InDelta(t, 10, remaining, 1)

	// Backdate the turn start by 4 seconds.
	started := time.Now().UTC().Add(-4 * time.Second)
	st.Timing.TurnStartedAt = &started
	remaining, ok = e.RemainingTime(st, "")
	require.True(t, ok)
	assert.InDelta(t, 6, remaining, 1)
}

func TestPerTurnClockExpiryEndsGame(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"},
		RuleSet{"timeout_type": "per_turn", "timeout_seconds": 10})

	started := time.Now().UTC().Add(-12 * time.Second)
	st.Timing.TurnStartedAt = &started

	occurred, winnerID := e.CheckTimeout(st)
	assert.True(t, occurred)
	assert.Equal(t, "b", winnerID)

	result, winner := e.Outcome()
	assert.Equal(t, ResultTimeout, result)
	assert.Equal(t, "b", winner)

	move := json.RawMessage(`{"row":0,"col":0}`)
	err := e.ValidateMove(st, "a", move)
	require.Error(t, err)
	assert.IsType(t, &IllegalMoveError{}, err)
}

func TestPerTurnClockSkipAction(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"},
		RuleSet{"timeout_type": "per_turn", "timeout_seconds": 10, "timeout_action": "skip_turn"})

	started := time.Now().UTC().Add(-12 * time.Second)
	st.Timing.TurnStartedAt = &started

	occurred, winnerID := e.CheckTimeout(st)
	assert.True(t, occurred)
	assert.Empty(t, winnerID)

	result, _ := e.Outcome()
	assert.Equal(t, ResultInProgress, result)
}

func TestTotalTimeBudgetConsumed(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"},
		RuleSet{"timeout_type": "total_time", "timeout_seconds": 60})

	require.NotNil(t, st.Timing.Remaining)
	assert.Equal(t, float64(60), st.Timing.Remaining["a"])
	assert.Equal(t, float64(60), st.Timing.Remaining["b"])

	started := time.Now().UTC().Add(-5 * time.Second)
	st.Timing.TurnStartedAt = &started
	e.ConsumeTurnTime(st)

	assert.Nil(t, st.Timing.TurnStartedAt)
	assert.InDelta(t, 55, st.Timing.Remaining["a"], 1)
	assert.Equal(t, float64(60), st.Timing.Remaining["b"])
}

func TestTotalTimeBudgetNeverNegative(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"},
		RuleSet{"timeout_type": "total_time", "timeout_seconds": 10})

	started := time.Now().UTC().Add(-30 * time.Second)
	st.Timing.TurnStartedAt = &started
	e.ConsumeTurnTime(st)
	assert.Equal(t, float64(0), st.Timing.Remaining["a"])
}

func TestTimedRulesRequirePositiveSeconds(t *testing.T) {
	_, err := New("tictactoe", "m1", []string{"a", "b"},
		RuleSet{"timeout_type": "per_turn", "timeout_seconds": 0})
	require.Error(t, err)
}

func TestForfeitNamesOtherPlayerWinner(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	result, winnerID := e.Forfeit("a")
	assert.Equal(t, ResultForfeit, result)
	assert.Equal(t, "b", winnerID)

	move := json.RawMessage(`{"row":0,"col":0}`)
	require.Error(t, e.ValidateMove(st, "a", move))
}

func TestEloAdjustments(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	assert.Nil(t, e.EloAdjustments(st))

	st.WinnerID = "b"
	adjustments := e.EloAdjustments(st)
	assert.Equal(t, map[string]int{"a": -1, "b": 1}, adjustments)
}

func TestWrongTurnRejected(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	move := json.RawMessage(`{"row":0,"col":0}`)
	err := e.ValidateMove(st, "b", move)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not your turn")
}

func TestMalformedMoveRejected(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	err := e.ValidateMove(st, "a", json.RawMessage(`not json`))
	require.Error(t, err)
	assert.IsType(t, &IllegalMoveError{}, err)
}
