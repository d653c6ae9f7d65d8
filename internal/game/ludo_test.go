package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLudoWithRoll(t *testing.T, players []string, rules RuleSet, rolls ...int) (*ludo, *State) {
	t.Helper()
	e, err := NewLudo("match-1", players, rules)
	require.NoError(t, err)
	l := e.(*ludo)
	i := 0
	l.roll = func() int {
		v := rolls[i%len(rolls)]
		i++
		return v
	}
	st, err := l.InitializeState()
	require.NoError(t, err)
	return l, st
}

func ludoRoll(t *testing.T, l *ludo, st *State, playerID string) int {
	t.Helper()
	move := json.RawMessage(`{"action":"roll_dice"}`)
	require.NoError(t, l.ValidateMove(st, playerID, move))
	require.NoError(t, l.ApplyMove(st, playerID, move))

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	require.NotNil(t, payload.CurrentDiceRoll)
	return *payload.CurrentDiceRoll
}

func TestLudoInitialState(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 1)

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	require.Len(t, payload.Pieces["a"], 4)
	require.Len(t, payload.Pieces["b"], 4)
	for _, p := range payload.Pieces["a"] {
		assert.Equal(t, "yard", p.Position)
	}
	assert.False(t, payload.DiceRolled)
	assert.True(t, l.turnComplete)
}

func TestLudoCannotMoveBeforeRolling(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 6)

	err := l.ValidateMove(st, "a", json.RawMessage(`{"action":"move_piece","piece_id":"p0_piece0"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roll dice")
}

func TestLudoYardExitRequiresSix(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 3)

	roll := ludoRoll(t, l, st, "a")
	assert.Equal(t, 3, roll)

	// All pieces are in the yard; a 3 cannot move any of them and the
	// turn closes immediately.
	assert.True(t, l.turnComplete)
	err := l.ValidateMove(st, "a", json.RawMessage(`{"action":"move_piece","piece_id":"p0_piece0"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot move")
}

func TestLudoSixExitsYardAndGrantsExtraTurn(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 6)

	roll := ludoRoll(t, l, st, "a")
	assert.Equal(t, 6, roll)
	assert.False(t, l.turnComplete)

	move := json.RawMessage(`{"action":"move_piece","piece_id":"p0_piece0"}`)
	require.NoError(t, l.ValidateMove(st, "a", move))
	require.NoError(t, l.ApplyMove(st, "a", move))

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "track_0", payload.Pieces["a"][0].Position)
	assert.True(t, payload.ExtraTurnPending)

	// Rolling a 6 keeps the turn with the same player.
	l.AdvanceTurn()
	assert.Equal(t, "a", l.CurrentPlayer())
}

func TestLudoDoubleRollRejected(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 6)

	ludoRoll(t, l, st, "a")
	err := l.ValidateMove(st, "a", json.RawMessage(`{"action":"roll_dice"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already rolled")
}

func TestLudoTurnRotatesWithoutSix(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 3)

	ludoRoll(t, l, st, "a")
	assert.True(t, l.turnComplete)
	l.AdvanceTurn()
	assert.Equal(t, "b", l.CurrentPlayer())
	l.StartTurn(st)

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.False(t, payload.DiceRolled)
	assert.Nil(t, payload.CurrentDiceRoll)
}

func TestLudoPositionArithmetic(t *testing.T) {
	l, _ := newLudoWithRoll(t, []string{"a", "b"}, nil, 1)

	// Player 0 starts at track 0 and enters home at 50.
	pos, ok := l.newPosition("a", "yard", 6)
	require.True(t, ok)
	assert.Equal(t, "track_0", pos)

	pos, ok = l.newPosition("a", "track_48", 2)
	require.True(t, ok)
	assert.Equal(t, "home_0", pos)

	pos, ok = l.newPosition("a", "track_48", 4)
	require.True(t, ok)
	assert.Equal(t, "home_2", pos)

	// Player 1 starts at 13 and wraps around the circular track.
	pos, ok = l.newPosition("b", "track_50", 4)
	require.True(t, ok)
	assert.Equal(t, "track_2", pos)

	// Finished pieces never move.
	_, ok = l.newPosition("a", "finished", 6)
	assert.False(t, ok)
}

func TestLudoExactFinish(t *testing.T) {
	l, _ := newLudoWithRoll(t, []string{"a", "b"}, nil, 1)

	pos, ok := l.newPosition("a", "home_2", 4)
	require.True(t, ok)
	assert.Equal(t, "finished", pos)

	// Overshooting the finish is not allowed with the default rules.
	_, ok = l.newPosition("a", "home_4", 3)
	assert.False(t, ok)
}

func TestLudoOvershootAllowedWhenExactFinishDisabled(t *testing.T) {
	l, _ := newLudoWithRoll(t, []string{"a", "b"}, RuleSet{"exact_roll_to_finish": false}, 1)

	pos, ok := l.newPosition("a", "home_4", 3)
	require.True(t, ok)
	assert.Equal(t, "finished", pos)
}

func TestLudoCaptureSendsHome(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 1)

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.Pieces["a"][0].Position = "track_1"
	payload.Pieces["b"][0].Position = "track_2"
	payload.DiceRolled = true
	one := 1
	payload.CurrentDiceRoll = &one
	require.NoError(t, st.encodePayload(&payload))

	move := json.RawMessage(`{"action":"move_piece","piece_id":"p0_piece0"}`)
	require.NoError(t, l.ValidateMove(st, "a", move))
	require.NoError(t, l.ApplyMove(st, "a", move))

	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "track_2", payload.Pieces["a"][0].Position)
	assert.Equal(t, "yard", payload.Pieces["b"][0].Position)
}

func TestLudoSafeSquareBlocksCapture(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, nil, 1)

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.Pieces["a"][0].Position = "track_7"
	payload.Pieces["b"][0].Position = "track_8" // safe square
	payload.DiceRolled = true
	one := 1
	payload.CurrentDiceRoll = &one
	require.NoError(t, st.encodePayload(&payload))

	move := json.RawMessage(`{"action":"move_piece","piece_id":"p0_piece0"}`)
	require.NoError(t, l.ValidateMove(st, "a", move))
	require.NoError(t, l.ApplyMove(st, "a", move))

	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "track_8", payload.Pieces["a"][0].Position)
	assert.Equal(t, "track_8", payload.Pieces["b"][0].Position)
}

func TestLudoWinWhenAllPiecesFinish(t *testing.T) {
	l, st := newLudoWithRoll(t, []string{"a", "b"}, RuleSet{"pieces_per_player": 2}, 1)

	var payload ludoPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.Pieces["a"][0].Position = "finished"
	payload.Pieces["a"][1].Position = "finished"
	require.NoError(t, st.encodePayload(&payload))

	result, winnerID := l.CheckResult(st)
	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "a", winnerID)
}

func TestLudoFourPlayers(t *testing.T) {
	l, _ := newLudoWithRoll(t, []string{"a", "b", "c", "d"}, nil, 1)

	// Each player enters the track at their own starting square.
	for i, player := range []string{"a", "b", "c", "d"} {
		pos, ok := l.newPosition(player, "yard", 6)
		require.True(t, ok)
		assert.Equal(t, map[int]string{0: "track_0", 1: "track_13", 2: "track_26", 3: "track_39"}[i], pos)
	}
}
