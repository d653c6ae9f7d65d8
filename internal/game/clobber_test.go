package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clobberMoveJSON(fromRow, fromCol, toRow, toCol int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"from_row":%d,"from_col":%d,"to_row":%d,"to_col":%d}`,
		fromRow, fromCol, toRow, toCol))
}

func setClobberBoard(t *testing.T, st *State, board [][]string) {
	t.Helper()
	var payload clobberPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.Board = board
	require.NoError(t, st.encodePayload(&payload))
}

func TestClobberInitialBoard(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, nil)

	var payload clobberPayload
	require.NoError(t, st.decodePayload(&payload))
	require.Len(t, payload.Board, 5)
	require.Len(t, payload.Board[0], 6)
	assert.Equal(t, "W", payload.Board[0][0])
	assert.Equal(t, "B", payload.Board[0][1])
	assert.Equal(t, "B", payload.Board[1][0])

	result, _ := e.CheckResult(st)
	assert.Equal(t, ResultInProgress, result)
}

func TestClobberRowsPattern(t *testing.T) {
	_, st := newTestEngine(t, "clobber", []string{"a", "b"}, RuleSet{"starting_pattern": "rows"})

	var payload clobberPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "W", payload.Board[0][0])
	assert.Equal(t, "W", payload.Board[0][5])
	assert.Equal(t, "B", payload.Board[1][0])
}

func TestClobberCapture(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, nil)

	move := clobberMoveJSON(0, 0, 0, 1)
	require.NoError(t, e.ValidateMove(st, "a", move))
	require.NoError(t, e.ApplyMove(st, "a", move))

	var payload clobberPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "", payload.Board[0][0])
	assert.Equal(t, "W", payload.Board[0][1])
}

func TestClobberMoveOntoOwnPieceRejected(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, RuleSet{"starting_pattern": "rows"})

	err := e.ValidateMove(st, "a", clobberMoveJSON(0, 0, 0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opponent")
}

func TestClobberMoveOntoEmptyRejected(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, nil)

	var payload clobberPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.Board[1][0] = ""
	require.NoError(t, st.encodePayload(&payload))

	err := e.ValidateMove(st, "a", clobberMoveJSON(0, 0, 1, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opponent")
}

func TestClobberDiagonalRejected(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, nil)

	err := e.ValidateMove(st, "a", clobberMoveJSON(0, 0, 1, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adjacent")
}

func TestClobberWrongPieceRejected(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, nil)

	// (0,1) holds a black piece; white cannot move it.
	err := e.ValidateMove(st, "a", clobberMoveJSON(0, 1, 0, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no piece of yours")
}

func TestClobberNoMovesLoses(t *testing.T) {
	e, st := newTestEngine(t, "clobber", []string{"a", "b"}, nil)

	// White's only piece is isolated from every black piece.
	board := make([][]string, 5)
	for i := range board {
		board[i] = make([]string, 6)
	}
	board[0][0] = "W"
	board[4][5] = "B"
	setClobberBoard(t, st, board)

	result, winnerID := e.CheckResult(st)
	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "b", winnerID)
}
