package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playTicTacToe(t *testing.T, e Engine, st *State, playerID string, row, col int) (Result, string) {
	t.Helper()
	move := json.RawMessage(fmt.Sprintf(`{"row":%d,"col":%d}`, row, col))
	require.NoError(t, e.ValidateMove(st, playerID, move))
	require.NoError(t, e.ApplyMove(st, playerID, move))
	result, winnerID := e.CheckResult(st)
	if result == ResultInProgress {
		e.AdvanceTurn()
		st.CurrentTurnID = e.CurrentPlayer()
	} else {
		st.Result = result
		st.WinnerID = winnerID
	}
	return result, winnerID
}

func TestTicTacToeRowWin(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	playTicTacToe(t, e, st, "a", 0, 0)
	playTicTacToe(t, e, st, "b", 1, 1)
	playTicTacToe(t, e, st, "a", 0, 1)
	playTicTacToe(t, e, st, "b", 2, 2)
	result, winnerID := playTicTacToe(t, e, st, "a", 0, 2)

	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "a", winnerID)
}

func TestTicTacToeColumnWin(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	playTicTacToe(t, e, st, "a", 0, 0)
	playTicTacToe(t, e, st, "b", 0, 1)
	playTicTacToe(t, e, st, "a", 1, 0)
	playTicTacToe(t, e, st, "b", 1, 1)
	result, winnerID := playTicTacToe(t, e, st, "a", 2, 0)

	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "a", winnerID)
}

func TestTicTacToeDiagonalWin(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	playTicTacToe(t, e, st, "a", 0, 0)
	playTicTacToe(t, e, st, "b", 0, 1)
	playTicTacToe(t, e, st, "a", 1, 1)
	playTicTacToe(t, e, st, "b", 0, 2)
	result, winnerID := playTicTacToe(t, e, st, "a", 2, 2)

	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "a", winnerID)
}

func TestTicTacToeDraw(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	playTicTacToe(t, e, st, "a", 0, 0)
	playTicTacToe(t, e, st, "b", 0, 1)
	playTicTacToe(t, e, st, "a", 0, 2)
	playTicTacToe(t, e, st, "b", 1, 1)
	playTicTacToe(t, e, st, "a", 1, 0)
	playTicTacToe(t, e, st, "b", 1, 2)
	playTicTacToe(t, e, st, "a", 2, 1)
	playTicTacToe(t, e, st, "b", 2, 0)
	result, winnerID := playTicTacToe(t, e, st, "a", 2, 2)

	assert.Equal(t, ResultDraw, result)
	assert.Empty(t, winnerID)
}

func TestTicTacToeOccupiedCellRejected(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	playTicTacToe(t, e, st, "a", 0, 0)
	err := e.ValidateMove(st, "b", json.RawMessage(`{"row":0,"col":0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "occupied")
}

func TestTicTacToeOutOfBoundsRejected(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	err := e.ValidateMove(st, "a", json.RawMessage(`{"row":3,"col":0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of bounds")
}

func TestTicTacToeMissingFieldsRejected(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"}, nil)

	err := e.ValidateMove(st, "a", json.RawMessage(`{"row":0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row")
}

func TestTicTacToeCustomBoardAndWinLength(t *testing.T) {
	e, st := newTestEngine(t, "tictactoe", []string{"a", "b"},
		RuleSet{"board_size": 5, "win_length": 4})

	// Four in a row on a 5x5 board wins.
	playTicTacToe(t, e, st, "a", 1, 0)
	playTicTacToe(t, e, st, "b", 0, 0)
	playTicTacToe(t, e, st, "a", 1, 1)
	playTicTacToe(t, e, st, "b", 0, 1)
	playTicTacToe(t, e, st, "a", 1, 2)
	playTicTacToe(t, e, st, "b", 0, 2)
	result, winnerID := playTicTacToe(t, e, st, "a", 1, 3)

	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "a", winnerID)
}

func TestTicTacToeWinLengthCannotExceedBoard(t *testing.T) {
	_, err := New("tictactoe", "m1", []string{"a", "b"},
		RuleSet{"board_size": 3, "win_length": 5})
	require.Error(t, err)
}
