package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkersMoveJSON(fromRow, fromCol, toRow, toCol int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"from_row":%d,"from_col":%d,"to_row":%d,"to_col":%d}`,
		fromRow, fromCol, toRow, toCol))
}

func setCheckersBoard(t *testing.T, st *State, board [][]string) {
	t.Helper()
	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.Board = board
	require.NoError(t, st.encodePayload(&payload))
}

func emptyCheckersBoard(size int) [][]string {
	board := make([][]string, size)
	for i := range board {
		board[i] = make([]string, size)
	}
	return board
}

func TestCheckersInitialBoard(t *testing.T) {
	_, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))

	white, black := 0, 0
	for row, cells := range payload.Board {
		for col, cell := range cells {
			switch cell {
			case "w":
				white++
				assert.Equal(t, 1, (row+col)%2, "white piece on light square")
			case "b":
				black++
				assert.Equal(t, 1, (row+col)%2, "black piece on light square")
			}
		}
	}
	assert.Equal(t, 12, white)
	assert.Equal(t, 12, black)
	assert.Len(t, payload.LegalMoves, 7)
	assert.Equal(t, "white", payload.Colors["a"])
	assert.Equal(t, "black", payload.Colors["b"])
}

func TestCheckersInternationalBoard(t *testing.T) {
	_, st := newTestEngine(t, "checkers", []string{"a", "b"}, RuleSet{"board_size": 10})

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))

	white := 0
	for _, cells := range payload.Board {
		for _, cell := range cells {
			if cell == "w" {
				white++
			}
		}
	}
	assert.Equal(t, 20, white)
}

func TestCheckersSimpleMove(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	move := checkersMoveJSON(5, 0, 4, 1)
	require.NoError(t, e.ValidateMove(st, "a", move))
	require.NoError(t, e.ApplyMove(st, "a", move))

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "", payload.Board[5][0])
	assert.Equal(t, "w", payload.Board[4][1])
	assert.Equal(t, 1, payload.NonCaptureMoves)
	assert.Len(t, payload.PositionHistory, 1)
}

func TestCheckersBackwardMoveRejected(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	board := emptyCheckersBoard(8)
	board[4][1] = "w"
	board[7][0] = "b"
	setCheckersBoard(t, st, board)

	err := e.ValidateMove(st, "a", checkersMoveJSON(4, 1, 5, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward")
}

func TestCheckersForcedCapture(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	board := emptyCheckersBoard(8)
	board[4][1] = "w"
	board[3][2] = "b"
	setCheckersBoard(t, st, board)

	// A plain move is rejected while a capture is available.
	err := e.ValidateMove(st, "a", checkersMoveJSON(4, 1, 3, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture")

	capture := checkersMoveJSON(4, 1, 2, 3)
	require.NoError(t, e.ValidateMove(st, "a", capture))
	require.NoError(t, e.ApplyMove(st, "a", capture))

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "", payload.Board[3][2])
	assert.Equal(t, "w", payload.Board[2][3])
	assert.Equal(t, 0, payload.NonCaptureMoves)

	// Black has no pieces left, so white wins.
	result, winnerID := e.CheckResult(st)
	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "a", winnerID)
}

func TestCheckersForcedCaptureDisabled(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, RuleSet{"forced_capture": false})

	board := emptyCheckersBoard(8)
	board[4][1] = "w"
	board[3][2] = "b"
	setCheckersBoard(t, st, board)

	require.NoError(t, e.ValidateMove(st, "a", checkersMoveJSON(4, 1, 3, 0)))
}

func TestCheckersPromotion(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	board := emptyCheckersBoard(8)
	board[1][2] = "w"
	board[5][0] = "b"
	setCheckersBoard(t, st, board)

	move := checkersMoveJSON(1, 2, 0, 1)
	require.NoError(t, e.ValidateMove(st, "a", move))
	require.NoError(t, e.ApplyMove(st, "a", move))

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "W", payload.Board[0][1])
}

func TestCheckersNoMovesLoses(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	// White's only piece is trapped in the corner behind black pieces
	// that cannot be jumped.
	board := emptyCheckersBoard(8)
	board[7][0] = "w"
	board[6][1] = "b"
	board[5][2] = "b"
	setCheckersBoard(t, st, board)

	result, winnerID := e.CheckResult(st)
	assert.Equal(t, ResultPlayerWin, result)
	assert.Equal(t, "b", winnerID)
}

func TestCheckersFortyNonCaptureMovesDraws(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	payload.NonCaptureMoves = 40
	require.NoError(t, st.encodePayload(&payload))

	result, _ := e.CheckResult(st)
	assert.Equal(t, ResultDraw, result)
}

func TestCheckersThreefoldRepetitionDraws(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, nil)

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	hash := hashBoard(payload.Board)
	payload.PositionHistory = []string{hash, "other", hash, hash}
	require.NoError(t, st.encodePayload(&payload))

	result, _ := e.CheckResult(st)
	assert.Equal(t, ResultDraw, result)
}

func TestCheckersFlyingKingCapture(t *testing.T) {
	e, st := newTestEngine(t, "checkers", []string{"a", "b"}, RuleSet{"flying_kings": true})

	board := emptyCheckersBoard(8)
	board[6][1] = "W"
	board[4][3] = "b"
	board[0][1] = "b"
	setCheckersBoard(t, st, board)

	// The king jumps the piece from distance and lands two squares past it.
	move := checkersMoveJSON(6, 1, 2, 5)
	require.NoError(t, e.ValidateMove(st, "a", move))
	require.NoError(t, e.ApplyMove(st, "a", move))

	var payload checkersPayload
	require.NoError(t, st.decodePayload(&payload))
	assert.Equal(t, "", payload.Board[4][3])
	assert.Equal(t, "W", payload.Board[2][5])
}
