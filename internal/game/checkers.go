package game

import (
	"encoding/json"
	"strings"
)

// checkers plays draughts on an 8x8 or 10x10 board. The first participant
// owns the white pieces at the bottom and moves toward row 0.
type checkers struct {
	core
	boardSize       int
	forcedCapture   bool
	flyingKings     bool
	backwardCapture bool
	colors          map[string]string
}

type checkersPayload struct {
	Board           [][]string        `json:"board"`
	Colors          map[string]string `json:"player_colors"`
	NonCaptureMoves int               `json:"consecutive_non_capture_moves"`
	PositionHistory []string          `json:"position_history"`
	LegalMoves      []checkersMove    `json:"legal_moves"`
}

type checkersMove struct {
	FromRow *int `json:"from_row"`
	FromCol *int `json:"from_col"`
	ToRow   *int `json:"to_row"`
	ToCol   *int `json:"to_col"`
}

func checkersInfo() Info {
	return Info{
		GameKind:    "checkers",
		DisplayName: "Checkers",
		Description: "Classic checkers. Capture by jumping diagonally; reaching the far rank promotes a piece to a king. First player unable to move loses.",
		MinPlayers:  2,
		MaxPlayers:  2,
		SupportedRules: withTimingOptions(map[string]RuleOption{
			"board_size": {
				Type:          "integer",
				AllowedValues: []interface{}{8, 10},
				Default:       8,
				Description:   "Board size: 8 for standard checkers, 10 for international",
			},
			"forced_capture": {
				Type:        "boolean",
				Default:     true,
				Description: "Whether captures are mandatory when available",
			},
			"flying_kings": {
				Type:        "boolean",
				Default:     false,
				Description: "Whether kings move multiple squares (international checkers)",
			},
			"backward_capture": {
				Type:        "boolean",
				Default:     true,
				Description: "Whether regular pieces can capture backward",
			},
		}),
		TurnBased: true,
		Category:  "strategy",
	}
}

// NewCheckers builds a checkers engine for the given match.
func NewCheckers(matchID string, players []string, rules RuleSet) (Engine, error) {
	c, err := newCore(matchID, players, rules, checkersInfo())
	if err != nil {
		return nil, err
	}
	return &checkers{
		core:            c,
		boardSize:       c.rules.Int("board_size", 8),
		forcedCapture:   c.rules.Bool("forced_capture", true),
		flyingKings:     c.rules.Bool("flying_kings", false),
		backwardCapture: c.rules.Bool("backward_capture", true),
		colors: map[string]string{
			players[0]: "white",
			players[1]: "black",
		},
	}, nil
}

func (e *checkers) Kind() string { return "checkers" }
func (e *checkers) Info() Info   { return checkersInfo() }

func (e *checkers) InitializeState() (*State, error) {
	payload := &checkersPayload{
		Board:           e.startingBoard(),
		Colors:          e.colors,
		PositionHistory: []string{},
	}
	payload.LegalMoves = e.allLegalMoves(payload.Board, e.CurrentPlayer())
	return e.newState(payload)
}

// startingBoard places black at the top and white at the bottom, dark
// squares only. 3 occupied rows per side on 8x8, 4 on 10x10.
func (e *checkers) startingBoard() [][]string {
	board := make([][]string, e.boardSize)
	for i := range board {
		board[i] = make([]string, e.boardSize)
	}
	pieceRows := 3
	if e.boardSize == 10 {
		pieceRows = 4
	}
	for row := 0; row < pieceRows; row++ {
		for col := 0; col < e.boardSize; col++ {
			if (row+col)%2 == 1 {
				board[row][col] = "b"
			}
		}
	}
	for row := e.boardSize - pieceRows; row < e.boardSize; row++ {
		for col := 0; col < e.boardSize; col++ {
			if (row+col)%2 == 1 {
				board[row][col] = "w"
			}
		}
	}
	return board
}

func (e *checkers) ValidateMove(st *State, playerID string, move json.RawMessage) error {
	if err := e.commonValidate(st, playerID); err != nil {
		return err
	}
	var m checkersMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	if m.FromRow == nil || m.FromCol == nil || m.ToRow == nil || m.ToCol == nil {
		return illegalMove("move must contain 'from_row', 'from_col', 'to_row' and 'to_col' fields")
	}
	fromRow, fromCol, toRow, toCol := *m.FromRow, *m.FromCol, *m.ToRow, *m.ToCol

	if !e.inBounds(fromRow, fromCol) {
		return illegalMove("starting position out of bounds")
	}
	if !e.inBounds(toRow, toCol) {
		return illegalMove("destination position out of bounds")
	}

	var payload checkersPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	board := payload.Board
	color := e.colors[playerID]

	piece := board[fromRow][fromCol]
	if !isPlayerPiece(piece, color) {
		return illegalMove("no piece of yours at starting position")
	}
	if board[toRow][toCol] != "" {
		return illegalMove("destination square is occupied")
	}

	rowDiff := toRow - fromRow
	colDiff := toCol - fromCol
	if abs(rowDiff) != abs(colDiff) {
		return illegalMove("must move diagonally")
	}
	if (toRow+toCol)%2 == 0 {
		return illegalMove("can only move to dark squares")
	}

	distance := abs(rowDiff)
	isKing := piece == strings.ToUpper(piece)

	if e.forcedCapture && len(e.captureMoves(board, playerID)) > 0 {
		if !e.isCaptureMove(board, fromRow, fromCol, toRow, toCol, color, isKing) {
			return illegalMove("must capture when possible")
		}
	}

	switch {
	case distance == 1:
		return e.validateRegularMove(fromRow, toRow, distance, color, isKing)
	case distance >= 2:
		if e.isCaptureMove(board, fromRow, fromCol, toRow, toCol, color, isKing) {
			return e.validateCaptureMove(board, fromRow, fromCol, toRow, toCol, color, isKing)
		}
		if isKing && e.flyingKings {
			return e.validateRegularMove(fromRow, toRow, distance, color, isKing)
		}
		if isKing {
			return illegalMove("kings can only move one square in standard rules")
		}
		return e.validateCaptureMove(board, fromRow, fromCol, toRow, toCol, color, isKing)
	default:
		return illegalMove("invalid move distance")
	}
}

func (e *checkers) validateRegularMove(fromRow, toRow, distance int, color string, isKing bool) error {
	rowDiff := toRow - fromRow
	if isKing {
		if e.flyingKings || distance == 1 {
			return nil
		}
		return illegalMove("kings can only move one square in standard rules")
	}
	if distance != 1 {
		return illegalMove("regular pieces can only move one square")
	}
	if color == "white" && rowDiff != -1 {
		return illegalMove("regular pieces can only move forward")
	}
	if color == "black" && rowDiff != 1 {
		return illegalMove("regular pieces can only move forward")
	}
	return nil
}

func (e *checkers) validateCaptureMove(board [][]string, fromRow, fromCol, toRow, toCol int, color string, isKing bool) error {
	rowDiff := toRow - fromRow
	distance := abs(rowDiff)

	if isKing && e.flyingKings {
		captured := 0
		rowDir, colDir := sign(rowDiff), sign(toCol-fromCol)
		for r, c := fromRow+rowDir, fromCol+colDir; r != toRow; r, c = r+rowDir, c+colDir {
			piece := board[r][c]
			if piece == "" {
				continue
			}
			if !isOpponentPiece(piece, color) {
				return illegalMove("cannot jump over own pieces")
			}
			captured++
		}
		if captured != 1 {
			return illegalMove("must capture exactly one piece")
		}
		return nil
	}

	if distance != 2 {
		return illegalMove("capture moves must jump exactly 2 squares")
	}
	if !isKing && !e.backwardCapture {
		if color == "white" && rowDiff > 0 {
			return illegalMove("regular pieces cannot capture backward")
		}
		if color == "black" && rowDiff < 0 {
			return illegalMove("regular pieces cannot capture backward")
		}
	}
	midPiece := board[(fromRow+toRow)/2][(fromCol+toCol)/2]
	if midPiece == "" {
		return illegalMove("no piece to capture")
	}
	if !isOpponentPiece(midPiece, color) {
		return illegalMove("cannot capture own pieces")
	}
	return nil
}

func (e *checkers) ApplyMove(st *State, playerID string, move json.RawMessage) error {
	var m checkersMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	var payload checkersPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	fromRow, fromCol, toRow, toCol := *m.FromRow, *m.FromCol, *m.ToRow, *m.ToCol
	board := payload.Board
	color := e.colors[playerID]
	piece := board[fromRow][fromCol]
	isKing := piece == strings.ToUpper(piece)

	captured := false
	if abs(toRow-fromRow) >= 2 {
		if isKing && e.flyingKings {
			rowDir, colDir := sign(toRow-fromRow), sign(toCol-fromCol)
			for r, c := fromRow+rowDir, fromCol+colDir; r != toRow; r, c = r+rowDir, c+colDir {
				if board[r][c] != "" && isOpponentPiece(board[r][c], color) {
					board[r][c] = ""
					captured = true
					break
				}
			}
		} else {
			midRow, midCol := (fromRow+toRow)/2, (fromCol+toCol)/2
			captured = board[midRow][midCol] != ""
			board[midRow][midCol] = ""
		}
		payload.NonCaptureMoves = 0
	} else {
		payload.NonCaptureMoves++
	}

	board[fromRow][fromCol] = ""
	board[toRow][toCol] = piece

	if !isKing {
		if color == "white" && toRow == 0 {
			board[toRow][toCol] = "W"
		} else if color == "black" && toRow == e.boardSize-1 {
			board[toRow][toCol] = "B"
		}
	}

	st.MoveCount++
	st.setLastMove(map[string]interface{}{
		"player_id": playerID,
		"from_row":  fromRow,
		"from_col":  fromCol,
		"to_row":    toRow,
		"to_col":    toCol,
		"captured":  captured,
		"promoted":  board[toRow][toCol] != piece,
	})

	payload.PositionHistory = append(payload.PositionHistory, hashBoard(board))
	payload.LegalMoves = e.allLegalMoves(board, e.otherPlayer(playerID))
	return st.encodePayload(&payload)
}

func (e *checkers) CheckResult(st *State) (Result, string) {
	var payload checkersPayload
	if err := st.decodePayload(&payload); err != nil {
		return ResultInProgress, ""
	}
	board := payload.Board

	if len(payload.PositionHistory) > 0 {
		current := payload.PositionHistory[len(payload.PositionHistory)-1]
		repetitions := 0
		for _, pos := range payload.PositionHistory {
			if pos == current {
				repetitions++
			}
		}
		if repetitions >= 3 {
			e.result = ResultDraw
			return ResultDraw, ""
		}
	}
	if payload.NonCaptureMoves >= 40 {
		e.result = ResultDraw
		return ResultDraw, ""
	}

	whitePieces, blackPieces := 0, 0
	for _, row := range board {
		for _, cell := range row {
			switch strings.ToLower(cell) {
			case "w":
				whitePieces++
			case "b":
				blackPieces++
			}
		}
	}

	current := e.CurrentPlayer()
	currentColor := e.colors[current]
	if (currentColor == "white" && blackPieces == 0) || (currentColor == "black" && whitePieces == 0) {
		e.result = ResultPlayerWin
		e.winner = current
		return ResultPlayerWin, current
	}

	if len(e.allLegalMoves(board, current)) == 0 {
		winner := e.otherPlayer(current)
		e.result = ResultPlayerWin
		e.winner = winner
		return ResultPlayerWin, winner
	}

	return ResultInProgress, ""
}

// captureMoves enumerates every capture available to playerID.
func (e *checkers) captureMoves(board [][]string, playerID string) []checkersMove {
	color := e.colors[playerID]
	var moves []checkersMove

	directions := [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	for row := 0; row < e.boardSize; row++ {
		for col := 0; col < e.boardSize; col++ {
			piece := board[row][col]
			if !isPlayerPiece(piece, color) {
				continue
			}
			isKing := piece == strings.ToUpper(piece)

			for _, dir := range directions {
				dr, dc := dir[0], dir[1]
				if isKing && e.flyingKings {
					opponentDistance := 0
					for d := 1; d < e.boardSize; d++ {
						r, c := row+dr*d, col+dc*d
						if !e.inBounds(r, c) {
							break
						}
						if board[r][c] != "" {
							if isOpponentPiece(board[r][c], color) {
								opponentDistance = d
							}
							break
						}
					}
					if opponentDistance == 0 {
						continue
					}
					for d := opponentDistance + 1; d < e.boardSize; d++ {
						r, c := row+dr*d, col+dc*d
						if !e.inBounds(r, c) || board[r][c] != "" {
							break
						}
						moves = append(moves, newCheckersMove(row, col, r, c))
					}
				} else {
					r, c := row+dr*2, col+dc*2
					if !e.inBounds(r, c) || board[r][c] != "" {
						continue
					}
					if !isKing && !e.backwardCapture {
						if color == "white" && dr > 0 {
							continue
						}
						if color == "black" && dr < 0 {
							continue
						}
					}
					if e.isCaptureMove(board, row, col, r, c, color, isKing) {
						moves = append(moves, newCheckersMove(row, col, r, c))
					}
				}
			}
		}
	}
	return moves
}

// allLegalMoves enumerates every legal move for playerID. With forced
// capture enabled, captures preempt everything else.
func (e *checkers) allLegalMoves(board [][]string, playerID string) []checkersMove {
	if e.forcedCapture {
		if captures := e.captureMoves(board, playerID); len(captures) > 0 {
			return captures
		}
	}

	color := e.colors[playerID]
	var moves []checkersMove
	for row := 0; row < e.boardSize; row++ {
		for col := 0; col < e.boardSize; col++ {
			piece := board[row][col]
			if !isPlayerPiece(piece, color) {
				continue
			}
			isKing := piece == strings.ToUpper(piece)
			moves = append(moves, e.pieceMoves(board, row, col, color, isKing)...)
		}
	}
	return moves
}

func (e *checkers) pieceMoves(board [][]string, row, col int, color string, isKing bool) []checkersMove {
	var directions [][2]int
	switch {
	case isKing:
		directions = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	case color == "white":
		directions = [][2]int{{-1, -1}, {-1, 1}}
	default:
		directions = [][2]int{{1, -1}, {1, 1}}
	}

	var moves []checkersMove
	for _, dir := range directions {
		dr, dc := dir[0], dir[1]
		r, c := row+dr, col+dc
		if e.inBounds(r, c) && board[r][c] == "" {
			moves = append(moves, newCheckersMove(row, col, r, c))
		}
		if isKing && e.flyingKings {
			for d := 2; d < e.boardSize; d++ {
				r, c := row+dr*d, col+dc*d
				if !e.inBounds(r, c) || board[r][c] != "" {
					break
				}
				moves = append(moves, newCheckersMove(row, col, r, c))
			}
		}
	}
	return moves
}

func (e *checkers) isCaptureMove(board [][]string, fromRow, fromCol, toRow, toCol int, color string, isKing bool) bool {
	distance := abs(toRow - fromRow)
	if distance < 2 {
		return false
	}
	if isKing && e.flyingKings {
		rowDir, colDir := sign(toRow-fromRow), sign(toCol-fromCol)
		for r, c := fromRow+rowDir, fromCol+colDir; r != toRow; r, c = r+rowDir, c+colDir {
			if board[r][c] != "" && isOpponentPiece(board[r][c], color) {
				return true
			}
		}
		return false
	}
	if distance != 2 {
		return false
	}
	midPiece := board[(fromRow+toRow)/2][(fromCol+toCol)/2]
	return midPiece != "" && isOpponentPiece(midPiece, color)
}

func (e *checkers) inBounds(row, col int) bool {
	return row >= 0 && row < e.boardSize && col >= 0 && col < e.boardSize
}

func isPlayerPiece(piece, color string) bool {
	return piece != "" && strings.ToLower(piece) == color[:1]
}

func isOpponentPiece(piece, color string) bool {
	opponent := "b"
	if color == "black" {
		opponent = "w"
	}
	return strings.ToLower(piece) == opponent
}

// hashBoard flattens the board into a position key for repetition checks.
func hashBoard(board [][]string) string {
	var sb strings.Builder
	for _, row := range board {
		for _, cell := range row {
			if cell == "" {
				sb.WriteString(".")
			} else {
				sb.WriteString(cell)
			}
		}
	}
	return sb.String()
}

func newCheckersMove(fromRow, fromCol, toRow, toCol int) checkersMove {
	return checkersMove{FromRow: &fromRow, FromCol: &fromCol, ToRow: &toRow, ToCol: &toCol}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	return -1
}
