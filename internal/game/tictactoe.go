package game

import "encoding/json"

// ticTacToe plays N×N tic-tac-toe with a configurable win length K≤N.
type ticTacToe struct {
	core
	boardSize int
	winLength int
	symbols   map[string]string
}

type ticTacToePayload struct {
	Board   [][]string        `json:"board"`
	Symbols map[string]string `json:"player_symbols"`
}

type ticTacToeMove struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func ticTacToeInfo() Info {
	return Info{
		GameKind:    "tictactoe",
		DisplayName: "Tic-Tac-Toe",
		Description: "Classic tic-tac-toe. Line up enough of your marks to win.",
		MinPlayers:  2,
		MaxPlayers:  2,
		SupportedRules: withTimingOptions(map[string]RuleOption{
			"board_size": {
				Type:        "integer",
				Min:         fptr(3),
				Max:         fptr(5),
				Default:     3,
				Description: "Size of the game board (NxN)",
			},
			"win_length": {
				Type:        "integer",
				Min:         fptr(3),
				Max:         fptr(5),
				Default:     3,
				Description: "Number of marks in a row needed to win",
			},
		}),
		TurnBased: true,
		Category:  "strategy",
	}
}

// NewTicTacToe builds a tic-tac-toe engine for the given match.
func NewTicTacToe(matchID string, players []string, rules RuleSet) (Engine, error) {
	c, err := newCore(matchID, players, rules, ticTacToeInfo())
	if err != nil {
		return nil, err
	}
	e := &ticTacToe{
		core:      c,
		boardSize: c.rules.Int("board_size", 3),
		winLength: c.rules.Int("win_length", 3),
		symbols: map[string]string{
			players[0]: "X",
			players[1]: "O",
		},
	}
	if e.winLength > e.boardSize {
		return nil, configError("win_length cannot exceed board_size")
	}
	return e, nil
}

func (e *ticTacToe) Kind() string { return "tictactoe" }
func (e *ticTacToe) Info() Info   { return ticTacToeInfo() }

func (e *ticTacToe) InitializeState() (*State, error) {
	board := make([][]string, e.boardSize)
	for i := range board {
		board[i] = make([]string, e.boardSize)
	}
	return e.newState(&ticTacToePayload{Board: board, Symbols: e.symbols})
}

func (e *ticTacToe) ValidateMove(st *State, playerID string, move json.RawMessage) error {
	if err := e.commonValidate(st, playerID); err != nil {
		return err
	}
	var m ticTacToeMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	if m.Row == nil || m.Col == nil {
		return illegalMove("move must contain 'row' and 'col' fields")
	}
	row, col := *m.Row, *m.Col
	if row < 0 || row >= e.boardSize || col < 0 || col >= e.boardSize {
		return illegalMove("position out of bounds (board size: %dx%d)", e.boardSize, e.boardSize)
	}
	var payload ticTacToePayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	if payload.Board[row][col] != "" {
		return illegalMove("position already occupied")
	}
	return nil
}

func (e *ticTacToe) ApplyMove(st *State, playerID string, move json.RawMessage) error {
	var m ticTacToeMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	var payload ticTacToePayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	symbol := e.symbols[playerID]
	payload.Board[*m.Row][*m.Col] = symbol
	st.MoveCount++
	st.setLastMove(map[string]interface{}{
		"player_id": playerID,
		"row":       *m.Row,
		"col":       *m.Col,
		"symbol":    symbol,
	})
	return st.encodePayload(&payload)
}

func (e *ticTacToe) CheckResult(st *State) (Result, string) {
	var payload ticTacToePayload
	if err := st.decodePayload(&payload); err != nil {
		return ResultInProgress, ""
	}
	if symbol := e.findWinner(payload.Board); symbol != "" {
		for playerID, s := range e.symbols {
			if s == symbol {
				e.result = ResultPlayerWin
				e.winner = playerID
				return ResultPlayerWin, playerID
			}
		}
	}
	if st.MoveCount >= e.boardSize*e.boardSize {
		e.result = ResultDraw
		return ResultDraw, ""
	}
	return ResultInProgress, ""
}

func (e *ticTacToe) findWinner(board [][]string) string {
	for _, row := range board {
		if s := e.lineWinner(row); s != "" {
			return s
		}
	}
	for col := 0; col < e.boardSize; col++ {
		line := make([]string, e.boardSize)
		for row := 0; row < e.boardSize; row++ {
			line[row] = board[row][col]
		}
		if s := e.lineWinner(line); s != "" {
			return s
		}
	}
	diag1 := make([]string, e.boardSize)
	diag2 := make([]string, e.boardSize)
	for i := 0; i < e.boardSize; i++ {
		diag1[i] = board[i][i]
		diag2[i] = board[i][e.boardSize-1-i]
	}
	if s := e.lineWinner(diag1); s != "" {
		return s
	}
	return e.lineWinner(diag2)
}

// lineWinner scans a line for winLength consecutive equal marks.
func (e *ticTacToe) lineWinner(line []string) string {
	if len(line) < e.winLength {
		return ""
	}
	for i := 0; i+e.winLength <= len(line); i++ {
		first := line[i]
		if first == "" {
			continue
		}
		run := true
		for j := 1; j < e.winLength; j++ {
			if line[i+j] != first {
				run = false
				break
			}
		}
		if run {
			return first
		}
	}
	return ""
}
