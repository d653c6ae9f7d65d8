package game

import "encoding/json"

// clobber is a pure capture game: a piece moves only onto an orthogonally
// adjacent opponent piece, and the first player without a legal move loses.
type clobber struct {
	core
	boardWidth  int
	boardHeight int
	pattern     string
	colors      map[string]string
}

type clobberPayload struct {
	Board  [][]string        `json:"board"`
	Colors map[string]string `json:"player_colors"`
}

type clobberMove struct {
	FromRow *int `json:"from_row"`
	FromCol *int `json:"from_col"`
	ToRow   *int `json:"to_row"`
	ToCol   *int `json:"to_col"`
}

func clobberInfo() Info {
	return Info{
		GameKind:    "clobber",
		DisplayName: "Clobber",
		Description: "Strategic capture game. Move your pieces onto adjacent opponent pieces. First player unable to move loses.",
		MinPlayers:  2,
		MaxPlayers:  2,
		SupportedRules: withTimingOptions(map[string]RuleOption{
			"board_width": {
				Type:          "integer",
				AllowedValues: []interface{}{4, 5, 6, 7, 8, 9, 10},
				Default:       6,
				Description:   "Width of the game board",
			},
			"board_height": {
				Type:          "integer",
				AllowedValues: []interface{}{4, 5, 6, 7, 8, 9, 10},
				Default:       5,
				Description:   "Height of the game board",
			},
			"starting_pattern": {
				Type:          "string",
				AllowedValues: []interface{}{"checkerboard", "rows"},
				Default:       "checkerboard",
				Description:   "Initial piece arrangement: alternating cells or alternating rows",
			},
		}),
		TurnBased: true,
		Category:  "strategy",
	}
}

// NewClobber builds a clobber engine for the given match.
func NewClobber(matchID string, players []string, rules RuleSet) (Engine, error) {
	c, err := newCore(matchID, players, rules, clobberInfo())
	if err != nil {
		return nil, err
	}
	return &clobber{
		core:        c,
		boardWidth:  c.rules.Int("board_width", 6),
		boardHeight: c.rules.Int("board_height", 5),
		pattern:     c.rules.String("starting_pattern", "checkerboard"),
		colors: map[string]string{
			players[0]: "W",
			players[1]: "B",
		},
	}, nil
}

func (e *clobber) Kind() string { return "clobber" }
func (e *clobber) Info() Info   { return clobberInfo() }

func (e *clobber) InitializeState() (*State, error) {
	board := make([][]string, e.boardHeight)
	for row := range board {
		board[row] = make([]string, e.boardWidth)
		for col := range board[row] {
			switch e.pattern {
			case "rows":
				if row%2 == 0 {
					board[row][col] = "W"
				} else {
					board[row][col] = "B"
				}
			default:
				if (row+col)%2 == 0 {
					board[row][col] = "W"
				} else {
					board[row][col] = "B"
				}
			}
		}
	}
	return e.newState(&clobberPayload{Board: board, Colors: e.colors})
}

func (e *clobber) ValidateMove(st *State, playerID string, move json.RawMessage) error {
	if err := e.commonValidate(st, playerID); err != nil {
		return err
	}
	var m clobberMove
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

	var payload clobberPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	color := e.colors[playerID]
	if payload.Board[fromRow][fromCol] != color {
		return illegalMove("no piece of yours at starting position")
	}

	rowDiff, colDiff := abs(toRow-fromRow), abs(toCol-fromCol)
	if !((rowDiff == 1 && colDiff == 0) || (rowDiff == 0 && colDiff == 1)) {
		return illegalMove("can only move to orthogonally adjacent cells")
	}

	if payload.Board[toRow][toCol] != opponentColor(color) {
		return illegalMove("can only move onto opponent's pieces (must capture)")
	}
	return nil
}

func (e *clobber) ApplyMove(st *State, playerID string, move json.RawMessage) error {
	var m clobberMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	var payload clobberPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	color := e.colors[playerID]
	payload.Board[*m.FromRow][*m.FromCol] = ""
	payload.Board[*m.ToRow][*m.ToCol] = color

	st.MoveCount++
	st.setLastMove(map[string]interface{}{
		"player_id": playerID,
		"from_row":  *m.FromRow,
		"from_col":  *m.FromCol,
		"to_row":    *m.ToRow,
		"to_col":    *m.ToCol,
		"color":     color,
	})
	return st.encodePayload(&payload)
}

func (e *clobber) CheckResult(st *State) (Result, string) {
	var payload clobberPayload
	if err := st.decodePayload(&payload); err != nil {
		return ResultInProgress, ""
	}
	current := e.CurrentPlayer()
	if !e.hasLegalMove(payload.Board, e.colors[current]) {
		winner := e.otherPlayer(current)
		e.result = ResultPlayerWin
		e.winner = winner
		return ResultPlayerWin, winner
	}
	return ResultInProgress, ""
}

func (e *clobber) hasLegalMove(board [][]string, color string) bool {
	opponent := opponentColor(color)
	directions := [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	for row := 0; row < e.boardHeight; row++ {
		for col := 0; col < e.boardWidth; col++ {
			if board[row][col] != color {
				continue
			}
			for _, dir := range directions {
				r, c := row+dir[0], col+dir[1]
				if e.inBounds(r, c) && board[r][c] == opponent {
					return true
				}
			}
		}
	}
	return false
}

func (e *clobber) inBounds(row, col int) bool {
	return row >= 0 && row < e.boardHeight && col >= 0 && col < e.boardWidth
}

func opponentColor(color string) string {
	if color == "W" {
		return "B"
	}
	return "W"
}
