package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const (
	ludoTrackSquares  = 52
	ludoHomePathLen   = 6
	ludoDefaultPieces = 4
)

// Positions on the circular track that shield pieces from capture.
var ludoSafeSquares = map[int]bool{
	0: true, 8: true, 13: true, 21: true,
	26: true, 34: true, 39: true, 47: true,
}

var (
	ludoStartingPositions = [4]int{0, 13, 26, 39}
	ludoHomeEntries       = [4]int{50, 11, 24, 37}
)

// ludo races 2-4 players around the 52-square track. A turn is two steps,
// roll then move, and the extra-turn and no-valid-move rules make turn
// boundaries depend on the dice, so ludo overrides the turn hooks.
type ludo struct {
	core
	piecesPerPlayer  int
	sixExtraTurn     bool
	exactFinish      bool
	captureSendsHome bool

	indexByPlayer    map[string]int
	extraTurnPending bool
	turnComplete     bool

	roll func() int
}

type ludoPiece struct {
	ID       string `json:"id"`
	Position string `json:"position"`
	IsSafe   bool   `json:"is_safe"`
}

type ludoPayload struct {
	Pieces           map[string][]ludoPiece   `json:"pieces"`
	CurrentDiceRoll  *int                     `json:"current_dice_roll"`
	DiceRolled       bool                     `json:"dice_rolled"`
	MoveMade         bool                     `json:"move_made"`
	ExtraTurnPending bool                     `json:"extra_turn_pending"`
	MovesHistory     []map[string]interface{} `json:"moves_history"`
}

type ludoMove struct {
	Action  string `json:"action"`
	PieceID string `json:"piece_id"`
}

func ludoInfo() Info {
	return Info{
		GameKind:    "ludo",
		DisplayName: "Ludo",
		Description: "Classic Ludo. Race your pieces around the board and be the first to get them all home.",
		MinPlayers:  2,
		MaxPlayers:  4,
		SupportedRules: withTimingOptions(map[string]RuleOption{
			"pieces_per_player": {
				Type:          "integer",
				AllowedValues: []interface{}{2, 3, 4},
				Default:       4,
				Description:   "Number of pieces each player controls",
			},
			"six_grants_extra_turn": {
				Type:        "boolean",
				Default:     true,
				Description: "Whether rolling a 6 grants an extra turn",
			},
			"exact_roll_to_finish": {
				Type:        "boolean",
				Default:     true,
				Description: "Whether an exact roll is needed to finish a piece",
			},
			"capture_sends_home": {
				Type:        "boolean",
				Default:     true,
				Description: "Whether landing on an opponent piece sends it back to the yard",
			},
		}),
		TurnBased: true,
		Category:  "board_game",
	}
}

// NewLudo builds a ludo engine for the given match.
func NewLudo(matchID string, players []string, rules RuleSet) (Engine, error) {
	c, err := newCore(matchID, players, rules, ludoInfo())
	if err != nil {
		return nil, err
	}
	indexes := make(map[string]int, len(players))
	for i, p := range players {
		indexes[p] = i
	}
	return &ludo{
		core:             c,
		piecesPerPlayer:  c.rules.Int("pieces_per_player", ludoDefaultPieces),
		sixExtraTurn:     c.rules.Bool("six_grants_extra_turn", true),
		exactFinish:      c.rules.Bool("exact_roll_to_finish", true),
		captureSendsHome: c.rules.Bool("capture_sends_home", true),
		indexByPlayer:    indexes,
		turnComplete:     true,
		roll: func() int {
			return rand.Intn(6) + 1
		},
	}, nil
}

func (e *ludo) Kind() string { return "ludo" }
func (e *ludo) Info() Info   { return ludoInfo() }

func (e *ludo) InitializeState() (*State, error) {
	pieces := make(map[string][]ludoPiece, len(e.players))
	for playerIdx, playerID := range e.players {
		set := make([]ludoPiece, 0, e.piecesPerPlayer)
		for pieceIdx := 0; pieceIdx < e.piecesPerPlayer; pieceIdx++ {
			set = append(set, ludoPiece{
				ID:       fmt.Sprintf("p%d_piece%d", playerIdx, pieceIdx),
				Position: "yard",
			})
		}
		pieces[playerID] = set
	}
	return e.newState(&ludoPayload{
		Pieces:       pieces,
		MovesHistory: []map[string]interface{}{},
	})
}

func (e *ludo) ValidateMove(st *State, playerID string, move json.RawMessage) error {
	if err := e.commonValidate(st, playerID); err != nil {
		return err
	}
	var m ludoMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	if m.Action == "" {
		return illegalMove("move must contain 'action' field")
	}
	var payload ludoPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}

	switch m.Action {
	case "roll_dice":
		if payload.DiceRolled {
			return illegalMove("dice already rolled this turn")
		}
		return nil
	case "move_piece":
		if !payload.DiceRolled {
			return illegalMove("must roll dice before moving")
		}
		if payload.MoveMade {
			return illegalMove("move already made this turn")
		}
		if m.PieceID == "" {
			return illegalMove("must specify 'piece_id' for move_piece action")
		}
		piece := findLudoPiece(payload.Pieces[playerID], m.PieceID)
		if piece == nil {
			return illegalMove("piece %s not found", m.PieceID)
		}
		diceRoll := 0
		if payload.CurrentDiceRoll != nil {
			diceRoll = *payload.CurrentDiceRoll
		}
		if _, ok := e.newPosition(playerID, piece.Position, diceRoll); !ok {
			return illegalMove("piece %s cannot move with dice roll %d", m.PieceID, diceRoll)
		}
		return nil
	default:
		return illegalMove("invalid action: %s", m.Action)
	}
}

func (e *ludo) ApplyMove(st *State, playerID string, move json.RawMessage) error {
	var m ludoMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	var payload ludoPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}

	switch m.Action {
	case "roll_dice":
		diceRoll := e.roll()
		payload.CurrentDiceRoll = &diceRoll
		payload.DiceRolled = true

		granted := diceRoll == 6 && e.sixExtraTurn
		payload.ExtraTurnPending = granted
		e.extraTurnPending = granted

		// Turn stays open only if the roll leaves a legal move.
		e.turnComplete = !e.hasValidPiece(&payload, playerID, diceRoll)

		payload.MovesHistory = append(payload.MovesHistory, map[string]interface{}{
			"player_id":  playerID,
			"action":     "roll_dice",
			"dice_value": diceRoll,
		})

	case "move_piece":
		e.extraTurnPending = payload.ExtraTurnPending

		diceRoll := 0
		if payload.CurrentDiceRoll != nil {
			diceRoll = *payload.CurrentDiceRoll
		}
		piece := findLudoPiece(payload.Pieces[playerID], m.PieceID)
		oldPosition := piece.Position
		newPosition, _ := e.newPosition(playerID, oldPosition, diceRoll)

		if e.captureSendsHome && !e.isSafeSquare(newPosition) {
			for otherID, otherPieces := range payload.Pieces {
				if otherID == playerID {
					continue
				}
				for i := range otherPieces {
					if otherPieces[i].Position != newPosition {
						continue
					}
					otherPieces[i].Position = "yard"
					otherPieces[i].IsSafe = false
					payload.MovesHistory = append(payload.MovesHistory, map[string]interface{}{
						"player_id":       playerID,
						"action":          "capture",
						"captured_player": otherID,
						"captured_piece":  otherPieces[i].ID,
					})
				}
			}
		}

		piece.Position = newPosition
		piece.IsSafe = e.isSafeSquare(newPosition)
		payload.MoveMade = true
		st.MoveCount++

		payload.MovesHistory = append(payload.MovesHistory, map[string]interface{}{
			"player_id": playerID,
			"action":    "move_piece",
			"piece_id":  m.PieceID,
			"from":      oldPosition,
			"to":        newPosition,
			"dice_roll": diceRoll,
		})
		st.setLastMove(payload.MovesHistory[len(payload.MovesHistory)-1])

		e.turnComplete = true
	}

	return st.encodePayload(&payload)
}

func (e *ludo) CheckResult(st *State) (Result, string) {
	var payload ludoPayload
	if err := st.decodePayload(&payload); err != nil {
		return ResultInProgress, ""
	}
	for playerID, pieces := range payload.Pieces {
		finished := 0
		for _, p := range pieces {
			if p.Position == "finished" {
				finished++
			}
		}
		if finished == e.piecesPerPlayer {
			e.result = ResultPlayerWin
			e.winner = playerID
			return ResultPlayerWin, playerID
		}
	}
	return ResultInProgress, ""
}

// AdvanceTurn keeps the turn with the same player while the roll-move pair
// is incomplete or an extra turn was earned.
func (e *ludo) AdvanceTurn() {
	if !e.turnComplete {
		return
	}
	if e.extraTurnPending {
		e.extraTurnPending = false
		return
	}
	e.core.AdvanceTurn()
}

// StartTurn resets the per-turn dice state, but only at a real turn
// boundary; mid-turn (rolled, not yet moved) the state is preserved.
func (e *ludo) StartTurn(st *State) {
	if !e.turnComplete {
		return
	}
	e.core.StartTurn(st)

	var payload ludoPayload
	if err := st.decodePayload(&payload); err != nil {
		return
	}
	payload.CurrentDiceRoll = nil
	payload.DiceRolled = false
	payload.MoveMade = false

	// A consumed extra turn leaves the stored flag stale.
	if payload.ExtraTurnPending && !e.extraTurnPending {
		payload.ExtraTurnPending = false
	}
	e.extraTurnPending = payload.ExtraTurnPending

	_ = st.encodePayload(&payload)
}

// newPosition computes where a piece lands after moving diceRoll squares,
// reporting false when the piece cannot move at all.
func (e *ludo) newPosition(playerID, position string, diceRoll int) (string, bool) {
	playerIdx := e.indexByPlayer[playerID]
	posType, posValue := parseLudoPosition(position)

	switch posType {
	case "yard":
		if diceRoll == 6 {
			return fmt.Sprintf("track_%d", ludoStartingPositions[playerIdx]), true
		}
		return "", false
	case "finished":
		return "", false
	case "track":
		homeEntry := ludoHomeEntries[playerIdx]
		squaresToHome := ((homeEntry - posValue) % ludoTrackSquares + ludoTrackSquares) % ludoTrackSquares
		switch {
		case diceRoll == squaresToHome:
			return "home_0", true
		case diceRoll > squaresToHome:
			overshoot := diceRoll - squaresToHome
			if overshoot <= ludoHomePathLen {
				return fmt.Sprintf("home_%d", overshoot), true
			}
			if e.exactFinish {
				return "", false
			}
			return "finished", true
		default:
			return fmt.Sprintf("track_%d", (posValue+diceRoll)%ludoTrackSquares), true
		}
	case "home":
		newHomePos := posValue + diceRoll
		switch {
		case newHomePos == ludoHomePathLen:
			return "finished", true
		case newHomePos < ludoHomePathLen:
			return fmt.Sprintf("home_%d", newHomePos), true
		default:
			if e.exactFinish {
				return "", false
			}
			return "finished", true
		}
	}
	return "", false
}

func (e *ludo) hasValidPiece(payload *ludoPayload, playerID string, diceRoll int) bool {
	for _, piece := range payload.Pieces[playerID] {
		if _, ok := e.newPosition(playerID, piece.Position, diceRoll); ok {
			return true
		}
	}
	return false
}

// isSafeSquare reports whether a position shields a piece from capture:
// the yard, the home path, the finish, and the marked track squares.
func (e *ludo) isSafeSquare(position string) bool {
	posType, posValue := parseLudoPosition(position)
	switch posType {
	case "yard", "home", "finished":
		return true
	case "track":
		return ludoSafeSquares[posValue]
	}
	return false
}

func parseLudoPosition(position string) (string, int) {
	switch {
	case position == "yard":
		return "yard", 0
	case position == "finished":
		return "finished", 0
	case strings.HasPrefix(position, "track_"):
		v, _ := strconv.Atoi(strings.TrimPrefix(position, "track_"))
		return "track", v
	case strings.HasPrefix(position, "home_"):
		v, _ := strconv.Atoi(strings.TrimPrefix(position, "home_"))
		return "home", v
	}
	return "", 0
}

func findLudoPiece(pieces []ludoPiece, pieceID string) *ludoPiece {
	for i := range pieces {
		if pieces[i].ID == pieceID {
			return &pieces[i]
		}
	}
	return nil
}
