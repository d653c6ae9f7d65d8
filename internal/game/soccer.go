package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// soccerDirections are the 8 king-move vectors, y growing downward.
var soccerDirections = map[string][2]int{
	"N":  {0, -1},
	"NE": {1, -1},
	"E":  {1, 0},
	"SE": {1, 1},
	"S":  {0, 1},
	"SW": {-1, 1},
	"W":  {-1, 0},
	"NW": {-1, -1},
}

type soccerPreset struct {
	fieldWidth  int
	fieldHeight int
	goalWidth   int
}

var soccerPresets = map[string]soccerPreset{
	"small":  {fieldWidth: 7, fieldHeight: 9, goalWidth: 3},
	"medium": {fieldWidth: 9, fieldHeight: 13, goalWidth: 3},
	"large":  {fieldWidth: 11, fieldHeight: 17, goalWidth: 5},
}

// soccer plays paper soccer: two players draw segments on a grid, a segment
// can never be reused, and landing on the boundary or an already-visited
// node grants a bonus move. The ball entering a goal or the mover being
// stuck ends the game.
type soccer struct {
	core
	fieldWidth  int
	fieldHeight int
	goalWidth   int
	goalStartX  int
	goalEndX    int

	topDefender    string
	bottomDefender string

	extraTurnGranted bool
}

type soccerPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type soccerLine struct {
	From     soccerPoint `json:"from"`
	To       soccerPoint `json:"to"`
	PlayerID string      `json:"player_id"`
}

type soccerField struct {
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	GoalWidth          int    `json:"goal_width"`
	GoalXStart         int    `json:"goal_x_start"`
	GoalXEnd           int    `json:"goal_x_end"`
	TopGoalDefender    string `json:"top_goal_defender"`
	BottomGoalDefender string `json:"bottom_goal_defender"`
}

type soccerPayload struct {
	Field            soccerField    `json:"field"`
	BallPosition     soccerPoint    `json:"ball_position"`
	Lines            []soccerLine   `json:"lines"`
	VisitedEdges     []string       `json:"visited_edges"`
	NodeDegrees      map[string]int `json:"node_degrees"`
	ExtraTurnAwarded bool           `json:"extra_turn_awarded"`
	AvailableMoves   []soccerPoint  `json:"available_moves"`
}

type soccerMove struct {
	Direction string `json:"direction"`
	ToX       *int   `json:"to_x"`
	ToY       *int   `json:"to_y"`
}

func soccerInfo() Info {
	return Info{
		GameKind:    "soccer",
		DisplayName: "Soccer",
		Description: "Draw lines to move the ball across the grid. Reach your opponent's goal or trap them without moves.",
		MinPlayers:  2,
		MaxPlayers:  2,
		SupportedRules: withTimingOptions(map[string]RuleOption{
			"pitch_size": {
				Type:          "string",
				AllowedValues: []interface{}{"small", "medium", "large"},
				Default:       "medium",
				Description:   "Preset pitch sizes: small (7x9), medium (9x13), large (11x17)",
			},
		}),
		TurnBased: true,
		Category:  "strategy",
	}
}

// NewSoccer builds a paper soccer engine for the given match. The first
// participant defends the top goal.
func NewSoccer(matchID string, players []string, rules RuleSet) (Engine, error) {
	c, err := newCore(matchID, players, rules, soccerInfo())
	if err != nil {
		return nil, err
	}
	preset := soccerPresets[c.rules.String("pitch_size", "medium")]
	e := &soccer{
		core:           c,
		fieldWidth:     preset.fieldWidth,
		fieldHeight:    preset.fieldHeight,
		goalWidth:      preset.goalWidth,
		topDefender:    players[0],
		bottomDefender: players[1],
	}
	e.goalStartX = (e.fieldWidth - e.goalWidth) / 2
	e.goalEndX = e.goalStartX + e.goalWidth - 1
	return e, nil
}

func (e *soccer) Kind() string { return "soccer" }
func (e *soccer) Info() Info   { return soccerInfo() }

func (e *soccer) InitializeState() (*State, error) {
	start := soccerPoint{X: e.fieldWidth / 2, Y: e.fieldHeight / 2}
	return e.newState(&soccerPayload{
		Field: soccerField{
			Width:              e.fieldWidth,
			Height:             e.fieldHeight,
			GoalWidth:          e.goalWidth,
			GoalXStart:         e.goalStartX,
			GoalXEnd:           e.goalEndX,
			TopGoalDefender:    e.topDefender,
			BottomGoalDefender: e.bottomDefender,
		},
		BallPosition:   start,
		Lines:          []soccerLine{},
		VisitedEdges:   []string{},
		NodeDegrees:    map[string]int{nodeKey(start): 0},
		AvailableMoves: e.legalMovesFrom(nil, start),
	})
}

func (e *soccer) ValidateMove(st *State, playerID string, move json.RawMessage) error {
	if err := e.commonValidate(st, playerID); err != nil {
		return err
	}
	var m soccerMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	var payload soccerPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	ballPos := payload.BallPosition

	target, dx, dy, ok := e.resolveTarget(ballPos, &m)
	if !ok {
		return illegalMove("move must include 'direction' or 'to_x'/'to_y'")
	}
	if dx == 0 && dy == 0 {
		return illegalMove("move cannot stay in place")
	}
	if abs(dx) > 1 || abs(dy) > 1 {
		return illegalMove("move must be to an adjacent node (8 directions)")
	}
	if !e.isReachableNode(ballPos, target.X, target.Y) {
		return illegalMove("target position is outside the playable area")
	}
	if !e.edgeMoveAllowed(ballPos, dx, dy, target) {
		return illegalMove("moves along the border are not allowed; move inward instead")
	}
	if containsEdge(payload.VisitedEdges, edgeKey(ballPos, target)) {
		return illegalMove("this line segment has already been used")
	}
	return nil
}

func (e *soccer) ApplyMove(st *State, playerID string, move json.RawMessage) error {
	var m soccerMove
	if err := decodeMove(move, &m); err != nil {
		return err
	}
	var payload soccerPayload
	if err := st.decodePayload(&payload); err != nil {
		return err
	}
	ballPos := payload.BallPosition
	target, _, _, _ := e.resolveTarget(ballPos, &m)

	if payload.NodeDegrees == nil {
		payload.NodeDegrees = map[string]int{}
	}
	previousDegree := payload.NodeDegrees[nodeKey(target)]

	payload.VisitedEdges = append(payload.VisitedEdges, edgeKey(ballPos, target))
	payload.NodeDegrees[nodeKey(ballPos)]++
	payload.NodeDegrees[nodeKey(target)]++

	payload.Lines = append(payload.Lines, soccerLine{From: ballPos, To: target, PlayerID: playerID})
	payload.BallPosition = target
	st.MoveCount++
	st.setLastMove(map[string]interface{}{
		"player_id": playerID,
		"from":      ballPos,
		"to":        target,
	})

	// Bonus turn when landing on the boundary or a node that already had
	// a segment attached.
	extraTurn := previousDegree > 0 || e.isBoundaryNode(target)
	e.extraTurnGranted = extraTurn
	payload.ExtraTurnAwarded = extraTurn

	payload.AvailableMoves = e.legalMovesFrom(payload.VisitedEdges, target)
	return st.encodePayload(&payload)
}

func (e *soccer) CheckResult(st *State) (Result, string) {
	var payload soccerPayload
	if err := st.decodePayload(&payload); err != nil {
		return ResultInProgress, ""
	}
	ballPos := payload.BallPosition

	if defender, inGoal := e.goalDefenderFor(ballPos); inGoal {
		winner := e.otherPlayer(defender)
		e.result = ResultPlayerWin
		e.winner = winner
		return ResultPlayerWin, winner
	}

	if len(payload.AvailableMoves) == 0 {
		stuckIdx := (e.turnIdx + 1) % len(e.players)
		if e.extraTurnGranted {
			stuckIdx = e.turnIdx
		}
		winner := e.otherPlayer(e.players[stuckIdx])
		e.result = ResultPlayerWin
		e.winner = winner
		return ResultPlayerWin, winner
	}

	return ResultInProgress, ""
}

// AdvanceTurn keeps the turn with the same player after a bonus move.
func (e *soccer) AdvanceTurn() {
	if e.extraTurnGranted {
		e.extraTurnGranted = false
		return
	}
	e.core.AdvanceTurn()
}

func (e *soccer) resolveTarget(ballPos soccerPoint, m *soccerMove) (soccerPoint, int, int, bool) {
	if m.Direction != "" {
		delta, ok := soccerDirections[strings.ToUpper(m.Direction)]
		if !ok {
			return soccerPoint{}, 0, 0, false
		}
		return soccerPoint{X: ballPos.X + delta[0], Y: ballPos.Y + delta[1]}, delta[0], delta[1], true
	}
	if m.ToX != nil && m.ToY != nil {
		return soccerPoint{X: *m.ToX, Y: *m.ToY}, *m.ToX - ballPos.X, *m.ToY - ballPos.Y, true
	}
	return soccerPoint{}, 0, 0, false
}

func (e *soccer) isWithinField(x, y int) bool {
	return x >= 0 && x < e.fieldWidth && y >= 0 && y < e.fieldHeight
}

// isGoalNode reports whether (x, y) sits in a goal opening, reachable only
// when the ball is already within the goal mouth's column span.
func (e *soccer) isGoalNode(ballPos soccerPoint, x, y int) bool {
	return x >= e.goalStartX && x <= e.goalEndX &&
		(y == -1 || y == e.fieldHeight) &&
		ballPos.X >= e.goalStartX && ballPos.X <= e.goalEndX
}

func (e *soccer) isReachableNode(ballPos soccerPoint, x, y int) bool {
	return e.isWithinField(x, y) || e.isGoalNode(ballPos, x, y)
}

// edgeMoveAllowed rejects moves that run along a boundary; from a boundary
// node the ball must move inward or into a goal opening.
func (e *soccer) edgeMoveAllowed(pos soccerPoint, dx, dy int, target soccerPoint) bool {
	if !e.isBoundaryNode(pos) {
		return true
	}
	if e.isGoalNode(pos, target.X, target.Y) {
		return true
	}
	if pos.X == e.goalStartX && target.X > pos.X && dy == 0 {
		return true
	}
	if pos.X == e.goalEndX && target.X < pos.X && dy == 0 {
		return true
	}
	if pos.X == 0 && dx <= 0 {
		return false
	}
	if pos.X == e.fieldWidth-1 && dx >= 0 {
		return false
	}
	if pos.Y == 0 && dy <= 0 {
		return false
	}
	if pos.Y == e.fieldHeight-1 && dy >= 0 {
		return false
	}
	return true
}

// isBoundaryNode reports whether pos lies on the rectangle edge, excluding
// the goal mouths on the top and bottom edges.
func (e *soccer) isBoundaryNode(pos soccerPoint) bool {
	if !e.isWithinField(pos.X, pos.Y) {
		return false
	}
	return pos.X == 0 ||
		pos.X == e.fieldWidth-1 ||
		((pos.Y == 0 || pos.Y == e.fieldHeight-1) &&
			(pos.X <= e.goalStartX || pos.X >= e.goalEndX))
}

func (e *soccer) goalDefenderFor(pos soccerPoint) (string, bool) {
	if pos.X >= e.goalStartX && pos.X <= e.goalEndX {
		if pos.Y == -1 {
			return e.topDefender, true
		}
		if pos.Y == e.fieldHeight {
			return e.bottomDefender, true
		}
	}
	return "", false
}

func (e *soccer) legalMovesFrom(visitedEdges []string, pos soccerPoint) []soccerPoint {
	visited := make(map[string]bool, len(visitedEdges))
	for _, edge := range visitedEdges {
		visited[edge] = true
	}
	moves := []soccerPoint{}
	for _, dir := range sortedDirections() {
		delta := soccerDirections[dir]
		target := soccerPoint{X: pos.X + delta[0], Y: pos.Y + delta[1]}
		if !e.isReachableNode(pos, target.X, target.Y) {
			continue
		}
		if !e.edgeMoveAllowed(pos, delta[0], delta[1], target) {
			continue
		}
		if visited[edgeKey(pos, target)] {
			continue
		}
		moves = append(moves, target)
	}
	return moves
}

func sortedDirections() []string {
	dirs := make([]string, 0, len(soccerDirections))
	for d := range soccerDirections {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// edgeKey encodes an undirected segment as a canonical string.
func edgeKey(a, b soccerPoint) string {
	if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
		a, b = b, a
	}
	return fmt.Sprintf("%d,%d-%d,%d", a.X, a.Y, b.X, b.Y)
}

func nodeKey(pos soccerPoint) string {
	return fmt.Sprintf("%d,%d", pos.X, pos.Y)
}

func containsEdge(edges []string, key string) bool {
	for _, e := range edges {
		if e == key {
			return true
		}
	}
	return false
}
