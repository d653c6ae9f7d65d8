package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"matchroom/internal/cache"
	"matchroom/internal/game"
	"matchroom/internal/metrics"
	"matchroom/internal/repository"
)

// MatchService orchestrates the match lifecycle: creation, moves, clocks,
// forfeits and rating updates. Engines are stateless between requests and
// rebuilt from the stored configuration on every call.
type MatchService struct {
	matches     cache.MatchCache
	ratings     repository.RatingRepo
	broadcaster Broadcaster
}

// NewMatchService creates a new match service
func NewMatchService(matches cache.MatchCache, ratings repository.RatingRepo) *MatchService {
	return &MatchService{
		matches: matches,
		ratings: ratings,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *MatchService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// MatchView is the full match snapshot returned to clients.
type MatchView struct {
	MatchID       string      `json:"match_id"`
	GameKind      string      `json:"game_kind"`
	GameState     *game.State `json:"game_state"`
	GameInfo      *game.Info  `json:"game_info,omitempty"`
	Result        string      `json:"result"`
	WinnerID      string      `json:"winner_identifier,omitempty"`
	CurrentTurnID string      `json:"current_turn_identifier,omitempty"`
}

// TimingView reports the clock situation of a running match.
type TimingView struct {
	TimeoutType    string             `json:"timeout_type"`
	TimeoutSeconds int                `json:"timeout_seconds"`
	CurrentTurnID  string             `json:"current_turn_identifier,omitempty"`
	RemainingTime  *float64           `json:"remaining_time,omitempty"`
	PlayerTimes    map[string]float64 `json:"player_times,omitempty"`
}

// Create starts a new match. A finished match under the same ID is swept
// away first; a running one blocks creation.
func (s *MatchService) Create(ctx context.Context, matchID, kind string, players []string, rules game.RuleSet) (*MatchView, error) {
	existing, err := s.matches.State(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing match: %w", err)
	}
	if existing != nil {
		if !existing.Result.Terminal() {
			return nil, ErrMatchInProgress
		}
		logrus.WithFields(logrus.Fields{"match_id": matchID, "result": existing.Result}).
			Info("deleting finished match to make room for a new one")
		if err := s.matches.Delete(ctx, matchID); err != nil {
			return nil, fmt.Errorf("failed to delete finished match: %w", err)
		}
	}

	engine, err := game.New(kind, matchID, players, rules)
	if err != nil {
		return nil, err
	}
	st, err := engine.InitializeState()
	if err != nil {
		return nil, err
	}

	cfg := &game.Config{
		MatchID:   matchID,
		GameKind:  kind,
		Players:   engine.Players(),
		Rules:     rules,
		TurnIndex: engine.TurnIndex(),
	}
	if cfg.Rules == nil {
		cfg.Rules = game.RuleSet{}
	}
	if err := s.matches.CreateMatch(ctx, cfg, st); err != nil {
		return nil, fmt.Errorf("failed to store match: %w", err)
	}
	s.armDeadline(ctx, engine, st, matchID)

	metrics.MatchesCreated.WithLabelValues(kind).Inc()
	logrus.WithFields(logrus.Fields{"match_id": matchID, "game_kind": kind, "players": players}).
		Info("match created")

	view := s.view(matchID, kind, st, true)
	s.broadcast(matchID, EventGameStarted, &MatchEvent{
		EventID:       uuid.NewString(),
		MatchID:       matchID,
		Result:        string(st.Result),
		CurrentTurnID: st.CurrentTurnID,
		GameState:     st,
	})
	return view, nil
}

// Get returns the current match snapshot.
func (s *MatchService) Get(ctx context.Context, matchID string) (*MatchView, error) {
	cfg, st, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.view(matchID, cfg.GameKind, st, true), nil
}

// MakeMove processes one move: an expired clock preempts validation, then
// the move is validated, applied, checked for a result, and the turn
// advanced if the game goes on.
func (s *MatchService) MakeMove(ctx context.Context, matchID, playerID string, move json.RawMessage) (*MatchView, error) {
	cfg, st, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	engine, err := game.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if occurred, winnerID := engine.CheckTimeout(st); occurred {
		if result, _ := engine.Outcome(); winnerID != "" || result.Terminal() {
			return nil, s.endByTimeout(ctx, cfg, st, winnerID)
		}
		return nil, s.skipExpiredTurn(ctx, cfg, engine, st, playerID)
	}

	if err := engine.ValidateMove(st, playerID, move); err != nil {
		metrics.MovesRejected.WithLabelValues(cfg.GameKind).Inc()
		return nil, err
	}
	if err := engine.ApplyMove(st, playerID, move); err != nil {
		return nil, err
	}
	engine.ConsumeTurnTime(st)

	result, winnerID := engine.CheckResult(st)
	st.Result = result
	st.WinnerID = winnerID

	if !result.Terminal() {
		engine.AdvanceTurn()
		st.CurrentTurnID = engine.CurrentPlayer()
		engine.StartTurn(st)
	}

	cfg.TurnIndex = engine.TurnIndex()
	if err := s.matches.SaveMatch(ctx, cfg, st); err != nil {
		return nil, fmt.Errorf("failed to save match: %w", err)
	}

	if result.Terminal() {
		s.clearDeadline(ctx, matchID)
		s.applyRatings(ctx, engine, st)
		metrics.MatchesEnded.WithLabelValues(string(result)).Inc()
	} else {
		s.armDeadline(ctx, engine, st, matchID)
	}
	metrics.MovesApplied.WithLabelValues(cfg.GameKind).Inc()

	logrus.WithFields(logrus.Fields{
		"match_id": matchID,
		"player":   playerID,
		"result":   result,
	}).Info("move processed")

	view := s.view(matchID, cfg.GameKind, st, false)
	s.broadcast(matchID, EventMoveMade, &MatchEvent{
		EventID:       uuid.NewString(),
		MatchID:       matchID,
		Result:        string(result),
		WinnerID:      winnerID,
		CurrentTurnID: st.CurrentTurnID,
		GameState:     st,
	})
	if result.Terminal() {
		s.broadcast(matchID, EventGameEnded, &MatchEvent{
			EventID:   uuid.NewString(),
			MatchID:   matchID,
			Result:    string(result),
			WinnerID:  winnerID,
			GameState: st,
		})
	}
	return view, nil
}

// Forfeit concedes the match for playerID and ends it immediately.
func (s *MatchService) Forfeit(ctx context.Context, matchID, playerID string) (*MatchView, error) {
	cfg, st, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	engine, err := game.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	result, winnerID := engine.Forfeit(playerID)
	st.Result = result
	st.WinnerID = winnerID
	st.ForfeitedBy = playerID

	if err := s.matches.SaveState(ctx, matchID, st); err != nil {
		return nil, fmt.Errorf("failed to save match: %w", err)
	}
	s.clearDeadline(ctx, matchID)
	s.applyRatings(ctx, engine, st)
	metrics.MatchesEnded.WithLabelValues(string(result)).Inc()

	logrus.WithFields(logrus.Fields{"match_id": matchID, "player": playerID}).
		Info("player forfeited")

	s.broadcast(matchID, EventPlayerForfeited, &MatchEvent{
		EventID:   uuid.NewString(),
		MatchID:   matchID,
		Result:    string(result),
		WinnerID:  winnerID,
		GameState: st,
	})
	return s.view(matchID, cfg.GameKind, st, false), nil
}

// PlayerLeft ends the match because a participant disappeared; the outcome
// mirrors a forfeit but is recorded as player_left.
func (s *MatchService) PlayerLeft(ctx context.Context, matchID, playerID string) (*MatchView, error) {
	cfg, st, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	engine, err := game.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	_, winnerID := engine.Forfeit(playerID)
	st.Result = game.ResultPlayerLeft
	st.WinnerID = winnerID
	st.LeftBy = playerID

	if err := s.matches.SaveState(ctx, matchID, st); err != nil {
		return nil, fmt.Errorf("failed to save match: %w", err)
	}
	s.clearDeadline(ctx, matchID)
	s.applyRatings(ctx, engine, st)
	metrics.MatchesEnded.WithLabelValues(string(game.ResultPlayerLeft)).Inc()

	logrus.WithFields(logrus.Fields{"match_id": matchID, "player": playerID}).
		Info("player left running match")

	s.broadcast(matchID, EventGameEnded, &MatchEvent{
		EventID:   uuid.NewString(),
		MatchID:   matchID,
		Result:    string(game.ResultPlayerLeft),
		WinnerID:  winnerID,
		GameState: st,
	})
	return s.view(matchID, cfg.GameKind, st, false), nil
}

// TimingInfo reports the clock situation of a match.
func (s *MatchService) TimingInfo(ctx context.Context, matchID string) (*TimingView, error) {
	cfg, st, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	engine, err := game.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	info := &TimingView{
		TimeoutType:    string(st.Timing.TimeoutKind),
		TimeoutSeconds: st.Timing.TimeoutSeconds,
		CurrentTurnID:  st.CurrentTurnID,
	}
	if info.TimeoutType == "" {
		info.TimeoutType = string(game.TimeoutNone)
	}
	if st.Timing.TimeoutKind == game.TimeoutNone {
		return info, nil
	}

	if remaining, ok := engine.RemainingTime(st, ""); ok {
		info.RemainingTime = &remaining
	}
	if st.Timing.TimeoutKind == game.TimeoutTotalTime {
		info.PlayerTimes = make(map[string]float64, len(cfg.Players))
		for _, p := range cfg.Players {
			if remaining, ok := engine.RemainingTime(st, p); ok {
				info.PlayerTimes[p] = remaining
			}
		}
	}
	return info, nil
}

// Delete removes all traces of a match.
func (s *MatchService) Delete(ctx context.Context, matchID string) error {
	return s.matches.Delete(ctx, matchID)
}

// AvailableKinds lists the playable game kinds.
func (s *MatchService) AvailableKinds() []string {
	return game.Kinds()
}

// KindInfo returns static metadata for one game kind.
func (s *MatchService) KindInfo(kind string) (game.Info, bool) {
	return game.InfoFor(kind)
}

// ExpireDeadline handles an expired deadline key: it re-checks the clock
// against the stored state and either ends the match or skips the turn.
// Races with a concurrent move are resolved by doing nothing.
func (s *MatchService) ExpireDeadline(ctx context.Context, matchID string) error {
	cfg, err := s.matches.Config(ctx, matchID)
	if err != nil {
		return err
	}
	if cfg == nil {
		logrus.WithField("match_id", matchID).Warn("deadline expired for unknown match")
		return nil
	}
	st, err := s.matches.State(ctx, matchID)
	if err != nil {
		return err
	}
	if st == nil || st.Result.Terminal() {
		return nil
	}
	engine, err := game.FromConfig(cfg)
	if err != nil {
		return err
	}

	occurred, winnerID := engine.CheckTimeout(st)
	if !occurred {
		// The move that closed the turn raced the notification.
		logrus.WithField("match_id", matchID).Info("deadline expired but clock had not run out")
		return nil
	}

	if result, _ := engine.Outcome(); winnerID != "" || result.Terminal() {
		err := s.endByTimeout(ctx, cfg, st, winnerID)
		if _, ok := err.(*TimeoutPreemptedError); ok {
			return nil
		}
		return err
	}
	err = s.skipExpiredTurn(ctx, cfg, engine, st, st.CurrentTurnID)
	if _, ok := err.(*TimeoutPreemptedError); ok {
		return nil
	}
	return err
}

// endByTimeout finalizes a match whose clock ran out under the end_game
// action.
func (s *MatchService) endByTimeout(ctx context.Context, cfg *game.Config, st *game.State, winnerID string) error {
	st.Result = game.ResultTimeout
	st.WinnerID = winnerID
	if err := s.matches.SaveState(ctx, cfg.MatchID, st); err != nil {
		return err
	}
	s.clearDeadline(ctx, cfg.MatchID)

	engine, err := game.FromConfig(cfg)
	if err == nil {
		s.applyRatings(ctx, engine, st)
	}
	metrics.MatchesEnded.WithLabelValues(string(game.ResultTimeout)).Inc()
	metrics.TimeoutsHandled.WithLabelValues("ended").Inc()

	logrus.WithFields(logrus.Fields{"match_id": cfg.MatchID, "winner": winnerID}).
		Info("match ended on timeout")

	s.broadcast(cfg.MatchID, EventGameEnded, &MatchEvent{
		EventID:   uuid.NewString(),
		MatchID:   cfg.MatchID,
		Result:    string(game.ResultTimeout),
		WinnerID:  winnerID,
		GameState: st,
	})
	return &TimeoutPreemptedError{Ended: true, WinnerID: winnerID}
}

// skipExpiredTurn rotates the turn away from a player whose clock ran out
// under the skip_turn action and re-arms the deadline.
func (s *MatchService) skipExpiredTurn(ctx context.Context, cfg *game.Config, engine game.Engine, st *game.State, timedOut string) error {
	engine.ConsumeTurnTime(st)
	engine.AdvanceTurn()
	st.CurrentTurnID = engine.CurrentPlayer()
	engine.StartTurn(st)

	cfg.TurnIndex = engine.TurnIndex()
	if err := s.matches.SaveMatch(ctx, cfg, st); err != nil {
		return err
	}
	s.armDeadline(ctx, engine, st, cfg.MatchID)
	metrics.TimeoutsHandled.WithLabelValues("skipped").Inc()

	logrus.WithFields(logrus.Fields{"match_id": cfg.MatchID, "player": timedOut}).
		Info("turn skipped on timeout")

	s.broadcast(cfg.MatchID, EventMoveMade, &MatchEvent{
		EventID:       uuid.NewString(),
		MatchID:       cfg.MatchID,
		Result:        string(st.Result),
		CurrentTurnID: st.CurrentTurnID,
		GameState:     st,
	})
	return &TimeoutPreemptedError{CurrentTurnID: st.CurrentTurnID}
}

func (s *MatchService) load(ctx context.Context, matchID string) (*game.Config, *game.State, error) {
	cfg, err := s.matches.Config(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load match config: %w", err)
	}
	if cfg == nil {
		return nil, nil, ErrMatchNotFound
	}
	st, err := s.matches.State(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load match state: %w", err)
	}
	if st == nil {
		return nil, nil, ErrMatchNotFound
	}
	return cfg, st, nil
}

func (s *MatchService) view(matchID, kind string, st *game.State, withInfo bool) *MatchView {
	view := &MatchView{
		MatchID:       matchID,
		GameKind:      kind,
		GameState:     st,
		Result:        string(st.Result),
		WinnerID:      st.WinnerID,
		CurrentTurnID: st.CurrentTurnID,
	}
	if withInfo {
		if info, ok := game.InfoFor(kind); ok {
			view.GameInfo = &info
		}
	}
	return view
}

// armDeadline sets the expiring deadline key from the current player's
// remaining time. Best effort: a failed write only degrades timeout
// detection for this turn.
func (s *MatchService) armDeadline(ctx context.Context, engine game.Engine, st *game.State, matchID string) {
	remaining, ok := engine.RemainingTime(st, "")
	if !ok || remaining <= 0 {
		return
	}
	if err := s.matches.SetDeadline(ctx, matchID, remaining); err != nil {
		logrus.WithError(err).WithField("match_id", matchID).Warn("failed to arm move deadline")
	}
}

func (s *MatchService) clearDeadline(ctx context.Context, matchID string) {
	if err := s.matches.ClearDeadline(ctx, matchID); err != nil {
		logrus.WithError(err).WithField("match_id", matchID).Warn("failed to clear move deadline")
	}
}

// applyRatings adjusts persistent ratings when a match names a winner.
// Best effort: rating storage being down must not fail the match flow.
func (s *MatchService) applyRatings(ctx context.Context, engine game.Engine, st *game.State) {
	if s.ratings == nil {
		return
	}
	for playerID, delta := range engine.EloAdjustments(st) {
		if err := s.ratings.AdjustRating(ctx, playerID, delta); err != nil {
			logrus.WithError(err).WithField("player", playerID).Warn("failed to adjust rating")
		}
	}
}

func (s *MatchService) broadcast(matchID, event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToMatch(matchID, event, payload)
}
