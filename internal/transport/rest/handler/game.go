package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"matchroom/internal/game"
	"matchroom/internal/service"
)

// GameHandler handles match lifecycle endpoints
type GameHandler struct {
	matchSvc *service.MatchService
}

// NewGameHandler creates a new game handler
func NewGameHandler(matchSvc *service.MatchService) *GameHandler {
	return &GameHandler{matchSvc: matchSvc}
}

// CreateMatchRequest is the request body for starting a match
type CreateMatchRequest struct {
	GameKind     string       `json:"game_kind"`
	Participants []string     `json:"participants"`
	Rules        game.RuleSet `json:"rules,omitempty"`
}

// MoveRequest is the request body for making a move
type MoveRequest struct {
	PlayerID string          `json:"participant"`
	Move     json.RawMessage `json:"move"`
}

// ParticipantRequest identifies the acting participant
type ParticipantRequest struct {
	PlayerID string `json:"participant"`
}

// Create handles POST /v1/matches/{matchId}/game
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GameKind == "" || len(req.Participants) == 0 {
		writeError(w, http.StatusBadRequest, "game_kind and participants are required")
		return
	}

	view, err := h.matchSvc.Create(r.Context(), matchID, req.GameKind, req.Participants, req.Rules)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/matches/{matchId}/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	view, err := h.matchSvc.Get(r.Context(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Move handles POST /v1/matches/{matchId}/game/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" || len(req.Move) == 0 {
		writeError(w, http.StatusBadRequest, "participant and move are required")
		return
	}

	view, err := h.matchSvc.MakeMove(r.Context(), matchID, req.PlayerID, req.Move)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Forfeit handles POST /v1/matches/{matchId}/game/forfeit
func (h *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "participant is required")
		return
	}

	view, err := h.matchSvc.Forfeit(r.Context(), matchID, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Leave handles POST /v1/matches/{matchId}/game/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "participant is required")
		return
	}

	view, err := h.matchSvc.PlayerLeft(r.Context(), matchID, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Timing handles GET /v1/matches/{matchId}/game/timing
func (h *GameHandler) Timing(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	info, err := h.matchSvc.TimingInfo(r.Context(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Delete handles DELETE /v1/matches/{matchId}/game
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	if err := h.matchSvc.Delete(r.Context(), matchID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListKinds handles GET /v1/games
func (h *GameHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := h.matchSvc.AvailableKinds()
	infos := make([]game.Info, 0, len(kinds))
	for _, kind := range kinds {
		if info, ok := h.matchSvc.KindInfo(kind); ok {
			infos = append(infos, info)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": infos})
}

// GetKind handles GET /v1/games/{kind}
func (h *GameHandler) GetKind(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	info, ok := h.matchSvc.KindInfo(kind)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown game kind")
		return
	}
	writeJSON(w, http.StatusOK, info)
}
