package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchroom/internal/game"
	"matchroom/internal/service"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and engine errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var configErr *game.ConfigurationError
	var moveErr *game.IllegalMoveError
	var preempted *service.TimeoutPreemptedError

	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMatchInProgress):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &configErr):
		writeError(w, http.StatusBadRequest, configErr.Error())
	case errors.As(err, &moveErr):
		writeError(w, http.StatusBadRequest, moveErr.Error())
	case errors.As(err, &preempted):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":                   preempted.Error(),
			"ended":                   preempted.Ended,
			"winner_identifier":       preempted.WinnerID,
			"current_turn_identifier": preempted.CurrentTurnID,
		})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
