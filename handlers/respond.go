package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fitArenaAPI/internal/apperr"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps the engine's sentinel errors to HTTP statuses.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUserNotFound),
		errors.Is(err, apperr.ErrChallengeNotFound),
		errors.Is(err, apperr.ErrPostNotFound),
		errors.Is(err, apperr.ErrRewardNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrInvalidInviteCode),
		errors.Is(err, apperr.ErrNotParticipating):
		respondWithError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, apperr.ErrDuplicateDailyCheckIn),
		errors.Is(err, apperr.ErrChallengeCompleted),
		errors.Is(err, apperr.ErrChallengeFull),
		errors.Is(err, apperr.ErrAlreadyParticipating),
		errors.Is(err, apperr.ErrInsufficientPoints),
		errors.Is(err, apperr.ErrNoSubmissions),
		errors.Is(err, apperr.ErrGoalNotReached):
		respondWithError(w, http.StatusConflict, err.Error())

	case errors.Is(err, apperr.ErrInvalidRequest),
		errors.Is(err, apperr.ErrUnrecognizedMetric),
		errors.Is(err, apperr.ErrMissingExerciseSets),
		errors.Is(err, apperr.ErrMissingTotalWeight),
		errors.Is(err, apperr.ErrMissingEnduranceTime),
		errors.Is(err, apperr.ErrMissingDistanceData):
		respondWithError(w, http.StatusBadRequest, err.Error())

	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
