package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentshop-backend/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps the error taxonomy onto HTTP statuses. Unclassified errors
// are logged and reported as a bare 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("[HTTP] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: "internal"})
		return
	}

	var status int
	msg := appErr.Msg
	switch appErr.Kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindConstraint:
		status = http.StatusUnprocessableEntity
	case apperrors.KindTimeout:
		status = http.StatusGatewayTimeout
	default:
		status = http.StatusInternalServerError
		msg = "internal server error"
		log.Printf("[HTTP] internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: appErr.Kind.String()})
}

// pathID reads a numeric {id}-style route variable.
func pathID(r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
