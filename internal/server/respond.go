package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"tableside/internal/domain"
)

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem is the single error format (simplified RFC7807 Problem+JSON).
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

// fail maps domain errors onto HTTP problems.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeProblem(w, http.StatusUnprocessableEntity, "invalid_status", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrNoActiveTable),
		errors.Is(err, domain.ErrEmptyOrder):
		writeProblem(w, http.StatusUnprocessableEntity, "invalid_order", err.Error())
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeProblem(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.Is(err, domain.ErrSubmissionTimedOut):
		writeProblem(w, http.StatusGatewayTimeout, "submission_timeout", err.Error())
	default:
		var sub *domain.SubmissionError
		if errors.As(err, &sub) {
			writeProblem(w, http.StatusBadGateway, "submission_failed", sub.Error())
			return
		}
		writeProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// pathID parses the {id} route variable as a UUID.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
