package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/matchday/services"
)

type jsonResponse map[string]interface{}

func getIDFromURL(r *http.Request, param string) (int, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // programmer error: non-pointer destination
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, status int, message interface{}) {
	if err := writeJSON(w, status, jsonResponse{"error": message}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, http.StatusInternalServerError,
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusConflict, message)
}

// mapServiceErrorToHTTP translates service-layer sentinel errors into
// HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrMatchNotFound):
		notFoundResponse(w)

	case errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrTeamAlreadyRegistered),
		errors.Is(err, services.ErrMatchAlreadyCompleted):
		conflictResponse(w, err.Error())

	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrPlayerNameRequired),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrMatchSameTeam),
		errors.Is(err, services.ErrNegativeScore),
		errors.Is(err, services.ErrMatchCanceled),
		errors.Is(err, services.ErrUnsupportedCrestType),
		errors.Is(err, services.ErrTournamentInvalidStatus),
		errors.Is(err, services.ErrTournamentInvalidStatusTransition),
		errors.Is(err, services.ErrTeamNotRegistered),
		errors.Is(err, services.ErrMatchWithoutTournament):
		badRequestResponse(w, err)

	case errors.Is(err, services.ErrCrestStorageUnavailable):
		errorResponse(w, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
