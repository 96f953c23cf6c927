package errs

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrResponse is used as the response body when a handler fails.
type ErrResponse struct {
	Error ServiceError `json:"error"`
}

type ServiceError struct {
	Kind    string `json:"kind,omitempty"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPStatusCode maps an error kind to an HTTP status code.
func HTTPStatusCode(kind Kind) int {
	switch kind {
	case Invalid, InvalidRequest, Validation:
		return http.StatusBadRequest
	case NotExist:
		return http.StatusNotFound
	case Exist:
		return http.StatusConflict
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse writes err to w as JSON, with a status code derived
// from the error kind, and logs it with the full op stack.
func HTTPErrorResponse(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if err == nil {
		writeUntyped(w, logger, errors.New("nil error to HTTPErrorResponse"))
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		writeUntyped(w, logger, err)
		return
	}

	if e.isZero() {
		writeUntyped(w, logger, err)
		return
	}

	logger.Error().
		Stack().
		Err(e.Err).
		Fields(map[string]interface{}{"stack": OpStack(err)}).
		Str("kind", e.Kind.String()).
		Str("parameter", string(e.Param)).
		Msg("error response sent to client")

	body := ErrResponse{
		Error: ServiceError{
			Kind:    e.Kind.String(),
			Param:   string(e.Param),
			Message: e.Error(),
		},
	}

	writeJSON(w, logger, HTTPStatusCode(e.Kind), body)
}

func writeUntyped(w http.ResponseWriter, logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("unknown error kind in response")

	body := ErrResponse{
		Error: ServiceError{
			Kind:    Other.String(),
			Message: err.Error(),
		},
	}

	writeJSON(w, logger, http.StatusInternalServerError, body)
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, code int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error().Err(err).Msg("marshalling error response")
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
