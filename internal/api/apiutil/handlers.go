package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/authz"
	"github.com/codr1/clubconnect/internal/clothing"
	"github.com/codr1/clubconnect/internal/events"
	"github.com/codr1/clubconnect/internal/invites"
	"github.com/codr1/clubconnect/internal/news"
	"github.com/codr1/clubconnect/internal/players"
)

const maxBodyBytes = 1 << 20

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// ErrorStatus maps domain errors to HTTP status codes.
func ErrorStatus(err error) int {
	var handlerErr HandlerError
	var fieldErr FieldError
	switch {
	case errors.As(err, &handlerErr):
		return handlerErr.Status
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, invites.ErrInvalidStatus),
		errors.Is(err, invites.ErrInvalidNotes),
		errors.Is(err, players.ErrInvalidPlayer),
		errors.Is(err, events.ErrInvalidEvent),
		errors.Is(err, clothing.ErrInvalidRule),
		errors.Is(err, news.ErrInvalidNews):
		return http.StatusBadRequest
	case errors.Is(err, invites.ErrReference),
		errors.Is(err, invites.ErrInviteNotFound),
		errors.Is(err, players.ErrPlayerNotFound),
		errors.Is(err, events.ErrEventNotFound),
		errors.Is(err, clothing.ErrRuleNotFound),
		errors.Is(err, news.ErrNewsNotFound):
		return http.StatusNotFound
	case errors.Is(err, invites.ErrDuplicateInvite),
		errors.Is(err, clothing.ErrDuplicateRule):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON error body. Server errors are logged and
// their details are not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	status := ErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg(logMessage)
		message = http.StatusText(status)
	}
	if writeErr := WriteJSON(w, status, errorResponse{Error: message}); writeErr != nil {
		log.Ctx(r.Context()).Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// RenderHTMLComponent renders component with the given extra headers. It
// reports false after writing an error response.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMessage, errorMessage string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return false
	}

	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write HTML response")
		return false
	}
	return true
}
