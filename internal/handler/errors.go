package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/session"
)

var (
	errAdminDisabled = errors.New("admin controls are disabled for this session")
	errInvalidBody   = errors.New("invalid request body")
)

// errorStatus maps domain errors to an HTTP status and a client message.
// Unknown errors are reported as 500 without their text.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrHostNotFound):
		return http.StatusNotFound, "host not found"
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, session.ErrUnknownAudience),
		errors.Is(err, session.ErrUnknownSlide),
		errors.Is(err, session.ErrSlideNotShown),
		errors.Is(err, session.ErrInvalidMapMode),
		errors.Is(err, session.ErrHostRequired),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errAdminDisabled):
		return http.StatusForbidden, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(c echo.Context, log zerolog.Logger, err error) error {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
	}
	return c.JSON(status, echo.Map{"error": msg})
}
