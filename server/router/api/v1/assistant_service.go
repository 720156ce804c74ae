package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pbhm215/everyday-pda/assistant"
)

type answerResponse struct {
	Response string `json:"response"`
}

// Answer resolves a free-text message into use cases and returns the
// synthesized reply.
//
// GET /api/v1/answer?message=...&user_id=...
func (s *APIV1Service) Answer(c echo.Context) error {
	message := c.QueryParam("message")
	if message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	username := c.QueryParam("user_id")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	response, err := s.Orchestrator.Answer(c.Request().Context(), message, username)
	if err != nil {
		return assistantHTTPError(err)
	}
	return c.JSON(http.StatusOK, answerResponse{Response: response})
}

// Morning returns the scheduled morning briefing. With a user_id it answers
// for that user only, otherwise for every registered user.
//
// GET /api/v1/morning[?user_id=...]
func (s *APIV1Service) Morning(c echo.Context) error {
	ctx := c.Request().Context()

	if username := c.QueryParam("user_id"); username != "" {
		response, err := s.Orchestrator.MorningSummary(ctx, username)
		if err != nil {
			return assistantHTTPError(err)
		}
		return c.JSON(http.StatusOK, answerResponse{Response: response})
	}

	summaries, err := s.Orchestrator.AllMorningSummaries(ctx)
	if err != nil {
		return assistantHTTPError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// Proactivity returns the hourly significance check. A null response means
// nothing significant happened.
//
// GET /api/v1/proactivity[?user_id=...]
func (s *APIV1Service) Proactivity(c echo.Context) error {
	ctx := c.Request().Context()

	if username := c.QueryParam("user_id"); username != "" {
		response, err := s.Orchestrator.ProactivitySummary(ctx, username)
		if err != nil {
			return assistantHTTPError(err)
		}
		return c.JSON(http.StatusOK, assistant.UserSummary{UserID: username, Response: response})
	}

	summaries, err := s.Orchestrator.AllProactivitySummaries(ctx)
	if err != nil {
		return assistantHTTPError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// assistantHTTPError translates pipeline errors into HTTP status codes.
func assistantHTTPError(err error) error {
	var missing *assistant.MissingFieldError
	if errors.As(err, &missing) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, missing.Error())
	}
	var notFound *assistant.NotFoundError
	if errors.As(err, &notFound) {
		return echo.NewHTTPError(http.StatusBadRequest, notFound.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
