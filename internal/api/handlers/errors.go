package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/utils"
)

// sendDomainError maps editor and service errors onto HTTP responses
func sendDomainError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, pitch.ErrPlayerNotFound):
		utils.SendNotFound(c, err.Error())

	case errors.Is(err, pitch.ErrPositionOccupied),
		errors.Is(err, pitch.ErrInvalidTransition),
		errors.Is(err, pitch.ErrEditorClosed):
		utils.SendConflict(c, err.Error())

	case errors.Is(err, pitch.ErrTeamMismatch),
		errors.Is(err, pitch.ErrInvalidTarget),
		errors.Is(err, pitch.ErrInvalidTeam),
		errors.Is(err, pitch.ErrUnknownPosition),
		errors.Is(err, pitch.ErrUnknownFormation),
		errors.Is(err, pitch.ErrSamePlayer),
		errors.Is(err, pitch.ErrNotOnPitch),
		errors.Is(err, pitch.ErrNotOnBench),
		errors.Is(err, pitch.ErrInvalidRoster):
		utils.SendUnprocessable(c, "Movement rejected", err.Error())

	default:
		utils.SendInternalError(c, "Internal server error")
	}
}
