package server

import (
	"fmt"

	apperrors "github.com/creatordesk/channelsync/internal/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// handleGetAnalytics runs the fetch-or-serve-cache cycle for one creator and
// returns the four-dataset envelope. Per-dataset failures are reported inside
// the envelope with a 200; only a missing connection or an unreadable
// credential record fails the whole request.
func (s *Server) handleGetAnalytics(c echo.Context) error {
	creatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid creator ID").WithContext("id", c.Param("id"))
	}
	c.Set("creatorID", creatorID)

	result, err := s.syncer.Sync(c.Request().Context(), creatorID)
	if err != nil {
		return err
	}

	if err := c.JSON(200, result); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
