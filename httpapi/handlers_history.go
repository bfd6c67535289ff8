package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// handleHistorySnapshot saves the current stats.Summary as a new snapshot
// and dispatches any webhooks whose conditions fire on the transition,
// grounded on original_source's POST /history/snapshot endpoint.
func (s *Server) handleHistorySnapshot(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)

	ctx := c.Request().Context()
	summary := f.Build(ctx, time.Now())
	current := summary.AsMap()

	// Dispatch compares against the latest stored snapshot, so it must run
	// before the new one is saved.
	fired := s.dispatcher.Dispatch(ctx, username, current)
	if err := s.snapshots.Save(username, current, time.Now()); err != nil {
		return writeErr(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{"saved": true, "webhooks_fired": fired})
}

// handleHistoryList returns the snapshot history for username, optionally
// bounded by from/to date query params and a limit.
func (s *Server) handleHistoryList(c echo.Context) error {
	username := c.Param("username")
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	limit := queryInt(c, "limit", 100)

	snapshots, err := s.snapshots.List(username, from, to, limit)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, snapshots)
}
