package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type webhookCreateRequest struct {
	CallbackURL string         `json:"callback_url"`
	Conditions  map[string]any `json:"conditions"`
}

func (s *Server) handleWebhooksList(c echo.Context) error {
	username := c.Param("username")
	hooks, err := s.webhooks.ListByUser(username)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, hooks)
}

func (s *Server) handleWebhooksCreate(c echo.Context) error {
	username := c.Param("username")
	var req webhookCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CallbackURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "callback_url is required")
	}
	hook, err := s.webhooks.Create(username, req.CallbackURL, req.Conditions)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, hook)
}

func (s *Server) handleWebhooksDelete(c echo.Context) error {
	id := c.Param("id")
	deleted, err := s.webhooks.Delete(id)
	if err != nil {
		return writeErr(c, err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "webhook not found")
	}
	return c.NoContent(http.StatusNoContent)
}
