package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleCard returns a minimal static SVG shell. SVG card rendering (a
// treemap/palette engine over language and streak data) is explicitly out
// of scope per spec §1; this placeholder keeps the route contract (content
// type, theme query param) exercisable without a rendering engine.
func (s *Server) handleCard(c echo.Context) error {
	username := c.Param("username")
	cardType := c.Param("type")
	theme := c.QueryParam("theme")
	if theme == "" {
		theme = "light"
	}

	bg, fg := "#ffffff", "#24292f"
	if theme == "dark" {
		bg, fg = "#0d1117", "#c9d1d9"
	}

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="120" viewBox="0 0 400 120">`+
			`<rect width="400" height="120" fill="%s" rx="6"/>`+
			`<text x="20" y="40" font-family="sans-serif" font-size="16" fill="%s">%s</text>`+
			`<text x="20" y="70" font-family="sans-serif" font-size="12" fill="%s">card: %s</text>`+
			`</svg>`,
		bg, fg, username, fg, cardType,
	)
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}
