package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/opencity/insight/pkg/events"
	"github.com/opencity/insight/pkg/session"
)

func parseMode(raw string) session.Mode {
	switch session.Mode(raw) {
	case session.ModeChat, session.ModeDeepAnalysis:
		return session.Mode(raw)
	default:
		return session.ModeAuto
	}
}

// chatStreamHandler handles POST /api/chat/stream: it drives one Session
// and relays its event stream to the client as SSE, closing the
// connection promptly if the client disconnects.
func (s *Server) chatStreamHandler(c *echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	resp := c.Response()
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	writer := events.NewWriter(resp, resp)

	ctx := c.Request().Context()
	_, out := s.sessions.Start(ctx, req.Message, parseMode(req.Mode))

	for e := range out {
		if err := writer.Write(e); err != nil {
			return nil // client disconnected mid-stream
		}
	}
	return nil
}

// chatHandler handles POST /api/chat: the non-streaming variant used by
// test clients. It responds with the full event sequence as a JSON array
// of events in emission order; the events are not merged into a single
// object.
func (s *Server) chatHandler(c *echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	ctx := c.Request().Context()
	_, out := s.sessions.Start(ctx, req.Message, parseMode(req.Mode))

	collected := make([]events.Event, 0, 8)
	for e := range out {
		collected = append(collected, e)
	}

	return c.JSON(http.StatusOK, collected)
}
