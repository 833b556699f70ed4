package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/opencity/insight/pkg/events"
)

// SessionEventResponse is one entry of the replayed event log returned by
// GET /api/sessions/{id}.
type SessionEventResponse struct {
	Sequence int          `json:"sequence"`
	Event    events.Event `json:"event"`
}

// sessionReplayHandler handles GET /api/sessions/:id: it replays a
// session's persisted event log from the audit trail, for debugging. It
// does not reattach to a live stream — only completed or in-flight
// Sessions with at least one recorded event return anything.
func (s *Server) sessionReplayHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: "invalid session id"})
	}

	recorded, err := s.audit.Replay(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}

	out := make([]SessionEventResponse, 0, len(recorded))
	for _, r := range recorded {
		out = append(out, SessionEventResponse{Sequence: r.Sequence, Event: r.Event})
	}

	return c.JSON(http.StatusOK, out)
}
