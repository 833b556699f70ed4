package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/opencity/insight/pkg/report"
)

// reportGenerateHandler handles POST /api/report/generate, returning a
// rendered PDF byte stream.
func (s *Server) reportGenerateHandler(c *echo.Context) error {
	var req ReportGenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	pdf, err := s.reportBldr.Build(report.Request{
		ParentID:   req.ParentClusterID,
		ChildID:    req.ChildClusterID,
		Discussion: req.Discussion,
		Answer:     req.Answer,
		Rationale:  req.Rationale,
		KeyMetrics: req.KeyMetrics,
		ProductIDs: req.ProductIDs,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
