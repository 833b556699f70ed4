package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// clusterPredictHandler handles POST /api/cluster/predict.
func (s *Server) clusterPredictHandler(c *echo.Context) error {
	var req ClusterPredictRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	pred, err := s.predictor.Predict(c.Request().Context(), req.Message)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, ClusterPredictResponse{
		ParentClusterID: pred.ParentID,
		ChildClusterID:  pred.ChildID,
		Confidence:      pred.Confidence,
	})
}

// analyticsVisitHandler handles POST /api/chat/analytics-visit.
func (s *Server) analyticsVisitHandler(c *echo.Context) error {
	var req AnalyticsVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	url, discussion, err := s.visit.Resolve(c.Request().Context(), req.ParentClusterID, req.ChildClusterID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, AnalyticsVisitResponse{URL: url, Discussion: discussion})
}
