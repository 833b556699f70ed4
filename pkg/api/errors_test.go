package api

import (
	"fmt"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/session"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{
			name:       "unknown product maps to 422",
			err:        apperror.UnknownProduct("top10_volume_30d"),
			expectCode: http.StatusUnprocessableEntity,
			expectMsg:  "top10_volume_30d",
		},
		{
			name:       "planning failed maps to 422",
			err:        apperror.New(apperror.KindPlanningFailed, "no valid products after filtering"),
			expectCode: http.StatusUnprocessableEntity,
			expectMsg:  "no valid products after filtering",
		},
		{
			name:       "unsupported format maps to 400",
			err:        apperror.UnsupportedFormat("flac"),
			expectCode: http.StatusBadRequest,
			expectMsg:  "flac",
		},
		{
			name:       "config error maps to 500",
			err:        apperror.New(apperror.KindConfigError, "missing LLM_API_KEY"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "missing LLM_API_KEY",
		},
		{
			name:       "unrecognized error maps to 500",
			err:        fmt.Errorf("something unexpected happened"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "something unexpected happened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := mapError(tt.err)
			assert.IsType(t, &echo.HTTPError{}, he)
			assert.Equal(t, tt.expectCode, he.Code)
			assert.Contains(t, fmt.Sprint(he.Message), tt.expectMsg)
		})
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, session.ModeChat, parseMode("chat"))
	assert.Equal(t, session.ModeDeepAnalysis, parseMode("deep_analysis"))
	assert.Equal(t, session.ModeAuto, parseMode("auto"))
	assert.Equal(t, session.ModeAuto, parseMode(""))
	assert.Equal(t, session.ModeAuto, parseMode("not-a-real-mode"))
}
