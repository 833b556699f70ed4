package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisit_ResolvesKnownParentToMappedURL(t *testing.T) {
	v := NewVisit(&fakeLLM{keywords: "ignored"})
	url, discussion, err := v.Resolve(context.Background(), "backlog", "backlog-stale-items")
	require.NoError(t, err)
	assert.Equal(t, "/backlog", url)
	assert.NotEmpty(t, discussion)
}

func TestVisit_FallsBackToDefaultURLForUnknownParent(t *testing.T) {
	v := NewVisit(&fakeLLM{})
	url, _, err := v.Resolve(context.Background(), "unknown-cluster", "x")
	require.NoError(t, err)
	assert.Equal(t, defaultNavigationURL, url)
}
