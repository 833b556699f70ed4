package cluster

import (
	"context"
	"fmt"

	"github.com/opencity/insight/pkg/llmclient"
)

// navigationURLs maps a known parent cluster id to its stable dashboard
// route. Clusters without a specific mapping fall back to the general
// analytics frequency view.
var navigationURLs = map[string]string{
	"billing":    "/dashboard/analytics/frequency",
	"backlog":    "/backlog",
	"priority":   "/priority-quadrant",
	"geographic": "/geographic",
	"population": "/population",
}

const defaultNavigationURL = "/dashboard/analytics/frequency"

const discussionPromptTemplate = "Write one short paragraph (2-3 sentences) introducing the %q / %q data cluster to a user about to view its dashboard. Keep it conversational, suitable for spoken subtitles."

// Visit implements the Analytics-Visit endpoint: given a cluster
// prediction's (parent_id, child_id), it returns a dashboard route and
// an LLM-generated discussion paragraph for subtitle playback.
type Visit struct {
	llm llmclient.Client
}

// NewVisit builds a Visit resolver.
func NewVisit(llm llmclient.Client) *Visit {
	return &Visit{llm: llm}
}

// Resolve returns the navigation URL and discussion text for a cluster.
func (v *Visit) Resolve(ctx context.Context, parentID, childID string) (url, discussion string, err error) {
	url = navigationURLs[parentID]
	if url == "" {
		url = defaultNavigationURL
	}

	discussion, err = v.llm.GenerateText(ctx, fmt.Sprintf(discussionPromptTemplate, parentID, childID))
	if err != nil {
		return "", "", err
	}
	return url, discussion, nil
}
