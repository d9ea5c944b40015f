// Package ecsmeta identifies the running container from the ECS task
// metadata endpoint (v4).
package ecsmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	LocalContainer   = "local-dev-container"
	UnknownContainer = "unknown-container"

	taskARNLabel = "com.amazonaws.ecs.task-arn"
)

type containerMeta struct {
	Labels map[string]string `json:"Labels"`
}

// ContainerID returns the task id (last segment of the task ARN). Outside ECS
// (empty metadataURI) it returns LocalContainer; any lookup failure yields
// UnknownContainer.
func ContainerID(ctx context.Context, metadataURI string, client *http.Client) string {
	if strings.TrimSpace(metadataURI) == "" {
		return LocalContainer
	}
	id, err := lookup(ctx, metadataURI, client)
	if err != nil || id == "" {
		return UnknownContainer
	}
	return id
}

func lookup(ctx context.Context, metadataURI string, client *http.Client) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURI, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata endpoint: %s", resp.Status)
	}
	var m containerMeta
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return "", err
	}
	arn := m.Labels[taskARNLabel]
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		arn = arn[i+1:]
	}
	return arn, nil
}
