package search

import (
	"context"
	"fmt"
	"time"

	ms "github.com/meilisearch/meilisearch-go"
)

const taskPollInterval = 250 * time.Millisecond

// ClientWrapper is a thin Meilisearch client bound to the request fields
// supported by Meilisearch 1.5.x.
type ClientWrapper struct {
	cli ms.ServiceManager
}

// NewClientWrapper creates a new Meilisearch client wrapper.
func NewClientWrapper(url, key string) *ClientWrapper {
	return &ClientWrapper{cli: ms.New(url, ms.WithAPIKey(key))}
}

// Healthy pings the server.
func (c *ClientWrapper) Healthy() error {
	health, err := c.cli.Health()
	if err != nil {
		return err
	}
	if health.Status != "available" {
		return fmt.Errorf("meilisearch status %q", health.Status)
	}
	return nil
}

// Index returns the index manager for uid.
func (c *ClientWrapper) Index(uid string) ms.IndexManager {
	return c.cli.Index(uid)
}

// WaitTask blocks until the task leaves the queue or timeout elapses.
func (c *ClientWrapper) WaitTask(ctx context.Context, taskUID int64, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	task, err := c.cli.WaitForTaskWithContext(ctx, taskUID, taskPollInterval)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait task %d: %w", taskUID, ctxErr)
		}
		return fmt.Errorf("wait task %d: %w", taskUID, err)
	}
	switch task.Status {
	case ms.TaskStatusFailed, ms.TaskStatusCanceled:
		return fmt.Errorf("task %d %s: %s", taskUID, task.Status, task.Error.Message)
	}
	return nil
}

// SearchIndex runs a query with an optional filter.
func (c *ClientWrapper) SearchIndex(index, q, filter string, limit int64) (*ms.SearchResponse, error) {
	req := &ms.SearchRequest{Limit: limit}
	if filter != "" {
		req.Filter = filter
	}
	return c.cli.Index(index).Search(q, req)
}

// FilterState restricts hits to one state code.
func FilterState(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf("state_id = %q", code)
}
