package looker

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// retryClient decorates a Client with bounded retries for transient API
// failures. Only read calls are retried: a write whose response was lost may
// have landed, and replaying a folder create against a timed-out request
// would duplicate the folder.
type retryClient struct {
	inner    Client
	attempts uint
	delay    time.Duration
}

// WithRetry wraps a client so read calls are retried with bounded attempts.
func WithRetry(inner Client, attempts uint, delay time.Duration) Client {
	if attempts <= 1 {
		return inner
	}
	return &retryClient{inner: inner, attempts: attempts, delay: delay}
}

func (c *retryClient) do(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
	)
}

func (c *retryClient) SearchFolders(ctx context.Context, name, parentID string) ([]Folder, error) {
	var out []Folder
	err := c.do(ctx, func() error {
		var err error
		out, err = c.inner.SearchFolders(ctx, name, parentID)
		return err
	})
	return out, err
}

func (c *retryClient) AllConnections(ctx context.Context) ([]Connection, error) {
	var out []Connection
	err := c.do(ctx, func() error {
		var err error
		out, err = c.inner.AllConnections(ctx)
		return err
	})
	return out, err
}

func (c *retryClient) CreateFolder(ctx context.Context, name, parentID string) (Folder, error) {
	return c.inner.CreateFolder(ctx, name, parentID)
}

func (c *retryClient) CreateConnection(ctx context.Context, conn Connection) error {
	return c.inner.CreateConnection(ctx, conn)
}

func (c *retryClient) UpdateConnection(ctx context.Context, name string, conn Connection) error {
	return c.inner.UpdateConnection(ctx, name, conn)
}

func (c *retryClient) DeleteConnection(ctx context.Context, name string) error {
	return c.inner.DeleteConnection(ctx, name)
}
