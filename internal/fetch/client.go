package fetch

import (
	"context"
	"fmt"
	"os"
	"strings"

	resty "resty.dev/v3"
)

// Fetcher is the transport primitive the downloader is built on: one fully
// qualified address in, one blob or one error out. There is no retry and no
// timeout; a fetch that never responds stalls the bootstrap.
type Fetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

// Client is the default Fetcher. Remote addresses go through a shared HTTP
// client; file:// addresses are read straight from the local filesystem.
type Client struct {
	rc *resty.Client
}

// NewClient creates a Client with a fresh underlying HTTP client.
func NewClient() *Client {
	return &Client{rc: resty.New()}
}

// Close releases the underlying HTTP client's resources.
func (c *Client) Close() error {
	return c.rc.Close()
}

// Fetch retrieves the bytes behind address.
func (c *Client) Fetch(ctx context.Context, address string) ([]byte, error) {
	if path, ok := strings.CutPrefix(address, localScheme); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read local resource: %w", err)
		}
		return data, nil
	}

	res, err := c.rc.R().SetContext(ctx).Get(address)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", address, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("request %s: unexpected status %s", address, res.Status())
	}
	return res.Bytes(), nil
}
