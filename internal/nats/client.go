package nats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Client sends lookup requests to a running service.
type Client struct {
	conn *nats.Conn
}

// Dial connects a client to url.
func Dial(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := connect(url, "nxv4l2-client", logger.With("component", "nats-client"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Lookup sends req and waits for the answer. A failed lookup is returned
// as the response's error.
func (c *Client) Lookup(ctx context.Context, req LookupRequest) (LookupResponse, error) {
	data, err := marshal(req)
	if err != nil {
		return LookupResponse{}, err
	}

	msg, err := c.conn.RequestWithContext(ctx, SubjectDevicesLookup, data)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("lookup request: %w", err)
	}

	resp, err := UnmarshalLookupResponse(msg.Data)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("invalid lookup response: %w", err)
	}
	return resp, resp.Err()
}

// Close closes the connection.
func (c *Client) Close() {
	c.conn.Close()
}
