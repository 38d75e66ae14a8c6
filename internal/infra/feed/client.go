package feed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Handler processes one raw feed message. It is called serially, in the
// order messages arrive.
type Handler func(ctx context.Context, raw []byte)

const (
	defaultMinBackoff = 1 * time.Second
	defaultMaxBackoff = 1 * time.Minute
)

// Client listens on a websocket signal feed and reconnects when the link drops.
type Client struct {
	url        string
	handler    Handler
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
	logger     *logrus.Entry

	connected atomic.Bool
}

type Option func(*Client)

// WithBackoff sets the reconnect delay bounds.
func WithBackoff(lo, hi time.Duration) Option {
	return func(c *Client) {
		if lo > 0 {
			c.minBackoff = lo
		}
		if hi >= c.minBackoff {
			c.maxBackoff = hi
		}
	}
}

func NewClient(url string, handler Handler, logger *logrus.Entry, opts ...Option) *Client {
	c := &Client{
		url:        url,
		handler:    handler,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		logger:     logger.WithField("component", "signal_feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connected reports whether the feed link is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Run keeps the feed connected until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.minBackoff
	for {
		established, err := c.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if established {
			backoff = c.minBackoff
		}
		c.logger.WithError(err).WithField("retry_in", backoff.String()).Warn("Signal feed connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

// listen runs one connection until it fails. It reports whether the dial succeeded.
func (c *Client) listen(ctx context.Context) (bool, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.logger.WithField("url", c.url).Info("Connected to signal feed")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return true, fmt.Errorf("feed closed: %w", err)
			}
			return true, fmt.Errorf("read: %w", err)
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		c.handler(ctx, msg)
	}
}
