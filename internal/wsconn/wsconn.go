// Package wsconn provides a managed WebSocket connection with reconnect
// support, built on coder/websocket.
package wsconn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// Config holds connection settings.
type Config struct {
	URL          string
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultConfig returns sensible defaults for the given endpoint.
func DefaultConfig(wsURL, name string) Config {
	return Config{
		URL:          wsURL,
		Name:         name,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		MaxRetries:   5,
		RetryBackoff: 2 * time.Second,
	}
}

// Client is a single WebSocket connection with a message callback.
type Client struct {
	cfg Config

	conn   *websocket.Conn
	connMu sync.RWMutex

	onMessage func(ctx context.Context, data []byte)
	handlerMu sync.RWMutex

	connected atomic.Bool
	closed    atomic.Bool
	done      chan struct{}
}

// New creates a client for the configured endpoint. The connection is not
// established until Connect.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("wsconn: invalid url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("wsconn: unsupported scheme %q", u.Scheme)
	}

	return &Client{
		cfg:  cfg,
		done: make(chan struct{}),
	}, nil
}

// OnMessage registers the handler invoked for every received message.
// Must be called before Connect.
func (c *Client) OnMessage(handler func(ctx context.Context, data []byte)) {
	c.handlerMu.Lock()
	c.onMessage = handler
	c.handlerMu.Unlock()
}

// Connect dials the endpoint and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return errors.New("wsconn: client closed")
	}

	conn, _, err := websocket.Dial(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("wsconn: dial %s: %w", c.cfg.Name, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	c.connMu.Unlock()
	c.connected.Store(true)

	go c.readLoop()

	return nil
}

// ConnectWithRetry dials with exponential backoff up to MaxRetries.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	attempts := c.cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if err := c.Connect(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return lastErr
}

func (c *Client) readLoop() {
	for {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()
		if conn == nil {
			return
		}

		ctx := context.Background()
		if c.cfg.ReadTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.ReadTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				c.handleReadError(err)
				return
			}
			c.dispatch(data)
			continue
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			c.handleReadError(err)
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) handleReadError(err error) {
	c.connected.Store(false)

	c.connMu.Lock()
	defer c.connMu.Unlock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func (c *Client) dispatch(data []byte) {
	c.handlerMu.RLock()
	handler := c.onMessage
	c.handlerMu.RUnlock()
	if handler != nil {
		handler(context.Background(), data)
	}
}

// Send writes a text message, bounded by the configured write timeout.
func (c *Client) Send(ctx context.Context, data []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil || !c.connected.Load() {
		return errors.New("wsconn: not connected")
	}

	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.WriteTimeout)
		defer cancel()
	}

	return conn.Write(ctx, websocket.MessageText, data)
}

// Done is closed when the read loop terminates. The channel is replaced on
// reconnect; callers should re-fetch it after Connect.
func (c *Client) Done() <-chan struct{} {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.done
}

// IsConnected reports whether the connection is up.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Close closes the connection.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.connected.Store(false)

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn.Close(websocket.StatusNormalClosure, "")
	}
	return nil
}
