// Package tonconnect implements the wallet port over a TON Connect bridge
// session.
package tonconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apm"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/logger"
	"github.com/lbhlabs/tonswap/internal/wsconn"
)

const (
	tracerName = "swap.tonconnect"

	// Wallet-side error code for a user declining the request.
	walletErrUserDeclined = 300

	defaultSendTimeout = 5 * time.Minute
)

// Config holds bridge connection settings.
type Config struct {
	BridgeURL    string
	SendTimeout  time.Duration
	WriteTimeout time.Duration
}

// Connector maintains a TON Connect bridge session and relays transaction
// requests to the user's wallet. The connected address arrives through a
// bridge event after the user approves the session in their wallet app.
type Connector struct {
	cfg    Config
	logger logger.LoggerInterface
	tracer apm.Tracer

	conn   *wsconn.Client
	connMu sync.RWMutex

	address   string
	addressMu sync.RWMutex

	pending   map[int64]chan sendResult
	pendingMu sync.Mutex
	nextID    atomic.Int64
	closed    atomic.Bool
}

type sendResult struct {
	ack string
	err error
}

// NewConnector creates a new bridge connector.
func NewConnector(cfg Config, log logger.LoggerInterface) *Connector {
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	return &Connector{
		cfg:     cfg,
		logger:  log,
		tracer:  apm.NewTracer(tracerName),
		pending: make(map[int64]chan sendResult),
	}
}

// Connect establishes the bridge session. The wallet address becomes
// available once the wallet approves the connection.
func (c *Connector) Connect(ctx context.Context) error {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "tonconnect.connect",
		trace.WithAttributes(attribute.String("bridge", c.cfg.BridgeURL)),
	)
	defer span.End()

	wsCfg := wsconn.DefaultConfig(c.cfg.BridgeURL, "tonconnect")
	// The bridge is quiet between wallet events; never time out reads.
	wsCfg.ReadTimeout = 0
	wsCfg.WriteTimeout = c.cfg.WriteTimeout

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeBridgeConnectionError, apperror.WithCause(err))
	}

	conn.OnMessage(c.handleMessage)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		span.NoticeError(err)
		return apperror.New(apperror.CodeBridgeConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("failed to reach the bridge"))
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.superviseSession(conn)

	c.logger.Info(ctx, "bridge session established", "bridge", c.cfg.BridgeURL)

	return nil
}

// superviseSession re-dials the bridge when the read loop dies. The wallet
// session survives a transport drop; the address is cleared only when
// reconnecting gives up.
func (c *Connector) superviseSession(conn *wsconn.Client) {
	for {
		<-conn.Done()
		if c.closed.Load() {
			return
		}

		c.connMu.RLock()
		current := c.conn
		c.connMu.RUnlock()
		if current != conn {
			// A newer Connect call owns the session now.
			return
		}

		ctx := context.Background()
		c.logger.Warn(ctx, "bridge connection lost, reconnecting")

		if err := conn.ConnectWithRetry(ctx); err != nil {
			c.addressMu.Lock()
			c.address = ""
			c.addressMu.Unlock()
			c.logger.Error(ctx, "bridge reconnect failed, wallet disconnected", "error", err)
			return
		}

		c.logger.Info(ctx, "bridge reconnected")
	}
}

// Address returns the connected wallet address, empty when disconnected.
func (c *Connector) Address() string {
	c.addressMu.RLock()
	defer c.addressMu.RUnlock()
	return c.address
}

// Connected reports whether the bridge transport is up.
func (c *Connector) Connected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// bridgeEvent is an unsolicited wallet event relayed by the bridge.
type bridgeEvent struct {
	Event   string          `json:"event"`
	ID      *int64          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Result  json.RawMessage `json:"result"`
	Error   *walletError    `json:"error"`
}

type connectPayload struct {
	Address string `json:"address"`
}

type transactionResult struct {
	Boc string `json:"boc"`
}

type walletError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *walletError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

func (c *Connector) handleMessage(ctx context.Context, data []byte) {
	var event bridgeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logger.Debug(ctx, "unparseable bridge message", "error", err)
		return
	}

	switch {
	case event.Event == "connect":
		var payload connectPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.Address == "" {
			c.logger.Warn(ctx, "connect event without address")
			return
		}
		c.addressMu.Lock()
		c.address = payload.Address
		c.addressMu.Unlock()
		c.logger.Info(ctx, "wallet connected", "address", payload.Address)

	case event.Event == "disconnect":
		c.addressMu.Lock()
		c.address = ""
		c.addressMu.Unlock()
		c.logger.Info(ctx, "wallet disconnected")

	case event.ID != nil:
		c.resolvePending(ctx, &event)
	}
}

func (c *Connector) resolvePending(ctx context.Context, event *bridgeEvent) {
	c.pendingMu.Lock()
	ch, ok := c.pending[*event.ID]
	if ok {
		delete(c.pending, *event.ID)
	}
	c.pendingMu.Unlock()

	if !ok {
		c.logger.Debug(ctx, "response for unknown request", "id", *event.ID)
		return
	}

	if event.Error != nil {
		if event.Error.Code == walletErrUserDeclined {
			ch <- sendResult{err: apperror.New(apperror.CodeUserRejected, apperror.WithCause(event.Error))}
			return
		}
		ch <- sendResult{err: apperror.New(apperror.CodeSubmissionError, apperror.WithCause(event.Error))}
		return
	}

	var result transactionResult
	if err := json.Unmarshal(event.Result, &result); err != nil || result.Boc == "" {
		ch <- sendResult{err: apperror.New(apperror.CodeSubmissionError,
			apperror.WithContext("malformed wallet response"))}
		return
	}

	ch <- sendResult{ack: result.Boc}
}

// sendTransactionRequest is the wire form of a transaction approval request.
type sendTransactionRequest struct {
	ID         int64           `json:"id"`
	Method     string          `json:"method"`
	ValidUntil int64           `json:"valid_until"`
	Messages   []walletMessage `json:"messages"`
}

type walletMessage struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Payload string `json:"payload"`
}

// SendTransaction relays the request to the wallet and waits for the user's
// decision, bounded by the request's ValidUntil deadline.
func (c *Connector) SendTransaction(ctx context.Context, req domain.TransactionRequest) (string, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "tonconnect.send_transaction",
		trace.WithAttributes(attribute.Int("messages", len(req.Messages))),
	)
	defer span.End()

	if c.Address() == "" {
		return "", apperror.New(apperror.CodeWalletNotConnected)
	}

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil || !conn.IsConnected() {
		return "", apperror.New(apperror.CodeWalletNotConnected,
			apperror.WithContext("bridge session lost"))
	}

	id := c.nextID.Add(1)
	wire := sendTransactionRequest{
		ID:         id,
		Method:     "sendTransaction",
		ValidUntil: req.ValidUntil.Unix(),
		Messages:   make([]walletMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		wire.Messages = append(wire.Messages, walletMessage{
			Address: m.To,
			Amount:  m.Value.String(),
			Payload: m.Payload,
		})
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return "", apperror.New(apperror.CodeSubmissionError, apperror.WithCause(err))
	}

	ch := make(chan sendResult, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	if err := conn.Send(ctx, data); err != nil {
		c.dropPending(id)
		span.NoticeError(err)
		return "", apperror.New(apperror.CodeBridgeSendError, apperror.WithCause(err))
	}

	deadline := time.Until(req.ValidUntil)
	if deadline <= 0 || deadline > c.cfg.SendTimeout {
		deadline = c.cfg.SendTimeout
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			span.NoticeError(res.err)
			return "", res.err
		}
		return res.ack, nil
	case <-timer.C:
		c.dropPending(id)
		return "", apperror.New(apperror.CodeSubmissionExpired,
			apperror.WithContext("wallet did not respond before the deadline"))
	case <-ctx.Done():
		c.dropPending(id)
		return "", apperror.New(apperror.CodeSubmissionError, apperror.WithCause(ctx.Err()))
	}
}

func (c *Connector) dropPending(id int64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// Close tears down the bridge session.
func (c *Connector) Close() error {
	c.closed.Store(true)

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
