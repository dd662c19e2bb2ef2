package tonconnect_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/business/swap/infra/tonconnect"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/logger"
)

const walletAddr = "UQDUserWalletAddress000000000000000000000000007x"

// mockBridge runs a local bridge endpoint driven by the given per-connection
// handler.
func mockBridge(t *testing.T, handler func(n int64, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	var conns atomic.Int64
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		handler(conns.Add(1), conn)
	}))
}

func bridgeURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func sendConnectEvent(conn *websocket.Conn) error {
	event := `{"event":"connect","payload":{"address":"` + walletAddr + `"}}`
	return conn.Write(context.Background(), websocket.MessageText, []byte(event))
}

func holdOpen(conn *websocket.Conn) {
	ctx := context.Background()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func newTestConnector(server *httptest.Server) *tonconnect.Connector {
	return tonconnect.NewConnector(tonconnect.Config{
		BridgeURL:    bridgeURL(server),
		SendTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, logger.Discard())
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestConnector_WalletConnectLifecycle(t *testing.T) {
	server := mockBridge(t, func(n int64, conn *websocket.Conn) {
		if err := sendConnectEvent(conn); err != nil {
			return
		}
		holdOpen(conn)
	})
	defer server.Close()

	c := newTestConnector(server)
	defer c.Close()

	if c.Address() != "" {
		t.Fatal("address set before the wallet approved")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return c.Address() == walletAddr },
		"wallet address never arrived")
	if !c.Connected() {
		t.Error("bridge transport reported down after connect")
	}
}

// The bridge sends nothing between wallet events. A quiet stretch must not
// end the session; a wallet event arriving after the silence still lands.
func TestConnector_QuietBridgeStaysAlive(t *testing.T) {
	server := mockBridge(t, func(n int64, conn *websocket.Conn) {
		time.Sleep(300 * time.Millisecond)
		if err := sendConnectEvent(conn); err != nil {
			return
		}
		holdOpen(conn)
	})
	defer server.Close()

	c := newTestConnector(server)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if !c.Connected() {
		t.Fatal("session died while the bridge was quiet")
	}

	waitFor(t, 2*time.Second, func() bool { return c.Address() == walletAddr },
		"wallet event after the quiet stretch never delivered")
}

// A transport drop does not end the wallet session: the connector re-dials
// and keeps the connected address.
func TestConnector_ReconnectsAfterBridgeDrop(t *testing.T) {
	redialed := make(chan struct{})
	server := mockBridge(t, func(n int64, conn *websocket.Conn) {
		if n == 1 {
			if err := sendConnectEvent(conn); err != nil {
				return
			}
			time.Sleep(50 * time.Millisecond)
			return // drop the first connection
		}
		if n == 2 {
			close(redialed)
		}
		holdOpen(conn)
	})
	defer server.Close()

	c := newTestConnector(server)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return c.Address() == walletAddr },
		"wallet address never arrived")

	select {
	case <-redialed:
	case <-time.After(5 * time.Second):
		t.Fatal("bridge session not re-established after the drop")
	}

	waitFor(t, 2*time.Second, func() bool { return c.Connected() },
		"transport not reported up after the reconnect")
	if c.Address() != walletAddr {
		t.Errorf("address = %q, want it retained across the reconnect", c.Address())
	}
}

func TestConnector_SendTransactionRoundTrip(t *testing.T) {
	server := mockBridge(t, func(n int64, conn *websocket.Conn) {
		ctx := context.Background()
		if err := sendConnectEvent(conn); err != nil {
			return
		}
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var req struct {
				ID     int64  `json:"id"`
				Method string `json:"method"`
			}
			if err := json.Unmarshal(data, &req); err != nil || req.Method != "sendTransaction" {
				continue
			}
			resp := fmt.Sprintf(`{"id":%d,"result":{"boc":"ack-boc"}}`, req.ID)
			if err := conn.Write(ctx, websocket.MessageText, []byte(resp)); err != nil {
				return
			}
		}
	})
	defer server.Close()

	c := newTestConnector(server)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return c.Address() == walletAddr },
		"wallet address never arrived")

	ack, err := c.SendTransaction(ctx, domain.TransactionRequest{
		ValidUntil: time.Now().Add(time.Minute),
		Messages: []domain.ChainMessage{{
			To:      "EQRouter",
			Value:   big.NewInt(10_000_000_000),
			Payload: "te6cc-payload",
		}},
	})
	if err != nil {
		t.Fatalf("SendTransaction failed: %v", err)
	}
	if ack != "ack-boc" {
		t.Errorf("ack = %q, want ack-boc", ack)
	}
}

func TestConnector_UserDeclined(t *testing.T) {
	server := mockBridge(t, func(n int64, conn *websocket.Conn) {
		ctx := context.Background()
		if err := sendConnectEvent(conn); err != nil {
			return
		}
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var req struct {
				ID int64 `json:"id"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}
			resp := fmt.Sprintf(`{"id":%d,"error":{"code":300,"message":"declined"}}`, req.ID)
			if err := conn.Write(ctx, websocket.MessageText, []byte(resp)); err != nil {
				return
			}
		}
	})
	defer server.Close()

	c := newTestConnector(server)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return c.Address() == walletAddr },
		"wallet address never arrived")

	_, err := c.SendTransaction(ctx, domain.TransactionRequest{
		ValidUntil: time.Now().Add(time.Minute),
		Messages:   []domain.ChainMessage{{To: "EQRouter", Value: big.NewInt(1), Payload: "p"}},
	})
	if !apperror.IsCode(err, apperror.CodeUserRejected) {
		t.Errorf("expected UserRejected, got %v", err)
	}
}

func TestConnector_SendWithoutWallet(t *testing.T) {
	server := mockBridge(t, func(n int64, conn *websocket.Conn) {
		holdOpen(conn)
	})
	defer server.Close()

	c := newTestConnector(server)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	_, err := c.SendTransaction(ctx, domain.TransactionRequest{
		ValidUntil: time.Now().Add(time.Minute),
		Messages:   []domain.ChainMessage{{To: "EQRouter", Value: big.NewInt(1), Payload: "p"}},
	})
	if !apperror.IsCode(err, apperror.CodeWalletNotConnected) {
		t.Errorf("expected WalletNotConnected, got %v", err)
	}
}
