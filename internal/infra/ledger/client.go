// Package ledger implements the settlement-layer contract against a remote
// ledger gateway over WebSocket. The core depends only on the narrow
// submit/confirm (plus snapshot read) surface, not on the gateway's account
// model.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"launchpad_go/internal/domain"
	"launchpad_go/internal/infra"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	maxRetries     = 10
	pingInterval   = 30 * time.Second
	readTimeout    = 60 * time.Second
	requestTimeout = 15 * time.Second
)

// request is a correlated frame sent to the gateway.
type request struct {
	ID          string                        `json:"id"`
	Op          string                        `json:"op"` // submit, confirm, fetch_state, balance, launch
	Instruction *domain.SettlementInstruction `json:"instruction,omitempty"`
	ReceiptID   string                        `json:"receipt_id,omitempty"`
	CurveID     string                        `json:"curve_id,omitempty"`
	Account     string                        `json:"account,omitempty"`
	Asset       string                        `json:"asset,omitempty"`
	TotalSupply decimal.Decimal               `json:"total_supply,omitempty"`
}

// response is a correlated frame received from the gateway.
type response struct {
	ID      string               `json:"id"`
	Op      string               `json:"op"`
	OK      bool                 `json:"ok"`
	Error   string               `json:"error,omitempty"`
	Receipt string               `json:"receipt,omitempty"`
	Status  string               `json:"status,omitempty"`
	State   *domain.ReserveState `json:"state,omitempty"`
	Balance decimal.Decimal      `json:"balance,omitempty"`
}

// Client is the WebSocket settlement gateway client.
type Client struct {
	url       string
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	pendingMu sync.Mutex
	pending   map[string]chan response
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// NewClient creates a gateway client for the given WebSocket URL.
func NewClient(wsURL string) *Client {
	return &Client{
		url:     wsURL,
		pending: make(map[string]chan response),
		logger:  slog.Default().With("module", "ledger_gateway"),
	}
}

// Connect starts the connection loop. It returns immediately; requests block
// until a connection is available or their context expires.
func (c *Client) Connect(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.connectionLoop(ctx)
	return nil
}

// Disconnect tears down the connection and fails all pending requests.
func (c *Client) Disconnect() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// IsConnected reports whether the gateway connection is live.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) connectionLoop(ctx context.Context) {
	defer c.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			c.logger.Warn("Gateway connection failed", "error", err, "retry", retryCount)
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			c.readLoop(ctx)
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return domain.Errf("dial", domain.ErrSettlementFailure, "%v", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	infra.GlobalMetrics.IncrementConnections()

	c.logger.Info("Gateway connected", "url", c.url)

	c.wg.Add(1)
	go c.pingLoop(ctx, conn)
	return nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.connected = false
		c.mu.Unlock()
		infra.GlobalMetrics.DecrementConnections()
		c.failPending("gateway connection lost")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Warn("Gateway read failed", "error", err)
			return
		}

		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Warn("Malformed gateway frame", "error", err)
			continue
		}
		c.dispatch(resp)
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(resp response) {
	c.pendingMu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.pendingMu.Unlock()

	if ok {
		ch <- resp
	}
}

func (c *Client) failPending(reason string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		ch <- response{ID: id, OK: false, Error: reason}
		delete(c.pending, id)
	}
}

// roundTrip sends one correlated request and waits for its response.
func (c *Client) roundTrip(ctx context.Context, req request) (response, error) {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()
	if !connected {
		return response{}, domain.Errf(req.Op, domain.ErrSettlementFailure, "gateway not connected")
	}

	ch := make(chan response, 1)
	c.pendingMu.Lock()
	c.pending[req.ID] = ch
	c.pendingMu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		return response{}, domain.Errf(req.Op, domain.ErrSettlementFailure, "marshal: %v", err)
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, req.ID)
		c.pendingMu.Unlock()
		return response{}, domain.Errf(req.Op, domain.ErrSettlementFailure, "write: %v", err)
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return response{}, domain.Errf(req.Op, domain.ErrSettlementFailure, "%v", ctx.Err())
	case <-timer.C:
		return response{}, domain.Errf(req.Op, domain.ErrSettlementFailure, "request timed out")
	case resp := <-ch:
		if !resp.OK {
			return response{}, domain.Errf(req.Op, domain.ErrSettlementFailure, "%s", resp.Error)
		}
		return resp, nil
	}
}

// Submit hands an instruction to the gateway. One attempt, no internal retry.
func (c *Client) Submit(ctx context.Context, instr *domain.SettlementInstruction) (*domain.SettlementReceipt, error) {
	resp, err := c.roundTrip(ctx, request{ID: uuid.NewString(), Op: "submit", Instruction: instr})
	if err != nil {
		return nil, err
	}
	return &domain.SettlementReceipt{
		ID:            resp.Receipt,
		InstructionID: instr.ID,
		SubmittedAt:   time.Now(),
	}, nil
}

// Confirm blocks until the gateway reports a terminal status for the receipt.
func (c *Client) Confirm(ctx context.Context, receipt *domain.SettlementReceipt) (domain.SettlementStatus, error) {
	resp, err := c.roundTrip(ctx, request{ID: uuid.NewString(), Op: "confirm", ReceiptID: receipt.ID})
	if err != nil {
		return "", err
	}

	switch domain.SettlementStatus(resp.Status) {
	case domain.SettlementConfirmed:
		return domain.SettlementConfirmed, nil
	case domain.SettlementRejected:
		return domain.SettlementRejected, nil
	default:
		// Anything else, including a partial-completion signal, is a failure.
		return domain.SettlementPartial, nil
	}
}

// Fetch returns the gateway's reserve-state snapshot for a curve.
func (c *Client) Fetch(ctx context.Context, curveID string) (domain.ReserveState, error) {
	resp, err := c.roundTrip(ctx, request{ID: uuid.NewString(), Op: "fetch_state", CurveID: curveID})
	if err != nil {
		return domain.ReserveState{}, err
	}
	if resp.State == nil {
		return domain.ReserveState{}, domain.Errf("fetch_state", domain.ErrNotFound, "curve %s", curveID)
	}
	return *resp.State, nil
}

// Balance returns an account's balance for one asset.
func (c *Client) Balance(ctx context.Context, account, asset string) (decimal.Decimal, error) {
	resp, err := c.roundTrip(ctx, request{ID: uuid.NewString(), Op: "balance", Account: account, Asset: asset})
	if err != nil {
		return decimal.Zero, err
	}
	return resp.Balance, nil
}

// Launch provisions a curve instance's supply and reserve accounts.
func (c *Client) Launch(curveID string, totalSupply decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	_, err := c.roundTrip(ctx, request{ID: uuid.NewString(), Op: "launch", CurveID: curveID, TotalSupply: totalSupply})
	return err
}
