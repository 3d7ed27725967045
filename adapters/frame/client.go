package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// EIP-1193 provider error code for a user-rejected request.
const codeUserRejected = 4001

type request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *responseError  `json:"error,omitempty"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client talks to a host frame runtime over its websocket bridge. Each
// request carries an id and the host answers with the same id; answers for
// different requests may interleave.
type Client struct {
	conn *websocket.Conn
	log  *zap.Logger

	writeMu sync.Mutex // one writer on the socket at a time

	pendingMu sync.Mutex
	pending   map[string]chan response

	closed chan struct{}
}

// Dial connects to the host bridge at rawURL
func Dial(ctx context.Context, rawURL string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrHostUnavailable, err)
	}

	c := &Client{
		conn:    conn,
		log:     log,
		pending: make(map[string]chan response),
		closed:  make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

// Close tears the bridge connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.closed)
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.log.Debug("frame bridge closed", zap.Error(err))
			return
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.pendingMu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

// call sends one request and waits for its answer or ctx expiry.
func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	req := request{
		ID:     uuid.New().String(),
		Method: method,
	}
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = encoded
	}

	ch := make(chan response, 1)
	c.pendingMu.Lock()
	c.pending[req.ID] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.drop(req.ID)
		return fmt.Errorf("%w: %v", core.ErrHostUnavailable, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return bridgeError(method, resp.Error)
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("failed to decode %s result: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.drop(req.ID)
		return fmt.Errorf("%w: %s: %v", core.ErrHostUnavailable, method, ctx.Err())
	case <-c.closed:
		c.drop(req.ID)
		return fmt.Errorf("%w: connection closed", core.ErrHostUnavailable)
	}
}

func (c *Client) drop(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// bridgeError maps host error codes onto the domain taxonomy.
func bridgeError(method string, respErr *responseError) error {
	switch respErr.Code {
	case codeUserRejected:
		return fmt.Errorf("%w: %s", core.ErrSigningRejected, respErr.Message)
	case -32602:
		return fmt.Errorf("%w: %s", core.ErrBadMessageFormat, respErr.Message)
	default:
		return fmt.Errorf("%s failed: %s (code %d)", method, respErr.Message, respErr.Code)
	}
}

// Embedded asks the host whether the page runs embedded
func (c *Client) Embedded(ctx context.Context) (bool, error) {
	var embedded bool
	if err := c.call(ctx, "runtime.isEmbedded", nil, &embedded); err != nil {
		return false, err
	}
	return embedded, nil
}

// UserContext returns the host-supplied identity context
func (c *Client) UserContext(ctx context.Context) (*core.FrameUser, error) {
	var user core.FrameUser
	if err := c.call(ctx, "context.user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// WalletBridge performs the wallet handshake and returns the host's
// signing backend.
func (c *Client) WalletBridge(ctx context.Context) (ports.WalletProvider, error) {
	var available bool
	if err := c.call(ctx, "wallet.handshake", nil, &available); err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: host reports no wallet", core.ErrHostUnavailable)
	}
	return &bridgeProvider{client: c}, nil
}

// Ready announces that the app finished initializing
func (c *Client) Ready(ctx context.Context) error {
	return c.call(ctx, "app.ready", nil, nil)
}

// OpenURL asks the host to open an external URL
func (c *Client) OpenURL(ctx context.Context, rawURL string) error {
	return c.call(ctx, "app.openUrl", map[string]string{"url": rawURL}, nil)
}

// bridgeProvider adapts the bridge's wallet methods to the WalletProvider
// port.
type bridgeProvider struct {
	client *Client
}

func (p *bridgeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.call(ctx, "wallet.requestAccounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *bridgeProvider) SignMessage(ctx context.Context, message, address string) (string, error) {
	params := map[string]string{
		"message": message,
		"address": address,
	}
	var signature string
	if err := p.client.call(ctx, "wallet.signMessage", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}
