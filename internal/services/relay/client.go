// Package relay is the HTTP client for the host relay API: payment
// execution, LSAT issuance, challenge signing, and person-data lookup. The
// bridge surfaces every relay failure exactly once as a success=false
// response, so the client never retries.
package relay

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nodechat/webbridge/internal/crypt"
	"github.com/nodechat/webbridge/internal/metrics"
	"github.com/nodechat/webbridge/internal/types"
)

// Config holds relay client configuration. Token may be sealed with
// secretbox; SealKey (base64, 32 bytes) opens it at construction time.
type Config struct {
	BaseURL string
	Token   string
	SealKey string
	Timeout time.Duration
}

// Client talks to the relay API.
type Client struct {
	http    *resty.Client
	metrics *metrics.Metrics
}

// envelope is the relay's uniform response wrapper.
type envelope struct {
	Success  bool                   `json:"success"`
	Error    string                 `json:"error,omitempty"`
	Response map[string]interface{} `json:"response,omitempty"`
}

// New creates a relay client. Metrics may be nil.
func New(cfg Config, m *metrics.Metrics) (*Client, error) {
	token := cfg.Token
	if cfg.SealKey != "" {
		key, err := crypt.ParseKey(cfg.SealKey)
		if err != nil {
			return nil, fmt.Errorf("relay seal key: %w", err)
		}
		token, err = crypt.Open(cfg.Token, key)
		if err != nil {
			return nil, fmt.Errorf("relay token: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("X-User-Token", token)

	return &Client{http: http, metrics: m}, nil
}

// SendDirectPayment executes a keysend payment to a public key.
func (c *Client) SendDirectPayment(ctx context.Context, dest string, amt int64) error {
	_, err := c.call(ctx, "POST", "/payments", map[string]interface{}{
		"amount":          amt,
		"destination_key": dest,
	})
	return err
}

// PayInvoice pays a BOLT11 invoice.
func (c *Client) PayInvoice(ctx context.Context, paymentRequest string) error {
	_, err := c.call(ctx, "PUT", "/invoices", map[string]interface{}{
		"payment_request": paymentRequest,
	})
	return err
}

// PayLSAT pays for and stores a new LSAT, returning the issued token.
func (c *Client) PayLSAT(ctx context.Context, paymentRequest, macaroon, issuer string) (string, error) {
	resp, err := c.call(ctx, "POST", "/lsats", map[string]interface{}{
		"paymentRequest": paymentRequest,
		"macaroon":       macaroon,
		"issuer":         issuer,
	})
	if err != nil {
		return "", err
	}
	lsat, _ := resp["lsat"].(string)
	return lsat, nil
}

// UpdateLSAT changes the status of a stored LSAT.
func (c *Client) UpdateLSAT(ctx context.Context, identifier, status string) (string, error) {
	resp, err := c.call(ctx, "PUT", "/lsats/"+identifier, map[string]interface{}{
		"status": status,
	})
	if err != nil {
		return "", err
	}
	lsat, _ := resp["lsat"].(string)
	return lsat, nil
}

// ActiveLSAT fetches the currently active LSAT.
func (c *Client) ActiveLSAT(ctx context.Context) (*types.LSAT, error) {
	resp, err := c.call(ctx, "GET", "/active_lsat", nil)
	if err != nil {
		return nil, err
	}
	lsat := &types.LSAT{
		Macaroon:       str(resp, "macaroon"),
		PaymentRequest: str(resp, "paymentRequest"),
		Preimage:       str(resp, "preimage"),
		Identifier:     str(resp, "identifier"),
		Issuer:         str(resp, "issuer"),
		Paths:          str(resp, "paths"),
	}
	if status, ok := resp["status"].(float64); ok {
		lsat.Status = int64(status)
	}
	return lsat, nil
}

// PersonData fetches the host owner's public identity record.
func (c *Client) PersonData(ctx context.Context) (*types.Person, error) {
	resp, err := c.call(ctx, "GET", "/person_data", nil)
	if err != nil {
		return nil, err
	}
	return &types.Person{
		Alias:     str(resp, "alias"),
		PublicKey: str(resp, "publicKey"),
		PhotoURL:  str(resp, "photoUrl"),
	}, nil
}

// SaveGraphData persists graph metadata pushed by an embedded app.
func (c *Client) SaveGraphData(ctx context.Context, typ int64, metaData interface{}) error {
	_, err := c.call(ctx, "POST", "/graph_data", map[string]interface{}{
		"type":      typ,
		"meta_data": metaData,
	})
	return err
}

// SignChallenge signs an authorization challenge with the host key.
func (c *Client) SignChallenge(ctx context.Context, challenge string) (string, error) {
	resp, err := c.call(ctx, "POST", "/signer", map[string]interface{}{
		"challenge": challenge,
	})
	if err != nil {
		return "", err
	}
	sig, ok := resp["sig"].(string)
	if !ok {
		return "", fmt.Errorf("relay signer returned no signature")
	}
	return sig, nil
}

// PubKey returns the host node's public key.
func (c *Client) PubKey(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, "GET", "/pubkey", nil)
	if err != nil {
		return "", err
	}
	pubkey, ok := resp["pubkey"].(string)
	if !ok {
		return "", fmt.Errorf("relay returned no pubkey")
	}
	return pubkey, nil
}

func (c *Client) call(ctx context.Context, method, path string, body map[string]interface{}) (map[string]interface{}, error) {
	var env envelope
	req := c.http.R().SetContext(ctx).SetResult(&env)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.metrics.RecordRelayCall(method+" "+path, "error")
		return nil, fmt.Errorf("relay %s %s: %w", method, path, err)
	}
	c.metrics.RecordRelayCall(method+" "+path, strconv.Itoa(resp.StatusCode()))

	if resp.IsError() {
		return nil, fmt.Errorf("relay %s %s: status %d", method, path, resp.StatusCode())
	}
	if !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("relay %s %s: %s", method, path, env.Error)
		}
		return nil, fmt.Errorf("relay %s %s: request rejected", method, path)
	}
	return env.Response, nil
}

func str(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}
