// Package ws attaches webview bridges to the service over WebSocket. The
// desktop shell opens one connection per embedded app, forwards every script
// message the page posts as a text frame, and evaluates the JavaScript
// injection strings it receives back inside the page.
package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nodechat/webbridge/internal/bridge"
	"github.com/nodechat/webbridge/internal/codec"
	"github.com/nodechat/webbridge/internal/logging"
	"github.com/nodechat/webbridge/internal/metrics"
	"github.com/nodechat/webbridge/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The shell connects from a file:// webview; origin checks happen
		// at the host firewall, not here.
		return true
	},
}

// Handler upgrades connections and runs one bridge per connection.
type Handler struct {
	signer   bridge.Signer
	wallet   bridge.Wallet
	payments bridge.Payments
	decoder  bridge.Decoder
	events   bridge.Publisher
	logger   *logging.Logger
	metrics  *metrics.Metrics

	messagesPerSecond int
	burst             int
}

// Config collects handler dependencies.
type Config struct {
	Signer   bridge.Signer
	Wallet   bridge.Wallet
	Payments bridge.Payments
	Decoder  bridge.Decoder
	Events   bridge.Publisher
	Logger   *logging.Logger
	Metrics  *metrics.Metrics

	// Per-connection inbound message budget.
	MessagesPerSecond int
	Burst             int
}

// NewHandler creates a WebSocket bridge handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		signer:            cfg.Signer,
		wallet:            cfg.Wallet,
		payments:          cfg.Payments,
		decoder:           cfg.Decoder,
		events:            cfg.Events,
		logger:            logger,
		metrics:           cfg.Metrics,
		messagesPerSecond: cfg.MessagesPerSecond,
		burst:             cfg.Burst,
	}
}

// HandleConnection upgrades the request and processes bridge messages until
// the shell disconnects. Messages are handled strictly one at a time, so no
// two operations of the same session ever race.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.ConnectionOpened()
	defer h.metrics.ConnectionClosed()

	dispatcher := bridge.New(bridge.Deps{
		Signer:   h.signer,
		Wallet:   h.wallet,
		Payments: h.payments,
		Decoder:  h.decoder,
		Events:   h.events,
		Channel:  newInjector(conn),
		Logger:   h.logger,
		Metrics:  h.metrics,
	})
	h.logger.Info("bridge attached", zap.String("session", dispatcher.Session().ID()))
	defer h.logger.Info("bridge detached", zap.String("session", dispatcher.Session().ID()))

	limiter := rate.NewLimiter(rate.Limit(h.messagesPerSecond), h.burst)
	ctx := c.Request.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !limiter.Allow() {
			h.logger.Warn("message rate exceeded, dropping frame")
			continue
		}

		req, err := codec.Decode(data)
		if err != nil {
			// Malformed envelopes get no response at all.
			continue
		}
		dispatcher.Handle(ctx, req)
	}
}

// injector delivers responses by injecting a window.bridgeMessage call for
// the shell to evaluate inside the page. Fire-and-forget: a failed write is
// the shell's problem, not the bridge's.
type injector struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newInjector(conn *websocket.Conn) *injector {
	return &injector{conn: conn}
}

// Deliver serializes resp and writes the injection script frame.
func (i *injector) Deliver(resp types.Response) error {
	data, err := codec.Encode(resp)
	if err != nil {
		return err
	}
	script := "window.bridgeMessage('" + escapeScriptArg(string(data)) + "')"

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.conn.WriteMessage(websocket.TextMessage, []byte(script))
}

// escapeScriptArg escapes the JSON payload for a single-quoted JavaScript
// string literal.
func escapeScriptArg(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '\'':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
