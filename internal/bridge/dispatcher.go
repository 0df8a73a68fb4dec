package bridge

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/nodechat/webbridge/internal/bus"
	"github.com/nodechat/webbridge/internal/codec"
	"github.com/nodechat/webbridge/internal/crypt"
	"github.com/nodechat/webbridge/internal/logging"
	"github.com/nodechat/webbridge/internal/metrics"
	"github.com/nodechat/webbridge/internal/session"
	"github.com/nodechat/webbridge/internal/types"
)

const passwordLength = 16

// Dispatcher routes decoded requests to their handlers. One Dispatcher
// exists per attached webview; it exclusively owns its Session.
type Dispatcher struct {
	sess    *session.Session
	guard   *session.Guard
	build   *codec.Builder
	signer  Signer
	wallet  Wallet
	pay     Payments
	decoder Decoder
	events  Publisher
	channel Channel
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Deps collects the collaborators a dispatcher needs.
type Deps struct {
	Signer   Signer
	Wallet   Wallet
	Payments Payments
	Decoder  Decoder
	Events   Publisher
	Channel  Channel
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
}

// New creates a dispatcher with a fresh session.
func New(deps Deps) *Dispatcher {
	sess := session.New()
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		sess:    sess,
		guard:   session.NewGuard(sess),
		build:   codec.NewBuilder(sess),
		signer:  deps.Signer,
		wallet:  deps.Wallet,
		pay:     deps.Payments,
		decoder: deps.Decoder,
		events:  deps.Events,
		channel: deps.Channel,
		logger:  &logging.Logger{Logger: logger.With(zap.String("session", sess.ID()))},
		metrics: deps.Metrics,
	}
}

// Session returns the dispatcher's session. Exposed for the transport's
// lifecycle logging and for tests.
func (d *Dispatcher) Session() *session.Session {
	return d.sess
}

// Handle processes one inbound request. Every recognized handler either
// delivers exactly one response or, when a required field is absent, drops
// the message without replying, matching the protocol's silent-drop rule for
// unmet preconditions.
func (d *Dispatcher) Handle(ctx context.Context, req *types.Request) {
	d.metrics.RecordMessage(string(req.Kind))

	switch req.Kind {
	case types.KindAuthorize:
		d.authorize(ctx, req)
	case types.KindKeySend:
		d.keySend(ctx, req)
	case types.KindUpdated:
		d.updated(req)
	case types.KindReload:
		d.reload(req)
	case types.KindPayment:
		d.payment(ctx, req)
	case types.KindSaveLSAT:
		d.saveLSAT(ctx, req)
	case types.KindSaveGraphData:
		d.saveGraphData(ctx, req)
	case types.KindGetLSAT:
		d.getLSAT(ctx, req)
	case types.KindUpdateLSAT:
		d.updateLSAT(ctx, req)
	case types.KindGetPersonData:
		d.getPersonData(ctx, req)
	default:
		d.unknown(req)
	}
}

// authorize grants the requested budget, establishes the session password,
// and caches the host public key. A challenge, when present, is signed and
// the signature included; a signing failure drops the signature but still
// authorizes.
func (d *Dispatcher) authorize(ctx context.Context, req *types.Request) {
	amount, ok := req.Int64("amount")
	if !ok {
		d.drop(req, "amount missing")
		return
	}

	d.guard.Grant(amount)

	// The grant stands even if the identity lookup below fails; the page
	// simply gets no response and must re-authorize.
	pubKey, cached := session.Get[string](d.sess, session.KeyPubKey)
	if !cached {
		fetched, err := d.wallet.PubKey(ctx)
		if err != nil {
			d.logger.Error("pubkey lookup failed", zap.Error(err))
			return
		}
		pubKey = fetched
		d.sess.Put(session.KeyPubKey, pubKey)
	}

	d.sess.Put(session.KeyPassword, crypt.RandomString(passwordLength))

	resp := d.build.Envelope(req)
	resp["budget"] = amount
	resp["pubkey"] = pubKey

	if challenge, ok := req.String("challenge"); ok {
		signature, err := d.signer.SignChallenge(ctx, challenge)
		if err != nil {
			d.logger.Warn("challenge signing failed", zap.Error(err))
		} else {
			resp["signature"] = signature
		}
	}

	d.deliver(req, resp)
}

// keySend pays amt directly to a public key after a check-and-debit against
// the session budget.
func (d *Dispatcher) keySend(ctx context.Context, req *types.Request) {
	dest, ok := req.String("dest")
	if !ok {
		d.drop(req, "dest missing")
		return
	}
	amt, ok := req.Int64("amt")
	if !ok {
		d.drop(req, "amt missing")
		return
	}

	if !d.spend(amt) {
		d.respondSuccess(req, false)
		return
	}
	if err := d.pay.SendDirectPayment(ctx, dest, amt); err != nil {
		d.logger.Warn("keysend failed", zap.Error(err))
		d.respondSuccess(req, false)
		return
	}
	d.respondSuccess(req, true)
}

// updated echoes the envelope and broadcasts a balance change to the rest
// of the host. The request's amount is a pass-through; the bridge does not
// adopt it as a new budget.
func (d *Dispatcher) updated(req *types.Request) {
	if _, ok := req.Int64("amount"); !ok {
		d.drop(req, "amount missing")
		return
	}
	d.deliver(req, d.build.Envelope(req))
	if d.events != nil {
		d.events.Publish(bus.EventBalanceChanged)
	}
}

// reload re-establishes a page's view of its session. Only a caller that
// knows the session password gets the stored budget and public key;
// everyone else gets zeroed values.
func (d *Dispatcher) reload(req *types.Request) {
	stored, hasPassword := session.Get[string](d.sess, session.KeyPassword)
	provided, ok := req.String("password")

	var budget int64
	pubKey := ""
	match := hasPassword && ok && provided == stored
	if match {
		budget, _ = d.guard.Budget()
		pubKey, _ = session.Get[string](d.sess, session.KeyPubKey)
	}

	resp := d.build.Envelope(req)
	resp["success"] = match
	resp["budget"] = budget
	resp["pubkey"] = pubKey
	d.deliver(req, resp)
}

// payment pays a BOLT11 invoice for its decoded amount.
func (d *Dispatcher) payment(ctx context.Context, req *types.Request) {
	paymentRequest, ok := req.String("paymentRequest")
	if !ok {
		d.drop(req, "paymentRequest missing")
		return
	}

	amount, ok := d.decoder.Amount(paymentRequest)
	if !ok {
		d.respondSuccess(req, false)
		return
	}
	if !d.spend(amount) {
		d.respondSuccess(req, false)
		return
	}
	if err := d.pay.PayInvoice(ctx, paymentRequest); err != nil {
		d.logger.Warn("invoice payment failed", zap.Error(err))
		d.respondSuccess(req, false)
		return
	}
	d.respondSuccess(req, true)
}

// saveLSAT pays for a new LSAT and merges the issued token into the
// response.
func (d *Dispatcher) saveLSAT(ctx context.Context, req *types.Request) {
	paymentRequest, ok := req.String("paymentRequest")
	if !ok {
		d.drop(req, "paymentRequest missing")
		return
	}
	macaroon, ok := req.String("macaroon")
	if !ok {
		d.drop(req, "macaroon missing")
		return
	}
	issuer, ok := req.String("issuer")
	if !ok {
		d.drop(req, "issuer missing")
		return
	}

	amount, ok := d.decoder.Amount(paymentRequest)
	if !ok {
		d.deliver(req, d.lsatResponse(req, "", false))
		return
	}
	if !d.spend(amount) {
		d.deliver(req, d.lsatResponse(req, "", false))
		return
	}

	lsat, err := d.pay.PayLSAT(ctx, paymentRequest, macaroon, issuer)
	if err != nil {
		d.logger.Warn("lsat payment failed", zap.Error(err))
		d.deliver(req, d.lsatResponse(req, "", false))
		return
	}
	d.deliver(req, d.lsatResponse(req, lsat, true))
}

// saveGraphData persists app graph metadata. Responses share the LSAT
// response shape, budget included.
func (d *Dispatcher) saveGraphData(ctx context.Context, req *types.Request) {
	data, ok := req.Map("data")
	if !ok {
		d.drop(req, "data missing")
		return
	}
	typ, ok := int64From(data["type"])
	if !ok {
		d.drop(req, "data.type missing")
		return
	}
	metaData, ok := data["metaData"]
	if !ok {
		d.drop(req, "data.metaData missing")
		return
	}

	if err := d.pay.SaveGraphData(ctx, typ, metaData); err != nil {
		d.logger.Warn("graph data save failed", zap.Error(err))
		d.deliver(req, d.lsatResponse(req, "", false))
		return
	}
	d.deliver(req, d.lsatResponse(req, "", true))
}

// getLSAT fetches the active LSAT and echoes its full record, defaulting
// paths to the empty string when the service omits it.
func (d *Dispatcher) getLSAT(ctx context.Context, req *types.Request) {
	lsat, err := d.pay.ActiveLSAT(ctx)
	resp := d.build.Envelope(req)
	if err != nil {
		d.logger.Warn("active lsat fetch failed", zap.Error(err))
		echoPayload(resp, req, "macaroon", "paymentRequest", "preimage", "identifier", "issuer", "status", "paths")
		resp["success"] = false
		d.deliver(req, resp)
		return
	}

	resp["macaroon"] = lsat.Macaroon
	resp["paymentRequest"] = lsat.PaymentRequest
	resp["preimage"] = lsat.Preimage
	resp["identifier"] = lsat.Identifier
	resp["issuer"] = lsat.Issuer
	resp["status"] = lsat.Status
	resp["paths"] = lsat.Paths
	resp["success"] = true
	d.deliver(req, resp)
}

// updateLSAT transitions a stored LSAT's status.
func (d *Dispatcher) updateLSAT(ctx context.Context, req *types.Request) {
	identifier, ok := req.String("identifier")
	if !ok {
		d.drop(req, "identifier missing")
		return
	}
	status, ok := req.String("status")
	if !ok {
		d.drop(req, "status missing")
		return
	}

	resp := d.build.Envelope(req)
	lsat, err := d.pay.UpdateLSAT(ctx, identifier, status)
	if err != nil {
		d.logger.Warn("lsat update failed", zap.Error(err))
		echoPayload(resp, req, "lsat")
		resp["success"] = false
		d.deliver(req, resp)
		return
	}
	resp["lsat"] = lsat
	resp["success"] = true
	d.deliver(req, resp)
}

// getPersonData fetches the host owner's identity record, defaulting the
// photo URL to the empty string when absent.
func (d *Dispatcher) getPersonData(ctx context.Context, req *types.Request) {
	person, err := d.pay.PersonData(ctx)
	resp := d.build.Envelope(req)
	if err != nil {
		d.logger.Warn("person data fetch failed", zap.Error(err))
		resp["success"] = false
		d.deliver(req, resp)
		return
	}
	resp["alias"] = person.Alias
	resp["publicKey"] = person.PublicKey
	resp["photoUrl"] = person.PhotoURL
	resp["success"] = true
	d.deliver(req, resp)
}

// unknown answers recognized-envelope messages with unhandled discriminants.
// The response carries no success field, only the rejection message.
func (d *Dispatcher) unknown(req *types.Request) {
	resp := d.build.Envelope(req)
	resp["msg"] = "Invalid Action"
	d.deliver(req, resp)
}

// spend runs the budget guard's atomic check-and-debit.
func (d *Dispatcher) spend(amount int64) bool {
	if d.guard.CanSpend(amount) {
		return true
	}
	d.metrics.RecordDenial()
	d.logger.Info("budget denied", zap.Int64("amount", amount))
	return false
}

// respondSuccess delivers the bare success/failure response shape used by
// keysend and invoice payments.
func (d *Dispatcher) respondSuccess(req *types.Request, success bool) {
	resp := d.build.Envelope(req)
	resp["success"] = success
	d.deliver(req, resp)
}

// lsatResponse builds the shared LSAT-shaped response: the issued token (or
// the request's own lsat field when none was issued), the outcome, and the
// remaining budget when one is stored.
func (d *Dispatcher) lsatResponse(req *types.Request, lsat string, success bool) types.Response {
	resp := d.build.Envelope(req)
	if lsat != "" {
		resp["lsat"] = lsat
	} else {
		echoPayload(resp, req, "lsat")
	}
	resp["success"] = success
	if budget, ok := d.guard.Budget(); ok {
		resp["budget"] = budget
	}
	return resp
}

func (d *Dispatcher) deliver(req *types.Request, resp types.Response) {
	// Responses without a success field (authorize, updated, unknown) are
	// neither successes nor failures in the outcome label.
	outcome := "none"
	if v, ok := resp["success"].(bool); ok {
		outcome = "failure"
		if v {
			outcome = "success"
		}
	}
	d.metrics.RecordResponse(string(req.Kind), outcome)

	if err := d.channel.Deliver(resp); err != nil {
		d.logger.Warn("response delivery failed",
			zap.String("kind", string(req.Kind)), zap.Error(err))
	}
}

func (d *Dispatcher) drop(req *types.Request, reason string) {
	d.logger.Debug("message dropped",
		zap.String("kind", string(req.Kind)), zap.String("reason", reason))
}

// echoPayload copies the named request payload fields into resp when
// present, preserving whatever the page sent on failure paths.
func echoPayload(resp types.Response, req *types.Request, keys ...string) {
	for _, key := range keys {
		if v, ok := req.Payload[key]; ok {
			resp[key] = v
		}
	}
}

// int64From mirrors Request.Int64 for nested payload values: integral
// numbers only, fractional float64s are rejected rather than truncated.
func int64From(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
