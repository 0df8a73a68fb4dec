package bridge

import (
	"context"

	"github.com/nodechat/webbridge/internal/types"
)

// Signer signs authorization challenges with the host key.
type Signer interface {
	SignChallenge(ctx context.Context, challenge string) (string, error)
}

// Wallet exposes the host node's identity.
type Wallet interface {
	PubKey(ctx context.Context) (string, error)
}

// Payments executes privileged payment and identity operations. Every call
// is a two-outcome operation; the bridge never retries and never reverses a
// committed budget debit when a call fails.
type Payments interface {
	SendDirectPayment(ctx context.Context, dest string, amt int64) error
	PayInvoice(ctx context.Context, paymentRequest string) error
	PayLSAT(ctx context.Context, paymentRequest, macaroon, issuer string) (string, error)
	UpdateLSAT(ctx context.Context, identifier, status string) (string, error)
	ActiveLSAT(ctx context.Context) (*types.LSAT, error)
	PersonData(ctx context.Context) (*types.Person, error)
	SaveGraphData(ctx context.Context, typ int64, metaData interface{}) error
}

// Decoder extracts the amount from a payment request string.
type Decoder interface {
	Amount(paymentRequest string) (int64, bool)
}

// Publisher broadcasts host-wide notifications.
type Publisher interface {
	Publish(event string)
}

// Channel delivers serialized responses back into the embedded surface.
// Delivery is fire-and-forget: the bridge does not await acknowledgment and
// does not retry.
type Channel interface {
	Deliver(resp types.Response) error
}
