// Package codec converts between raw webview frames and typed bridge
// messages. Decoding rejects anything without the expected envelope shape;
// the transport drops rejected frames without replying. Encoding guarantees
// every response carries the anti-spoofing envelope (type, application,
// session password) before any operation-specific field.
package codec

import (
	"errors"

	"github.com/bytedance/sonic"

	"github.com/nodechat/webbridge/internal/session"
	"github.com/nodechat/webbridge/internal/types"
)

// ErrMalformed marks frames that are not an object or lack a string "type"
// discriminant. Such frames are dropped silently.
var ErrMalformed = errors.New("malformed bridge message")

// Decode parses an inbound frame into a Request. Unrecognized discriminants
// decode successfully with KindUnknown; only envelope-shape violations fail.
func Decode(data []byte) (*types.Request, error) {
	var payload map[string]interface{}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, ErrMalformed
	}
	discriminant, ok := payload["type"].(string)
	if !ok || discriminant == "" {
		return nil, ErrMalformed
	}
	application, _ := payload["application"].(string)
	return &types.Request{
		Kind:        types.KindOf(discriminant),
		Type:        discriminant,
		Application: application,
		Payload:     payload,
	}, nil
}

// Builder shapes outbound responses for one session.
type Builder struct {
	sess *session.Session
}

// NewBuilder creates a response builder bound to sess.
func NewBuilder(sess *session.Session) *Builder {
	return &Builder{sess: sess}
}

// Envelope returns a response pre-populated with the request's type and
// application and the session password. The password is looked up fresh on
// every build; before the authorize handshake it is empty. A page that never
// learned the password cannot fabricate a response indistinguishable from
// the host's.
func (b *Builder) Envelope(req *types.Request) types.Response {
	password, _ := session.Get[string](b.sess, session.KeyPassword)
	return types.Response{
		"type":        req.Type,
		"application": req.Application,
		"password":    password,
	}
}

// Encode serializes a response to its wire form.
func Encode(resp types.Response) ([]byte, error) {
	return sonic.Marshal(resp)
}
