package types

import "math"

// Kind identifies a bridge operation. Values match the wire discriminants
// sent by embedded applications.
type Kind string

const (
	KindAuthorize     Kind = "AUTHORIZE"
	KindKeySend       Kind = "KEYSEND"
	KindUpdated       Kind = "UPDATED"
	KindReload        Kind = "RELOAD"
	KindPayment       Kind = "PAYMENT"
	KindSaveLSAT      Kind = "LSAT"
	KindSaveGraphData Kind = "SAVEDATA"
	KindGetLSAT       Kind = "GETLSAT"
	KindUpdateLSAT    Kind = "UPDATELSAT"
	KindGetPersonData Kind = "GETPERSONDATA"
	KindUnknown       Kind = "UNKNOWN"
)

// KindOf maps a wire discriminant to its Kind. Anything outside the fixed
// vocabulary is KindUnknown.
func KindOf(discriminant string) Kind {
	switch Kind(discriminant) {
	case KindAuthorize, KindKeySend, KindUpdated, KindReload, KindPayment,
		KindSaveLSAT, KindSaveGraphData, KindGetLSAT, KindUpdateLSAT,
		KindGetPersonData:
		return Kind(discriminant)
	default:
		return KindUnknown
	}
}

// Request is a decoded inbound message. Type holds the raw discriminant so
// responses echo exactly what the page sent, even for unrecognized kinds.
type Request struct {
	Kind        Kind
	Type        string
	Application string
	Payload     map[string]interface{}
}

// String returns the payload value for key if it is a string.
func (r *Request) String(key string) (string, bool) {
	v, ok := r.Payload[key].(string)
	return v, ok
}

// Int64 returns the payload value for key if it is an integral number.
// JSON numbers decode as float64; fractional values are rejected rather
// than truncated. Integral values stored directly are accepted too.
func (r *Request) Int64(key string) (int64, bool) {
	switch v := r.Payload[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Map returns the payload value for key if it is a nested object.
func (r *Request) Map(key string) (map[string]interface{}, bool) {
	v, ok := r.Payload[key].(map[string]interface{})
	return v, ok
}

// Response is an outbound message. Responses are only constructed through
// the codec builder so the anti-spoofing envelope is never skipped.
type Response map[string]interface{}
