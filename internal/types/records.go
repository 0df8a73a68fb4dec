package types

// LSAT is a Lightning Service Authentication Token. The bridge treats it as
// an opaque record: fields are extracted for response shaping only, never
// interpreted.
type LSAT struct {
	Macaroon       string `json:"macaroon"`
	PaymentRequest string `json:"paymentRequest"`
	Preimage       string `json:"preimage"`
	Identifier     string `json:"identifier"`
	Issuer         string `json:"issuer"`
	Status         int64  `json:"status"`
	Paths          string `json:"paths,omitempty"`
}

// Person is the host owner's public identity record.
type Person struct {
	Alias     string `json:"alias"`
	PublicKey string `json:"publicKey"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}
