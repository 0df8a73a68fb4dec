package crypt

import (
	"encoding/base64"
	"testing"
)

func TestRandomStringLengthAndAlphabet(t *testing.T) {
	s := RandomString(16)
	if len(s) != 16 {
		t.Fatalf("expected length 16, got %d", len(s))
	}
	for _, c := range s {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			t.Errorf("unexpected character %q", c)
		}
	}
}

func TestRandomStringVaries(t *testing.T) {
	if RandomString(16) == RandomString(16) {
		t.Error("two generated passwords should not collide")
	}
}

func TestSealOpenRoundtrip(t *testing.T) {
	var key [KeySize]byte
	copy(key[:], "0123456789abcdef0123456789abcdef")

	sealed, err := Seal("relay-token-secret", key)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	opened, err := Open(sealed, key)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != "relay-token-secret" {
		t.Errorf("roundtrip lost plaintext, got %q", opened)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	var key, other [KeySize]byte
	copy(key[:], "0123456789abcdef0123456789abcdef")
	copy(other[:], "fedcba9876543210fedcba9876543210")

	sealed, err := Seal("secret", key)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := Open(sealed, other); err == nil {
		t.Error("expected decryption with the wrong key to fail")
	}
}

func TestOpenRejectsMalformed(t *testing.T) {
	var key [KeySize]byte
	if _, err := Open("not base64!!!", key); err == nil {
		t.Error("expected non-base64 input to fail")
	}
	if _, err := Open(base64.StdEncoding.EncodeToString([]byte("short")), key); err == nil {
		t.Error("expected truncated input to fail")
	}
}

func TestParseKey(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	key, err := ParseKey(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if key[31] != 31 {
		t.Errorf("key bytes not preserved, got %d", key[31])
	}

	if _, err := ParseKey("%%%"); err == nil {
		t.Error("expected non-base64 key to fail")
	}
	if _, err := ParseKey(base64.StdEncoding.EncodeToString(raw[:16])); err == nil {
		t.Error("expected short key to fail")
	}
}
