// Package crypt provides the small cryptographic surface the bridge needs:
// random session passwords and symmetric decryption of sealed secrets.
package crypt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a random alphanumeric string of length n. Used for
// per-session passwords handed to authorized pages.
func RandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// Weak randomness would let a page forge host replies.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	for i, v := range b {
		b[i] = passwordAlphabet[int(v)%len(passwordAlphabet)]
	}
	return string(b)
}

// KeySize is the secretbox key length in bytes.
const KeySize = 32

const nonceSize = 24

// Seal encrypts plaintext with key and returns a base64 string carrying
// nonce plus ciphertext. Provided for provisioning tooling and tests.
func Seal(plaintext string, key [KeySize]byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("nonce generation failed: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a base64 sealed value produced by Seal. Returns an error
// for malformed input or a key mismatch; the caller treats both as absent.
func Open(sealed string, key [KeySize]byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("sealed value is not base64: %w", err)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &key)
	if !ok {
		return "", fmt.Errorf("decryption failed")
	}
	return string(plaintext), nil
}

// ParseKey decodes a base64 32-byte secretbox key.
func ParseKey(encoded string) ([KeySize]byte, error) {
	var key [KeySize]byte
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return key, fmt.Errorf("key is not base64: %w", err)
	}
	if len(raw) != KeySize {
		return key, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
