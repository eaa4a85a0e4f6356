// Package cryptocheck runs an asymmetric encrypt/decrypt round trip over block
// payloads. Its outcome is only reported; it never decides whether a block is
// accepted.
package cryptocheck

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
)

var ErrMismatch = errors.New("decrypted payload differs from plaintext")

// Checker holds the key pair used for the round trip.
type Checker struct {
	key *ecies.PrivateKey
}

// New creates a Checker with a fresh key.
func New() (*Checker, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate ecies key: %w", err)
	}
	return &Checker{key: ecies.ImportECDSA(key)}, nil
}

func (c *Checker) Encrypt(plaintext []byte) ([]byte, error) {
	return ecies.Encrypt(rand.Reader, &c.key.PublicKey, plaintext, nil, nil)
}

func (c *Checker) Decrypt(ciphertext []byte) ([]byte, error) {
	return c.key.Decrypt(ciphertext, nil, nil)
}

// RoundTrip encrypts plaintext, decrypts the result and compares.
func (c *Checker) RoundTrip(plaintext []byte) error {
	ct, err := c.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if !bytes.Equal(pt, plaintext) {
		return ErrMismatch
	}
	return nil
}

// Payload checks a block payload joined with newlines.
func (c *Checker) Payload(items []string) error {
	return c.RoundTrip([]byte(strings.Join(items, "\n")))
}
