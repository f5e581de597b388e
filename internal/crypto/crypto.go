package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecrypt is returned when a ciphertext fails authentication,
// usually because it was tampered with or encrypted under another key.
var ErrDecrypt = errors.New("crypto: decryption failed")

const keyInfo = "jira-connection-password"

// Encryptor provides authenticated encryption for credential fields.
// The secretbox key is derived from the configured secret with
// HKDF-SHA256, so any string secret yields a full-strength key.
type Encryptor struct {
	key [32]byte
}

func NewEncryptor(secret string) (*Encryptor, error) {
	if secret == "" {
		return nil, errors.New("crypto: empty encryption secret")
	}
	e := &Encryptor{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, e.key[:]); err != nil {
		return nil, fmt.Errorf("crypto: derive key: %w", err)
	}
	return e, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || box). An empty plaintext stays empty so a blank
// stored password round-trips as blank.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &e.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Decrypt opens a value produced by Encrypt. The empty ciphertext
// decrypts to the empty string.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("crypto: decode ciphertext: %w", err)
	}
	if len(raw) < 24 {
		return "", ErrDecrypt
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &e.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}
