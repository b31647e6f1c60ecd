// Package crypto encrypts the session cookies kept in the config file.
//
// An encrypted value is "enc:" followed by base64(nonce || AES-256-GCM
// ciphertext). The cookie name is bound in as associated data, so a value
// only opens under the name it was sealed for. Plain values pass through
// unchanged, which lets plain and encrypted cookies share one file.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Prefix marks an encrypted value
const Prefix = "enc:"

const (
	kdfIterations = 100_000
	keyLen        = 32
	saltLen       = 16
	saltContext   = "thu-timetable/cookies"
)

var (
	// ErrNoPassphrase is returned when an encrypted value is read without a passphrase
	ErrNoPassphrase = errors.New("value is encrypted but no passphrase was given")
	// ErrDecrypt is returned for a wrong passphrase or a corrupted value
	ErrDecrypt = errors.New("cannot decrypt value (wrong passphrase?)")
)

// Encryptor seals and opens cookie values with a passphrase-derived key.
// A nil *Encryptor is valid and leaves plain values alone.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives the key for passphrase. An empty passphrase gives nil.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}

	// the salt depends only on the passphrase, so one passphrase always opens the file
	sum := sha256.Sum256([]byte(saltContext + "\x00" + passphrase))
	key := pbkdf2.Key([]byte(passphrase), sum[:saltLen], kdfIterations, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		// unreachable: keyLen is a valid AES key size
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return &Encryptor{aead: aead}
}

// IsEncrypted reports whether a value was produced by Encrypt
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Encrypt seals value for the cookie called name. Empty and already
// encrypted values are returned as they are, as is everything when e is nil.
func (e *Encryptor) Encrypt(name, value string) (string, error) {
	if e == nil || value == "" || IsEncrypted(value) {
		return value, nil
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(value), []byte(name))
	return Prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value sealed for the cookie called name. Values without
// the prefix are returned unchanged.
func (e *Encryptor) Decrypt(name, value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	if e == nil {
		return "", ErrNoPassphrase
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	n := e.aead.NonceSize()
	if len(sealed) < n+e.aead.Overhead() {
		return "", fmt.Errorf("%w: value too short", ErrDecrypt)
	}

	plain, err := e.aead.Open(nil, sealed[:n], sealed[n:], []byte(name))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
