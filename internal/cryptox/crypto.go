// Package cryptox holds the key derivation and authenticated encryption
// primitives behind the secure store.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KDFIterations is the PBKDF2 work factor. A 4-digit passcode has only
	// 10,000 candidates, so this count is the only throttle on an offline
	// guess of the whole space. Do not lower it.
	KDFIterations = 100_000

	// KeySize is the derived AES-256 key length in bytes.
	KeySize = 32

	// SaltSize is the length of the per-install random salt.
	SaltSize = 16

	// NonceSize is the AES-GCM nonce length (96 bits).
	NonceSize = 12
)

var ErrInvalidSealed = errors.New("invalid sealed record")

// Sealed is an AES-GCM ciphertext together with the nonce it was produced
// with. Byte fields marshal to base64 strings.
type Sealed struct {
	IV   []byte `json:"iv"`
	Data []byte `json:"data"`
}

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey stretches passcode and salt into a 256-bit key with
// PBKDF2-HMAC-SHA256 at KDFIterations rounds.
func DeriveKey(passcode, salt []byte) []byte {
	return deriveKey(passcode, salt, KDFIterations)
}

func deriveKey(passcode, salt []byte, iterations int) []byte {
	return pbkdf2.Key(passcode, salt, iterations, KeySize, sha256.New)
}

// HashPasscode returns SHA-256(passcode || base64(salt)). The result is the
// persisted verifier checked on unlock before any key derivation happens.
func HashPasscode(passcode, salt []byte) []byte {
	h := sha256.New()
	h.Write(passcode)
	h.Write([]byte(base64.StdEncoding.EncodeToString(salt)))
	return h.Sum(nil)
}

// Seal serializes v to JSON and encrypts it with AES-GCM under key.
//
// A new random nonce is generated on every call, so sealing the same value
// twice yields different ciphertexts. The key must be 16, 24 or 32 bytes.
func Seal(v any, key []byte) (*Sealed, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return &Sealed{IV: nonce, Data: ciphertext}, nil
}

// Open authenticates and decrypts s with key and unmarshals the JSON
// plaintext into v. A wrong key or any tampering with IV or Data makes
// the GCM tag check fail.
func Open(s *Sealed, key []byte, v any) error {
	if s == nil || len(s.IV) != NonceSize {
		return ErrInvalidSealed
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, s.IV, s.Data, nil)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
