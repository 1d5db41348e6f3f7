package remote

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	pbkdf2Iterations = 100000

	sealedPrefix = "sealed:v1:"
)

// ErrNotSealed is returned by Open for text that was stored in the clear
var ErrNotSealed = errors.New("text is not sealed")

// Sealer encrypts idea text before it leaves the device
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from a passphrase and salt
func NewSealer(passphrase string, salt []byte) *Sealer {
	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	return &Sealer{key: key}
}

// NewSealerBase64 is NewSealer with a base64 salt as stored in the session
func NewSealerBase64(passphrase, salt string) (*Sealer, error) {
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, err
	}
	return NewSealer(passphrase, raw), nil
}

// GenerateSalt returns a random base64 salt
func GenerateSalt() (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// Fingerprint is a short display form of the key, safe to print
func (s *Sealer) Fingerprint() string {
	sum := sha256.Sum256(s.key)
	return base64.RawURLEncoding.EncodeToString(sum[:])[:16]
}

// IsSealed reports whether text carries the sealed envelope
func IsSealed(text string) bool {
	return strings.HasPrefix(text, sealedPrefix)
}

// Seal encrypts text using AES-256-GCM
func (s *Sealer) Seal(text string) (string, error) {
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// nonce + ciphertext
	sealed := gcm.Seal(nonce, nonce, []byte(text), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts text produced by Seal
func (s *Sealer) Open(text string) (string, error) {
	if !IsSealed(text) {
		return text, ErrNotSealed
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, sealedPrefix))
	if err != nil {
		return text, err
	}
	if len(data) < nonceSize {
		return text, errors.New("ciphertext too short")
	}

	gcm, err := s.gcm()
	if err != nil {
		return text, err
	}
	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return text, errors.New("decryption failed: invalid key or corrupted data")
	}
	return string(plaintext), nil
}

func (s *Sealer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
