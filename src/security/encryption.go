package security

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/username/moneymirror/src/logger"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the per-installation KDF salt.
	SaltSize = 32
	// KeySize selects AES-256.
	KeySize = 32
	// NonceSize is the GCM nonce length prefixed to every ciphertext.
	NonceSize = 12
	// MinIterations is the lowest PBKDF2 work factor accepted.
	MinIterations = 100000
)

// SaltStore persists the KDF salt in a plaintext slot next to the ciphertext.
// LoadSalt returns a nil slice and no error when no salt was stored yet.
type SaltStore interface {
	LoadSalt(ctx context.Context) ([]byte, error)
	SaveSalt(ctx context.Context, salt []byte) error
	ClearSalt(ctx context.Context) error
}

// EncryptionService derives a key from the user passphrase and seals payloads
// with AES-256-GCM. Key material lives only in memory.
type EncryptionService struct {
	mu         sync.RWMutex
	salts      SaltStore
	iterations int
	key        []byte
	aead       cipher.AEAD
}

func NewEncryptionService(salts SaltStore, iterations int) *EncryptionService {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return &EncryptionService{
		salts:      salts,
		iterations: iterations,
	}
}

// DerivedKey is a key that has been derived but not installed. Callers can
// check it against known ciphertext before it replaces the live key.
type DerivedKey struct {
	key  []byte
	aead cipher.AEAD
}

// Encrypt seals payload with the candidate key.
func (k *DerivedKey) Encrypt(payload any) (string, error) {
	if k == nil || k.aead == nil {
		return "", ErrKeyNotInitialized
	}
	return seal(k.aead, payload)
}

// DecryptInto opens encoded with the candidate key and unmarshals it into v.
func (k *DerivedKey) DecryptInto(encoded string, v any) error {
	if k == nil || k.aead == nil {
		return fmt.Errorf("%w: %w", ErrDecryption, ErrKeyNotInitialized)
	}
	plaintext, err := open(k.aead, encoded)
	if err != nil {
		return err
	}
	return unmarshalPayload(plaintext, v)
}

// Discard zeroes the candidate key bytes.
func (k *DerivedKey) Discard() {
	if k == nil {
		return
	}
	wipe(k.key)
	k.key = nil
	k.aead = nil
}

// DeriveKey derives the key from passphrase and the stored salt, creating and
// persisting the salt on first use. The live key is left untouched.
func (s *EncryptionService) DeriveKey(ctx context.Context, passphrase string) (*DerivedKey, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: passphrase must not be empty", ErrEncryption)
	}

	salt, err := s.loadOrCreateSalt(ctx)
	if err != nil {
		return nil, err
	}

	key := pbkdf2.Key([]byte(passphrase), salt, s.iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		wipe(key)
		return nil, fmt.Errorf("%w: create AES cipher: %v", ErrEncryption, err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		wipe(key)
		return nil, fmt.Errorf("%w: create GCM: %v", ErrEncryption, err)
	}
	return &DerivedKey{key: key, aead: aead}, nil
}

// Install makes k the live key and drops the previous one. k must not be
// used afterwards.
func (s *EncryptionService) Install(k *DerivedKey) {
	s.mu.Lock()
	wipe(s.key)
	s.key = k.key
	s.aead = k.aead
	s.mu.Unlock()
	k.key = nil
	k.aead = nil
	logger.L.Info("Encryption key initialized", "iterations", s.iterations)
}

// InitializeKey derives and installs the key in one step. Calling it again
// with the same passphrase reproduces the same key.
func (s *EncryptionService) InitializeKey(ctx context.Context, passphrase string) error {
	k, err := s.DeriveKey(ctx, passphrase)
	if err != nil {
		return err
	}
	s.Install(k)
	return nil
}

func (s *EncryptionService) loadOrCreateSalt(ctx context.Context) ([]byte, error) {
	salt, err := s.salts.LoadSalt(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load salt: %v", ErrEncryption, err)
	}
	if salt != nil {
		if len(salt) != SaltSize {
			return nil, fmt.Errorf("%w: stored salt has %d bytes, want %d", ErrEncryption, len(salt), SaltSize)
		}
		return salt, nil
	}

	salt = make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: generate salt: %v", ErrEncryption, err)
	}
	if err := s.salts.SaveSalt(ctx, salt); err != nil {
		return nil, fmt.Errorf("%w: persist salt: %v", ErrEncryption, err)
	}
	logger.L.Info("Generated new installation salt")
	return salt, nil
}

// Encrypt serializes payload to JSON and returns base64(nonce || ciphertext).
func (s *EncryptionService) Encrypt(payload any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aead == nil {
		return "", ErrKeyNotInitialized
	}
	return seal(s.aead, payload)
}

// Decrypt authenticates and opens an encoded payload, returning the JSON bytes.
// Tampered or foreign ciphertext fails before any deserialization.
func (s *EncryptionService) Decrypt(encoded string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aead == nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryption, ErrKeyNotInitialized)
	}
	return open(s.aead, encoded)
}

// DecryptInto decrypts encoded and unmarshals the payload into v.
func (s *EncryptionService) DecryptInto(encoded string, v any) error {
	plaintext, err := s.Decrypt(encoded)
	if err != nil {
		return err
	}
	return unmarshalPayload(plaintext, v)
}

func seal(aead cipher.AEAD, payload any) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: serialize payload: %v", ErrEncryption, err)
	}
	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generate nonce: %v", ErrEncryption, err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// open rejects non-canonical base64 so every encoded character is covered
// by the authentication tag.
func open(aead cipher.AEAD, encoded string) (json.RawMessage, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid encoding: %v", ErrDecryption, err)
	}
	if len(raw) < NonceSize+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	plaintext, err := aead.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryption)
	}
	if !json.Valid(plaintext) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrDecryption)
	}
	return json.RawMessage(plaintext), nil
}

func unmarshalPayload(plaintext json.RawMessage, v any) error {
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrDecryption, err)
	}
	return nil
}

func (s *EncryptionService) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aead != nil
}

// ClearKeys zeroes the derived key bytes and drops the cipher. The AES key
// schedule held by the dropped cipher is left to the garbage collector.
// Later calls fail with ErrKeyNotInitialized.
func (s *EncryptionService) ClearKeys() {
	s.mu.Lock()
	wipe(s.key)
	s.key = nil
	s.aead = nil
	s.mu.Unlock()
	logger.L.Info("Encryption keys cleared")
}

// Forget clears the keys and drops the stored salt, so the next
// InitializeKey starts a fresh installation.
func (s *EncryptionService) Forget(ctx context.Context) error {
	s.ClearKeys()
	if err := s.salts.ClearSalt(ctx); err != nil {
		return fmt.Errorf("%w: clear salt: %v", ErrEncryption, err)
	}
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
