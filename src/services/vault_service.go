package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/security"
	"github.com/username/moneymirror/src/storage"
)

// ErrWrongPassphrase is returned when a passphrase does not open the key check.
var ErrWrongPassphrase = fmt.Errorf("%w: wrong passphrase", security.ErrDecryption)

const keyCheckPayload = "moneymirror-key-check"

type vaultServiceImpl struct {
	cipher *security.EncryptionService
	meta   *storage.MetaStore
	store  *storage.SecureStore
	cache  *cache.Cache
}

func NewVaultService(cipher *security.EncryptionService, meta *storage.MetaStore, store *storage.SecureStore, resultCache *cache.Cache) VaultService {
	return &vaultServiceImpl{cipher: cipher, meta: meta, store: store, cache: resultCache}
}

// Unlock derives a candidate key and checks it against the stored key-check
// value before it replaces the live key, so a failed attempt leaves an open
// session untouched. The first unlock of an installation writes that value.
func (s *vaultServiceImpl) Unlock(ctx context.Context, passphrase string) error {
	candidate, err := s.cipher.DeriveKey(ctx, passphrase)
	if err != nil {
		return err
	}
	defer candidate.Discard()

	check, err := s.meta.LoadKeyCheck(ctx)
	if err != nil {
		return err
	}
	if check == "" {
		encoded, err := candidate.Encrypt(keyCheckPayload)
		if err != nil {
			return err
		}
		if err := s.meta.SaveKeyCheck(ctx, encoded); err != nil {
			return err
		}
		s.cipher.Install(candidate)
		logger.L.Info("Vault initialized")
		return nil
	}

	var got string
	if err := candidate.DecryptInto(check, &got); err != nil || got != keyCheckPayload {
		if err != nil && !errors.Is(err, security.ErrDecryption) {
			return err
		}
		logger.L.Warn("Unlock rejected, live key unchanged", "unlocked", s.cipher.IsInitialized())
		return ErrWrongPassphrase
	}
	s.cipher.Install(candidate)
	logger.L.Info("Vault unlocked")
	return nil
}

// Lock wipes the key and every cached plaintext result.
func (s *vaultServiceImpl) Lock() {
	s.cipher.ClearKeys()
	s.cache.Flush()
	logger.L.Info("Vault locked")
}

func (s *vaultServiceImpl) IsUnlocked() bool {
	return s.cipher.IsInitialized()
}

func (s *vaultServiceImpl) SetIncognito(enabled bool) {
	s.store.SetIncognito(enabled)
	s.cache.Flush()
}

func (s *vaultServiceImpl) Incognito() bool {
	return s.store.Incognito()
}

// EraseUser deletes every record of one user.
func (s *vaultServiceImpl) EraseUser(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID, ""); err != nil {
		return err
	}
	InvalidateUserCache(s.cache, userID)
	logger.L.Info("User data erased", "userID", userID)
	return nil
}

// ResetInstallation deletes all records, the salt and the key check. The next
// Unlock starts a new vault with whatever passphrase it is given.
func (s *vaultServiceImpl) ResetInstallation(ctx context.Context) error {
	if err := s.store.Clear(ctx, "", ""); err != nil {
		return err
	}
	if err := s.meta.ClearKeyCheck(ctx); err != nil {
		return err
	}
	if err := s.cipher.Forget(ctx); err != nil {
		return err
	}
	s.cache.Flush()
	logger.L.Warn("Installation reset, all data erased")
	return nil
}
