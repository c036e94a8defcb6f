package storage

import (
	"context"
	"database/sql"
	"errors"
)

const (
	saltKey     = "kdf_salt"
	keyCheckKey = "key_check"
)

// MetaStore reads and writes the plaintext app_meta slots: the KDF salt and
// the encrypted key-check value.
type MetaStore struct {
	db *sql.DB
}

func NewMetaStore(db *sql.DB) *MetaStore {
	return &MetaStore{db: db}
}

// Load returns nil, nil when the slot is empty.
func (s *MetaStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErr("load "+key, err)
	}
	return value, nil
}

func (s *MetaStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_meta (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return wrapDBErr("save "+key, err)
	}
	return nil
}

func (s *MetaStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_meta WHERE key = ?`, key); err != nil {
		return wrapDBErr("delete "+key, err)
	}
	return nil
}

// LoadSalt, SaveSalt and ClearSalt satisfy security.SaltStore.
func (s *MetaStore) LoadSalt(ctx context.Context) ([]byte, error) {
	return s.Load(ctx, saltKey)
}

func (s *MetaStore) SaveSalt(ctx context.Context, salt []byte) error {
	return s.Save(ctx, saltKey, salt)
}

func (s *MetaStore) ClearSalt(ctx context.Context) error {
	return s.Delete(ctx, saltKey)
}

func (s *MetaStore) LoadKeyCheck(ctx context.Context) (string, error) {
	v, err := s.Load(ctx, keyCheckKey)
	return string(v), err
}

func (s *MetaStore) SaveKeyCheck(ctx context.Context, encoded string) error {
	return s.Save(ctx, keyCheckKey, []byte(encoded))
}

func (s *MetaStore) ClearKeyCheck(ctx context.Context) error {
	return s.Delete(ctx, keyCheckKey)
}
