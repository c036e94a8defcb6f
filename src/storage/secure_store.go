package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/username/moneymirror/src/database"
	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
)

// Collection names one of the four logical record sets.
type Collection string

const (
	CollectionFinancialSnapshots Collection = database.TableFinancialSnapshots
	CollectionTransactions       Collection = database.TableTransactions
	CollectionEmotionalContexts  Collection = database.TableEmotionalContexts
	CollectionInsights           Collection = database.TableInsights
)

var allCollections = []Collection{
	CollectionFinancialSnapshots,
	CollectionTransactions,
	CollectionEmotionalContexts,
	CollectionInsights,
}

func (c Collection) valid() bool {
	for _, known := range allCollections {
		if c == known {
			return true
		}
	}
	return false
}

// recordDateLayout sorts lexicographically in UTC.
const recordDateLayout = "2006-01-02T15:04:05.000Z"

// Cipher is the part of the encryption engine the store depends on.
type Cipher interface {
	Encrypt(payload any) (string, error)
	Decrypt(encoded string) (json.RawMessage, error)
	IsInitialized() bool
}

// EncryptedRecord is the persisted row shape.
type EncryptedRecord struct {
	ID               string
	UserID           string
	Timestamp        time.Time
	EncryptedPayload string
	Index            models.IndexFields
}

// Filter selects records using the plaintext index columns only.
type Filter struct {
	Category  string
	Kind      string
	From      time.Time
	To        time.Time
	MinAmount *float64
	MaxAmount *float64
	Limit     int
}

// SecureStore persists encrypted records per (userID, collection). Every write
// replaces a whole record; there is no multi-record atomicity.
type SecureStore struct {
	db        *sql.DB
	cipher    Cipher
	incognito atomic.Bool
	now       func() time.Time
	newID     func() string
}

func NewSecureStore(db *sql.DB, cipher Cipher) *SecureStore {
	return &SecureStore{
		db:     db,
		cipher: cipher,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetIncognito switches the store-wide ephemeral mode.
func (s *SecureStore) SetIncognito(enabled bool) {
	s.incognito.Store(enabled)
	logger.L.Info("Incognito mode changed", "enabled", enabled)
}

func (s *SecureStore) Incognito() bool {
	return s.incognito.Load()
}

func (s *SecureStore) checkWritable(collection Collection) error {
	if !collection.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if s.db == nil {
		return fmt.Errorf("%w: no database handle", ErrStorageUnavailable)
	}
	if !s.cipher.IsInitialized() {
		return ErrLocked
	}
	return nil
}

// SaveRecord encrypts payload and stores it under a freshly generated id.
func (s *SecureStore) SaveRecord(ctx context.Context, userID string, collection Collection, payload any) (string, error) {
	if s.Incognito() {
		return "incognito-" + s.newID(), nil
	}
	id := s.newID()
	if err := s.PutRecord(ctx, userID, collection, id, payload); err != nil {
		return "", err
	}
	return id, nil
}

// PutRecord stores payload under id, replacing the user's previous record with
// that id. Ids are scoped per user, so other users' records are never touched.
func (s *SecureStore) PutRecord(ctx context.Context, userID string, collection Collection, id string, payload any) error {
	if s.Incognito() {
		return nil
	}
	if err := s.checkWritable(collection); err != nil {
		return err
	}
	rec, err := s.seal(userID, id, payload)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_id, timestamp, encrypted_payload, category, record_date, amount, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			timestamp = excluded.timestamp,
			encrypted_payload = excluded.encrypted_payload,
			category = excluded.category,
			record_date = excluded.record_date,
			amount = excluded.amount,
			kind = excluded.kind`, collection),
		rec.ID, rec.UserID, rec.Timestamp.UnixMilli(), rec.EncryptedPayload,
		nullString(rec.Index.Category), nullDate(rec.Index.Date), nullFloat(rec.Index.Amount), nullString(rec.Index.Kind))
	if err != nil {
		return wrapDBErr("save record", err)
	}
	logger.L.Debug("Record saved", "collection", collection, "userID", userID, "id", id)
	return nil
}

// ReplaceRecord overwrites an existing record. It fails with ErrRecordNotFound
// when the user owns no record with that id.
func (s *SecureStore) ReplaceRecord(ctx context.Context, userID string, collection Collection, id string, payload any) error {
	if s.Incognito() {
		return nil
	}
	if err := s.checkWritable(collection); err != nil {
		return err
	}
	rec, err := s.seal(userID, id, payload)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET timestamp = ?, encrypted_payload = ?, category = ?, record_date = ?, amount = ?, kind = ?
		WHERE id = ? AND user_id = ?`, collection),
		rec.Timestamp.UnixMilli(), rec.EncryptedPayload,
		nullString(rec.Index.Category), nullDate(rec.Index.Date), nullFloat(rec.Index.Amount), nullString(rec.Index.Kind),
		id, userID)
	if err != nil {
		return wrapDBErr("replace record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBErr("replace record", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, id)
	}
	return nil
}

// DeleteRecord removes one record owned by userID.
func (s *SecureStore) DeleteRecord(ctx context.Context, userID string, collection Collection, id string) error {
	if s.Incognito() {
		return nil
	}
	if !collection.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, collection), id, userID)
	if err != nil {
		return wrapDBErr("delete record", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, id)
	}
	return nil
}

func (s *SecureStore) seal(userID, id string, payload any) (EncryptedRecord, error) {
	if userID == "" || id == "" {
		return EncryptedRecord{}, fmt.Errorf("%w: user id and record id are required", models.ErrValidation)
	}
	encrypted, err := s.cipher.Encrypt(payload)
	if err != nil {
		return EncryptedRecord{}, err
	}
	rec := EncryptedRecord{
		ID:               id,
		UserID:           userID,
		Timestamp:        s.now(),
		EncryptedPayload: encrypted,
	}
	if idx, ok := payload.(models.Indexable); ok {
		rec.Index = idx.IndexFields()
	}
	return rec, nil
}

// GetRecords decrypts every record matching filter. Order follows insertion
// time but callers needing a specific order must sort themselves.
func (s *SecureStore) GetRecords(ctx context.Context, userID string, collection Collection, filter Filter) ([]json.RawMessage, error) {
	if s.Incognito() {
		return []json.RawMessage{}, nil
	}
	if err := s.checkWritable(collection); err != nil {
		return nil, err
	}

	query, args := buildSelect(userID, collection, filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBErr("query records", err)
	}
	defer rows.Close()

	var encrypted []EncryptedRecord
	for rows.Next() {
		var rec EncryptedRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &ts, &rec.EncryptedPayload); err != nil {
			return nil, wrapDBErr("scan record", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		encrypted = append(encrypted, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("iterate records", err)
	}
	rows.Close()

	payloads := make([]json.RawMessage, 0, len(encrypted))
	for _, rec := range encrypted {
		plaintext, err := s.cipher.Decrypt(rec.EncryptedPayload)
		if err != nil {
			return nil, fmt.Errorf("record %s/%s: %w", collection, rec.ID, err)
		}
		payloads = append(payloads, plaintext)
	}
	logger.L.Debug("Records loaded", "collection", collection, "userID", userID, "count", len(payloads))
	return payloads, nil
}

func buildSelect(userID string, collection Collection, f Filter) (string, []any) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if !f.From.IsZero() {
		where = append(where, "record_date >= ?")
		args = append(args, f.From.UTC().Format(recordDateLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "record_date <= ?")
		args = append(args, f.To.UTC().Format(recordDateLayout))
	}
	if f.MinAmount != nil {
		where = append(where, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		where = append(where, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}

	query := fmt.Sprintf(`SELECT id, timestamp, encrypted_payload FROM %s WHERE %s ORDER BY timestamp ASC, id ASC`,
		collection, strings.Join(where, " AND "))
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return query, args
}

// Clear deletes matching records. An empty userID clears every user and an
// empty collection clears all four collections. It does not need the key.
func (s *SecureStore) Clear(ctx context.Context, userID string, collection Collection) error {
	targets := allCollections
	if collection != "" {
		if !collection.valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
		}
		targets = []Collection{collection}
	}

	for _, c := range targets {
		var err error
		if userID == "" {
			_, err = s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, c))
		} else {
			_, err = s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, c), userID)
		}
		if err != nil {
			return wrapDBErr("clear "+string(c), err)
		}
	}
	logger.L.Info("Cleared records", "userID", userID, "collection", collection)
	return nil
}

// Load decrypts and decodes every matching record into T. Records that decrypt
// but do not decode fail with ErrDataIntegrity.
func Load[T any](ctx context.Context, s *SecureStore, userID string, collection Collection, filter Filter) ([]T, error) {
	payloads, err := s.GetRecords(ctx, userID, collection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(payloads))
	for i, p := range payloads {
		var v T
		if err := json.Unmarshal(p, &v); err != nil {
			return nil, fmt.Errorf("%w: %s record %d: %v", ErrDataIntegrity, collection, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(recordDateLayout), Valid: true}
}
