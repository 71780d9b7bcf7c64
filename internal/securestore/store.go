// Package securestore keeps every piece of workflow state encrypted at rest
// under a key derived from the device passcode.
//
// A Store moves between three states:
//
//	Uninitialized --Setup--> Unlocked --Lock--> Locked --Verify--> Unlocked
//
// The derived key lives only in memory while Unlocked. Salt and passcode
// hash are persisted next to the sealed records; they change together only
// through ChangePasscode, which re-encrypts every record in the same
// transaction.
//
// The store does not serialize concurrent writes to the same logical key;
// that is the caller's job.
package securestore

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
	"github.com/dmitrijs2005/huddlekeeper/internal/cryptox"
	"github.com/dmitrijs2005/huddlekeeper/internal/dbx"
	"github.com/dmitrijs2005/huddlekeeper/internal/logging"
	"github.com/dmitrijs2005/huddlekeeper/internal/storage/kv"
)

type State int

const (
	StateUninitialized State = iota
	StateLocked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Database is satisfied by *sql.DB.
type Database interface {
	dbx.DBTX
	dbx.TxBeginner
}

// Defaults maps a logical record key to a constructor of its empty value.
// Setup writes one record per entry.
type Defaults map[string]func() any

type Store struct {
	db       Database
	repo     kv.Repository
	log      logging.Logger
	defaults Defaults

	mu  sync.RWMutex
	key []byte
}

func New(db Database, log logging.Logger, defaults Defaults) *Store {
	return &Store{
		db:       db,
		repo:     kv.NewSQLiteRepository(db),
		log:      log.With("component", "securestore"),
		defaults: defaults,
	}
}

// IsConfigured reports whether a passcode hash has been persisted.
func (s *Store) IsConfigured(ctx context.Context) (bool, error) {
	hash, err := s.repo.Get(ctx, common.KeyPasscodeHash)
	if err != nil {
		return false, err
	}
	return hash != nil, nil
}

func (s *Store) State(ctx context.Context) (State, error) {
	if s.unlocked() {
		return StateUnlocked, nil
	}
	ok, err := s.IsConfigured(ctx)
	if err != nil {
		return StateUninitialized, err
	}
	if ok {
		return StateLocked, nil
	}
	return StateUninitialized, nil
}

// Setup creates the passcode metadata and the empty records and leaves the
// store Unlocked. It is only valid while Uninitialized.
func (s *Store) Setup(ctx context.Context, passcode []byte) error {
	if err := ValidatePasscode(passcode); err != nil {
		return err
	}
	configured, err := s.IsConfigured(ctx)
	if err != nil {
		return err
	}
	if configured {
		return ErrAlreadyConfigured
	}

	salt := cryptox.NewSalt()
	hash := cryptox.HashPasscode(passcode, salt)
	key := cryptox.DeriveKey(passcode, salt)

	records := make(map[string][]byte, len(s.defaults))
	for _, name := range common.RecordKeys {
		newValue, ok := s.defaults[name]
		if !ok {
			continue
		}
		b, err := sealRecord(newValue(), key)
		if err != nil {
			common.WipeByteArray(key)
			return fmt.Errorf("seal %s: %w", name, err)
		}
		records[name] = b
	}

	if err := s.commit(ctx, salt, hash, records); err != nil {
		common.WipeByteArray(key)
		return fmt.Errorf("persist setup: %w", err)
	}

	s.setKey(key)
	s.log.Info(ctx, "passcode configured")
	return nil
}

// Verify checks passcode against the persisted hash. On a match it derives
// the key and unlocks the store. A mismatch, or missing metadata, returns
// false and leaves the state as it was. The error is non-nil only for
// storage failures.
func (s *Store) Verify(ctx context.Context, passcode []byte) (bool, error) {
	salt, hash, err := s.loadMetadata(ctx)
	if err != nil {
		return false, err
	}
	if salt == nil || hash == nil {
		return false, nil
	}

	candidate := cryptox.HashPasscode(passcode, salt)
	if subtle.ConstantTimeCompare(candidate, hash) == 0 {
		s.log.Info(ctx, "passcode rejected")
		return false, nil
	}

	s.setKey(cryptox.DeriveKey(passcode, salt))
	return true, nil
}

// Unlock is Verify with a wrong passcode reported as ErrVerificationFailed.
func (s *Store) Unlock(ctx context.Context, passcode []byte) error {
	ok, err := s.Verify(ctx, passcode)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVerificationFailed
	}
	return nil
}

// ChangePasscode re-keys the store. It returns false when oldPasscode does
// not verify.
//
// Every present record is decrypted with the current key and re-sealed with
// the new one in memory first; salt, hash and records are then written in a
// single transaction, and the in-memory key is swapped only after commit.
// If any record cannot be decrypted nothing is written and the error wraps
// ErrDecryptionFailed.
func (s *Store) ChangePasscode(ctx context.Context, oldPasscode, newPasscode []byte) (bool, error) {
	if err := ValidatePasscode(newPasscode); err != nil {
		return false, err
	}
	ok, err := s.Verify(ctx, oldPasscode)
	if err != nil || !ok {
		return false, err
	}

	oldKey := s.currentKey()
	if oldKey == nil {
		return false, ErrNotInitialized
	}
	defer common.WipeByteArray(oldKey)

	plain := make(map[string]json.RawMessage, len(common.RecordKeys))
	for _, name := range common.RecordKeys {
		raw, err := s.repo.Get(ctx, name)
		if err != nil {
			return false, err
		}
		if raw == nil {
			continue
		}
		var v json.RawMessage
		if err := openRecord(raw, oldKey, &v); err != nil {
			s.log.Warn(ctx, "record could not be decrypted during passcode change", "key", name, "error", err)
			return false, fmt.Errorf("%s: %w", name, ErrDecryptionFailed)
		}
		plain[name] = v
	}

	salt := cryptox.NewSalt()
	hash := cryptox.HashPasscode(newPasscode, salt)
	newKey := cryptox.DeriveKey(newPasscode, salt)

	records := make(map[string][]byte, len(plain))
	for name, v := range plain {
		b, err := sealRecord(v, newKey)
		if err != nil {
			common.WipeByteArray(newKey)
			return false, fmt.Errorf("seal %s: %w", name, err)
		}
		records[name] = b
	}

	if err := s.commit(ctx, salt, hash, records); err != nil {
		common.WipeByteArray(newKey)
		return false, fmt.Errorf("persist new passcode: %w", err)
	}

	s.setKey(newKey)
	s.log.Info(ctx, "passcode changed", "records", len(records))
	return true, nil
}

// Save seals v under the current key with a fresh nonce and overwrites the
// record stored under name.
func (s *Store) Save(ctx context.Context, name string, v any) error {
	if isReserved(name) {
		return ErrReservedKey
	}
	key := s.currentKey()
	if key == nil {
		return ErrNotInitialized
	}
	defer common.WipeByteArray(key)

	b, err := sealRecord(v, key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", name, err)
	}
	return s.repo.Set(ctx, name, b)
}

// Load decrypts the record stored under name into v.
//
// It returns false, nil when nothing is stored. A record that fails to
// decrypt or decode is logged and reported as false with
// ErrDecryptionFailed; callers usually fall back to a default value.
func (s *Store) Load(ctx context.Context, name string, v any) (bool, error) {
	if isReserved(name) {
		return false, ErrReservedKey
	}
	key := s.currentKey()
	if key == nil {
		return false, ErrNotInitialized
	}
	defer common.WipeByteArray(key)

	raw, err := s.repo.Get(ctx, name)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}

	if err := openRecord(raw, key, v); err != nil {
		s.log.Warn(ctx, "record could not be decrypted", "key", name, "error", err)
		return false, fmt.Errorf("%s: %w", name, ErrDecryptionFailed)
	}
	return true, nil
}

// Lock discards the in-memory key. It is idempotent.
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
}

// ClearAll deletes every record together with salt and hash and locks the
// store. The data cannot be recovered afterwards.
func (s *Store) ClearAll(ctx context.Context) error {
	s.Lock()
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "all data cleared")
	return nil
}

func (s *Store) commit(ctx context.Context, salt, hash []byte, records map[string][]byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.KeySalt, encode(salt)); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.KeyPasscodeHash, encode(hash)); err != nil {
			return err
		}
		for _, name := range common.RecordKeys {
			b, ok := records[name]
			if !ok {
				continue
			}
			if err := repo.Set(ctx, name, b); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) loadMetadata(ctx context.Context) (salt, hash []byte, err error) {
	rawSalt, err := s.repo.Get(ctx, common.KeySalt)
	if err != nil {
		return nil, nil, err
	}
	rawHash, err := s.repo.Get(ctx, common.KeyPasscodeHash)
	if err != nil {
		return nil, nil, err
	}
	if rawSalt == nil || rawHash == nil {
		return nil, nil, nil
	}

	if salt, err = decode(rawSalt); err != nil {
		return nil, nil, fmt.Errorf("salt: %w", ErrCorruptMetadata)
	}
	if hash, err = decode(rawHash); err != nil {
		return nil, nil, fmt.Errorf("passcode hash: %w", ErrCorruptMetadata)
	}
	return salt, hash, nil
}

func (s *Store) unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// currentKey returns a copy of the key, or nil while locked. The caller
// wipes the copy when done.
func (s *Store) currentKey() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil
	}
	return append([]byte(nil), s.key...)
}

func (s *Store) setKey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = key
}

func sealRecord(v any, key []byte) ([]byte, error) {
	sealed, err := cryptox.Seal(v, key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sealed)
}

func openRecord(raw, key []byte, v any) error {
	var sealed cryptox.Sealed
	if err := json.Unmarshal(raw, &sealed); err != nil {
		return err
	}
	return cryptox.Open(&sealed, key, v)
}

func isReserved(name string) bool {
	return name == common.KeySalt || name == common.KeyPasscodeHash
}

func encode(b []byte) []byte {
	return []byte(base64.StdEncoding.EncodeToString(b))
}

func decode(b []byte) ([]byte, error) {
	return base64.StdEncoding.DecodeString(string(b))
}
