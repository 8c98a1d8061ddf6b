// Package securestore wraps a raw key-value backend with key validation, a
// size cap and a checksummed envelope. Corrupt or expired entries are purged
// on read and reported as absent.
package securestore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/storage"
)

// ErrValueTooLarge is returned when a serialized value exceeds the per-key cap.
var ErrValueTooLarge = fmt.Errorf("value too large: %w", apperrors.ErrSizeLimit)

var keyPattern = regexp.MustCompile(fmt.Sprintf(`^[a-zA-Z0-9_-]{1,%d}$`, constants.MaxKeyLength))

// envelope is the on-disk form of every entry.
type envelope struct {
	Data      string `json:"data"`
	Checksum  string `json:"checksum"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
}

// Options tunes a Store. The zero value uses the rolling checksum, never
// expires entries and reads the wall clock.
type Options struct {
	Checksummer Checksummer
	MaxAge      time.Duration
	Now         func() time.Time
}

type Store struct {
	backend storage.Backend
	sum     Checksummer
	maxAge  time.Duration
	now     func() time.Time
}

func New(backend storage.Backend, opts Options) *Store {
	s := &Store{
		backend: backend,
		sum:     opts.Checksummer,
		maxAge:  opts.MaxAge,
		now:     opts.Now,
	}
	if s.sum == nil {
		s.sum = RollingChecksum{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Checksummer returns the checksum implementation entries are sealed with.
func (s *Store) Checksummer() Checksummer {
	return s.sum
}

// ValidKey reports whether key may be used with the store.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, key)
	}
	return nil
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Store) seal(key string, value any) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if len(data) > constants.MaxStoredValueBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrValueTooLarge, key, len(data))
	}
	env := envelope{
		Data:      string(data),
		Checksum:  s.sum.Sum(string(data)),
		Timestamp: s.now().UnixMilli(),
		Nonce:     newNonce(),
	}
	return json.Marshal(env)
}

// SetItem serializes value and stores it under key in a single backend write.
func (s *Store) SetItem(key string, value any) error {
	raw, err := s.seal(key, value)
	if err != nil {
		return err
	}
	if err := s.backend.Set(key, raw); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// SetItems seals every entry before writing any of them, then hands the
// whole set to the backend as one batch.
func (s *Store) SetItems(items map[string]any) error {
	batch := make(map[string][]byte, len(items))
	for key, value := range items {
		raw, err := s.seal(key, value)
		if err != nil {
			return err
		}
		batch[key] = raw
	}
	if err := s.backend.SetBatch(batch); err != nil {
		return fmt.Errorf("failed to store batch: %w", err)
	}
	return nil
}

// GetItem decodes the value stored under key into out. It returns false
// with a nil error when the key is missing, corrupt or expired; the latter two
// are removed from the backend.
func (s *Store) GetItem(key string, out any) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	data, ok := s.open(key, raw, s.sum)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		s.purge(key, "stored value is not valid JSON")
		return false, nil
	}
	return true, nil
}

// open verifies an envelope and returns its payload. Failures purge the key.
func (s *Store) open(key string, raw []byte, sum Checksummer) (string, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.purge(key, "invalid stored data format")
		return "", false
	}
	if sum.Sum(env.Data) != env.Checksum {
		s.purge(key, "data integrity check failed")
		return "", false
	}
	if s.maxAge > 0 {
		age := s.now().Sub(time.UnixMilli(env.Timestamp))
		if age > s.maxAge {
			s.purge(key, "entry expired")
			return "", false
		}
	}
	return env.Data, true
}

// Verify reports the keys whose entries are malformed, fail their checksum
// or have expired. Unlike GetItem it never removes anything.
func (s *Store) Verify() ([]string, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return nil, err
	}
	var bad []string
	for _, key := range keys {
		raw, ok, err := s.backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if !verifies(raw, s.sum) || s.expired(raw) {
			bad = append(bad, key)
		}
	}
	return bad, nil
}

func (s *Store) expired(raw []byte) bool {
	if s.maxAge <= 0 {
		return false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	return s.now().Sub(time.UnixMilli(env.Timestamp)) > s.maxAge
}

// verifies reports whether raw is an envelope sealed with sum.
func verifies(raw []byte, sum Checksummer) bool {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	return sum.Sum(env.Data) == env.Checksum
}

func (s *Store) purge(key, reason string) {
	logger.Warn("Removing corrupted entry", "key", key, "reason", reason)
	if err := s.backend.Delete(key); err != nil {
		logger.Error("Failed to remove corrupted entry", "key", key, "error", err)
	}
}

func (s *Store) RemoveItem(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.backend.Delete(key)
}

func (s *Store) Clear() error {
	return s.backend.Clear()
}

func (s *Store) Keys() ([]string, error) {
	return s.backend.Keys()
}

// Reseal re-verifies every entry with from and rewrites it under the store's
// current checksummer. Entries already sealed with the current checksummer
// are skipped and entries that fail verification are purged. It is used when
// switching integrity modes.
func (s *Store) Reseal(from Checksummer) (int, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return 0, err
	}

	batch := make(map[string][]byte, len(keys))
	for _, key := range keys {
		raw, ok, err := s.backend.Get(key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok || verifies(raw, s.sum) {
			continue
		}
		data, ok := s.open(key, raw, from)
		if !ok {
			continue
		}
		resealed, err := s.seal(key, json.RawMessage(data))
		if err != nil {
			return 0, err
		}
		batch[key] = resealed
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.backend.SetBatch(batch); err != nil {
		return 0, fmt.Errorf("failed to reseal entries: %w", err)
	}
	return len(batch), nil
}
