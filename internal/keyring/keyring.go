package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitchain/internal/constants"
)

var (
	// ErrNotFound is returned when no integrity key is stored in the keyring
	ErrNotFound = errors.New("integrity key not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrMalformedKey is returned when the stored value is not a hex key of the expected size
	ErrMalformedKey = errors.New("stored integrity key is malformed")
)

// GetIntegrityKey retrieves the keyed-checksum secret from the OS keyring.
// Returns ErrNotFound if no key is stored.
func GetIntegrityKey() ([]byte, error) {
	encoded, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	key, err := hex.DecodeString(encoded)
	if err != nil || len(key) != constants.IntegrityKeyBytes {
		return nil, ErrMalformedKey
	}
	return key, nil
}

// SetIntegrityKey stores key, hex encoded, in the OS keyring.
func SetIntegrityKey(key []byte) error {
	if len(key) != constants.IntegrityKeyBytes {
		return fmt.Errorf("integrity key must be %d bytes, got %d", constants.IntegrityKeyBytes, len(key))
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, hex.EncodeToString(key)); err != nil {
		return fmt.Errorf("failed to store integrity key in keyring: %w", err)
	}
	return nil
}

// EnsureIntegrityKey returns the stored key, generating and storing a new
// one when none exists. created reports whether a new key was written.
func EnsureIntegrityKey() (key []byte, created bool, err error) {
	key, err = GetIntegrityKey()
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	key = make([]byte, constants.IntegrityKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate integrity key: %w", err)
	}
	if err := SetIntegrityKey(key); err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// DeleteIntegrityKey removes the integrity key from the OS keyring.
func DeleteIntegrityKey() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete integrity key from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered, it just has no such entry
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
