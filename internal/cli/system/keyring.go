package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/keyring"
	"github.com/julianstephens/habitchain/internal/securestore"
)

// KeyringInitCmd creates the integrity key and reseals stored entries with it
type KeyringInitCmd struct{}

func (cmd *KeyringInitCmd) Run(ctx *cli.Context) error {
	key, created, err := keyring.EnsureIntegrityKey()
	if err != nil {
		return fmt.Errorf("failed to prepare integrity key: %w", err)
	}
	keyed, err := securestore.NewKeyedChecksum(key)
	if err != nil {
		return err
	}

	store := securestore.New(ctx.Backend, securestore.Options{Checksummer: keyed})
	n, err := store.Reseal(securestore.RollingChecksum{})
	if err != nil {
		return fmt.Errorf("failed to reseal entries: %w", err)
	}

	if created {
		fmt.Println("✓ Integrity key generated and stored in OS keyring")
	} else {
		fmt.Println("✓ Using existing integrity key from OS keyring")
	}
	fmt.Printf("✓ Resealed %d entr(y/ies) with the keyed checksum\n", n)
	if ctx.Config.IntegrityMode != constants.IntegrityKeyed {
		fmt.Printf("  Set integrity_mode: keyed in your config or export %sINTEGRITY_MODE=keyed\n", constants.EnvPrefix)
	}
	return nil
}

// KeyringDeleteCmd reseals entries with the plain checksum and removes the key
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	key, err := keyring.GetIntegrityKey()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no integrity key found in keyring")
		}
		return fmt.Errorf("failed to retrieve integrity key from keyring: %w", err)
	}
	keyed, err := securestore.NewKeyedChecksum(key)
	if err != nil {
		return err
	}

	store := securestore.New(ctx.Backend, securestore.Options{Checksummer: securestore.RollingChecksum{}})
	n, err := store.Reseal(keyed)
	if err != nil {
		return fmt.Errorf("failed to reseal entries: %w", err)
	}

	if err := keyring.DeleteIntegrityKey(); err != nil {
		return fmt.Errorf("failed to delete integrity key from keyring: %w", err)
	}

	fmt.Printf("✓ Resealed %d entr(y/ies) with the plain checksum\n", n)
	fmt.Println("✓ Integrity key deleted from OS keyring")
	if ctx.Config.IntegrityMode == constants.IntegrityKeyed {
		fmt.Println("  Set integrity_mode: checksum in your config before running habitchain again")
	}
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	_, err := keyring.GetIntegrityKey()
	switch {
	case err == nil:
		fmt.Println("✓ Integrity key is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("ℹ No integrity key stored in keyring")
	default:
		fmt.Printf("❌ Integrity key is unusable: %v\n", err)
	}
	fmt.Printf("  Integrity mode: %s\n", ctx.Config.IntegrityMode)
	return nil
}
