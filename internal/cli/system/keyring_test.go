package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/keyring"
	"github.com/julianstephens/habitchain/internal/storage"
)

func TestKeyringInitAndDelete(t *testing.T) {
	gokeyring.MockInit()

	backend := storage.NewMemoryStore()
	cfg := config.Default(t.TempDir())
	plain := cli.NewContext(cfg, backend)
	repo, err := plain.Repository()
	require.NoError(t, err)
	require.NoError(t, repo.SaveUserName("Ada"))

	require.NoError(t, (&KeyringStatusCmd{}).Run(plain))
	require.NoError(t, (&KeyringInitCmd{}).Run(plain))
	_, err = keyring.GetIntegrityKey()
	require.NoError(t, err)

	// entries now only open in keyed mode
	cfg.IntegrityMode = constants.IntegrityKeyed
	keyedCtx := cli.NewContext(cfg, backend)
	keyedRepo, err := keyedCtx.Repository()
	require.NoError(t, err)
	assert.Equal(t, "Ada", keyedRepo.GetUserName())

	// running init again keeps the data
	require.NoError(t, (&KeyringInitCmd{}).Run(keyedCtx))
	assert.Equal(t, "Ada", keyedRepo.GetUserName())

	require.NoError(t, (&KeyringDeleteCmd{}).Run(keyedCtx))
	_, err = keyring.GetIntegrityKey()
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	cfg.IntegrityMode = constants.IntegrityChecksum
	back := cli.NewContext(cfg, backend)
	backRepo, err := back.Repository()
	require.NoError(t, err)
	assert.Equal(t, "Ada", backRepo.GetUserName())
}

func TestKeyringDelete_NoKey(t *testing.T) {
	gokeyring.MockInit()
	ctx := cli.NewContext(config.Default(t.TempDir()), storage.NewMemoryStore())
	assert.Error(t, (&KeyringDeleteCmd{}).Run(ctx))
}

func TestKeyedModeWithoutKey(t *testing.T) {
	gokeyring.MockInit()
	cfg := config.Default(t.TempDir())
	cfg.IntegrityMode = constants.IntegrityKeyed
	ctx := cli.NewContext(cfg, storage.NewMemoryStore())

	_, err := ctx.Repository()
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
