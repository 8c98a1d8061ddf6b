package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/repository"
	"github.com/julianstephens/habitchain/internal/storage"
)

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t, constants.BackendSQLite)
	defer cleanup()
	require.NoError(t, (&InitCmd{}).Run(ctx))

	repo, err := ctx.Repository()
	require.NoError(t, err)
	_, err = repo.AddChain(repository.ChainInput{Name: "Morning", Habits: []repository.HabitInput{{Name: "Water"}}})
	require.NoError(t, err)

	// missing backups only warn
	assert.NoError(t, (&DoctorCmd{}).Run(ctx))
}

func TestDoctorCmd_NotInitialized(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t, constants.BackendSQLite)
	defer cleanup()

	assert.Error(t, (&DoctorCmd{}).Run(ctx))
}

func TestDoctorCmd_CorruptEntry(t *testing.T) {
	backend := storage.NewMemoryStore()
	ctx := cli.NewContext(config.Default(t.TempDir()), backend)
	require.NoError(t, backend.Set(constants.KeyChains, []byte(`{"data":"[]","checksum":"bogus","timestamp":0,"nonce":"n"}`)))

	assert.Error(t, checkEntryIntegrity(ctx))
	assert.Error(t, (&DoctorCmd{}).Run(ctx))

	// doctor reports but never repairs
	_, ok, err := backend.Get(constants.KeyChains)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckChains(t *testing.T) {
	ctx := cli.NewContext(config.Default(t.TempDir()), storage.NewMemoryStore())
	repo, err := ctx.Repository()
	require.NoError(t, err)
	_, err = repo.AddChain(repository.ChainInput{Name: "Morning", Habits: []repository.HabitInput{{Name: "Water"}, {Name: "Stretch"}}})
	require.NoError(t, err)

	assert.NoError(t, checkChains(ctx))
}
