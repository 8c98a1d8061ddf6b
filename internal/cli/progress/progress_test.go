package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/repository"
	"github.com/julianstephens/habitchain/internal/storage"
)

func TestStatsAndBadgesCmd(t *testing.T) {
	ctx := cli.NewContext(config.Default(t.TempDir()), storage.NewMemoryStore())

	// empty store
	require.NoError(t, (&StatsCmd{}).Run(ctx))
	require.NoError(t, (&BadgesCmd{}).Run(ctx))

	repo, err := ctx.Repository()
	require.NoError(t, err)
	require.NoError(t, repo.SaveUserName("Ada"))
	_, err = repo.AddChain(repository.ChainInput{Name: "Morning", Habits: []repository.HabitInput{{Name: "Water"}}})
	require.NoError(t, err)

	require.NoError(t, (&StatsCmd{}).Run(ctx))
	require.NoError(t, (&BadgesCmd{}).Run(ctx))
}
