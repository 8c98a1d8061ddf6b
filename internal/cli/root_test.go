package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/keyring"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/securestore"
)

func TestNeedsLock(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"chain add", true},
		{"chain edit <chain>", true},
		{"chain show <chain>", false},
		{"complete <chain>", true},
		{"complete <chain> <habit>", true},
		{"stats", false},
		{"backup restore <backup-file>", true},
		{"backup list", false},
		{"import <file>", true},
		{"debug dump-entry <key>", false},
		{"tui", false},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsLock(tt.command))
		})
	}
}

func TestResolveHabit(t *testing.T) {
	chain := models.HabitChain{
		Name: "Morning",
		Habits: []models.Habit{
			{ID: "habit-water-0001", Name: "Drink water", Position: 0},
			{ID: "habit-walk-00002", Name: "Walk", Position: 1},
		},
	}

	tests := []struct {
		name   string
		ref    string
		wantID string
	}{
		{"by id", "habit-walk-00002", "habit-walk-00002"},
		{"by name", "drink WATER", "habit-water-0001"},
		{"by name with spaces", "  walk ", "habit-walk-00002"},
		{"by position", "2", "habit-walk-00002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ResolveHabit(chain, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, h.ID)
		})
	}

	for _, ref := range []string{"0", "3", "Read"} {
		_, err := ResolveHabit(chain, ref)
		assert.Error(t, err, "ref %q", ref)
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░", ProgressBar(0, 0, 4))
	assert.Equal(t, "██░░", ProgressBar(1, 2, 4))
	assert.Equal(t, "████", ProgressBar(3, 3, 4))
}

func TestChecksummer(t *testing.T) {
	gokeyring.MockInit()

	sum, err := Checksummer("")
	require.NoError(t, err)
	assert.IsType(t, securestore.RollingChecksum{}, sum)

	_, err = Checksummer(constants.IntegrityKeyed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, keyring.ErrNotFound))

	_, _, err = keyring.EnsureIntegrityKey()
	require.NoError(t, err)
	sum, err = Checksummer(constants.IntegrityKeyed)
	require.NoError(t, err)
	assert.Equal(t, constants.IntegrityKeyed, sum.Mode())
	require.NoError(t, keyring.DeleteIntegrityKey())

	_, err = Checksummer("rot13")
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	orig := Stdin
	t.Cleanup(func() { Stdin = orig })

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		Stdin = strings.NewReader(tt.input)
		got, err := Confirm("Continue?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
