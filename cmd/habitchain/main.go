package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/cli/backups"
	"github.com/julianstephens/habitchain/internal/cli/chains"
	"github.com/julianstephens/habitchain/internal/cli/progress"
	"github.com/julianstephens/habitchain/internal/cli/settings"
	"github.com/julianstephens/habitchain/internal/cli/system"
	"github.com/julianstephens/habitchain/internal/cli/transfer"
	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/lock"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	DataDir string `help:"Directory holding the store, backups and logs." type:"string" default:"~/.config/habitchain" env:"HABITCHAIN_DATA_DIR"`
	Config  string `help:"Config file path (defaults to <data-dir>/config.yaml)." type:"string"`
	Backend string `help:"Storage backend override (sqlite, badger, memory)."`
	Debug   bool   `help:"Enable debug logging."`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitchain storage."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Complete chains.CompleteCmd   `cmd:"" help:"Complete the next habit of a chain."`
	Stats    progress.StatsCmd    `cmd:"" help:"Show XP, level and streaks."`
	Badges   progress.BadgesCmd   `cmd:"" help:"Show unlocked and locked badges."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Export   transfer.ExportCmd   `cmd:"" help:"Export all data to a JSON file."`
	Import   transfer.ImportCmd   `cmd:"" help:"Replace all data with an exported JSON file."`
	Clear    transfer.ClearCmd    `cmd:"" help:"Delete all chains, stats and settings."`
	DebugCmd system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting." hidden:""`
	Chain    struct {
		Add    chains.ChainAddCmd    `cmd:"" help:"Add a new chain."`
		Edit   chains.ChainEditCmd   `cmd:"" help:"Edit an existing chain."`
		Delete chains.ChainDeleteCmd `cmd:"" help:"Delete a chain."`
		List   chains.ChainListCmd   `cmd:"" help:"List all chains."`
		Show   chains.ChainShowCmd   `cmd:"" help:"Show a chain and its habits."`
	} `cmd:"" help:"Manage habit chains."`
	User struct {
		Set  settings.UserSetCmd  `cmd:"" help:"Set your display name."`
		Show settings.UserShowCmd `cmd:"" help:"Show your display name."`
	} `cmd:"" help:"Manage the user profile."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	Keyring struct {
		Init   system.KeyringInitCmd   `cmd:"" help:"Create the integrity key and switch stored data to keyed checksums."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show whether an integrity key is stored."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Reseal data with plain checksums and delete the integrity key."`
	} `cmd:"" help:"Manage the OS keyring integrity key."`
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified habit chains: complete habits in order, earn XP, keep your streak."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := run(ctx); err != nil {
		apperrors.Fatal(err)
	}
}

func run(ctx *kong.Context) error {
	dataDir := expandHome(CLI.DataDir)
	configPath := CLI.Config
	if configPath != "" {
		configPath = expandHome(configPath)
	}

	cfg, err := config.Load(dataDir, configPath)
	if err != nil {
		return err
	}
	if CLI.Backend != "" {
		cfg.Backend = CLI.Backend
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:   CLI.Debug,
		DataDir: dataDir,
		Quiet:   command == "tui",
	}); err != nil {
		return err
	}

	backend, err := storage.New(cfg.Backend, dataDir)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.Lock && cli.NeedsLock(command) {
		l, err := lock.Acquire(dataDir)
		if err != nil {
			return err
		}
		defer l.Release()
	}

	// Load the store before running the command (Init command will handle its own loading).
	// The memory backend starts empty every run.
	if command != "init" {
		load := backend.Load
		if cfg.Backend == constants.BackendMemory {
			load = backend.Init
		}
		if err := load(); err != nil {
			return err
		}
	}

	return ctx.Run(cli.NewContext(cfg, backend))
}
