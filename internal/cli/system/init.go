package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting existing data before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Config.Backend != constants.BackendMemory {
		path := ctx.Backend.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			// close first to release file locks
			if err := ctx.Backend.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := removeStore(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			fmt.Printf("Deleted existing data at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Backend.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitchain storage at: %s\n", ctx.Backend.GetConfigPath())
	return nil
}

// removeStore deletes a SQLite file with its WAL side files, or a Badger
// directory.
func removeStore(path string) error {
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return os.RemoveAll(path)
}
