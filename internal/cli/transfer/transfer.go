package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/repository"
)

type ExportCmd struct {
	Out string `help:"Output file. Use - for stdout. Defaults to a dated file in the current directory." short:"o"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	data, err := repo.ExportJSON()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Out == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	out := c.Out
	if out == "" {
		out = repository.ExportFileName(time.Now())
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("✓ Exported %d chain(s) to %s\n", len(repo.GetChains()), out)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Export file to import." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	info, err := os.Stat(c.File)
	if err != nil {
		return err
	}
	if info.Size() > constants.MaxExportBytes {
		return fmt.Errorf("%s is larger than %d MB", c.File, constants.MaxExportBytes/(1024*1024))
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	// Snapshot the data the import replaces
	ctx.PerformAutomaticBackup()

	if !repo.ImportData(string(data)) {
		return fmt.Errorf("import rejected, see %s for details", logPath(ctx))
	}
	fmt.Printf("✓ Imported %d chain(s) from %s\n", len(repo.GetChains()), c.File)
	return nil
}

type ClearCmd struct {
	Yes bool `help:"Confirm that all data should be removed." short:"y"`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		return errors.New("refusing to clear all data without --yes")
	}
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	if err := repo.ClearAllData(); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	fmt.Println("✓ All data cleared. A backup was written before clearing.")
	return nil
}

func logPath(ctx *cli.Context) string {
	return filepath.Join(ctx.Config.DataDir, "logs", constants.AppName+".log")
}
