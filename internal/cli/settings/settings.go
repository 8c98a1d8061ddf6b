package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/models"
)

type SettingsCmd struct {
	List bool     `help:"List current settings."`
	Set  []string `help:"Update a setting, as <key>=<value>. Repeat for several settings." placeholder:"KEY=VALUE"`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	settings := repo.GetSettings()

	if c.List || len(c.Set) == 0 {
		printSettings(settings)
		if len(c.Set) == 0 && !c.List {
			fmt.Println("\nUse --set key=value to change a setting.")
		}
		return nil
	}

	for _, arg := range c.Set {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, expected <key>=<value>", arg)
		}
		if err := models.ApplySetting(&settings, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return err
		}
	}

	if err := repo.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func printSettings(settings models.AppSettings) {
	values := models.SettingsToMap(settings)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Current Settings:")
	for _, k := range keys {
		fmt.Printf("  %-22s %s\n", k+":", values[k])
	}
}

type UserSetCmd struct {
	Name string `arg:"" help:"Display name."`
}

func (c *UserSetCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	if err := repo.SaveUserName(c.Name); err != nil {
		return fmt.Errorf("failed to save user name: %w", err)
	}
	fmt.Printf("✓ User name set to %q\n", repo.GetUserName())
	return nil
}

type UserShowCmd struct{}

func (c *UserShowCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	name := repo.GetUserName()
	if name == "" {
		fmt.Println("No user name set. Use 'habitchain user set <name>'.")
		return nil
	}
	fmt.Println(name)
	return nil
}
