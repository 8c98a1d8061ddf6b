package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/securestore"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show store path."`
	Keys         *DebugKeysCmd         `cmd:"" help:"List raw storage keys."`
	DumpEntry    *DebugDumpEntryCmd    `cmd:"" help:"Dump a raw storage envelope as JSON."`
	DumpChain    *DebugDumpChainCmd    `cmd:"" help:"Dump chain data as JSON."`
	DumpStats    *DebugDumpStatsCmd    `cmd:"" help:"Dump stats data as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	return printJSON(map[string]string{
		"backend": ctx.Config.Backend,
		"path":    ctx.Backend.GetConfigPath(),
	})
}

type DebugKeysCmd struct{}

func (cmd *DebugKeysCmd) Run(ctx *cli.Context) error {
	keys, err := ctx.Backend.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	return printJSON(keys)
}

type DebugDumpEntryCmd struct {
	Key string `arg:"" help:"Storage key to dump."`
}

func (cmd *DebugDumpEntryCmd) Run(ctx *cli.Context) error {
	if !securestore.ValidKey(cmd.Key) {
		return fmt.Errorf("invalid storage key: %q", cmd.Key)
	}
	raw, ok, err := ctx.Backend.Get(cmd.Key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Key, err)
	}
	if !ok {
		return fmt.Errorf("no entry stored under %q", cmd.Key)
	}
	// envelopes are JSON; print them verbatim if they are not
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	return printJSON(v)
}

type DebugDumpChainCmd struct {
	Chain string `arg:"" help:"Chain id or name."`
}

func (cmd *DebugDumpChainCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	chain, err := cli.ResolveChain(repo, cmd.Chain)
	if err != nil {
		return err
	}
	return printJSON(chain)
}

type DebugDumpStatsCmd struct{}

func (cmd *DebugDumpStatsCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	return printJSON(repo.GetStats())
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	return printJSON(repo.GetSettings())
}
