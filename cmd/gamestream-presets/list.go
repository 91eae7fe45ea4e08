package main

import (
	"github.com/spf13/cobra"

	"github.com/lobinuxsoft/gamestream-presets/internal/export"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [target]",
		Short: "List the shortcuts in shortcuts.vdf",
		Long:  "Decodes shortcuts.vdf and prints its records. With a target, only records whose Exe contains it are shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			shortcuts, err := steam.LoadShortcutsVDF(steam.ManifestPath(cfg.SteamConfigDir))
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if shortcuts, err = export.Match(shortcuts, args[0]); err != nil {
					return err
				}
			}
			return printerFor(cmd).Shortcuts(shortcuts)
		},
	}
}
