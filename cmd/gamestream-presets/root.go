package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lobinuxsoft/gamestream-presets/internal/export"
	"github.com/lobinuxsoft/gamestream-presets/internal/logging"
	"github.com/lobinuxsoft/gamestream-presets/internal/report"
	"github.com/lobinuxsoft/gamestream-presets/pkg/config"
	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
	"github.com/lobinuxsoft/gamestream-presets/pkg/version"
)

// flagKeys maps command-line flags onto config keys. Only flags the user
// set are applied, so unset flags never mask the file or environment.
var flagKeys = map[string]string{
	"targets":          config.KeyTargets,
	"steam-config-dir": config.KeySteamConfigDir,
	"dest-folder":      config.KeyDestFolder,
	"default-asset":    config.KeyDefaultAsset,
	"writer":           config.KeyLinkWriter,
}

// app holds state shared by every command of one invocation.
type app struct {
	configFile string
	verbosity  int
	logCloser  io.Closer
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

func newRootCommand(a *app) *cobra.Command {
	var dryRun bool

	rootCmd := &cobra.Command{
		Use:   "gamestream-presets",
		Short: "Export Steam non-Steam shortcuts as streaming presets",
		Long: `Reads shortcuts.vdf from a Steam config directory and, for every shortcut
whose executable matches one of the targets, writes a Windows .lnk file and
a StreamingAssets/<name>/box-art.png into the destination folder.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logCloser = logging.Setup(a.verbosity)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, dryRun)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configFile, "config-file", "c", config.DefaultConfigFile, "Configuration file (.ini or .toml)")
	pf.StringP("steam-config-dir", "s", "", "Steam userdata/<id>/config directory holding shortcuts.vdf")
	pf.CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")

	addExportFlags(rootCmd, &dryRun)

	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func addExportFlags(cmd *cobra.Command, dryRun *bool) {
	f := cmd.Flags()
	f.StringP("targets", "t", "", "Comma separated executable paths to match")
	f.StringP("dest-folder", "d", "", "Folder that receives the .lnk files and StreamingAssets")
	f.String("default-asset", "", "PNG used when a shortcut has no grid artwork (default: bundled image)")
	f.String("writer", "", "Link writer: native or shell (Windows only)")
	f.BoolVar(dryRun, "dry-run", false, "Match and print planned outputs without writing")
}

func newExportCommand(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching shortcuts (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, dryRun)
		},
	}
	addExportFlags(cmd, &dryRun)
	return cmd
}

// loadConfig resolves the configuration for cmd, with set flags winning.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	src := config.Source{Overrides: make(map[string]string)}
	if cmd.Flags().Changed("config-file") {
		src.File = a.configFile
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			src.Overrides[key] = f.Value.String()
		}
	}

	cfg, err := config.Load(src)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveSteamConfigDir(systemSteam{}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) runExport(cmd *cobra.Command, dryRun bool) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	writer, err := shelllink.NewWriter(cfg.LinkWriter)
	if err != nil {
		return err
	}

	exporter, err := export.New(export.Options{
		Targets:        cfg.Targets,
		SteamConfigDir: cfg.SteamConfigDir,
		DestFolder:     cfg.DestFolder,
		DefaultAsset:   cfg.DefaultAsset,
		Writer:         writer,
		DryRun:         dryRun,
	})
	if err != nil {
		return err
	}

	results, err := exporter.Run()
	if err != nil {
		return err
	}

	if err := printerFor(cmd).Results(results, dryRun); err != nil {
		return err
	}
	if failures := export.Failures(results); failures != nil {
		return fmt.Errorf("export finished with failures:\n%w", failures)
	}
	return nil
}

// printerFor styles tables for a terminal only when cmd writes to one.
func printerFor(cmd *cobra.Command) *report.Printer {
	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok {
		return report.NewPrinter(f)
	}
	return &report.Printer{Out: out}
}

// systemSteam discovers the config dir of the local Steam installation.
type systemSteam struct{}

func (systemSteam) DiscoverConfigDir() (string, error) {
	paths, err := steam.NewPaths()
	if err != nil {
		return "", err
	}
	return paths.DiscoverConfigDir()
}
