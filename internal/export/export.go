// Package export turns matching Steam shortcuts into shell links and box art
// for a game streaming front-end.
package export

import (
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lobinuxsoft/gamestream-presets/internal/artwork"
	"github.com/lobinuxsoft/gamestream-presets/internal/logging"
	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
)

// Options are the already-resolved inputs of one export run.
type Options struct {
	Targets        []string
	SteamConfigDir string
	DestFolder     string
	// DefaultAsset replaces the embedded fallback box art when set.
	DefaultAsset string
	// Writer persists links; nil selects shelllink.NativeWriter.
	Writer shelllink.Writer
	// DryRun matches and plans output paths without writing anything.
	DryRun bool
}

// Item is the outcome for one matched shortcut.
type Item struct {
	AppID      uint32
	AppName    string
	Label      string // sanitized name used for file names
	LinkPath   string
	BoxArtPath string
	Source     artwork.Source
	Err        error
}

// Result is the outcome for one target.
type Result struct {
	Target string
	Items  []Item
	// Err is a target-level failure: unreadable manifest or no match.
	Err error
}

// Failed reports whether the target or any of its items failed.
func (r Result) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, it := range r.Items {
		if it.Err != nil {
			return true
		}
	}
	return false
}

// Errors returns the target error followed by item errors.
func (r Result) Errors() []error {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	for _, it := range r.Items {
		if it.Err != nil {
			errs = append(errs, it.Err)
		}
	}
	return errs
}

// Failures joins every failure across results, each prefixed with its
// target. It returns nil when all targets succeeded.
func Failures(results []Result) error {
	var errs []error
	for _, r := range results {
		for _, err := range r.Errors() {
			errs = append(errs, fmt.Errorf("target %q: %w", r.Target, err))
		}
	}
	return stderrors.Join(errs...)
}

// Exporter runs the decode, match, link and artwork steps.
type Exporter struct {
	opts     Options
	writer   shelllink.Writer
	resolver *artwork.Resolver
	runID    string
	logger   zerolog.Logger
}

// New validates opts and returns an Exporter.
func New(opts Options) (*Exporter, error) {
	if len(opts.Targets) == 0 {
		return nil, errors.New(errors.ErrConfig, "no targets given")
	}
	if opts.SteamConfigDir == "" {
		return nil, errors.New(errors.ErrConfig, "steam config dir is empty")
	}
	if opts.DestFolder == "" {
		return nil, errors.New(errors.ErrConfig, "destination folder is empty")
	}

	writer := opts.Writer
	if writer == nil {
		writer = shelllink.NativeWriter{}
	}

	runID := uuid.NewString()
	return &Exporter{
		opts:   opts,
		writer: writer,
		resolver: &artwork.Resolver{
			ConfigDir:    opts.SteamConfigDir,
			DefaultAsset: opts.DefaultAsset,
		},
		runID:  runID,
		logger: logging.Get("export").With().Str("run", runID).Logger(),
	}, nil
}

// RunID identifies this run in log output.
func (e *Exporter) RunID() string { return e.runID }

// Run processes every target independently and returns one Result per
// target, in order. The returned error is reserved for conditions that stop
// the whole run: a missing default asset or a busy destination folder.
func (e *Exporter) Run() ([]Result, error) {
	e.logger.Info().
		Strs("targets", e.opts.Targets).
		Str("steamConfigDir", e.opts.SteamConfigDir).
		Str("destFolder", e.opts.DestFolder).
		Bool("dryRun", e.opts.DryRun).
		Msg("Starting export")

	if err := e.resolver.Validate(); err != nil {
		return nil, err
	}

	if !e.opts.DryRun {
		unlock, err := lockDest(e.opts.DestFolder)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	manifest := steam.ManifestPath(e.opts.SteamConfigDir)
	shortcuts, loadErr := steam.LoadShortcutsVDF(manifest)
	if loadErr != nil {
		e.logger.Error().Err(loadErr).Str("path", manifest).Msg("Failed to load shortcuts")
	} else {
		e.logger.Debug().Int("count", len(shortcuts)).Str("path", manifest).Msg("Shortcuts decoded")
	}

	results := make([]Result, 0, len(e.opts.Targets))
	for _, target := range e.opts.Targets {
		res := Result{Target: target}
		if loadErr != nil {
			res.Err = loadErr
			results = append(results, res)
			continue
		}

		matched, err := Match(shortcuts, target)
		if err != nil {
			e.logger.Warn().Str("target", target).Msg("Target does not exist in shortcuts")
			res.Err = err
			results = append(results, res)
			continue
		}

		for _, sc := range matched {
			item := e.exportOne(target, sc)
			res.Items = append(res.Items, item)
			if errors.IsCode(item.Err, errors.ErrAssetMissing) {
				results = append(results, res)
				return results, item.Err
			}
		}
		results = append(results, res)
	}

	e.logger.Info().Int("targets", len(results)).Bool("failed", Failures(results) != nil).Msg("Export finished")
	return results, nil
}

func (e *Exporter) exportOne(target string, sc steam.Shortcut) Item {
	label := Sanitize(sc.AppName)
	item := Item{
		AppID:      sc.AppID,
		AppName:    sc.AppName,
		Label:      label,
		LinkPath:   LinkPath(e.opts.DestFolder, label),
		BoxArtPath: artwork.BoxArtPath(e.opts.DestFolder, label),
	}
	logger := e.logger.With().Str("target", target).Uint32("appID", sc.AppID).Str("name", sc.AppName).Logger()

	if e.opts.DryRun {
		item.Source = e.resolver.Plan(sc.AppID)
		logger.Info().Str("link", item.LinkPath).Str("boxArt", item.BoxArtPath).Msg("Would export shortcut")
		return item
	}

	if err := e.writer.WriteLink(item.LinkPath, BuildLink(target, sc)); err != nil {
		logger.Error().Err(err).Msg("Failed to write link")
		item.Err = err
		return item
	}

	source, err := e.resolver.Resolve(sc.AppID, e.opts.DestFolder, label)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write box art")
		item.Err = err
		return item
	}
	item.Source = source

	logger.Info().Str("link", item.LinkPath).Str("boxArt", source.String()).Msg("Exported shortcut")
	return item
}
