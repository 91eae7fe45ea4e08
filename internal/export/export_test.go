package export

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobinuxsoft/gamestream-presets/internal/artwork"
	"github.com/lobinuxsoft/gamestream-presets/internal/testutil"
	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
)

// failingWriter rejects links for one target path.
type failingWriter struct {
	failPath string
	inner    shelllink.Writer
}

func (w failingWriter) WriteLink(path string, l *shelllink.Link) error {
	if path == w.failPath {
		return errors.New(errors.ErrIO, "disk full").WithDetail("path", path)
	}
	return w.inner.WriteLink(path, l)
}

func newExporter(t *testing.T, opts Options) *Exporter {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no targets", Options{SteamConfigDir: "s", DestFolder: "d"}},
		{"no steam dir", Options{Targets: []string{"x"}, DestFolder: "d"}},
		{"no dest", Options{Targets: []string{"x"}, SteamConfigDir: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestNew_RunID(t *testing.T) {
	opts := Options{Targets: []string{"x"}, SteamConfigDir: "s", DestFolder: "d"}
	a, b := newExporter(t, opts), newExporter(t, opts)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestRun_EndToEnd(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir,
		testutil.Record(42, "My:Game", `"C:\g.exe" -x`, `C:\`, `C:\g.ico`),
	)

	e := newExporter(t, Options{
		Targets:        []string{`C:\g.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
	})
	results, err := e.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, Failures(results))

	res := results[0]
	assert.Equal(t, `C:\g.exe`, res.Target)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, uint32(42), item.AppID)
	assert.Equal(t, "MyGame", item.Label)
	assert.Equal(t, artwork.SourceDefault, item.Source)
	assert.Equal(t, filepath.Join(dest, "MyGame.lnk"), item.LinkPath)
	assert.Equal(t, filepath.Join(dest, "StreamingAssets", "MyGame", "box-art.png"), item.BoxArtPath)

	link, err := shelllink.ReadFile(item.LinkPath)
	require.NoError(t, err)
	assert.Equal(t, `C:\g.exe`, link.Target)
	assert.Equal(t, " -x", link.Arguments)
	assert.Equal(t, `C:\g.ico`, link.IconLocation)
	assert.Equal(t, "My:Game", link.Name)
	assert.Equal(t, `C:\`, link.WorkingDir)

	art, err := os.ReadFile(item.BoxArtPath)
	require.NoError(t, err)
	assert.NotEmpty(t, art)

	_, err = os.Stat(filepath.Join(dest, LockFile))
	assert.True(t, os.IsNotExist(err), "lock file is removed after the run")
}

func TestRun_GridArtwork(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir,
		testutil.Record(7, "Zelda", `"D:\emu.exe" "z.nsp"`, `D:\`, ""),
		testutil.Record(8, "Mario", `"D:\emu.exe" "m.nsp"`, `D:\`, ""),
	)
	pngData := testutil.PNGBytes(t, 20, 30)
	testutil.WriteFile(t, filepath.Join(configDir, "grid", "7p.png"), pngData)
	testutil.WriteFile(t, filepath.Join(configDir, "grid", "8p.jpg"), testutil.JPEGBytes(t, 20, 30))

	results, err := newExporter(t, Options{
		Targets:        []string{`D:\emu.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
	}).Run()
	require.NoError(t, err)
	require.NoError(t, Failures(results))
	require.Len(t, results[0].Items, 2)

	zelda, mario := results[0].Items[0], results[0].Items[1]
	assert.Equal(t, artwork.SourcePNG, zelda.Source)
	assert.Equal(t, artwork.SourceJPEG, mario.Source)

	got, err := os.ReadFile(zelda.BoxArtPath)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pngData, got))

	link, err := shelllink.ReadFile(mario.LinkPath)
	require.NoError(t, err)
	assert.Equal(t, ` "m.nsp"`, link.Arguments)
}

func TestRun_TargetsAreIndependent(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir,
		testutil.Record(1, "Alpha", `"C:\a.exe"`, `C:\`, ""),
		testutil.Record(2, "Beta", `"C:\b.exe"`, `C:\`, ""),
	)

	results, err := newExporter(t, Options{
		Targets:        []string{`C:\a.exe`, `C:\missing.exe`, `C:\b.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
	}).Run()
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.True(t, errors.IsCode(results[1].Err, errors.ErrNoMatch))
	assert.False(t, results[2].Failed())

	for _, name := range []string{"Alpha.lnk", "Beta.lnk"} {
		_, err := os.Stat(filepath.Join(dest, name))
		assert.NoError(t, err, name)
	}

	failures := Failures(results)
	require.Error(t, failures)
	assert.Contains(t, failures.Error(), `target "C:\\missing.exe"`)
	assert.True(t, errors.IsCode(failures, errors.ErrNoMatch))
}

func TestRun_ManifestErrorFailsEveryTarget(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "shortcuts.vdf"), []byte{0x00, 's'}, 0644))

	results, err := newExporter(t, Options{
		Targets:        []string{"a", "b"},
		SteamConfigDir: configDir,
		DestFolder:     t.TempDir(),
	}).Run()
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, errors.IsCode(r.Err, errors.ErrManifestFormat), "target %s", r.Target)
		assert.Empty(t, r.Items)
	}
}

func TestRun_MissingManifest(t *testing.T) {
	results, err := newExporter(t, Options{
		Targets:        []string{"a"},
		SteamConfigDir: t.TempDir(),
		DestFolder:     t.TempDir(),
	}).Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, errors.IsCode(results[0].Err, errors.ErrIO))
}

func TestRun_ItemFailureDoesNotStopOthers(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir,
		testutil.Record(1, "Alpha", `"C:\e.exe" 1`, `C:\`, ""),
		testutil.Record(2, "Beta", `"C:\e.exe" 2`, `C:\`, ""),
	)

	results, err := newExporter(t, Options{
		Targets:        []string{`C:\e.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
		Writer:         failingWriter{failPath: filepath.Join(dest, "Alpha.lnk"), inner: shelllink.NativeWriter{}},
	}).Run()
	require.NoError(t, err)
	require.Len(t, results[0].Items, 2)

	assert.True(t, errors.IsCode(results[0].Items[0].Err, errors.ErrIO))
	assert.NoError(t, results[0].Items[1].Err)
	assert.True(t, results[0].Failed())
	assert.Len(t, results[0].Errors(), 1)

	_, err = os.Stat(artwork.BoxArtPath(dest, "Alpha"))
	assert.True(t, os.IsNotExist(err), "no art for a shortcut whose link failed")
	_, err = os.Stat(artwork.BoxArtPath(dest, "Beta"))
	assert.NoError(t, err)
}

func TestRun_EncodeErrorIsPerItem(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	longTarget := `C:\` + strings.Repeat("a", shelllink.MaxTargetLength) + `.exe`
	testutil.WriteManifest(t, configDir,
		testutil.Record(1, "Long", `"`+longTarget+`"`, `C:\`, ""),
		testutil.Record(2, "Short", `"C:\e.exe"`, `C:\`, ""),
	)

	results, err := newExporter(t, Options{
		Targets:        []string{longTarget, `C:\e.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
	}).Run()
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, results[0].Items, 1)
	assert.True(t, errors.IsCode(results[0].Items[0].Err, errors.ErrEncode))
	assert.False(t, results[1].Failed())
}

func TestRun_EmptyLabel(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir,
		testutil.Record(3, `:*?`, `"C:\e.exe"`, `C:\`, ""),
	)

	results, err := newExporter(t, Options{
		Targets:        []string{`C:\e.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
	}).Run()
	require.NoError(t, err)
	require.NoError(t, Failures(results))

	_, err = os.Stat(filepath.Join(dest, ".lnk"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, "StreamingAssets", "box-art.png"))
	assert.NoError(t, err)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir,
		testutil.Record(42, "My:Game", `"C:\g.exe" -x`, `C:\`, ""),
	)
	testutil.WriteFile(t, filepath.Join(configDir, "grid", "42p.jpg"), testutil.JPEGBytes(t, 4, 4))

	results, err := newExporter(t, Options{
		Targets:        []string{`C:\g.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
		DryRun:         true,
	}).Run()
	require.NoError(t, err)
	require.Len(t, results[0].Items, 1)

	item := results[0].Items[0]
	assert.Equal(t, artwork.SourceJPEG, item.Source)
	assert.Equal(t, filepath.Join(dest, "MyGame.lnk"), item.LinkPath)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_DestinationLocked(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir, testutil.Record(1, "A", `"C:\a.exe"`, `C:\`, ""))

	unlock, err := lockDest(dest)
	require.NoError(t, err)
	defer unlock()

	_, err = newExporter(t, Options{
		Targets:        []string{`C:\a.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
	}).Run()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLocked))
}

func TestLockDest_ReleaseRemovesFile(t *testing.T) {
	dest := t.TempDir()

	unlock, err := lockDest(dest)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, LockFile))
	require.NoError(t, err)

	unlock()
	_, err = os.Stat(filepath.Join(dest, LockFile))
	assert.True(t, os.IsNotExist(err))

	again, err := lockDest(dest)
	require.NoError(t, err, "destination can be locked again after release")
	again()
}

func TestRun_MissingDestinationFolder(t *testing.T) {
	configDir := t.TempDir()
	testutil.WriteManifest(t, configDir, testutil.Record(1, "A", `"C:\a.exe"`, `C:\`, ""))

	_, err := newExporter(t, Options{
		Targets:        []string{`C:\a.exe`},
		SteamConfigDir: configDir,
		DestFolder:     filepath.Join(t.TempDir(), "nope"),
	}).Run()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
}

func TestRun_DefaultAssetMissingAborts(t *testing.T) {
	configDir, dest := t.TempDir(), t.TempDir()
	testutil.WriteManifest(t, configDir, testutil.Record(1, "A", `"C:\a.exe"`, `C:\`, ""))

	results, err := newExporter(t, Options{
		Targets:        []string{`C:\a.exe`},
		SteamConfigDir: configDir,
		DestFolder:     dest,
		DefaultAsset:   filepath.Join(t.TempDir(), "gone.png"),
	}).Run()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAssetMissing))
	assert.Nil(t, results)

	_, statErr := os.Stat(filepath.Join(dest, "A.lnk"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written before the asset check")
}

func TestFailures_Empty(t *testing.T) {
	assert.NoError(t, Failures(nil))
	assert.NoError(t, Failures([]Result{{Target: "a", Items: []Item{{AppID: 1}}}}))

	err := Failures([]Result{{Target: "a", Err: stderrors.New("boom")}})
	require.Error(t, err)
	assert.Equal(t, `target "a": boom`, err.Error())
}
