// Package artwork materializes the box-art image for an exported shortcut.
package artwork

import (
	"bytes"
	_ "embed"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/lobinuxsoft/gamestream-presets/internal/logging"
	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
)

// Output layout under the destination folder.
const (
	AssetsDirName = "StreamingAssets"
	BoxArtFile    = "box-art.png"
)

//go:embed assets/box-art.png
var defaultBoxArt []byte

// Source identifies which branch of the resolution order produced the asset.
type Source int

const (
	SourceNone Source = iota
	SourcePNG
	SourceJPEG
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourcePNG:
		return "grid png"
	case SourceJPEG:
		return "grid jpg"
	case SourceDefault:
		return "default"
	default:
		return "none"
	}
}

// Resolver copies or synthesizes box art from a Steam config directory.
type Resolver struct {
	// ConfigDir holds grid/<appid>p.png and grid/<appid>p.jpg.
	ConfigDir string
	// DefaultAsset overrides the embedded fallback image when set.
	DefaultAsset string
}

// BoxArtDir returns <destDir>/StreamingAssets/<name>.
func BoxArtDir(destDir, name string) string {
	return filepath.Join(destDir, AssetsDirName, name)
}

// BoxArtPath returns <destDir>/StreamingAssets/<name>/box-art.png.
func BoxArtPath(destDir, name string) string {
	return filepath.Join(BoxArtDir(destDir, name), BoxArtFile)
}

// Validate checks that the fallback image can be loaded.
func (r *Resolver) Validate() error {
	_, err := r.defaultAsset()
	return err
}

// Plan reports which source Resolve would use, without writing anything.
func (r *Resolver) Plan(appID uint32) Source {
	if isFile(steam.PortraitGridPath(r.ConfigDir, appID, "png")) {
		return SourcePNG
	}
	if isFile(steam.PortraitGridPath(r.ConfigDir, appID, "jpg")) {
		return SourceJPEG
	}
	return SourceDefault
}

// Resolve writes the box art for appID to BoxArtPath(destDir, name). The
// first existing source wins: grid PNG copied verbatim, grid JPEG transcoded
// to PNG, then the default asset.
func (r *Resolver) Resolve(appID uint32, destDir, name string) (Source, error) {
	logger := logging.Get("artwork")

	dir := BoxArtDir(destDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SourceNone, errors.Wrap(err, errors.ErrIO, "failed to create asset directory").
			WithDetail("path", dir)
	}
	dest := filepath.Join(dir, BoxArtFile)

	source := r.Plan(appID)
	var err error
	switch source {
	case SourcePNG:
		err = copyFile(steam.PortraitGridPath(r.ConfigDir, appID, "png"), dest)
	case SourceJPEG:
		err = transcodeToPNG(steam.PortraitGridPath(r.ConfigDir, appID, "jpg"), dest)
	default:
		var data []byte
		if data, err = r.defaultAsset(); err == nil {
			err = writeFile(dest, data)
		}
	}
	if err != nil {
		return SourceNone, err
	}

	logger.Debug().
		Uint32("appID", appID).
		Str("source", source.String()).
		Str("path", dest).
		Msg("Box art written")
	return source, nil
}

func (r *Resolver) defaultAsset() ([]byte, error) {
	if r.DefaultAsset == "" {
		if len(defaultBoxArt) == 0 {
			return nil, errors.New(errors.ErrAssetMissing, "embedded default box art is empty")
		}
		return defaultBoxArt, nil
	}

	data, err := os.ReadFile(r.DefaultAsset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAssetMissing, "default box art is unavailable").
			WithDetail("path", r.DefaultAsset)
	}
	return data, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to read grid image").WithDetail("path", src)
	}
	return writeFile(dst, data)
}

// transcodeToPNG decodes src and re-encodes its pixels as PNG without
// resampling.
func transcodeToPNG(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to read grid image").WithDetail("path", src)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, errors.ErrImageDecode, "failed to decode grid image").WithDetail("path", src)
	}

	bounds := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to encode png").WithDetail("path", dst)
	}
	return writeFile(dst, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to write box art").WithDetail("path", path)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
