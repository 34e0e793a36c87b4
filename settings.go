package compositor

import (
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/compositor/internal/gpu"
	"github.com/gogpu/compositor/primitive"
	"github.com/gogpu/compositor/text"
)

// EnvAntialiasing names the environment variable read by SettingsFromEnv.
const EnvAntialiasing = "COMPOSITOR_ANTIALIASING"

// Antialiasing selects multisampling for meshes. Quads and text compute
// their own coverage and are not affected.
type Antialiasing uint8

// Antialiasing modes.
const (
	AntialiasingNone Antialiasing = iota
	AntialiasingMSAAx2
	AntialiasingMSAAx4
	AntialiasingMSAAx8
)

// SampleCount returns the number of samples per pixel.
func (a Antialiasing) SampleCount() uint32 {
	switch a {
	case AntialiasingMSAAx2:
		return 2
	case AntialiasingMSAAx4:
		return 4
	case AntialiasingMSAAx8:
		return 8
	default:
		return 1
	}
}

// String returns the name accepted by ParseAntialiasing.
func (a Antialiasing) String() string {
	switch a {
	case AntialiasingNone:
		return "none"
	case AntialiasingMSAAx2:
		return "msaa2x"
	case AntialiasingMSAAx4:
		return "msaa4x"
	case AntialiasingMSAAx8:
		return "msaa8x"
	default:
		return fmt.Sprintf("Antialiasing(%d)", a)
	}
}

// ParseAntialiasing parses "none", "msaa2x", "msaa4x" or "msaa8x",
// ignoring case.
func ParseAntialiasing(s string) (Antialiasing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AntialiasingNone, nil
	case "msaa2x":
		return AntialiasingMSAAx2, nil
	case "msaa4x":
		return AntialiasingMSAAx4, nil
	case "msaa8x":
		return AntialiasingMSAAx8, nil
	}
	return AntialiasingNone, fmt.Errorf("%w: %q", ErrUnknownAntialiasing, s)
}

// Settings configures a Backend.
type Settings struct {
	// Antialiasing is the multisampling applied to meshes.
	Antialiasing Antialiasing

	// StagingChunkSize is the initial capacity of the staging belt in
	// bytes. The belt grows when a frame needs more.
	StagingChunkSize uint64

	// DefaultTextSize is used for text with no size.
	DefaultTextSize float32

	// DefaultFont is used for text with no font family.
	DefaultFont primitive.Font

	// ImageCacheBudget is the texture memory the image cache keeps before
	// evicting least recently used images.
	ImageCacheBudget uint64
}

// DefaultSettings returns the settings used when no option is given.
func DefaultSettings() Settings {
	return Settings{
		Antialiasing:     AntialiasingNone,
		StagingChunkSize: gpu.DefaultStagingChunkSize,
		DefaultTextSize:  16,
		DefaultFont:      primitive.Font{Family: text.DefaultFamily},
		ImageCacheBudget: gpu.DefaultImageCacheBudget,
	}
}

// SettingsFromEnv returns DefaultSettings with the antialiasing mode taken
// from the COMPOSITOR_ANTIALIASING environment variable, if set.
func SettingsFromEnv() (Settings, error) {
	s := DefaultSettings()
	if v, ok := os.LookupEnv(EnvAntialiasing); ok {
		aa, err := ParseAntialiasing(v)
		if err != nil {
			return s, fmt.Errorf("compositor: %s: %w", EnvAntialiasing, err)
		}
		s.Antialiasing = aa
	}
	return s, nil
}
