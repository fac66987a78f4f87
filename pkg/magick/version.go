package magick

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/blang/semver"
)

// Version describes the installed ImageMagick release. Banner is the raw
// first line of `<tool> -version`, Release the parsed semantic version
// (the "-NN" suffix is carried as the tweak), and Token an integer
// encoding (major*1e6 + minor*1e4 + patch*1e2 + tweak) convenient for
// display and coarse comparisons.
type Version struct {
	Banner  string
	Release semver.Version
	Tweak   int
	Token   int
}

func (v Version) String() string {
	return fmt.Sprintf("%s-%d", v.Release, v.Tweak)
}

// IsIM7 reports whether the installed release uses the unified `magick`
// command-line surface introduced in ImageMagick 7.
func (v Version) IsIM7() bool {
	return v.Release.Major >= 7
}

// versionRe matches the release in banners like
// "Version: ImageMagick 6.9.10-23 Q16 x86_64 2019-11-12 https://imagemagick.org"
// and "Version: ImageMagick 7.1.1-15 Q16-HDRI x86_64 ...".
var versionRe = regexp.MustCompile(`ImageMagick (\d+)\.(\d+)\.(\d+)(?:-(\d+))?`)

// ParseVersion extracts the release from a `-version` banner.
func ParseVersion(banner string) (Version, error) {
	m := versionRe.FindStringSubmatch(banner)
	if m == nil {
		return Version{}, fmt.Errorf("unrecognized ImageMagick version banner: %q", banner)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	tweak := 0
	if m[4] != "" {
		tweak, _ = strconv.Atoi(m[4])
	}
	rel, err := semver.Parse(fmt.Sprintf("%d.%d.%d", major, minor, patch))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version in banner %q: %w", banner, err)
	}
	return Version{
		Banner:  banner,
		Release: rel,
		Tweak:   tweak,
		Token:   major*1_000_000 + minor*10_000 + patch*100 + tweak,
	}, nil
}

// Boundaries of the release window in which grayscale/gradient math runs
// in sRGB unless the colorspace is pinned back to linear RGB. Releases
// before 6.7.7 behaved linearly already and ImageMagick 7 restored a
// consistent default.
var (
	srgbSwitchLo = semver.MustParse("6.7.7")
	srgbSwitchHi = semver.MustParse("7.0.0")
)

// SetColorspaceArgs returns the argument triple that pins intermediate
// grayscale processing to linear RGB on the releases that need it, or
// nil when the installed release already behaves that way.
func (v Version) SetColorspaceArgs() []string {
	if v.Release.GTE(srgbSwitchLo) && v.Release.LT(srgbSwitchHi) {
		return []string{"-set", "colorspace", "RGB"}
	}
	return nil
}

// DetectVersion runs `<path> -version` and parses the banner.
func DetectVersion(ctx context.Context, path string) (Version, error) {
	out, err := runOutput(ctx, path, "-version")
	if err != nil {
		return Version{}, fmt.Errorf("query %s version: %w", path, err)
	}
	return ParseVersion(out)
}
