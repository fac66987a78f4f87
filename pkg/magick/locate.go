package magick

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// EnvBinary names the environment variable that overrides binary
// discovery (useful when several ImageMagick builds are installed).
const EnvBinary = "IMFX_MAGICK"

// Locate finds the ImageMagick binary and detects its version. The
// override env var wins; otherwise the IM7 `magick` entrypoint is
// preferred over the classic `convert`.
func Locate(ctx context.Context) (*Tool, error) {
	candidates := []string{"magick", "convert"}
	if override := os.Getenv(EnvBinary); override != "" {
		candidates = []string{override}
	}

	var path string
	for _, c := range candidates {
		p, err := exec.LookPath(c)
		if err == nil {
			path = p
			break
		}
		debugf("lookup %s: %v", c, err)
	}
	if path == "" {
		return nil, fmt.Errorf("ImageMagick not found: install it or point %s at the magick/convert binary", EnvBinary)
	}

	ver, err := DetectVersion(ctx, path)
	if err != nil {
		return nil, err
	}
	debugf("using %s (%s)", path, ver)
	return &Tool{Path: path, Release: ver}, nil
}
