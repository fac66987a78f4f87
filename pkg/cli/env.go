package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment knobs:
//
//	IMFX_MAGICK          override ImageMagick binary discovery
//	IMFX_TMPDIR          base directory for intermediate files
//	IMFX_DEBUG           =1 traces tool invocations and preview decisions
//	IMFX_PREVIEW_BACKEND force a preview backend (kitty|inline|sixel|chafa)
//	NO_CHAFA             =1 never shell out to chafa
//
// A .env file in the working directory is loaded on startup so the
// knobs can travel with a project.
var debugEnabled bool

func init() {
	// .env is optional.
	_ = godotenv.Load()

	d := os.Getenv("IMFX_DEBUG")
	if d == "1" || d == "true" {
		debugEnabled = true
	}
}

func debugf(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, "imfx: "+format+"\n", args...)
	}
}
