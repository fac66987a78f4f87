package magick

import (
	"fmt"
	"os"
)

// debugEnabled reports whether IMFX_DEBUG tracing is on. Evaluated at
// call time, not init: this package initializes before the cli layer
// loads .env, so a cached read would miss values set there.
func debugEnabled() bool {
	d := os.Getenv("IMFX_DEBUG")
	return d == "1" || d == "true"
}

func debugf(format string, args ...interface{}) {
	if debugEnabled() {
		fmt.Fprintf(os.Stderr, "imfx-magick: "+format+"\n", args...)
	}
}
