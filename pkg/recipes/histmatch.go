package recipes

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Fepozopo/imfx/pkg/magick"
	"github.com/Fepozopo/imfx/pkg/recipe"
	"github.com/Fepozopo/imfx/pkg/workspace"
)

func init() {
	recipe.Register(recipe.Recipe{
		Spec: recipe.Spec{
			Name:  "histmatch",
			Short: "Match the tonal distribution of the input to a reference image.",
			Args: []recipe.ArgSpec{
				{Name: "reference", Type: recipe.ArgString, Required: true,
					Description: "path to the image whose histogram is matched"},
			},
		},
		Apply: applyHistmatch,
	})
}

// applyHistmatch reads both grayscale histograms from the tool, builds
// the monotone CDF-to-CDF mapping, writes it as a 256x1 PGM lookup
// table in the workspace and applies it with -clut. The arithmetic here
// is bookkeeping over the tool's text output, not image processing.
func applyHistmatch(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p recipe.Params, in, out string) error {
	ref := p.String("reference")
	if _, err := os.Stat(ref); err != nil {
		return fmt.Errorf("reference image %s: %w", ref, err)
	}

	srcCDF, err := grayCDF(ctx, run, in)
	if err != nil {
		return err
	}
	refCDF, err := grayCDF(ctx, run, ref)
	if err != nil {
		return err
	}

	mapping := matchCDF(srcCDF, refCDF)

	lut := ws.Path("lut.pgm")
	if err := writePGMLut(lut, mapping); err != nil {
		return err
	}
	return run.Convert(ctx, in, lut, "-clut", out)
}

// histogramLineRe matches `histogram:info:-` lines like
//
//	1234: (  0,  0,  0) #000000 gray(0)
var histogramLineRe = regexp.MustCompile(`^\s*(\d+):\s*\(\s*(\d+)[,)]`)

// grayCDF returns the normalized cumulative distribution over the 256
// gray levels of path.
func grayCDF(ctx context.Context, run magick.Runner, path string) ([256]float64, error) {
	var cdf [256]float64

	args := []string{path}
	args = append(args, run.Version().SetColorspaceArgs()...)
	args = append(args, "-colorspace", "Gray", "-depth", "8", "-format", "%c", "histogram:info:-")
	text, err := run.ConvertOutput(ctx, args...)
	if err != nil {
		return cdf, err
	}

	var counts [256]float64
	var total float64
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		m := histogramLineRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		count, _ := strconv.ParseFloat(m[1], 64)
		level, _ := strconv.Atoi(m[2])
		if level < 0 || level > 255 {
			continue
		}
		counts[level] += count
		total += count
	}
	if total == 0 {
		return cdf, fmt.Errorf("no histogram data for %s", path)
	}

	acc := 0.0
	for i := 0; i < 256; i++ {
		acc += counts[i]
		cdf[i] = acc / total
	}
	return cdf, nil
}

// matchCDF maps each source level to the lowest reference level whose
// cumulative share is at least the source's, the standard monotone
// histogram-matching transfer.
func matchCDF(src, ref [256]float64) [256]int {
	var mapping [256]int
	j := 0
	for i := 0; i < 256; i++ {
		for j < 255 && ref[j] < src[i] {
			j++
		}
		mapping[i] = j
	}
	return mapping
}

// writePGMLut writes the transfer function as a plain-text 256x1 PGM so
// the tool can consume it with -clut.
func writePGMLut(path string, mapping [256]int) error {
	var sb strings.Builder
	sb.WriteString("P2\n256 1\n255\n")
	for i, v := range mapping {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte('\n')
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write lookup table: %w", err)
	}
	return nil
}
