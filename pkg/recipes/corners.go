package recipes

import (
	"bufio"
	"context"
	"fmt"
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
			Name:  "corners",
			Short: "Morphological corner detector; marks detected corners on the original.",
			Args: []recipe.ArgSpec{
				{Name: "threshold", Type: recipe.ArgPercent, Default: "50", Min: recipe.F(0), Max: recipe.F(100),
					Description: "binarization threshold before morphology"},
				{Name: "radius", Type: recipe.ArgInt, Default: "5", Min: recipe.F(1), Max: recipe.F(50),
					Description: "marker circle radius in pixels"},
				{Name: "color", Type: recipe.ArgColor, Default: "red",
					Description: "marker color"},
				{Name: "max", Type: recipe.ArgInt, Default: "200", Min: recipe.F(1), Max: recipe.F(5000),
					Description: "cap on the number of marked corners"},
			},
		},
		Apply: applyCorners,
	})
}

// applyCorners runs the classic asymmetric-kernel detector: a plus
// dilate/diamond erode pass and a cross dilate/square erode pass react
// differently exactly at corners, so the difference of the two is
// nonzero only there. The surviving pixels are enumerated through the
// tool's txt: output and drawn back on the original.
func applyCorners(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p recipe.Params, in, out string) error {
	bilevel := ws.Path("bilevel.miff")
	args := []string{in}
	args = append(args, run.Version().SetColorspaceArgs()...)
	args = append(args,
		"-colorspace", "Gray",
		"-threshold", fmt.Sprintf("%g%%", p.Float("threshold")),
		bilevel,
	)
	if err := run.Convert(ctx, args...); err != nil {
		return err
	}

	plusPass := ws.Path("plus.miff")
	if err := run.Convert(ctx, bilevel,
		"-morphology", "Dilate", "Plus:1",
		"-morphology", "Erode", "Diamond:1",
		plusPass,
	); err != nil {
		return err
	}
	crossPass := ws.Path("cross.miff")
	if err := run.Convert(ctx, bilevel,
		"-morphology", "Dilate", "Cross:1",
		"-morphology", "Erode", "Square:1",
		crossPass,
	); err != nil {
		return err
	}

	enum, err := run.ConvertOutput(ctx, plusPass, crossPass,
		"-compose", "difference", "-composite",
		"-threshold", "50%",
		"txt:-",
	)
	if err != nil {
		return err
	}
	corners := parseCornerPixels(enum, p.Int("max"))
	if len(corners) == 0 {
		// Nothing detected: the output is the unmodified input.
		return run.Convert(ctx, in, out)
	}

	draw := []string{in,
		"-fill", "none",
		"-stroke", p.String("color"),
		"-strokewidth", "2",
	}
	r := p.Int("radius")
	for _, c := range corners {
		draw = append(draw, "-draw", fmt.Sprintf("circle %d,%d %d,%d", c[0], c[1], c[0]+r, c[1]))
	}
	draw = append(draw, out)
	return run.Convert(ctx, draw...)
}

// txt: enumeration lines look like
//
//	12,34: (65535,65535,65535)  #FFFFFF  white
//
// white pixels mark detected corners.
var cornerLineRe = regexp.MustCompile(`^(\d+),(\d+):`)

func parseCornerPixels(enum string, max int) [][2]int {
	var corners [][2]int
	sc := bufio.NewScanner(strings.NewReader(enum))
	for sc.Scan() && len(corners) < max {
		line := sc.Text()
		m := cornerLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "#FFFFFF") && !strings.Contains(strings.ToLower(line), "white") {
			continue
		}
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		corners = append(corners, [2]int{x, y})
	}
	return corners
}
