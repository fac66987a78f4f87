package recipes

import (
	"context"
	"strconv"

	"github.com/Fepozopo/imfx/pkg/magick"
	"github.com/Fepozopo/imfx/pkg/recipe"
	"github.com/Fepozopo/imfx/pkg/workspace"
)

func init() {
	recipe.Register(recipe.Recipe{
		Spec: recipe.Spec{
			Name:  "kaleidoscope",
			Short: "Kaleidoscope effect built from polar unwrapping and mirrored recomposition.",
			Args: []recipe.ArgSpec{
				{Name: "spin", Type: recipe.ArgInt, Default: "0", Min: recipe.F(0), Max: recipe.F(360),
					Description: "pre-rotation of the source in degrees"},
				{Name: "compose", Type: recipe.ArgEnum, Default: "lighten",
					Enum:        []string{"lighten", "darken", "difference", "screen", "multiply"},
					Description: "operator blending the mirrored halves"},
				{Name: "virtual", Type: recipe.ArgEnum, Default: "mirror",
					Enum:        []string{"mirror", "edge", "tile", "black"},
					Description: "virtual pixel method used by the distortions"},
			},
		},
		Apply: applyKaleidoscope,
	})
}

// applyKaleidoscope unwraps the image into polar space, blends it with
// its mirror, and wraps it back. The unwrap and the blend are piped;
// the rewrap reads the blended intermediate from the workspace.
func applyKaleidoscope(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p recipe.Params, in, out string) error {
	vp := p.String("virtual")

	unwrap := []string{in, "-virtual-pixel", vp}
	if spin := p.Int("spin"); spin != 0 {
		unwrap = append(unwrap, "-distort", "SRT", strconv.Itoa(spin))
	}
	unwrap = append(unwrap, "-distort", "DePolar", "0", "miff:-")

	mirrored := ws.Path("mirrored.miff")
	blend := []string{
		"miff:-",
		"(", "+clone", "-flop", ")",
		"-compose", p.String("compose"), "-composite",
		mirrored,
	}
	if err := run.ConvertPipe(ctx, unwrap, blend); err != nil {
		return err
	}

	return run.Convert(ctx, mirrored, "-virtual-pixel", vp, "-distort", "Polar", "0", out)
}
