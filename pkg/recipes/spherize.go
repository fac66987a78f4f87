package recipes

import (
	"context"
	"fmt"

	"github.com/Fepozopo/imfx/pkg/magick"
	"github.com/Fepozopo/imfx/pkg/recipe"
	"github.com/Fepozopo/imfx/pkg/workspace"
)

func init() {
	recipe.Register(recipe.Recipe{
		Spec: recipe.Spec{
			Name:  "spherize",
			Short: "Lens warp via barrel/pincushion distortion.",
			Args: []recipe.ArgSpec{
				{Name: "amount", Type: recipe.ArgPercent, Default: "50", Min: recipe.F(0), Max: recipe.F(100),
					Description: "distortion strength"},
				{Name: "mode", Type: recipe.ArgEnum, Default: "barrel",
					Enum:        []string{"barrel", "pincushion"},
					Description: "bulge outward (barrel) or inward (pincushion)"},
				{Name: "virtual", Type: recipe.ArgEnum, Default: "black",
					Enum:        []string{"black", "edge", "mirror", "transparent"},
					Description: "virtual pixel method for exposed regions"},
			},
		},
		Apply: applySpherize,
	})
}

// applySpherize maps the strength flag onto the quadratic barrel
// coefficient; pincushion is the same coefficient with flipped sign.
// The linear term keeps the overall scale roughly constant.
func applySpherize(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p recipe.Params, in, out string) error {
	b := p.Float("amount") / 100.0 * 0.5
	if p.String("mode") == "pincushion" {
		b = -b
	}
	coeffs := fmt.Sprintf("0.0 %.4f 0.0 %.4f", b, 1.0-b)
	return run.Convert(ctx,
		in,
		"-virtual-pixel", p.String("virtual"),
		"-distort", "Barrel", coeffs,
		out,
	)
}
