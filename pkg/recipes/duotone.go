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
			Name:  "duotone",
			Short: "Map image tones onto a two-color gradient (classic duotone print look).",
			Args: []recipe.ArgSpec{
				{Name: "shadow", Type: recipe.ArgColor, Default: "navy",
					Description: "color the darkest tones map to"},
				{Name: "highlight", Type: recipe.ArgColor, Default: "wheat",
					Description: "color the brightest tones map to"},
				{Name: "midtone", Type: recipe.ArgBool, Default: "false",
					Description: "anchor the gradient on the perceptual midpoint of the two colors"},
			},
		},
		Apply: applyDuotone,
	})
}

// applyDuotone grayscales the input and pushes it through a gradient
// color lookup table. The gradient is rendered vertically and rotated,
// since ImageMagick gradients only run top to bottom. With --midtone
// the table is two half gradients meeting at the Lab midpoint of the
// endpoint colors, which keeps the middle tones from washing out.
func applyDuotone(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p recipe.Params, in, out string) error {
	shadow := p.String("shadow")
	highlight := p.String("highlight")

	clut := ws.Path("clut.miff")
	var clutArgs []string
	if p.Bool("midtone") {
		mid := recipe.MidtoneBetween(p.Color("shadow"), p.Color("highlight")).Hex()
		clutArgs = []string{
			"-size", "1x128",
			fmt.Sprintf("gradient:%s-%s", highlight, mid),
			fmt.Sprintf("gradient:%s-%s", mid, shadow),
			"-append", "-rotate", "90",
			clut,
		}
	} else {
		clutArgs = []string{
			"-size", "1x256",
			fmt.Sprintf("gradient:%s-%s", highlight, shadow),
			"-rotate", "90",
			clut,
		}
	}
	if err := run.Convert(ctx, clutArgs...); err != nil {
		return err
	}

	args := []string{in}
	args = append(args, run.Version().SetColorspaceArgs()...)
	args = append(args, "-colorspace", "Gray", clut, "-clut", out)
	return run.Convert(ctx, args...)
}
