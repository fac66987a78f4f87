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
			Name:  "vignette",
			Short: "Darken (or tint) the image toward its borders with a radial falloff.",
			Args: []recipe.ArgSpec{
				{Name: "inner", Type: recipe.ArgPercent, Default: "0", Min: recipe.F(0), Max: recipe.F(100),
					Description: "radius percent at which the falloff starts"},
				{Name: "outer", Type: recipe.ArgPercent, Default: "100", Min: recipe.F(0), Max: recipe.F(100),
					Description: "radius percent at which the falloff reaches the vignette color"},
				{Name: "feather", Type: recipe.ArgFloat, Default: "0", Min: recipe.F(0), Max: recipe.F(50),
					Description: "extra gaussian softening of the falloff (sigma in pixels)"},
				{Name: "color", Type: recipe.ArgColor, Default: "black",
					Description: "vignette color"},
			},
		},
		Apply: applyVignette,
	})
}

// applyVignette builds a radial gradient mask sized from `identify`
// output and multiplies it onto the source.
func applyVignette(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p recipe.Params, in, out string) error {
	inner := p.Float("inner")
	outer := p.Float("outer")
	if inner >= outer {
		return fmt.Errorf("flag --inner must be below --outer (got %g >= %g)", inner, outer)
	}

	dims, err := run.IdentifyFormat(ctx, "%w %h", in)
	if err != nil {
		return err
	}
	var w, h int
	if _, err := fmt.Sscanf(dims, "%d %d", &w, &h); err != nil {
		return fmt.Errorf("parse image dimensions %q: %w", dims, err)
	}

	mask := ws.Path("mask.miff")
	maskArgs := []string{
		"-size", fmt.Sprintf("%dx%d", w, h),
		fmt.Sprintf("radial-gradient:white-%s", p.String("color")),
		// The gradient runs white at the center to the vignette color at
		// the corners; level repositions the falloff window.
		"-level", fmt.Sprintf("%g%%,%g%%", 100-outer, 100-inner),
	}
	if sigma := p.Float("feather"); sigma > 0 {
		maskArgs = append(maskArgs, "-blur", fmt.Sprintf("0x%g", sigma))
	}
	maskArgs = append(maskArgs, mask)
	if err := run.Convert(ctx, maskArgs...); err != nil {
		return err
	}

	return run.Convert(ctx, in, mask, "-compose", "multiply", "-composite", out)
}
