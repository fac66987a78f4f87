package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Fepozopo/imfx/pkg/magick"
	"github.com/Fepozopo/imfx/pkg/recipe"
	_ "github.com/Fepozopo/imfx/pkg/recipes" // register the effect recipes
	"github.com/Fepozopo/imfx/pkg/workspace"
)

// Options configures the command tree. Locate is swappable so tests can
// substitute a fake tool runner.
type Options struct {
	Version string
	Locate  func(ctx context.Context) (magick.Runner, error)
}

// NewRootCommand builds the imfx command tree: one subcommand per
// registered recipe plus version and update. Invoked bare it prints
// help and exits 0.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Locate == nil {
		opts.Locate = func(ctx context.Context) (magick.Runner, error) {
			return magick.Locate(ctx)
		}
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	root := &cobra.Command{
		Use:     "imfx",
		Short:   "Image effect recipes composed from ImageMagick operations",
		Long:    "imfx wraps the installed ImageMagick in a set of effect recipes.\nEach recipe validates its flags, then builds and runs one or more\nconvert pipelines; no pixel is processed in this program itself.",
		Version: opts.Version,
		// main prints the returned error once; cobra must not print it
		// too.
		SilenceErrors: true,
	}
	for _, r := range recipe.All() {
		root.AddCommand(recipeCommand(r, opts))
	}
	root.AddCommand(versionCommand(opts))
	root.AddCommand(updateCommand(opts))
	return root
}

func recipeCommand(r recipe.Recipe, opts Options) *cobra.Command {
	values := make(map[string]*string, len(r.Spec.Args))
	var preview bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <input> <output>", r.Spec.Name),
		Short: r.Spec.Short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if _, err := os.Stat(in); err != nil {
				return fmt.Errorf("input image %s: %w", in, err)
			}

			raw := make(map[string]string, len(values))
			for name, v := range values {
				raw[name] = *v
			}
			p, err := recipe.Normalize(r.Spec, raw)
			if err != nil {
				return err
			}

			// Flags are valid past this point; later failures are
			// runtime errors and should not reprint usage.
			cmd.SilenceUsage = true

			run, err := opts.Locate(cmd.Context())
			if err != nil {
				return err
			}
			ws, err := workspace.New("imfx-" + r.Spec.Name)
			if err != nil {
				return err
			}
			defer ws.Remove()

			if err := r.Apply(cmd.Context(), run, ws, p, in, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)

			if preview {
				if err := PreviewFile(out); err != nil {
					debugf("preview skipped: %v", err)
				}
			}
			return nil
		},
	}

	registerSpecFlags(cmd.Flags(), r.Spec, values)
	cmd.Flags().BoolVar(&preview, "preview", false, "render the result in the terminal after writing it")
	return cmd
}

// registerSpecFlags declares one string flag per ArgSpec so that every
// value passes through recipe.Normalize, which owns validation.
func registerSpecFlags(fs *pflag.FlagSet, s recipe.Spec, values map[string]*string) {
	for _, a := range s.Args {
		v := new(string)
		*v = a.Default
		values[a.Name] = v
		fs.StringVar(v, a.Name, a.Default, describeArg(a))
	}
}

func describeArg(a recipe.ArgSpec) string {
	var sb strings.Builder
	sb.WriteString(a.Description)
	switch {
	case len(a.Enum) > 0:
		sb.WriteString(" (one of: ")
		sb.WriteString(strings.Join(a.Enum, ", "))
		sb.WriteString(")")
	case a.Min != nil && a.Max != nil:
		fmt.Fprintf(&sb, " (range %g..%g)", *a.Min, *a.Max)
	case a.Min != nil:
		fmt.Fprintf(&sb, " (minimum %g)", *a.Min)
	case a.Max != nil:
		fmt.Fprintf(&sb, " (maximum %g)", *a.Max)
	}
	if a.Required {
		sb.WriteString(" (required)")
	}
	return sb.String()
}

func versionCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the imfx version and the detected ImageMagick release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "imfx %s\n", opts.Version)
			run, err := opts.Locate(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "ImageMagick: not detected (%v)\n", err)
				return nil
			}
			v := run.Version()
			fmt.Fprintf(cmd.OutOrStdout(), "ImageMagick %s (token %d)\n", v, v.Token)
			return nil
		},
	}
}

func updateCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check GitHub releases and self-update the imfx binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return CheckForUpdates(opts.Version)
		},
	}
}
