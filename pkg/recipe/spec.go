// Package recipe: metadata and validation for effect recipes.
//
// Every recipe declares its flags as ArgSpec entries. The CLI generates
// command-line flags from these and Normalize turns the raw textual
// values into validated, default-filled Params before a recipe composes
// any ImageMagick invocation.
package recipe

import (
	"context"
	"fmt"
	"sort"

	"github.com/Fepozopo/imfx/pkg/magick"
	"github.com/Fepozopo/imfx/pkg/workspace"
)

// ArgType is the small set of parameter types recipes declare.
type ArgType string

const (
	ArgInt     ArgType = "int"
	ArgFloat   ArgType = "float"
	ArgPercent ArgType = "percent" // accepts "30" or "30%"
	ArgBool    ArgType = "bool"
	ArgEnum    ArgType = "enum"
	ArgColor   ArgType = "color" // hex, named, or rgb(r,g,b)
	ArgString  ArgType = "string"
)

// ArgSpec describes a single recipe flag.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Default     string   // textual default, filled in when the flag is omitted
	Min, Max    *float64 // numeric range for int/float/percent
	Enum        []string // valid tokens when Type == ArgEnum (canonical casing)
	Description string
}

// Spec defines a recipe and its expected flags.
type Spec struct {
	Name  string
	Short string
	Args  []ArgSpec
}

// Arg returns the ArgSpec with the given name, if declared.
func (s Spec) Arg(name string) (ArgSpec, bool) {
	for _, a := range s.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}

// ApplyFunc composes and runs the ImageMagick invocations implementing
// one effect. Params are normalized; in is a readable input image path
// and out the destination path.
type ApplyFunc func(ctx context.Context, run magick.Runner, ws *workspace.Workspace, p Params, in, out string) error

// Recipe pairs a Spec with its composer.
type Recipe struct {
	Spec  Spec
	Apply ApplyFunc
}

var registry = map[string]Recipe{}

// Register adds a recipe to the package registry. Duplicate names are a
// programming error.
func Register(r Recipe) {
	if _, dup := registry[r.Spec.Name]; dup {
		panic(fmt.Sprintf("recipe %q registered twice", r.Spec.Name))
	}
	registry[r.Spec.Name] = r
}

// Lookup returns a registered recipe by name.
func Lookup(name string) (Recipe, bool) {
	r, ok := registry[name]
	return r, ok
}

// All returns the registered recipes sorted by name.
func All() []Recipe {
	out := make([]Recipe, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Spec.Name < out[j].Spec.Name })
	return out
}

// F is shorthand for a range bound literal in specs.
func F(v float64) *float64 { return &v }
