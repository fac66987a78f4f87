package recipes

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/Fepozopo/imfx/pkg/magick"
	"github.com/Fepozopo/imfx/pkg/recipe"
	"github.com/Fepozopo/imfx/pkg/workspace"
)

// fakeRunner records composed invocations instead of running the tool.
type fakeRunner struct {
	version  magick.Version
	calls    [][]string
	pipes    [][2][]string
	outQueue []string // successive ConvertOutput results
	identify string   // IdentifyFormat result
}

func (f *fakeRunner) Convert(ctx context.Context, args ...string) error {
	f.calls = append(f.calls, args)
	return nil
}

func (f *fakeRunner) ConvertOutput(ctx context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if len(f.outQueue) == 0 {
		return "", nil
	}
	out := f.outQueue[0]
	f.outQueue = f.outQueue[1:]
	return out, nil
}

func (f *fakeRunner) ConvertPipe(ctx context.Context, first, second []string) error {
	f.pipes = append(f.pipes, [2][]string{first, second})
	return nil
}

func (f *fakeRunner) IdentifyFormat(ctx context.Context, format, path string) (string, error) {
	return f.identify, nil
}

func (f *fakeRunner) Version() magick.Version { return f.version }

func im6() magick.Version {
	v, err := magick.ParseVersion("Version: ImageMagick 6.9.10-23 Q16")
	if err != nil {
		panic(err)
	}
	return v
}

func im7() magick.Version {
	v, err := magick.ParseVersion("Version: ImageMagick 7.1.1-15 Q16-HDRI")
	if err != nil {
		panic(err)
	}
	return v
}

func newWorkspace(t *testing.T, name string) *workspace.Workspace {
	t.Helper()
	t.Setenv(workspace.EnvTmpDir, t.TempDir())
	ws, err := workspace.New("imfx-" + name)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	t.Cleanup(func() { ws.Remove() })
	return ws
}

func mustParams(t *testing.T, name string, raw map[string]string) recipe.Params {
	t.Helper()
	r, ok := recipe.Lookup(name)
	if !ok {
		t.Fatalf("recipe %s not registered", name)
	}
	p, err := recipe.Normalize(r.Spec, raw)
	if err != nil {
		t.Fatalf("normalize %s: %v", name, err)
	}
	return p
}

func apply(t *testing.T, name string, run magick.Runner, ws *workspace.Workspace, raw map[string]string, in, out string) error {
	t.Helper()
	r, _ := recipe.Lookup(name)
	return r.Apply(context.Background(), run, ws, mustParams(t, name, raw), in, out)
}

func hasSeq(args []string, want ...string) bool {
	for i := 0; i+len(want) <= len(args); i++ {
		match := true
		for j := range want {
			if args[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestAllRecipesRegistered(t *testing.T) {
	want := []string{"corners", "duotone", "histmatch", "kaleidoscope", "spherize", "tonemap", "vignette"}
	all := recipe.All()
	if len(all) != len(want) {
		t.Fatalf("registered %d recipes; want %d", len(all), len(want))
	}
	for i, r := range all {
		if r.Spec.Name != want[i] {
			t.Fatalf("recipe[%d] = %s; want %s", i, r.Spec.Name, want[i])
		}
	}
}

func TestKaleidoscopeComposition(t *testing.T) {
	run := &fakeRunner{version: im7()}
	ws := newWorkspace(t, "kaleidoscope")
	err := apply(t, "kaleidoscope", run, ws, map[string]string{"spin": "30", "compose": "darken"}, "in.png", "out.png")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(run.pipes) != 1 {
		t.Fatalf("expected 1 piped stage, got %d", len(run.pipes))
	}
	first, second := run.pipes[0][0], run.pipes[0][1]
	if first[0] != "in.png" || first[len(first)-1] != "miff:-" {
		t.Fatalf("unexpected unwrap argv: %v", first)
	}
	if !hasSeq(first, "-distort", "SRT", "30") {
		t.Fatalf("spin missing from unwrap argv: %v", first)
	}
	if !hasSeq(first, "-distort", "DePolar", "0") {
		t.Fatalf("DePolar missing from unwrap argv: %v", first)
	}
	if second[0] != "miff:-" || !hasSeq(second, "-compose", "darken", "-composite") {
		t.Fatalf("unexpected blend argv: %v", second)
	}
	if !strings.HasPrefix(second[len(second)-1], ws.Dir()) {
		t.Fatalf("blend output %q not in workspace", second[len(second)-1])
	}
	if len(run.calls) != 1 {
		t.Fatalf("expected 1 rewrap call, got %d", len(run.calls))
	}
	rewrap := run.calls[0]
	if !hasSeq(rewrap, "-distort", "Polar", "0") || rewrap[len(rewrap)-1] != "out.png" {
		t.Fatalf("unexpected rewrap argv: %v", rewrap)
	}
}

func TestKaleidoscopeNoSpin(t *testing.T) {
	run := &fakeRunner{version: im7()}
	ws := newWorkspace(t, "kaleidoscope")
	if err := apply(t, "kaleidoscope", run, ws, nil, "in.png", "out.png"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if hasSeq(run.pipes[0][0], "-distort", "SRT") {
		t.Fatalf("SRT should be omitted for spin=0: %v", run.pipes[0][0])
	}
}

func TestSpherizeCoefficients(t *testing.T) {
	cases := []struct {
		mode string
		want string
	}{
		{"barrel", "0.0 0.5000 0.0 0.5000"},
		{"pincushion", "0.0 -0.5000 0.0 1.5000"},
	}
	for _, c := range cases {
		run := &fakeRunner{version: im7()}
		ws := newWorkspace(t, "spherize")
		err := apply(t, "spherize", run, ws, map[string]string{"amount": "100", "mode": c.mode}, "in.png", "out.png")
		if err != nil {
			t.Fatalf("apply(%s) failed: %v", c.mode, err)
		}
		args := run.calls[0]
		if !hasSeq(args, "-distort", "Barrel", c.want) {
			t.Fatalf("apply(%s) argv = %v; want Barrel %q", c.mode, args, c.want)
		}
	}
}

func TestTonemapColorspaceShim(t *testing.T) {
	// IM6 releases in the sRGB window need the colorspace pinned.
	run := &fakeRunner{version: im6()}
	ws := newWorkspace(t, "tonemap")
	if err := apply(t, "tonemap", run, ws, nil, "in.png", "out.png"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	args := run.calls[0]
	if !hasSeq(args, "-set", "colorspace", "RGB") {
		t.Fatalf("IM6 argv missing colorspace shim: %v", args)
	}
	if !hasSeq(args, "-sigmoidal-contrast", "5x50%") {
		t.Fatalf("argv missing sigmoid op: %v", args)
	}

	// IM7 must not carry the shim.
	run = &fakeRunner{version: im7()}
	if err := apply(t, "tonemap", run, ws, nil, "in.png", "out.png"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if hasSeq(run.calls[0], "-set", "colorspace", "RGB") {
		t.Fatalf("IM7 argv should not carry shim: %v", run.calls[0])
	}
}

func TestTonemapKinds(t *testing.T) {
	cases := []struct {
		raw  map[string]string
		want []string
	}{
		{map[string]string{"kind": "sigmoid", "inverse": "true"}, []string{"+sigmoidal-contrast", "5x50%"}},
		{map[string]string{"kind": "log", "amount": "8"}, []string{"-evaluate", "log", "8"}},
		{map[string]string{"kind": "gamma", "amount": "2"}, []string{"-gamma", "2"}},
		{map[string]string{"kind": "gamma", "amount": "2", "inverse": "yes"}, []string{"-gamma", "0.5"}},
	}
	for _, c := range cases {
		run := &fakeRunner{version: im7()}
		ws := newWorkspace(t, "tonemap")
		if err := apply(t, "tonemap", run, ws, c.raw, "in.png", "out.png"); err != nil {
			t.Fatalf("apply(%v) failed: %v", c.raw, err)
		}
		if !hasSeq(run.calls[0], c.want...) {
			t.Fatalf("apply(%v) argv = %v; want %v", c.raw, run.calls[0], c.want)
		}
	}
}

func TestVignetteComposition(t *testing.T) {
	run := &fakeRunner{version: im7(), identify: "640 480"}
	ws := newWorkspace(t, "vignette")
	err := apply(t, "vignette", run, ws, map[string]string{"inner": "20", "outer": "90", "color": "navy"}, "in.png", "out.png")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(run.calls) != 2 {
		t.Fatalf("expected mask + composite calls, got %d", len(run.calls))
	}
	mask := run.calls[0]
	if !hasSeq(mask, "-size", "640x480") {
		t.Fatalf("mask argv missing size: %v", mask)
	}
	if !hasSeq(mask, "radial-gradient:white-#000080") {
		t.Fatalf("mask argv missing gradient: %v", mask)
	}
	if !hasSeq(mask, "-level", "10%,80%") {
		t.Fatalf("mask argv missing level window: %v", mask)
	}
	comp := run.calls[1]
	if !hasSeq(comp, "-compose", "multiply", "-composite") || comp[len(comp)-1] != "out.png" {
		t.Fatalf("unexpected composite argv: %v", comp)
	}
}

func TestVignetteRejectsInvertedWindow(t *testing.T) {
	run := &fakeRunner{version: im7(), identify: "10 10"}
	ws := newWorkspace(t, "vignette")
	err := apply(t, "vignette", run, ws, map[string]string{"inner": "90", "outer": "20"}, "in.png", "out.png")
	if err == nil {
		t.Fatalf("expected error for inner >= outer")
	}
	if len(run.calls) != 0 {
		t.Fatalf("no invocation should run on validation failure, got %v", run.calls)
	}
}

func TestDuotoneComposition(t *testing.T) {
	run := &fakeRunner{version: im7()}
	ws := newWorkspace(t, "duotone")
	err := apply(t, "duotone", run, ws, map[string]string{"shadow": "black", "highlight": "white"}, "in.png", "out.png")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	clut := run.calls[0]
	if !hasSeq(clut, "gradient:#ffffff-#000000") {
		t.Fatalf("clut argv missing gradient: %v", clut)
	}
	final := run.calls[1]
	if !hasSeq(final, "-colorspace", "Gray") || !hasSeq(final, "-clut") || final[len(final)-1] != "out.png" {
		t.Fatalf("unexpected final argv: %v", final)
	}
}

func TestDuotoneMidtone(t *testing.T) {
	run := &fakeRunner{version: im7()}
	ws := newWorkspace(t, "duotone")
	err := apply(t, "duotone", run, ws, map[string]string{"midtone": "true"}, "in.png", "out.png")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	clut := run.calls[0]
	gradients := 0
	for _, a := range clut {
		if strings.HasPrefix(a, "gradient:") {
			gradients++
		}
	}
	if gradients != 2 || !hasSeq(clut, "-append") {
		t.Fatalf("midtone clut should append two gradients: %v", clut)
	}
}

func TestCornersComposition(t *testing.T) {
	enum := strings.Join([]string{
		"# ImageMagick pixel enumeration: 4,4,255,srgb",
		"0,0: (0,0,0)  #000000  black",
		"1,2: (65535,65535,65535)  #FFFFFF  white",
		"3,3: (65535,65535,65535)  #FFFFFF  white",
	}, "\n")
	run := &fakeRunner{version: im7(), outQueue: []string{enum}}
	ws := newWorkspace(t, "corners")
	err := apply(t, "corners", run, ws, map[string]string{"radius": "4", "color": "lime"}, "in.png", "out.png")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	// bilevel, plus pass, cross pass, difference enumeration, draw
	if len(run.calls) != 5 {
		t.Fatalf("expected 5 invocations, got %d: %v", len(run.calls), run.calls)
	}
	draw := run.calls[4]
	if !hasSeq(draw, "-stroke", "#00ff00") {
		t.Fatalf("draw argv missing stroke color: %v", draw)
	}
	if !hasSeq(draw, "-draw", "circle 1,2 5,2") || !hasSeq(draw, "-draw", "circle 3,3 7,3") {
		t.Fatalf("draw argv missing corner markers: %v", draw)
	}
	if draw[len(draw)-1] != "out.png" {
		t.Fatalf("draw argv should end with output: %v", draw)
	}
}

func TestParseCornerPixels(t *testing.T) {
	enum := "0,0: (0,0,0) #000000 black\n5,7: (65535,65535,65535) #FFFFFF white\n8,9: (65535,65535,65535) #FFFFFF white\n"
	got := parseCornerPixels(enum, 1)
	if len(got) != 1 || got[0] != [2]int{5, 7} {
		t.Fatalf("parseCornerPixels cap failed: %v", got)
	}
	got = parseCornerPixels(enum, 10)
	if len(got) != 2 {
		t.Fatalf("parseCornerPixels = %v; want 2 corners", got)
	}
}

func TestHistmatchComposition(t *testing.T) {
	srcHist := "      16: (  0,  0,  0) #000000 gray(0)\n      16: (255,255,255) #FFFFFF gray(255)\n"
	refHist := "      32: (128,128,128) #808080 gray(128)\n"
	run := &fakeRunner{version: im7(), outQueue: []string{srcHist, refHist}}
	ws := newWorkspace(t, "histmatch")

	in := ws.Path("in.png")
	ref := ws.Path("ref.png")
	for _, p := range []string{in, ref} {
		if err := os.WriteFile(p, []byte("stub"), 0o644); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}

	err := apply(t, "histmatch", run, ws, map[string]string{"reference": ref}, in, "out.png")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	lut := ws.Path("lut.pgm")
	data, err := os.ReadFile(lut)
	if err != nil {
		t.Fatalf("lookup table not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "P2\n256 1\n255\n") {
		t.Fatalf("unexpected lookup table header: %q", string(data[:20]))
	}

	final := run.calls[len(run.calls)-1]
	if !hasSeq(final, in, lut, "-clut", "out.png") {
		t.Fatalf("unexpected final argv: %v", final)
	}
}

func TestHistmatchMissingReference(t *testing.T) {
	run := &fakeRunner{version: im7()}
	ws := newWorkspace(t, "histmatch")
	err := apply(t, "histmatch", run, ws, map[string]string{"reference": ws.Path("nope.png")}, "in.png", "out.png")
	if err == nil {
		t.Fatalf("expected error for missing reference image")
	}
	if len(run.calls) != 0 {
		t.Fatalf("no invocation should run when the reference is unreadable")
	}
}

func TestMatchCDF(t *testing.T) {
	var uniform [256]float64
	for i := range uniform {
		uniform[i] = float64(i+1) / 256
	}
	mapping := matchCDF(uniform, uniform)
	for i, v := range mapping {
		if v != i {
			t.Fatalf("identity match broken at %d -> %d", i, v)
		}
	}

	// Everything in the reference sits at level 128: all source levels
	// must map there.
	var spike [256]float64
	for i := 128; i < 256; i++ {
		spike[i] = 1
	}
	mapping = matchCDF(uniform, spike)
	for i, v := range mapping {
		if v != 128 {
			t.Fatalf("spike match broken at %d -> %d", i, v)
		}
	}
}
