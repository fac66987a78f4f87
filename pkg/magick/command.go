package magick

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner is the surface recipes compose against. Tool implements it by
// invoking the installed ImageMagick binary; tests substitute a fake to
// inspect the composed invocations.
type Runner interface {
	// Convert runs a single convert-style invocation to completion.
	Convert(ctx context.Context, args ...string) error
	// ConvertOutput runs a convert-style invocation and returns its
	// standard output (used for info:, txt:- and histogram:info:-).
	ConvertOutput(ctx context.Context, args ...string) (string, error)
	// ConvertPipe runs two convert-style invocations with the first
	// one's standard output streamed into the second's standard input.
	ConvertPipe(ctx context.Context, first, second []string) error
	// IdentifyFormat evaluates an identify format string against path.
	IdentifyFormat(ctx context.Context, format, path string) (string, error)
	// Version reports the installed release for shim decisions.
	Version() Version
}

// Tool is a located ImageMagick installation.
type Tool struct {
	// Path is the resolved binary: `magick` on ImageMagick 7, the
	// classic `convert` otherwise.
	Path    string
	Release Version
}

var _ Runner = (*Tool)(nil)

// Version implements Runner.
func (t *Tool) Version() Version { return t.Release }

func (t *Tool) command(ctx context.Context, args ...string) *exec.Cmd {
	// IM7's `magick` accepts classic convert argument lists directly,
	// so both generations take the same argv.
	return exec.CommandContext(ctx, t.Path, args...)
}

// Convert implements Runner.
func (t *Tool) Convert(ctx context.Context, args ...string) error {
	cmd := t.command(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	debugf("run: %s %s", t.Path, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return invokeErr(t.Path, args, &stderr, err)
	}
	return nil
}

// ConvertOutput implements Runner.
func (t *Tool) ConvertOutput(ctx context.Context, args ...string) (string, error) {
	cmd := t.command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	debugf("run: %s %s", t.Path, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return "", invokeErr(t.Path, args, &stderr, err)
	}
	return stdout.String(), nil
}

// ConvertPipe implements Runner. The caller is responsible for ending
// the first argv with a stream output (e.g. "miff:-") and starting the
// second's input from "-"/"miff:-".
//
// The pipe is created explicitly and the parent's ends are closed as
// soon as each child holds its own copy. If the consumer dies early the
// producer gets EPIPE instead of blocking forever on a full pipe.
func (t *Tool) ConvertPipe(ctx context.Context, first, second []string) error {
	c1 := t.command(ctx, first...)
	c2 := t.command(ctx, second...)
	var err1, err2 bytes.Buffer
	c1.Stderr = &err1
	c2.Stderr = &err2

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("open pipe: %w", err)
	}
	c1.Stdout = pw
	c2.Stdin = pr

	debugf("run: %s %s | %s %s", t.Path, strings.Join(first, " "), t.Path, strings.Join(second, " "))
	if err := c1.Start(); err != nil {
		pr.Close()
		pw.Close()
		return invokeErr(t.Path, first, &err1, err)
	}
	pw.Close()
	if err := c2.Start(); err != nil {
		pr.Close()
		_ = c1.Wait()
		return invokeErr(t.Path, second, &err2, err)
	}
	pr.Close()

	errRun1 := c1.Wait()
	errRun2 := c2.Wait()
	// A consumer failure usually kills the producer with a broken pipe;
	// the consumer's error is the one worth reporting then.
	if errRun2 != nil {
		return invokeErr(t.Path, second, &err2, errRun2)
	}
	if errRun1 != nil {
		return invokeErr(t.Path, first, &err1, errRun1)
	}
	return nil
}

// IdentifyFormat implements Runner. It routes through a convert-style
// `-format ... info:` invocation, which works identically on both the
// IM6 and IM7 surfaces (no separate `identify` binary needed).
func (t *Tool) IdentifyFormat(ctx context.Context, format, path string) (string, error) {
	out, err := t.ConvertOutput(ctx, path, "-format", format, "info:")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// invokeErr folds the tool's stderr into the returned error so a failed
// invocation surfaces a descriptive message, not just an exit status.
func invokeErr(path string, args []string, stderr *bytes.Buffer, err error) error {
	msg := strings.TrimSpace(stderr.String())
	if msg != "" {
		return fmt.Errorf("%s %s: %w: %s", path, firstArg(args), err, msg)
	}
	return fmt.Errorf("%s %s: %w", path, firstArg(args), err)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// runOutput is a bare helper for invocations made before a Tool exists
// (version detection).
func runOutput(ctx context.Context, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", invokeErr(path, args, &stderr, err)
	}
	return stdout.String(), nil
}
