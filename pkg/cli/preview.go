package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
)

// Terminal preview for recipe results.
//
// Backend order:
//   - kitty graphics protocol when kitty (or a kitty-compatible
//     terminal like ghostty) is detected,
//   - iTerm2-style OSC 1337 inline images for iTerm2/WezTerm/Warp and
//     friends,
//   - img2sixel piped on stdin for sixel-capable terminals,
//   - chafa as a block-character fallback for everything else.
//
// IMFX_PREVIEW_BACKEND forces a backend; NO_CHAFA=1 disables the chafa
// fallback. Preview failures are never fatal; callers log and move on.

const (
	previewCellW = 8
	previewCellH = 16
	previewMaxW  = 80 * previewCellW
	previewMaxH  = 40 * previewCellH
)

// PreviewFile renders the image at path into the terminal, downscaled
// to a terminal-friendly size.
func PreviewFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open preview source: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode preview source: %w", err)
	}

	scaled, cols, rows := scaleForTerminal(img)
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return previewBytes(buf.Bytes(), cols, rows)
}

// scaleForTerminal fits the image inside the preview box, never
// upscaling, and reports the target size in character cells.
func scaleForTerminal(img image.Image) (image.Image, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := math.Min(1.0, math.Min(float64(previewMaxW)/float64(w), float64(previewMaxH)/float64(h)))
	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	cols := tw / previewCellW
	rows := th / previewCellH
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	if tw == w && th == h {
		return img, cols, rows
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, cols, rows
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "warp")
}

func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "foot") || os.Getenv("WT_SESSION") != ""
}

func hasChafa() bool {
	if os.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

func previewBytes(blob []byte, cols, rows int) error {
	if forced := strings.ToLower(os.Getenv("IMFX_PREVIEW_BACKEND")); forced != "" {
		debugf("preview backend forced: %s", forced)
		switch forced {
		case "kitty":
			return sendKittyImage(blob, cols, rows)
		case "inline", "iterm", "wezterm":
			return sendInlineImage(blob)
		case "sixel":
			return sendSixelImage(blob)
		case "chafa":
			return sendChafaImage(blob, cols, rows)
		default:
			return fmt.Errorf("unknown preview backend %q", forced)
		}
	}

	switch {
	case isKitty():
		return sendKittyImage(blob, cols, rows)
	case isInlineImageCapable():
		return sendInlineImage(blob)
	case isSixelCapable():
		if err := sendSixelImage(blob); err == nil {
			return nil
		} else if hasChafa() {
			debugf("img2sixel failed, falling back to chafa: %v", err)
			return sendChafaImage(blob, cols, rows)
		} else {
			return err
		}
	case hasChafa():
		return sendChafaImage(blob, cols, rows)
	}
	return fmt.Errorf("no terminal preview backend available")
}

// sendKittyImage transmits the PNG via the kitty graphics protocol,
// chunking the base64 payload to 4096 bytes per escape sequence.
func sendKittyImage(data []byte, cols, rows int) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096

	first := true
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := pos + chunkSize
		if end > len(enc) {
			end = len(enc)
		}
		chunk := enc[pos:end]
		mVal := "1"
		if end == len(enc) {
			mVal = "0"
		}
		var seq string
		if first {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", cols, rows, mVal, chunk)
			first = false
		} else {
			seq = "\x1b_Gm=" + mVal + ";" + chunk + "\x1b\\"
		}
		if _, err := os.Stdout.WriteString(seq); err != nil {
			return err
		}
	}
	fmt.Println()
	return nil
}

// sendInlineImage emits the iTerm2-style OSC 1337 inline file sequence.
func sendInlineImage(data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	seq := fmt.Sprintf("\x1b]1337;File=name=preview.png;inline=1;size=%d:%s\a", len(data), enc)
	if _, err := os.Stdout.WriteString(seq); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

// sendSixelImage pipes the PNG to img2sixel.
func sendSixelImage(data []byte) error {
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("img2sixel failed: %w", err)
	}
	fmt.Println()
	return nil
}

// sendChafaImage pipes the PNG to chafa sized in character cells.
func sendChafaImage(data []byte, cols, rows int) error {
	if os.Getenv("NO_CHAFA") == "1" {
		return fmt.Errorf("chafa disabled via NO_CHAFA=1")
	}
	if _, err := exec.LookPath("chafa"); err != nil {
		return fmt.Errorf("chafa not found in PATH: %w", err)
	}
	cmd := exec.Command("chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", cols, rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	fmt.Println()
	return nil
}
