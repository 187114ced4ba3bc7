package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// converter is the librsvg command-line tool.
const converter = "rsvg-convert"

// ErrNoConverter is returned when rsvg-convert is not installed.
var ErrNoConverter = errors.New("PDF and PNG export require rsvg-convert (macOS: brew install librsvg, Linux: apt install librsvg2-bin)")

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG. A scale of 2 doubles the pixel
// density for high-DPI screens; scale must be positive.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("png scale must be positive, got %g", scale)
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, extra ...string) ([]byte, error) {
	bin, err := lookPath(converter)
	if err != nil {
		return nil, ErrNoConverter
	}

	args := append([]string{"--format", format}, extra...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s to %s: %w: %s", converter, format, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
