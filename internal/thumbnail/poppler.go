package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Poppler rasterizes through the pdftoppm binary of poppler-utils.
type Poppler struct {
	// Binary defaults to "pdftoppm" on the PATH.
	Binary string
	DPI    int
}

func (p Poppler) FirstPage(ctx context.Context, document []byte) (image.Image, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pdftoppm"
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}

	dir, err := os.MkdirTemp("", "thumbnail-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(input, document, 0600); err != nil {
		return nil, err
	}

	output := filepath.Join(dir, "page")
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"-f", "1",
		"-l", "1",
		"-singlefile",
		"-png",
		"-r", strconv.Itoa(dpi),
		input,
		output,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(output + ".png")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return png.Decode(f)
}
