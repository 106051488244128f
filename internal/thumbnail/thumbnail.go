package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/ledongthuc/pdf"
	"golang.org/x/image/draw"
)

const (
	Width   = 300
	Height  = 400
	quality = 85
)

var (
	ErrNotPDF        = errors.New("not a pdf document")
	ErrEmptyDocument = errors.New("pdf document has no pages")
)

var pdfHeader = []byte("%PDF-")

// Rasterizer renders the first page of a PDF document to an image.
type Rasterizer interface {
	FirstPage(ctx context.Context, document []byte) (image.Image, error)
}

// Extractor turns a PDF document into a fixed size JPEG of its first page.
type Extractor struct {
	Rasterizer Rasterizer

	// countPages returns -1 when the document could not be parsed and the
	// rasterizer should decide.
	countPages func(document []byte) int
}

func NewExtractor(rasterizer Rasterizer) *Extractor {
	return &Extractor{
		Rasterizer: rasterizer,
		countPages: countPages,
	}
}

// Extract returns the JPEG encoded thumbnail of the first page.
func (e *Extractor) Extract(ctx context.Context, document []byte) ([]byte, error) {
	if len(document) == 0 || !bytes.HasPrefix(bytes.TrimLeft(document, "\x00\t\r\n "), pdfHeader) {
		return nil, ErrNotPDF
	}

	if e.countPages(document) == 0 {
		return nil, ErrEmptyDocument
	}

	page, err := e.Rasterizer.FirstPage(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize first page: %w", err)
	}

	return Encode(page)
}

// Encode resizes img to the thumbnail size and encodes it as JPEG.
func Encode(img image.Image) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

func countPages(document []byte) (n int) {
	// The parser panics on some malformed cross reference tables.
	defer func() {
		if recover() != nil {
			n = -1
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return -1
	}

	return r.NumPage()
}
