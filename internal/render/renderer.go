// Package render turns document pages into letterboxed raster images.
package render

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/hotmob/notebooklm-slide-refiner/internal/imaging"
)

// Renderer renders single pages of an open document.
type Renderer interface {
	// RenderPage renders the zero-based page at the given DPI and letterboxes
	// it to the target resolution. Deterministic for identical inputs.
	RenderPage(ctx context.Context, pageIndex, dpi int, res imaging.Resolution, mode imaging.BackgroundMode) (image.Image, error)
	// PageCount returns the number of pages in the document.
	PageCount() int
	// Close releases the underlying document.
	Close() error
}

// FitzRenderer renders PDF pages using go-fitz (MuPDF).
type FitzRenderer struct {
	doc *fitz.Document
}

// NewFitzRenderer validates and opens the document at path.
func NewFitzRenderer(path string) (*FitzRenderer, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return nil, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}
	return &FitzRenderer{doc: doc}, nil
}

// RenderPage renders one page and letterboxes it to the target resolution.
func (r *FitzRenderer) RenderPage(ctx context.Context, pageIndex, dpi int, res imaging.Resolution, mode imaging.BackgroundMode) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageIndex < 0 || pageIndex >= r.doc.NumPage() {
		return nil, fmt.Errorf("page index %d out of range, document has %d pages", pageIndex, r.doc.NumPage())
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("dpi must be positive, got %d", dpi)
	}

	img, err := r.doc.ImageDPI(pageIndex, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageIndex+1, err)
	}
	return imaging.Letterbox(img, res, mode), nil
}

// PageCount returns the document's page count.
func (r *FitzRenderer) PageCount() int {
	return r.doc.NumPage()
}

// Close releases the document.
func (r *FitzRenderer) Close() error {
	if r.doc != nil {
		r.doc.Close()
		r.doc = nil
	}
	return nil
}
