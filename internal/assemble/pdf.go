package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/hotmob/notebooklm-slide-refiner/internal/imaging"
)

// pointsPerPixel converts 96 DPI pixels to PDF points.
const pointsPerPixel = 72.0 / 96.0

// PDFAssembler writes the deck as a PDF with one full-bleed page per image.
type PDFAssembler struct{}

// NewPDFAssembler creates a PDF deck assembler.
func NewPDFAssembler() *PDFAssembler {
	return &PDFAssembler{}
}

// Assemble writes the deck. Pages appear in the order of imagePaths.
func (a *PDFAssembler) Assemble(imagePaths []string, outPath string, res imaging.Resolution) error {
	if len(imagePaths) == 0 {
		return ErrNoImages
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create deck directory: %w", err)
	}

	pageW := float64(res.Width) * pointsPerPixel
	pageH := float64(res.Height) * pointsPerPixel

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, imagePath := range imagePaths {
		pdf.AddPage()
		options := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptions(imagePath, options)
		pdf.ImageOptions(imagePath, 0, 0, pageW, pageH, false, options, 0, "")
		if pdf.Err() {
			return fmt.Errorf("embed image %s: %s", imagePath, pdf.Error())
		}
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}
	return nil
}
