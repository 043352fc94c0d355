// Package assemble builds a slide deck from ordered page images.
package assemble

import (
	"errors"

	"github.com/hotmob/notebooklm-slide-refiner/internal/imaging"
)

// ErrNoImages indicates assembly was requested with an empty image list.
var ErrNoImages = errors.New("no images to assemble")

// Assembler writes one deck file containing one full-bleed slide per image,
// in the given order.
type Assembler interface {
	Assemble(imagePaths []string, outPath string, res imaging.Resolution) error
}

// ForFormat selects an assembler by output format ("pptx" or "pdf").
func ForFormat(format string) (Assembler, error) {
	switch format {
	case "", "pptx":
		return NewPPTXAssembler(), nil
	case "pdf":
		return NewPDFAssembler(), nil
	}
	return nil, errors.New("unknown deck format: " + format)
}
