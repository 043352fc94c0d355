package assemble

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotmob/notebooklm-slide-refiner/internal/imaging"
)

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestPPTXAssembler_EmptyListRejected(t *testing.T) {
	err := NewPPTXAssembler().Assemble(nil, filepath.Join(t.TempDir(), "deck.pptx"), imaging.Resolution{Width: 1920, Height: 1080})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestPPTXAssembler_DeckStructure(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "page_0001.png")
	second := filepath.Join(dir, "page_0002.png")
	writePNG(t, first, color.RGBA{R: 255, A: 255})
	writePNG(t, second, color.RGBA{G: 255, A: 255})

	deckPath := filepath.Join(dir, "deck.pptx")
	err := NewPPTXAssembler().Assemble([]string{first, second}, deckPath, imaging.Resolution{Width: 1920, Height: 1080})
	require.NoError(t, err)

	reader, err := zip.OpenReader(deckPath)
	require.NoError(t, err)
	defer reader.Close()

	names := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		names[f.Name] = f
	}

	for _, expected := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/media/image1.png",
		"ppt/media/image2.png",
	} {
		assert.Contains(t, names, expected)
	}

	// Slide order follows input order: slide1's image is the first input.
	firstBytes, err := os.ReadFile(first)
	require.NoError(t, err)
	embedded := readZipFile(t, names["ppt/media/image1.png"])
	assert.Equal(t, firstBytes, embedded)

	presentation := string(readZipFile(t, names["ppt/presentation.xml"]))
	assert.Contains(t, presentation, `cx="18288000"`) // 1920 px * 9525 EMU
	assert.Contains(t, presentation, `cy="10287000"`) // 1080 px * 9525 EMU
}

func TestPDFAssembler_WritesOnePagePerImage(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 3; i++ {
		p := filepath.Join(dir, fmt.Sprintf("page_%04d.png", i+1))
		writePNG(t, p, color.RGBA{B: uint8(50 * (i + 1)), A: 255})
		paths = append(paths, p)
	}

	deckPath := filepath.Join(dir, "deck.pdf")
	err := NewPDFAssembler().Assemble(paths, deckPath, imaging.Resolution{Width: 1920, Height: 1080})
	require.NoError(t, err)

	data, err := os.ReadFile(deckPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	pageCount := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	assert.Equal(t, 3, pageCount)
}

func TestPDFAssembler_EmptyListRejected(t *testing.T) {
	err := NewPDFAssembler().Assemble(nil, filepath.Join(t.TempDir(), "deck.pdf"), imaging.Resolution{Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestForFormat(t *testing.T) {
	a, err := ForFormat("")
	require.NoError(t, err)
	assert.IsType(t, &PPTXAssembler{}, a)

	a, err = ForFormat("pdf")
	require.NoError(t, err)
	assert.IsType(t, &PDFAssembler{}, a)

	_, err = ForFormat("keynote")
	assert.Error(t, err)
}

func readZipFile(t *testing.T, f *zip.File) []byte {
	t.Helper()
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}
