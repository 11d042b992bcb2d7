package export

import (
	"archive/zip"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
)

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for x := 0; x < 80; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 4), B: 100, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestToCBZSequentialEntries(t *testing.T) {
	dir := t.TempDir()
	assembler := NewAssembler(dir)

	panels := []story.PanelRecord{
		{Path: writeTestPNG(t, dir, "a.png")},
		{Path: filepath.Join(dir, "missing.png")},
		{Path: writeTestPNG(t, dir, "b.png")},
		{Path: writeTestPNG(t, dir, "c.png")},
	}

	filename, err := assembler.ToCBZ(panels, "Test Manga")
	if err != nil {
		t.Fatalf("ToCBZ failed: %v", err)
	}

	reader, err := zip.OpenReader(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("output is not a valid zip: %v", err)
	}
	defer reader.Close()

	if len(reader.File) != 3 {
		t.Fatalf("expected 3 entries (missing panel skipped), got %d", len(reader.File))
	}
	for i, f := range reader.File {
		want := fmt.Sprintf("%03d.png", i)
		if f.Name != want {
			t.Fatalf("entry %d named %q, want %q", i, f.Name, want)
		}
	}

	// 打包后不应留下临时目录。
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "cbz-") {
			t.Fatalf("scratch dir %s not cleaned up", entry.Name())
		}
	}
}

func TestToCBZAllPanelsMissing(t *testing.T) {
	dir := t.TempDir()
	assembler := NewAssembler(dir)

	filename, err := assembler.ToCBZ([]story.PanelRecord{{Path: filepath.Join(dir, "missing.png")}}, "Empty")
	if err != nil {
		t.Fatalf("ToCBZ must not fail on missing panels: %v", err)
	}

	reader, err := zip.OpenReader(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("output is not a valid zip: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 0 {
		t.Fatalf("expected empty archive, got %d entries", len(reader.File))
	}
}

func TestToPDFWithPanels(t *testing.T) {
	dir := t.TempDir()
	assembler := NewAssembler(dir)

	panels := []story.PanelRecord{
		{
			Path: writeTestPNG(t, dir, "panel.png"),
			Dialogue: []story.DialogueLine{
				{Character: "Kazuo", Text: "It ends tonight."},
				{Character: "Miyuki", Text: "Then make it count."},
			},
		},
		{Path: filepath.Join(dir, "missing.png")},
	}

	filename, err := assembler.ToPDF(panels, "Test Manga")
	if err != nil {
		t.Fatalf("ToPDF failed: %v", err)
	}
	assertValidPDF(t, filepath.Join(dir, filename))
}

func TestToPDFEmptyPanelListStillProducesPDF(t *testing.T) {
	dir := t.TempDir()
	assembler := NewAssembler(dir)

	filename, err := assembler.ToPDF(nil, "Just a Title")
	if err != nil {
		t.Fatalf("ToPDF must handle empty input: %v", err)
	}
	assertValidPDF(t, filepath.Join(dir, filename))
}

func assertValidPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("pdf not written: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("output does not look like a PDF")
	}
}
