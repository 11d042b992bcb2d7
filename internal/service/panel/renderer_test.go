package panel

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
)

type recordingDescriber struct {
	lastStyle string
	result    string
}

func (d *recordingDescriber) DescribePanel(_ context.Context, desc string, _ []story.DialogueLine, style string) string {
	d.lastStyle = style
	if d.result != "" {
		return d.result
	}
	return desc
}

func decodePanel(t *testing.T, dir, filename string) (int, int) {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("open panel: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode panel: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRenderProducesPNG(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, nil)

	dialogues := []story.DialogueLine{
		{Character: "Kazuo", Text: "We move at dawn."},
		{Character: "Yuki", Text: "Then we move together."},
	}
	filename, err := r.Render(context.Background(), "An action sequence on the rooftops", dialogues, false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(filename, "panel_") || !strings.HasSuffix(filename, ".png") {
		t.Fatalf("unexpected filename %q", filename)
	}
	w, h := decodePanel(t, dir, filename)
	if w != panelWidth || h != panelHeight {
		t.Fatalf("panel size = %dx%d, want %dx%d", w, h, panelWidth, panelHeight)
	}
}

func TestRenderUniqueFilenames(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, nil)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		filename, err := r.Render(context.Background(), "A quiet dialogue between old friends", nil, false)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if seen[filename] {
			t.Fatalf("duplicate filename %q", filename)
		}
		seen[filename] = true
	}
}

func TestRenderStyleSelection(t *testing.T) {
	dir := t.TempDir()
	d := &recordingDescriber{}
	r := NewRenderer(dir, d)

	if _, err := r.Render(context.Background(), "A dark alley", nil, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if d.lastStyle != "manga" {
		t.Fatalf("style = %q, want manga", d.lastStyle)
	}

	if _, err := r.Render(context.Background(), "A dark alley", nil, true); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if d.lastStyle != "dark" {
		t.Fatalf("style = %q, want dark", d.lastStyle)
	}
}

func TestErrorPanel(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, nil)

	filename, err := r.ErrorPanel()
	if err != nil {
		t.Fatalf("ErrorPanel: %v", err)
	}
	if !strings.HasPrefix(filename, "error_panel_") {
		t.Fatalf("unexpected filename %q", filename)
	}
	w, h := decodePanel(t, dir, filename)
	if w != panelWidth || h != panelHeight {
		t.Fatalf("panel size = %dx%d", w, h)
	}
}
