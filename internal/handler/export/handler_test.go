package export

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	exportService "github.com/zhouzirui/z-manga/backend/internal/service/export"
)

func setupRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	dir := t.TempDir()
	handler := New(exportService.NewAssembler(dir), dir)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, dir
}

func writePanelImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode image: %v", err)
	}
	return path
}

func postExport(t *testing.T, r *chi.Mux, target string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestExportCBZ(t *testing.T) {
	r, dir := setupRouter(t)
	panel := writePanelImage(t, dir, "p1.png")

	resp := postExport(t, r, "/export/cbz", map[string]any{
		"title":  "Neon Tide",
		"panels": []map[string]any{{"path": panel}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var decoded struct {
		Success bool   `json:"success"`
		CbzPath  string `json:"cbz_path"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !decoded.Success || !strings.HasPrefix(decoded.CbzPath, "/outputs/") {
		t.Fatalf("unexpected response: %+v", decoded)
	}
	if !strings.HasSuffix(decoded.CbzPath, ".cbz") {
		t.Fatalf("cbz_path = %q", decoded.CbzPath)
	}
}

func TestExportPDF(t *testing.T) {
	r, dir := setupRouter(t)
	panel := writePanelImage(t, dir, "p1.png")

	resp := postExport(t, r, "/export/pdf", map[string]any{
		"title":  "Neon Tide",
		"panels": []map[string]any{{"path": panel}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var decoded struct {
		PdfPath string `json:"pdf_path"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasSuffix(decoded.PdfPath, ".pdf") {
		t.Fatalf("pdf_path = %q", decoded.PdfPath)
	}
}

func TestExportMissingPanels(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postExport(t, r, "/export/pdf", map[string]any{"title": "x"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	r, dir := setupRouter(t)
	panel := writePanelImage(t, dir, "p1.png")

	resp := postExport(t, r, "/export/cbz", map[string]any{
		"title":  "Neon Tide",
		"panels": []map[string]any{{"path": panel}},
	})
	var decoded struct {
		CbzPath string `json:"cbz_path"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	filename := strings.TrimPrefix(decoded.CbzPath, "/outputs/")

	req := httptest.NewRequest(http.MethodGet, "/export/download/cbz/"+filename, nil)
	dl := httptest.NewRecorder()
	r.ServeHTTP(dl, req)

	if dl.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", dl.Code)
	}
	if disp := dl.Header().Get("Content-Disposition"); !strings.Contains(disp, "attachment") {
		t.Fatalf("Content-Disposition = %q", disp)
	}
}

func TestDownloadUnknownFormat(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/export/download/exe/evil.exe", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/export/download/pdf/nope.pdf", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
