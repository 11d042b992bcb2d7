package export

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	storyModel "github.com/zhouzirui/z-manga/backend/internal/model/story"
	exportService "github.com/zhouzirui/z-manga/backend/internal/service/export"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// Handler 导出与下载的HTTP处理器
type Handler struct {
	assembler *exportService.Assembler
	outputDir string
}

// New 创建导出处理器
func New(assembler *exportService.Assembler, outputDir string) *Handler {
	return &Handler{assembler: assembler, outputDir: outputDir}
}

// RegisterRoutes 注册导出相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/export/pdf", h.handleExportPDF)
	r.Post("/export/cbz", h.handleExportCBZ)
	r.Get("/export/download/{format}/{filename}", h.handleDownload)
}

type exportPayload struct {
	Panels []storyModel.PanelRecord `json:"panels"`
	Title  string                   `json:"title"`
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (*exportPayload, bool) {
	var payload exportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if payload.Panels == nil {
		utils.RespondError(w, http.StatusBadRequest, "panels is required")
		return nil, false
	}
	if payload.Title == "" {
		payload.Title = "manga"
	}
	return &payload, true
}

// handleExportPDF 汇编PDF
func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	filename, err := h.assembler.ToPDF(payload.Panels, payload.Title)
	if err != nil {
		log.Printf("[export] pdf assembly failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "pdf export failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"pdf_path": "/outputs/" + filename,
	})
}

// handleExportCBZ 汇编CBZ
func (h *Handler) handleExportCBZ(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	filename, err := h.assembler.ToCBZ(payload.Panels, payload.Title)
	if err != nil {
		log.Printf("[export] cbz assembly failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "cbz export failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"cbz_path": "/outputs/" + filename,
	})
}

// handleDownload 以附件形式下载已导出的文件
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "pdf" && format != "cbz" {
		utils.RespondError(w, http.StatusBadRequest, "format must be pdf or cbz")
		return
	}

	// Base清洗路径,防止 ../ 逃出输出目录。
	filename := filepath.Base(chi.URLParam(r, "filename"))
	fullPath := filepath.Join(h.outputDir, filename)
	if _, err := os.Stat(fullPath); err != nil {
		utils.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	contentType := "application/pdf"
	if format == "cbz" {
		contentType = "application/zip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, fullPath)
}
