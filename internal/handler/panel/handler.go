package panel

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	storyModel "github.com/zhouzirui/z-manga/backend/internal/model/story"
	panelService "github.com/zhouzirui/z-manga/backend/internal/service/panel"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// Handler 分镜生成的HTTP处理器
type Handler struct {
	renderer *panelService.Renderer
}

// New 创建分镜处理器
func New(renderer *panelService.Renderer) *Handler {
	return &Handler{renderer: renderer}
}

// RegisterRoutes 注册分镜相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate/panel", h.handleGeneratePanel)
}

// handleGeneratePanel 渲染单张分镜图
func (h *Handler) handleGeneratePanel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SceneDescription string                    `json:"scene_description"`
		Dialogues        []storyModel.DialogueLine `json:"dialogues"`
		Unhinged         bool                      `json:"unhinged"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.SceneDescription == "" {
		utils.RespondError(w, http.StatusBadRequest, "scene_description is required")
		return
	}

	filename, err := h.renderer.Render(r.Context(), payload.SceneDescription, payload.Dialogues, payload.Unhinged)
	if err != nil {
		log.Printf("[panel] render failed: %v", err)
		// 渲染失败也要给前端一张可展示的占位图。
		fallback, fallbackErr := h.renderer.ErrorPanel()
		if fallbackErr != nil {
			utils.RespondError(w, http.StatusInternalServerError, "panel generation failed")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"success":    false,
			"panel_path": "/outputs/" + fallback,
			"error":      err.Error(),
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"panel_path": "/outputs/" + filename,
	})
}
