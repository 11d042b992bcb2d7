package story

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	storyModel "github.com/zhouzirui/z-manga/backend/internal/model/story"
	"github.com/zhouzirui/z-manga/backend/internal/service/project"
	"github.com/zhouzirui/z-manga/backend/internal/service/storygen"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// Handler 故事生成的HTTP处理器
type Handler struct {
	storySvc *storygen.Service
	projects *project.Store
}

// New 创建故事处理器
func New(storySvc *storygen.Service, projects *project.Store) *Handler {
	return &Handler{storySvc: storySvc, projects: projects}
}

// RegisterRoutes 注册故事相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/story/generate", h.handleGenerate)
}

// handleGenerate 生成故事
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt     string                   `json:"prompt"`
		Characters storyModel.CharacterList `json:"characters"`
		Unhinged   bool                     `json:"unhinged"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result := h.storySvc.Generate(r.Context(), payload.Prompt, payload.Characters, payload.Unhinged)

	// 项目落盘失败不阻塞响应,故事仍然返回给调用方。
	var projectID string
	if h.projects != nil {
		meta, err := h.projects.Save(result.Title, result.Scenes)
		if err != nil {
			log.Printf("[story] failed to persist project: %v", err)
		} else {
			projectID = meta.ProjectID
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"story":      result,
		"unhinged":   payload.Unhinged,
		"project_id": projectID,
	})
}
