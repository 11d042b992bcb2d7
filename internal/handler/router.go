package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	exportHandler "github.com/zhouzirui/z-manga/backend/internal/handler/export"
	panelHandler "github.com/zhouzirui/z-manga/backend/internal/handler/panel"
	storyHandler "github.com/zhouzirui/z-manga/backend/internal/handler/story"
	middlewarePkg "github.com/zhouzirui/z-manga/backend/internal/middleware"
	exportService "github.com/zhouzirui/z-manga/backend/internal/service/export"
	panelService "github.com/zhouzirui/z-manga/backend/internal/service/panel"
	"github.com/zhouzirui/z-manga/backend/internal/service/project"
	"github.com/zhouzirui/z-manga/backend/internal/service/storygen"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(storySvc *storygen.Service, renderer *panelService.Renderer, assembler *exportService.Assembler, projects *project.Store, outputDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.SecurityHeaders)

	// Liveness probe doubles as the landing response.
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"service": "z-manga backend",
			"status":  "ok",
		})
	})

	r.Route("/api", func(api chi.Router) {
		storyHandler.New(storySvc, projects).RegisterRoutes(api)
		panelHandler.New(renderer).RegisterRoutes(api)
		exportHandler.New(assembler, outputDir).RegisterRoutes(api)
	})

	// Generated panels and exports are served straight from the output dir.
	fileServer := http.StripPrefix("/outputs/", http.FileServer(http.Dir(outputDir)))
	r.Get("/outputs/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})

	return r
}
