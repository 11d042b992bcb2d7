package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/zhouzirui/z-manga/backend/internal/config"
	"github.com/zhouzirui/z-manga/backend/internal/handler"
	exportService "github.com/zhouzirui/z-manga/backend/internal/service/export"
	panelService "github.com/zhouzirui/z-manga/backend/internal/service/panel"
	"github.com/zhouzirui/z-manga/backend/internal/service/project"
	"github.com/zhouzirui/z-manga/backend/internal/service/remote"
	"github.com/zhouzirui/z-manga/backend/internal/service/storygen"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}

	// Initialize remote story client when credentials are present.
	var remoteClient *remote.Client
	if cfg.LLM.Enabled() {
		storyModel, err := cfg.LLM.NewStoryModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize story model: %v", err)
		}
		panelModel, err := cfg.LLM.NewPanelModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize panel model: %v", err)
		}
		if storyModel != nil && panelModel != nil {
			limiter := rate.NewLimiter(rate.Limit(cfg.LLM.RateLimit), 1)
			remoteClient, err = remote.NewClient(ctx, storyModel, panelModel, limiter)
			if err != nil {
				log.Printf("warning: failed to initialize remote client: %v", err)
				log.Println("continuing with local generation only")
			} else {
				log.Println("remote story client initialized successfully")
			}
		}
	} else {
		log.Println("OPENAI_API_KEY 未配置，跳过远端生成功能初始化")
	}

	var storySvc *storygen.Service
	if remoteClient != nil {
		storySvc = storygen.NewService(remoteClient, cfg.Output.Seed)
	} else {
		storySvc = storygen.NewService(nil, cfg.Output.Seed)
	}

	var describer panelService.Describer
	if remoteClient != nil {
		describer = remoteClient
	}
	renderer := panelService.NewRenderer(cfg.Output.Dir, describer)
	assembler := exportService.NewAssembler(cfg.Output.Dir)

	projects, err := project.NewStore(filepath.Join(cfg.Output.Dir, "projects"))
	if err != nil {
		log.Fatalf("failed to initialize project store: %v", err)
	}

	router := handler.NewRouter(storySvc, renderer, assembler, projects, cfg.Output.Dir)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Z Manga backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
