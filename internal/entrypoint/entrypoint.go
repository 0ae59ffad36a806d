package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/session-catalog/internal/config"
	"github.com/mrlokans/session-catalog/internal/database"
	"github.com/mrlokans/session-catalog/internal/database/snapshots"
	"github.com/mrlokans/session-catalog/internal/database/sync"
	"github.com/mrlokans/session-catalog/internal/events"
	http_controllers "github.com/mrlokans/session-catalog/internal/http"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
	"github.com/mrlokans/session-catalog/internal/scheduler"
	"github.com/mrlokans/session-catalog/internal/tasks"
)

type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting session catalog v%s", version)

	registry, err := events.Load(cfg.Event.ProfilesPath)
	if err != nil {
		log.Fatalf("Failed to load event profiles: %v", err)
	}
	profile, err := registry.Lookup(cfg.Event.Name)
	if err != nil {
		log.Fatalf("Event %q: %v", cfg.Event.Name, err)
	}
	log.Printf("Serving snapshots for %s", profile.Title)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	snapshotRepo := snapshots.NewRepository(db.DB)
	progress := sync.NewRepository(db.DB)

	routerCfg := http_controllers.RouterConfig{
		Database:  db,
		Snapshots: snapshotRepo,
		Event:     profile.Name,
		Progress:  progress,
		Version:   version,
	}

	// Refreshing needs credentials and the task queue; without them the
	// service still serves stored snapshots.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var capacitySync *scheduler.CapacitySyncScheduler

	creds, credErr := config.LoadCredentials(cfg.Rainfocus.CredentialsPath)
	switch {
	case credErr != nil:
		log.Printf("WARNING: %v. Refresh endpoints and the capacity scheduler are disabled.", credErr)
	case !cfg.Tasks.Enabled:
		log.Printf("Task queue disabled (TASKS_ENABLED=false). Refresh endpoints and the capacity scheduler are disabled.")
	default:
		taskCfg := tasks.FromAppConfig(cfg.Tasks)
		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		client := rainfocus.NewClient(cfg.RainfocusConfig(creds))
		refresher := tasks.NewRefresher(client, registry, snapshotRepo, progress, cfg.Pipeline.Workers)
		taskClient.Register(
			tasks.NewRefreshSnapshotQueue(refresher, taskCfg),
			tasks.NewPruneSnapshotsQueue(snapshotRepo, taskCfg),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		capacitySync = scheduler.NewCapacitySyncScheduler(scheduler.CapacitySyncConfig{
			Schedule:     cfg.CapacitySync.Schedule,
			Event:        profile.Name,
			SessionTypes: cfg.CapacitySync.SessionTypes,
			Retention:    cfg.Database.SnapshotRetention,
		}, taskClient, progress)

		if cfg.CapacitySync.Enabled {
			if err := capacitySync.Start(context.Background()); err != nil {
				log.Fatalf("Failed to start capacity sync scheduler: %v", err)
			}
		} else {
			log.Printf("Capacity sync scheduler: disabled (refresh on demand via POST /api/refresh)")
		}

		routerCfg.Refresh = capacitySync
		routerCfg.Tasks = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if capacitySync != nil {
			capacitySync.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
