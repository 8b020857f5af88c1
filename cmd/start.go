package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proxydash/core/config"
	"proxydash/core/loader"
	"proxydash/core/logger"
	"proxydash/core/middleware/auth"
	"proxydash/core/middleware/rayid"
	"proxydash/feature/inventory"
	proxysync "proxydash/feature/sync"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "proxydash/docs/swagger"
)

// @title Proxydash API
// @version 1.0
// @description API for the proxy route inventory and application detection.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the proxydash server",
	Long:  `Starts the HTTP server, the sync scheduler and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 3. Inventory, storage, detection and sync
		rt, err := newRuntime(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to initialize", zap.Error(err))
		}
		defer rt.Close()

		// 4. Scheduler
		scheduler := proxysync.NewScheduler(rt.service, cfg.Sync.Interval, cfg.Sync.OnlineFallback, logg)
		scheduler.Start(ctx)
		defer scheduler.Stop()
		logg.Info("Sync scheduler started", zap.Duration("interval", cfg.Sync.Interval))

		// 5. Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		})

		// 6. Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(inventory.NewFeature(rt.store, logg))
		mgr.Register(proxysync.NewFeature(rt.service, scheduler, cfg.Sync.OnlineFallback))

		// Middleware: RayID first so everything after it is traceable
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
		select {
		case <-scheduler.Done():
		case <-time.After(cfg.Server.ShutdownTimeout()):
			logg.Warn("Sync still running at shutdown")
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
