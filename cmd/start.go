package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"beatmap-manager/core/config"
	"beatmap-manager/core/database"
	"beatmap-manager/core/loader"
	"beatmap-manager/core/logger"
	"beatmap-manager/core/middleware/auth"
	"beatmap-manager/core/middleware/rayid"
	"beatmap-manager/core/osuapi"
	"beatmap-manager/core/storage"

	"beatmap-manager/feature/beatmap"
	"beatmap-manager/feature/beatmap/models"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the beatmap manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
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

		if !cfg.Server.IsValidDomain() {
			logg.Fatal("Invalid server domain", zap.String("domain", cfg.Server.Domain))
		}

		// 3. Connect to Database
		// The durable tier is not optional: without it every lookup would
		// hammer the upstream API.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		// 4. Migrate the owned tables. The score table belongs to the
		// score-submission service, so it is only inspected, never migrated.
		if err := db.AutoMigrate(&models.Map{}, &models.Mapset{}); err != nil {
			logg.Fatal("Failed to migrate schema", zap.Error(err))
		}
		if ok, err := database.HasColumns(db, models.Score{}.TableName(), "id", "map_md5"); err != nil {
			logg.Warn("Could not inspect score table", zap.Error(err))
		} else if !ok {
			logg.Warn("Score table missing or incomplete; cascade deletes will fail until it exists")
		}

		// 5. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		if err := storage.EnsureBucket(cmd.Context(), store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}

		// 6. Upstream API Client
		api := osuapi.NewClient(cfg.Api, logg)

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 8. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(beatmap.NewFeature(db, store, cfg.Storage.Bucket, api, cfg.Cache, cfg.Server.Domain, logg))

		// Middleware Registration
		// RayID must be first so everything below can trace.
		app.Use(rayid.New())

		// Request logging with Zap + RayID.
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

		// Auth protects everything below.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 9. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
