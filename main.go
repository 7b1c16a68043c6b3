package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"team-pairing-system/config"
	"team-pairing-system/handlers"
	"team-pairing-system/models"
	"team-pairing-system/services"
	"team-pairing-system/utils"
	"team-pairing-system/workers"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	root := &cobra.Command{
		Use:   "team-pairing-system",
		Short: "Team pairing planner service",
		// bare invocation serves
		RunE: func(cmd *cobra.Command, args []string) error { return serve() },
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			utils.Log.WithField("data_dir", cfg.DataDir).Info("✅ [MIGRATE] schema up to date")
			return closeDB(db)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "layouts",
		Short: "Scan the layout source and print the inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			layouts, err := layoutService(cfg)
			if err != nil {
				return err
			}
			if err := layouts.Refresh(cmd.Context()); err != nil {
				return err
			}
			inv := layouts.Inventory()
			keys := make([]string, 0, len(inv))
			for k := range inv {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d layout(s)\n", key, len(inv[key]))
			}
			return nil
		},
	})

	var importDir string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy players.json and games.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)
			dir := importDir
			if dir == "" {
				dir = cfg.DataDir
			}
			stats, err := services.ImportLegacy(cmd.Context(), db, dir)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			utils.Log.WithField("dir", dir).Infof("📥 [IMPORT] %d players, %d matches, %d games (%d skipped)",
				stats.Players, stats.Matches, stats.Games, stats.Skipped)
			return nil
		},
	}
	importCmd.Flags().StringVar(&importDir, "dir", "", "directory holding players.json and games.json (default DATA_DIR)")
	root.AddCommand(importCmd)

	if err := root.Execute(); err != nil {
		utils.Log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFile)
	return cfg, nil
}

// bootstrap loads config, opens the database and migrates it.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := utils.EnsureDataDir(cfg.DataDir); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure data dir: %w", err)
	}
	db, err := utils.OpenDB(cfg.DatabaseURL, cfg.SQLitePath())
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func layoutService(cfg *config.Config) (*services.LayoutService, error) {
	if cfg.LayoutsSource == config.LayoutsFromR2 {
		if err := utils.InitR2(utils.R2Config{
			AccountID:       cfg.CloudflareAccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2BucketName,
			CDNBaseURL:      cfg.CDNBaseURL,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize R2 client: %w", err)
		}
		return services.NewLayoutService(services.R2LayoutSource{Prefix: cfg.R2LayoutsPrefix}, cfg.DataDir), nil
	}
	return services.NewLayoutService(services.DirLayoutSource{Dir: cfg.DataDir}, cfg.DataDir), nil
}

func serve() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TeamPassword == "" {
		utils.Log.Warn("⚠️  TEAM_PASSWORD is not set, team login is disabled")
	}

	var drafts services.DraftStore = services.NewMemoryDraftStore()
	if cfg.RedisURL != "" {
		rds, err := services.NewRedisDraftStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rds.Close()
		drafts = rds
		utils.Log.Info("🧠 [DRAFTS] using redis")
	}

	layouts, err := layoutService(cfg)
	if err != nil {
		return err
	}
	if err := layouts.Refresh(ctx); err != nil {
		utils.Log.WithError(err).Warn("⚠️  initial layout scan failed, starting with an empty inventory")
	}
	sched, err := layouts.StartRefreshScheduler(cfg.LayoutRefreshInterval)
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Shutdown()

	sweeper := workers.NewDraftSweeper(drafts, cfg.DraftIdleTTL)
	go sweeper.Run(ctx, time.Minute)

	sessions := session.New(session.Config{
		Expiration:     30 * 24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	optimizer := services.NewOptimizerClient(cfg.OptimizerURL, cfg.OptimizerToken, cfg.OptimizerTimeout)

	app := handlers.NewApp(cfg.Origins(), handlers.Deps{
		Sessions:     sessions,
		ServiceToken: cfg.ServiceToken,
		Auth:         services.NewAuthService(cfg.TeamName, cfg.TeamPassword, sessions),
		Players:      services.NewPlayerService(db),
		Games:        services.NewGameService(db, drafts),
		Matrix:       services.NewMatrixService(db),
		Pairing:      services.NewPairingService(db, drafts, layouts, optimizer),
		Layouts:      layouts,
		Report:       services.NewReportService(db),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			utils.Log.WithError(err).Error("Server error")
			stop()
		}
	}()

	utils.Log.Infof("✅ Server running on http://localhost%s", addr)
	utils.Log.Infof("✅ Layouts from %s, refreshed every %s", cfg.LayoutsSource, cfg.LayoutRefreshInterval)
	utils.Log.Infof("✅ Draft sweeper running (ttl %s)", cfg.DraftIdleTTL)
	if optimizer.Enabled() {
		utils.Log.Infof("✅ Optimizer at %s", cfg.OptimizerURL)
	}
	utils.Log.Infof("✅ CORS configured for origins: %v", cfg.Origins())

	<-ctx.Done()
	utils.Log.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}
