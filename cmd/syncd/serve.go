package main

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"unisync-backend/lib/browser"
	"unisync-backend/lib/configutil"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/ratelimit"
	"unisync-backend/lib/serviceutil"
	"unisync-backend/lib/telemetry"
	syncsvc "unisync-backend/services/sync"
	"unisync-backend/services/sync/db"
)

type Config struct {
	Port               int                   `json:"port"`
	Database           string                `json:"database"`
	Workers            int                   `json:"workers"`
	PollIntervalMS     int                   `json:"poll_interval_ms"`
	AuthServiceBaseURL string                `json:"auth_service_baseurl"`
	Browser            browser.Options       `json:"browser"`
	Events             syncsvc.EmitterConfig `json:"events"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync workers and the job API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		otel, err := telemetry.SetupFromEnv(ctx, "unisync-backend:syncd")
		if err != nil {
			serviceutil.Fatal("failed to initialize telemetry", err)
		}
		defer otel.Shutdown(ctx)

		config, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to load configuration", err)
		}
		if config.Port == 0 {
			config.Port = 9444
		}
		if config.Database == "" {
			config.Database = "syncd.db"
		}
		if config.Workers <= 0 {
			config.Workers = 4
		}

		registry, err := institutions.NewRegistry()
		if err != nil {
			serviceutil.Fatal("failed to load institution profiles", err)
		}
		// Selector lists drift whenever a university redesigns; SIGHUP
		// picks up profile overrides without a restart.
		serviceutil.OnSighup(func() {
			if err := registry.Reload(); err != nil {
				slog.Error("failed to reload institution profiles", "err", err)
				return
			}
			slog.Info("reloaded institution profiles")
		})

		database, err := sql.Open("sqlite", config.Database)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		if _, err := database.Exec(db.Schema); err != nil {
			serviceutil.Fatal("failed to apply database schema", err)
		}

		chrome, err := browser.Launch(ctx, config.Browser)
		if err != nil {
			serviceutil.Fatal("failed to launch browser", err)
		}
		defer chrome.Close()

		service := syncsvc.NewService(
			syncsvc.NewStore(database),
			registry,
			ratelimit.New(),
			syncsvc.NewAuthServiceClient(config.AuthServiceBaseURL),
			syncsvc.NewEmitter(config.Events),
			chrome,
		)

		pollInterval := time.Duration(config.PollIntervalMS) * time.Millisecond
		for i := 0; i < config.Workers; i++ {
			go syncsvc.NewRunner(service, pollInterval).Run(ctx)
		}
		slog.Info("sync workers started", "workers", config.Workers)

		go serviceutil.StartHttpServer(config.Port, newMux(service))

		<-ctx.Done()
	},
}
