package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "drive_diagnostics/docs"
	"drive_diagnostics/internal/handlers"
	"drive_diagnostics/internal/logger"
	"drive_diagnostics/internal/repository"
	"drive_diagnostics/internal/repository/db"
	"drive_diagnostics/internal/server"
	"drive_diagnostics/internal/service"
	"drive_diagnostics/internal/sim"

	"github.com/spf13/viper"
)

const restoreTimeout = 5 * time.Second

// @title           Drive Diagnostics API
// @version         1.0
// @description     Simulation and diagnostics service for an industrial variable-frequency drive.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// load config.yml
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger at the configured level
	log := logger.Get(logLevel())

	// open DB
	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)

	simCfg, err := buildSimConfig()
	if err != nil {
		log.Fatalw("invalid simulation config", "err", err)
	}
	engine, err := sim.New(simCfg, log)
	if err != nil {
		log.Fatalw("failed to build simulator", "err", err)
	}

	// carry persisted maintenance dates across restarts
	if err := restoreMaintenance(engine, repos); err != nil {
		log.Fatalw("failed to restore maintenance records", "err", err)
	}

	// journal every diagnostic event the engine emits
	recorder := service.NewEventRecorder(repos.Events, log)
	recorder.Attach(engine)

	services := service.NewService(engine, repos, authConfig(), log)
	apiHandler := handlers.NewHandler(services, log)

	// start the simulation loop
	engine.Start()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(engine, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("logger.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "drive.db")
		dbPath = "drive.db"
	}
	return db.InitDB(dbPath)
}

// buildSimConfig maps config keys onto the simulator config, loading any
// custom scenario file on top of the built-in catalog.
func buildSimConfig() (sim.Config, error) {
	cfg := sim.Config{
		TickInterval:     viper.GetDuration("sim.tick_interval"),
		HistoryRetention: viper.GetDuration("sim.history_retention"),
		SampleInterval:   viper.GetDuration("sim.sample_interval"),
		Profile:          sim.Profile(viper.GetString("sim.profile")),
		Seed:             viper.GetInt64("sim.seed"),
		AmbientWave:      viper.GetString("sim.ambient_wave"),
	}
	if path := viper.GetString("sim.scenario_file"); path != "" {
		custom, err := sim.LoadScenarioFile(path)
		if err != nil {
			return sim.Config{}, fmt.Errorf("load scenario file %q: %w", path, err)
		}
		cfg.Scenarios = custom
	}
	return cfg, nil
}

func restoreMaintenance(engine *sim.Simulator, repos *repository.Repository) error {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	records, err := repos.Maintenance.Load(ctx)
	if err != nil {
		return err
	}
	engine.RestoreMaintenance(records)
	return nil
}

func authConfig() service.AuthConfig {
	return service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(engine *sim.Simulator, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the simulation loop
	engine.Stop()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
