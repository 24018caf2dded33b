package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/compiler"
	"github.com/tutorkit/tutorkit/internal/config"
	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/internal/logging"
	"github.com/tutorkit/tutorkit/internal/provider"
	"github.com/tutorkit/tutorkit/internal/server"
	"github.com/tutorkit/tutorkit/internal/storage"
	"github.com/tutorkit/tutorkit/internal/tool"
	"github.com/tutorkit/tutorkit/internal/tutor"
	"github.com/tutorkit/tutorkit/internal/watch"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tutoring workspace server",
	Long: `Start the tutoring workspace HTTP server.

Sessions, lesson documents and chat history are stored as plain files
under the data directory. Without an API key the server still serves
file management and notes; chat turns degrade to a notice.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveDir, "data-dir", "", "Data directory (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveDir != "" {
		cfg.DataDir = serveDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Pretty: true,
	})

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	defer bus.Close()

	comp := compiler.New(store)

	var streamer tutor.Streamer
	var titler tutor.Titler
	configured := cfg.Configured()
	if configured {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		p, err := provider.New(ctx, cfg.LLM)
		cancel()
		if err != nil {
			logging.Warn().Err(err).Msg("model provider unavailable, chat degrades to notice")
			configured = false
		} else {
			streamer = tutor.NewAgent(p, tool.NewRegistry(), store.DataDir())
			titler = tutor.NewModelTitler(p)
			logging.Info().Str("provider", p.ID()).Str("model", p.Model()).Msg("model provider ready")
		}
	} else {
		logging.Info().Msg("no API key configured, chat degrades to notice")
	}

	engine := tutor.NewEngine(store, comp, streamer, titler, bus, configured)

	watcher, err := watch.NewWatcher(store.DataDir(), bus)
	if err != nil {
		logging.Warn().Err(err).Msg("file watcher unavailable")
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Port = cfg.Port
	srv := server.New(serverCfg, store, comp, engine, bus)

	go func() {
		logging.Info().Int("port", cfg.Port).Str("dataDir", cfg.DataDir).Msg("server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
