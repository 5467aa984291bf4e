package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/api"
	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/server"
)

var (
	port           int
	host           string
	watch          bool
	allowedOrigins []string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the proposalviewer server",
	Long: `Starts an HTTP server exposing the documents and the filter evaluator as a
JSON API, with server-sent events and Prometheus metrics.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		// The server logs to stdout unless told otherwise
		if !cmd.Flags().Changed("logging-stdout") && logger.Path == "" {
			logger.Stdout = true
		}
		onCommandStart(cmd, args)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		logger := log.NewSlogger()

		logger.Info("loading configuration", "path", config.ResolvePath(configPath))
		cfg, path, err := loadConfig(configPath)
		if err != nil {
			// Provide a clearer, actionable message depending on the error type.
			switch {
			case errors.Is(err, config.ErrConfigParse):
				logger.Error("invalid configuration file format", "path", path, "err", err, "hint", "check YAML/JSON syntax and types")
			case errors.Is(err, config.ErrNoSources):
				logger.Error("configuration missing 'sources' section", "path", path, "err", err, "hint", "add a 'sources' section mapping source names to file, sqlite, postgres or http sources")
			default:
				logger.Error("failed to load configuration", "path", path, "err", err)
			}
			os.Exit(1)
		}

		catalog, err := openCatalog(cmd.Context(), cfg)
		if err != nil {
			logger.Error("failed to open sources", "err", err)
			os.Exit(1)
		}
		defer catalog.Close()

		s := server.NewServer(host, strconv.Itoa(port), catalog, logger,
			server.WithFilterOptions(server.FilterOptions(cfg)...),
			server.WithConfigPath(path),
			server.WithOpenAPISpec(api.OpenAPISpec),
			server.WithAllowedOrigins(allowedOrigins...))

		if watch {
			stop, err := startWatcher(cmd.Context(), s, path, logger)
			if err != nil {
				logger.Error("failed to start file watcher", "err", err)
				os.Exit(1)
			}
			defer stop()
		}

		if err := s.Start(); err != nil {
			logger.Error("server failed to start", "err", err)
			os.Exit(1)
		}
	},
}

// startWatcher reloads the server when the config file or a file source
// directory changes. The returned func stops watching.
func startWatcher(ctx context.Context, s *server.Server, path string, logger *slog.Logger) (func(), error) {
	w, err := server.NewWatcher(s, path, s.WatchDirs(), logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := w.Start(ctx); err != nil {
		cancel()
		_ = w.Stop()
		return nil, err
	}

	return func() {
		cancel()
		if err := w.Stop(); err != nil {
			logger.Warn("failed to stop file watcher", "err", err)
		}
	}, nil
}

func init() {
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVarP(&host, "host", "H", "0.0.0.0", "Host to bind to")
	serverCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload when the config file or document files change")
	serverCmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origin", nil, "Origin allowed to call the API (repeatable, default any)")
}
