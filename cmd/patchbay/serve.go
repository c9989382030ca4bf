package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/patchbay"
	httpAdapter "github.com/aretw0/patchbay/internal/adapters/http"
	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/command"
	"github.com/aretw0/patchbay/pkg/observability"
	"github.com/aretw0/patchbay/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the desk HTTP server",
	Long:  `Starts the patchbay session manager in server mode, exposing desks as a JSON API over HTTP with SSE change streams and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := cli.LoadServeConfig(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Listen, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Backend, _ = cmd.Flags().GetString("store")
		}
		if cmd.Flags().Changed("dir") {
			dir, _ := cmd.Flags().GetString("dir")
			cfg.Store.Dir = dir
			cfg.Store.Badger.Dir = dir
		}

		level := slog.LevelInfo
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		store, closeStore, err := cli.BuildStore(cfg.Store, logger)
		if err != nil {
			fmt.Printf("Error building store: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		var mgrOpts []session.Option
		mgrOpts = append(mgrOpts, session.WithLogger(logger))
		var procOpts []command.Option
		procOpts = append(procOpts, command.WithLogger(logger))

		if cfg.Metrics {
			metrics, err := observability.New(nil)
			if err != nil {
				fmt.Printf("Error registering metrics: %v\n", err)
				os.Exit(1)
			}
			procOpts = append(procOpts, command.WithLatencyObserver(metrics.ObserveCommand))
			mgrOpts = append(mgrOpts, session.WithDeskInit(func(desk *patchbay.Matrix) {
				desk.OnChange(metrics.Observer(desk))
			}))
		}

		manager := session.NewManager(store, mgrOpts...)

		handler, err := httpAdapter.NewHandler(manager,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithProcessor(command.NewProcessor(procOpts...)),
		)
		if err != nil {
			fmt.Printf("Error building handler: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Patchbay Server on %s\n", srv.Addr)
			fmt.Printf("Desk store backend: %s\n", storeName(cfg.Store.Backend))
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Patchbay Server stopped gracefully")
		}
	},
}

func storeName(backend string) string {
	if backend == "" {
		return "memory"
	}
	return backend
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("config", "", "Path to a YAML server config file")
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("store", "memory", "Snapshot store backend (memory, file, redis, badger)")
	serveCmd.Flags().String("dir", "", "Directory for the file or badger store")
}
