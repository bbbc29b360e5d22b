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

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/logging"
	httpAdapter "github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/adapters/http"
	redisAdapter "github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/adapters/redis"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Starts the engine in server mode, exposing mission validation/compilation,
mandate approvals, preflight checks and evidence bundle inspection over a JSON
API, plus Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		redisAddr, _ := cmd.Flags().GetString("redis")

		var logger *slog.Logger
		if jsonLogs {
			logger = logging.NewJSON(slog.LevelInfo)
		} else {
			logger = logging.New(slog.LevelInfo)
		}

		brainOpts := []brain.Option{brain.WithLogger(logger)}
		if redisAddr != "" {
			client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
			if err := client.Ping(cmd.Context()).Err(); err != nil {
				fmt.Printf("Cannot reach redis at %s: %v\n", redisAddr, err)
				os.Exit(1)
			}
			brainOpts = append(brainOpts, brain.WithLocker(redisAdapter.NewLocker(client, "brain:")))
			logger.Info("distributed mandate locking enabled", "redis", redisAddr)
		}
		b := newBrain(cmd, brainOpts...)

		reg := prometheus.NewRegistry()
		metrics := observability.New(reg)

		server := httpAdapter.NewServer(b.Compiler(), b.Ledger(), b.Approvals(), b.Evidence(),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(metrics),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: server.Handler(reg),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Brain Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Brain Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("json-logs", false, "Emit logs as JSON instead of text")
	serveCmd.Flags().String("redis", "", "Redis address for distributed mandate locking (e.g. localhost:6379)")
}
