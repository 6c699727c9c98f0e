package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultPort     = "5000"
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default is :$PORT or :5000)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()
	log.Info("starting the smart-recruiter server", zap.String("version", version))

	rt, err := newPipeline(ctx, config, false, log)
	if err != nil {
		log.Fatal("preparing analysis", zap.Error(err))
	}
	defer rt.Close()

	var lister history.Lister
	if rt.store != nil {
		lister = rt.store
	}

	var origins []string
	if config.Server != nil {
		origins = config.Server.AllowOrigins
	}

	srv := server.New(server.Config{AllowOrigins: origins}, rt.service, lister, rt.metrics, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(listenAddr(config))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down", zap.String("reason", "signal received"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutting down http server", zap.Error(err))
		}
	}
}

func listenAddr(config *Config) string {
	if config.Server != nil {
		if addr := strings.TrimSpace(config.Server.Listen); addr != "" {
			return addr
		}
	}

	port := strings.TrimSpace(viper.GetString("port"))
	if port == "" {
		port = defaultPort
	}
	return ":" + port
}
