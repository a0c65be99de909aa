package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/classquiz/quizhost/internal/config"
	"github.com/classquiz/quizhost/internal/controller"
	"github.com/classquiz/quizhost/internal/transport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quizhost",
		Short: "Real-time classroom quiz session server",
		RunE:  run,
	}

	f := rootCmd.Flags()
	f.Int("port", 30000, "TCP port to listen on")

	_ = viper.BindPFlag("port", f.Lookup("port"))

	// QUIZHOST_PORT overrides the flag default.
	viper.SetEnvPrefix("QUIZHOST")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log.Printf("quizhost %s starting on :%d", config.Version, cfg.Port)

	server := transport.NewServer(cfg.Port)
	controller.New(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("quizhost shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
