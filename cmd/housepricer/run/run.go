package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcuszucareli/house-price-app/internal/app"
	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the catalog read API server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", 8881, "Port to run the server on")
	flags.String("host", "localhost", "Host to run the server on")
	flags.String("environment", "dev", "Environment configuration")
	flags.String("filesystem-type", "local", "Filesystem type: 'local' or 's3'")

	flags.String("db-driver", config.DefaultDBDriver, "Database driver: 'sqlite' or 'pg'")
	flags.String("db-dsn", config.DefaultDBDsn, "Database DSN (Connection URL or Path)")

	flags.String("s3-access-key", "", "S3 access key")
	flags.String("s3-secret-key", "", "S3 secret key")
	flags.String("s3-region-name", "", "S3 region name")
	flags.String("s3-bucket-name", "", "S3 bucket name")
	flags.String("s3-folder", "", "S3 folder")
	flags.String("s3-public-url", "", "Public URL for S3 files")
	flags.String("s3-endpoint-url", "", "S3 endpoint URL")

	viper.BindPFlags(flags)

	bindEnvs()
}

func bindEnvs() {
	// Core settings (will use HOUSE_ prefix)
	// Example: HOUSE_PORT
	viper.BindEnv("port")
	viper.BindEnv("host")
	viper.BindEnv("environment")
	viper.BindEnv("filesystem_type")

	viper.BindEnv("db.driver")
	viper.BindEnv("db.dsn")

	// S3 environment bindings
	// Example: HOUSE_S3_ACCESS_KEY
	viper.BindEnv("s3.access_key")
	viper.BindEnv("s3.secret_key")
	viper.BindEnv("s3.region_name")
	viper.BindEnv("s3.bucket_name")
	viper.BindEnv("s3.folder")
	viper.BindEnv("s3.public_url")
	viper.BindEnv("s3.endpoint_url")

	// Geocoder
	viper.BindEnv("geocoder.base_url")
	viper.BindEnv("geocoder.timeout_seconds")
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	application, err := app.NewApp(cfg,
		app.WithDBInitialization(),
		app.WithFileStorage(),
	)
	if err != nil {
		return err
	}
	defer application.Close()

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	srv.SetupRoutes(application)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	application.Logger.Info("server started",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	return srv.Stop(context.Background())
}
