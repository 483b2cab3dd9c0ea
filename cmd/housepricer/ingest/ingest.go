package cmd

import (
	"fmt"

	"github.com/marcuszucareli/house-price-app/internal/app"
	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/ingestion"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion attempt against the inbound directory",
	Long:  "Validates the single pending archive in the inbound directory, registers it in the catalog in one transaction, and moves the model artifact into storage",
	RunE:  runIngestion,
}

func init() {
	flags := Cmd.Flags()

	flags.String("environment", "dev", "Environment configuration")
	flags.String("inbound-dir", "", "Directory scanned for the pending archive")
	flags.String("storage-dir", "", "Permanent model storage root")
	flags.String("filesystem-type", "local", "Filesystem type: 'local' or 's3'")
	flags.String("db-driver", config.DefaultDBDriver, "Database driver: 'sqlite' or 'pg'")
	flags.String("db-dsn", config.DefaultDBDsn, "Database DSN (Connection URL or Path)")

	viper.BindPFlags(flags)

	viper.BindEnv("inbound_dir")
	viper.BindEnv("storage_dir")
	viper.BindEnv("db.driver")
	viper.BindEnv("db.dsn")
}

func runIngestion(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	application, err := app.NewApp(cfg,
		app.WithDBInitialization(),
		app.WithFileStorage(),
	)
	if err != nil {
		return err
	}
	defer application.Close()

	ingestor := ingestion.NewIngestor(application.DB(), cfg, application.FileStorage, application.Logger)

	report, err := ingestor.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("model %s ingested into %s\n", report.ID, report.StoragePath)
	return nil
}
