package cmd

import (
	"fmt"
	"os"
	"strings"

	// Subcommands
	db "github.com/marcuszucareli/house-price-app/cmd/housepricer/db"
	ingest "github.com/marcuszucareli/house-price-app/cmd/housepricer/ingest"
	pack "github.com/marcuszucareli/house-price-app/cmd/housepricer/pack"
	run "github.com/marcuszucareli/house-price-app/cmd/housepricer/run"
	"github.com/marcuszucareli/house-price-app/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const housePrefix = "HOUSE"

var Cmd = &cobra.Command{
	Use:   "housepricer",
	Short: "House price model catalog",
	Long:  "Validates, packages and ingests contributed house-price models into the catalog, and serves the catalog's read API",

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(housePrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(
			`-`, `_`,
			`.`, `_`,
		))
		viper.AutomaticEnv()

		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		// Dashed flags need explicit binds to their config keys.
		if err := config.BindCommandFlags(cmd.Flags()); err != nil {
			return err
		}

		// Load config and env files
		if err := config.LoadEnvAndConfigFiles(); err != nil {
			return err
		}

		return nil
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("app-home", "", "Path to the app home directory")
	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")

	viper.BindPFlag("app_home", pflags.Lookup("app-home"))
	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))

	// Add subcommands
	Cmd.AddCommand(run.Cmd, ingest.Cmd, pack.Cmd, db.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
