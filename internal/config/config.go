package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcuszucareli/house-price-app/internal/utils/pathutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	FilesystemLocal = "local"
	FilesystemS3    = "s3"
)

const housePrefix = "HOUSE"

type Config struct {
	Port        int    `mapstructure:"port"`
	Host        string `mapstructure:"host"`
	Environment string `mapstructure:"environment"`
	AppHome     string `mapstructure:"app_home"`

	// Ingestion filesystem contract
	InboundDir string `mapstructure:"inbound_dir"`
	StorageDir string `mapstructure:"storage_dir"`
	TempDir    string `mapstructure:"temp_dir"`

	Filesystem string          `mapstructure:"filesystem_type"`
	DB         *DBConfig       `mapstructure:"db"`
	S3         *S3Config       `mapstructure:"s3"`
	Geocoder   *GeocoderConfig `mapstructure:"geocoder"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type S3Config struct {
	Folder      string `mapstructure:"folder"`
	Region      string `mapstructure:"region_name"`
	Bucket      string `mapstructure:"bucket_name"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	PublicUrl   string `mapstructure:"public_url"`
	EndpointUrl string `mapstructure:"endpoint_url"`
}

type GeocoderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

var config *Config

// LoadEnvAndConfigFiles resolves the app home directory, loads the .env
// and config.yaml files living there (when present) and unmarshals the
// final viper state into the package-level config.
func LoadEnvAndConfigFiles() error {
	appHome, err := getAppHome()
	if err != nil {
		return err
	}

	inboundDir, err := getSubDir(appHome, "inbound_dir", "ingestion")
	if err != nil {
		return err
	}

	storageDir, err := getSubDir(appHome, "storage_dir", "storage")
	if err != nil {
		return err
	}

	tempDir, err := getSubDir(appHome, "temp_dir", "temp")
	if err != nil {
		return err
	}

	viper.Set("app_home", appHome)
	viper.Set("inbound_dir", inboundDir)
	viper.Set("storage_dir", storageDir)
	viper.Set("temp_dir", tempDir)

	viper.SetDefault("db.driver", DefaultDBDriver)
	viper.SetDefault("db.dsn", DefaultDBDsn)
	viper.SetDefault("filesystem_type", FilesystemLocal)

	envFile := filepath.Join(appHome, ".env")
	configFile := filepath.Join(appHome, "config.yaml")

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat .env file: %w", err)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(housePrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	viper.SetConfigFile(configFile)

	return LoadConfig(false)
}

func LoadConfig(reload bool) error {
	if config != nil && !reload {
		return fmt.Errorf("config already loaded")
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is the normal state of a fresh install:
		// defaults, env vars and flags still apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) && !os.IsNotExist(errors.Unwrap(err)) && !os.IsNotExist(err) {
			return fmt.Errorf("error reading config: %w", err)
		}
		fmt.Println("No config file found. Using default config.")
	}

	config = &Config{}
	err := viper.Unmarshal(config)
	if err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	return nil
}

func GetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

// Returns the app home directory path.
// It attempts to retrieve it from the following sources in order:
// 1. The `app_home` flag from viper.
// 2. The `HOUSE_HOME` environment variable.
// 3. The default home directory.
func getAppHome() (string, error) {
	appHome := viper.GetString("app_home")
	if appHome == "" {
		appHome = os.Getenv("HOUSE_HOME")
		if appHome == "" {
			appHome = DefaultAppHome
		}
	}

	appHome, err := pathutil.ExpandPath(appHome)
	if err != nil {
		return "", fmt.Errorf("failed to expand app home path: %w", err)
	}

	return appHome, nil
}

func getSubDir(appHome string, key string, fallback string) (string, error) {
	if appHome == "" {
		return "", ErrAppHomeNotSet
	}

	dir := viper.GetString(key)
	if dir == "" {
		dir = filepath.Join(appHome, fallback)
	}

	dir, err := pathutil.ExpandPath(dir)
	if err != nil {
		return "", ErrAppHomeExpandFailed
	}

	return dir, nil
}
