package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Dashed CLI flag names mapped to the config keys they feed. Flags not
// listed here share their name with their key and need no translation.
var flagConfigKeys = map[string]string{
	"app-home":        "app_home",
	"inbound-dir":     "inbound_dir",
	"storage-dir":     "storage_dir",
	"filesystem-type": "filesystem_type",
	"db-driver":       "db.driver",
	"db-dsn":          "db.dsn",
	"s3-access-key":   "s3.access_key",
	"s3-secret-key":   "s3.secret_key",
	"s3-region-name":  "s3.region_name",
	"s3-bucket-name":  "s3.bucket_name",
	"s3-folder":       "s3.folder",
	"s3-public-url":   "s3.public_url",
	"s3-endpoint-url": "s3.endpoint_url",
}

// BindCommandFlags binds each known flag in the set to its config key,
// so a dashed flag lands on the underscored or nested key the Config
// struct unmarshals from.
func BindCommandFlags(flags *pflag.FlagSet) error {
	for name, key := range flagConfigKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}

		if err := viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}

	return nil
}
