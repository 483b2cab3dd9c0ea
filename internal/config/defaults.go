package config

import "errors"

const DefaultAppHome = "~/.house-price-app"

const (
	DefaultDBDriver = "sqlite"
	DefaultDBDsn    = "file:./data/catalog.db"
)

var (
	DefaultGeocoderBaseURL = "https://www.wikidata.org/wiki/Special:EntityData"

	DefaultGeocoderTimeoutSeconds = 10
)

var (
	ErrAppHomeNotSet       = errors.New("app home directory is not set")
	ErrAppHomeExpandFailed = errors.New("failed to expand app home directory")
)
