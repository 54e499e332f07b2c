// Package config loads the optional blobctl YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/towardsthecloud/blobctl/internal/logging"
	"github.com/towardsthecloud/blobctl/internal/pager"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no --config flag is set.
const EnvPath = "BLOBCTL_CONFIG"

const (
	DefaultPageSize    = 1000
	DefaultConcurrency = 4
	DefaultRetryCount  = 3
)

type Config struct {
	Profile     string         `yaml:"profile"`
	Region      string         `yaml:"region"`
	Endpoint    string         `yaml:"endpoint" validate:"omitempty,url"`
	PathStyle   bool           `yaml:"path_style"`
	Credentials Credentials    `yaml:"credentials"`
	Secondary   Secondary      `yaml:"secondary"`
	Retry       Retry          `yaml:"retry"`
	Listing     Listing        `yaml:"listing"`
	Transfer    Transfer       `yaml:"transfer"`
	Log         logging.Config `yaml:"log"`
}

// Credentials pins a static access key pair. Both fields or neither.
type Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `yaml:"secret_access_key" validate:"required_with=AccessKeyID"`
}

// Secondary is the read-only replica endpoint used by secondary location modes.
type Secondary struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
}

func (s Secondary) Enabled() bool {
	return s.Region != "" || s.Endpoint != ""
}

type Retry struct {
	Mode     string        `yaml:"mode" validate:"omitempty,oneof=exponential fixed container-being-deleted none"`
	Count    int           `yaml:"count" validate:"gte=0,lte=20"`
	Interval time.Duration `yaml:"interval" validate:"gte=0"`
}

type Listing struct {
	PageSize     int      `yaml:"page_size" validate:"gt=0"`
	Include      []string `yaml:"include"`
	LocationMode string   `yaml:"location_mode"`
}

type Transfer struct {
	Concurrency int `yaml:"concurrency" validate:"gt=0,lte=64"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Retry: Retry{
			Count:    DefaultRetryCount,
			Interval: 5 * time.Second,
		},
		Listing: Listing{
			PageSize:     DefaultPageSize,
			LocationMode: string(pager.PrimaryOnly),
		},
		Transfer: Transfer{Concurrency: DefaultConcurrency},
		Log:      logging.Config{Level: logging.DefaultLevel, Format: logging.FormatConsole},
	}
}

// Path resolves the config file location from the flag value or the
// environment. An empty result means no file.
func Path(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return strings.TrimSpace(os.Getenv(EnvPath))
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the listing options.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.ListingOptions(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ListingOptions converts the listing section into pager options.
func (c Config) ListingOptions() (pager.Options, error) {
	mode, err := pager.ParseLocationMode(c.Listing.LocationMode)
	if err != nil {
		return pager.Options{}, err
	}

	opts := pager.Options{
		MaxResults:   c.Listing.PageSize,
		Include:      pager.ParseInclude(c.Listing.Include),
		LocationMode: mode,
	}
	if err := opts.Validate(); err != nil {
		return pager.Options{}, err
	}
	return opts, nil
}
