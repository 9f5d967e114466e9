package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete simulator configuration, loadable from
// environment variables (PRICING_ prefix), flags, or YAML config files.
type Config struct {
	DatabaseURL  string `usage:"PostgreSQL connection URL (PRICING_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ScenarioFile string `default:"scenario.json" usage:"Path to the cart scenario JSON file" flag:"scenario"`

	// TagGroups is the whitelist of tag groups aggregated into the cart's
	// tag summary. Empty uses the built-in default.
	TagGroups []string `usage:"Tag groups aggregated into the cart tag summary" flag:"tag-groups"`

	// GeneralVoucherCombinable lifts the mutual exclusion between general
	// vouchers and other redeemed vouchers.
	GeneralVoucherCombinable bool `default:"false" usage:"Allow general vouchers to combine with other vouchers" flag:"general-voucher-combinable"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PRICING",
		Files:     []string{"config.yaml", "/etc/pricing/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set PRICING_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL to the PRICING_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
