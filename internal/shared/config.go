package shared

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.json
var exampleConf []byte

// Config represents the application configuration loaded from a JSON or TOML file.
type Config struct {
	Purchase PurchaseConfig `json:"purchase" toml:"purchase"`
	Payment  PaymentConfig  `json:"payment" toml:"payment"`
	Notify   NotifyConfig   `json:"notify" toml:"notify"`
	Database DatabaseConfig `json:"database" toml:"database"`
	Security SecurityConfig `json:"security" toml:"security"`
	Options  OptionsConfig  `json:"options" toml:"options"`
}

// PurchaseConfig declares how many games to buy and how each one is played.
type PurchaseConfig struct {
	Count int          `json:"count" toml:"count"`
	Games []GameConfig `json:"games" toml:"games"`
}

// GameConfig declares the play mode for a single game slot.
//
// Mode is one of "auto", "semi", "manual". Numbers fixes the picks for
// semi (up to 3) and manual (exactly 6) games; when empty, Source selects
// the generation strategy ("random", "frequent", "rare", "hot", "mixed").
type GameConfig struct {
	Mode    string `json:"mode" toml:"mode"`
	Numbers []int  `json:"numbers,omitempty" toml:"numbers"`
	Source  string `json:"source,omitempty" toml:"source"`
}

// PaymentConfig contains deposit recharge settings.
type PaymentConfig struct {
	AutoRecharge   bool `json:"auto_recharge" toml:"auto_recharge"`
	RechargeAmount int  `json:"recharge_amount" toml:"recharge_amount"`
	MinBalance     int  `json:"min_balance" toml:"min_balance"`
}

// NotifyConfig contains webhook notification settings.
type NotifyConfig struct {
	WebhookURL string `json:"webhook_url" toml:"webhook_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `json:"path" toml:"path"`
	MaxOpenConns int    `json:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns" toml:"max_idle_conns"`
}

// SecurityConfig contains credential storage settings.
type SecurityConfig struct {
	CredentialsFile string `json:"credentials_file" toml:"credentials_file"`
}

// OptionsConfig contains browser and run behavior settings.
type OptionsConfig struct {
	Headless       bool     `json:"headless" toml:"headless"`
	SaveScreenshot bool     `json:"save_screenshot" toml:"save_screenshot"`
	ScreenshotDir  string   `json:"screenshot_dir" toml:"screenshot_dir"`
	WaitTime       int      `json:"wait_time" toml:"wait_time"`
	BrowserPath    string   `json:"browser_path" toml:"browser_path"`
	PurchaseDays   []string `json:"purchase_days" toml:"purchase_days"`
}

var validModes = map[string]bool{"auto": true, "semi": true, "manual": true}

var validSources = map[string]bool{"": true, "random": true, "frequent": true, "rare": true, "hot": true, "mixed": true}

var validDays = map[string]bool{
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true,
}

// MaxGamesPerRun is the site limit on games per purchase session.
const MaxGamesPerRun = 5

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .toml are parsed as TOML; everything else is parsed as
// JSON. The parsed config is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := json.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if c.Purchase.Count < 1 || c.Purchase.Count > MaxGamesPerRun {
		return fmt.Errorf("%w: purchase count must be between 1 and %d, got %d", ErrInvalidConfig, MaxGamesPerRun, c.Purchase.Count)
	}

	for i, game := range c.Purchase.Games {
		if !validModes[game.Mode] {
			return fmt.Errorf("%w: game %d has unknown mode %q", ErrInvalidConfig, i+1, game.Mode)
		}
		if !validSources[game.Source] {
			return fmt.Errorf("%w: game %d has unknown source %q", ErrInvalidConfig, i+1, game.Source)
		}
		for _, n := range game.Numbers {
			if n < 1 || n > 45 {
				return fmt.Errorf("%w: game %d number %d out of range 1..45", ErrInvalidConfig, i+1, n)
			}
		}
	}

	if c.Payment.RechargeAmount < 0 || c.Payment.MinBalance < 0 {
		return fmt.Errorf("%w: payment amounts must not be negative", ErrInvalidConfig)
	}

	for _, day := range c.Options.PurchaseDays {
		if !validDays[strings.ToLower(day)] {
			return fmt.Errorf("%w: unknown purchase day %q", ErrInvalidConfig, day)
		}
	}

	return nil
}

// LoadDotenv loads a .env file from the working directory when one exists.
//
// Missing files are not an error; the original deployment relies on plain
// environment variables in containers.
func LoadDotenv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnvOverrides mutates the config with LOTTO_* environment variables,
// then re-validates so overrides obey the same rules as file loads.
//
// Container environments (DOCKER_ENV set, or /.dockerenv present) force
// headless mode regardless of file settings.
func ApplyEnvOverrides(c *Config) error {
	if v := os.Getenv("LOTTO_PURCHASE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Purchase.Count = n
		}
	}
	if v := os.Getenv("LOTTO_AUTO_RECHARGE"); v != "" {
		c.Payment.AutoRecharge = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LOTTO_RECHARGE_AMOUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Payment.RechargeAmount = n
		}
	}
	if v := os.Getenv("LOTTO_MIN_BALANCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Payment.MinBalance = n
		}
	}
	if v := os.Getenv("LOTTO_HEADLESS"); v != "" {
		c.Options.Headless = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LOTTO_SCREENSHOT"); v != "" {
		c.Options.SaveScreenshot = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LOTTO_WEBHOOK_URL"); v != "" {
		c.Notify.WebhookURL = v
	}

	if InContainer() {
		c.Options.Headless = true
	}

	return c.Validate()
}

// InContainer reports whether the process appears to run inside a container.
func InContainer() bool {
	if os.Getenv("DOCKER_ENV") != "" {
		return true
	}
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
