package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Purchase.Count != 5 {
			t.Errorf("expected purchase count 5, got %d", config.Purchase.Count)
		}

		if config.Payment.MinBalance != 5000 {
			t.Errorf("expected min balance 5000, got %d", config.Payment.MinBalance)
		}

		if config.Payment.AutoRecharge {
			t.Error("auto recharge should be disabled by default")
		}

		if config.Database.Path != "./lottoctl.db" {
			t.Errorf("expected database path ./lottoctl.db, got %s", config.Database.Path)
		}

		if !config.Options.Headless {
			t.Error("headless should be enabled by default")
		}

		if len(config.Purchase.Games) != 5 {
			t.Errorf("expected 5 default game slots, got %d", len(config.Purchase.Games))
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "lotto_config.json")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "lotto_config.json")

		testConfig := `{
  "purchase": {
    "count": 2,
    "games": [
      {"mode": "semi", "numbers": [3, 11, 27]},
      {"mode": "manual", "numbers": [1, 9, 17, 25, 33, 41]}
    ]
  },
  "payment": {"auto_recharge": true, "recharge_amount": 10000, "min_balance": 2000},
  "notify": {"webhook_url": "https://discord.com/api/webhooks/x/y"},
  "database": {"path": "/custom/path.db"},
  "options": {"headless": false, "purchase_days": ["saturday"]}
}`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Purchase.Count != 2 {
			t.Errorf("expected purchase count 2, got %d", config.Purchase.Count)
		}

		if !config.Payment.AutoRecharge {
			t.Error("expected auto recharge enabled")
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if got := config.Purchase.Games[0].Numbers; len(got) != 3 || got[0] != 3 {
			t.Errorf("unexpected semi numbers: %v", got)
		}
	})

	t.Run("LoadConfig TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[purchase]
count = 1

[[purchase.games]]
mode = "auto"

[payment]
auto_recharge = false
recharge_amount = 50000
min_balance = 1000

[notify]
webhook_url = "https://example.com/hook"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load TOML config: %v", err)
		}

		if config.Purchase.Count != 1 {
			t.Errorf("expected purchase count 1, got %d", config.Purchase.Count)
		}

		if config.Notify.WebhookURL != "https://example.com/hook" {
			t.Errorf("unexpected webhook url: %s", config.Notify.WebhookURL)
		}
	})

	t.Run("LoadConfig rejects malformed JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "lotto_config.json")

		if err := os.WriteFile(configPath, []byte(`{"purchase": `), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("malformed JSON should be rejected")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Config)
		}{
			{"count too high", func(c *Config) { c.Purchase.Count = 6 }},
			{"count zero", func(c *Config) { c.Purchase.Count = 0 }},
			{"bad mode", func(c *Config) { c.Purchase.Games[0].Mode = "turbo" }},
			{"bad source", func(c *Config) { c.Purchase.Games[0].Source = "ai" }},
			{"number out of range", func(c *Config) { c.Purchase.Games[0].Numbers = []int{46} }},
			{"negative recharge", func(c *Config) { c.Payment.RechargeAmount = -1 }},
			{"bad day", func(c *Config) { c.Options.PurchaseDays = []string{"someday"} }},
		}

		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				err := config.Validate()
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyEnvOverrides", func(t *testing.T) {
		t.Setenv("LOTTO_PURCHASE_COUNT", "3")
		t.Setenv("LOTTO_AUTO_RECHARGE", "true")
		t.Setenv("LOTTO_MIN_BALANCE", "7000")
		t.Setenv("LOTTO_HEADLESS", "false")
		t.Setenv("LOTTO_WEBHOOK_URL", "https://example.com/hook")

		config := DefaultConfig()
		if err := ApplyEnvOverrides(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Purchase.Count != 3 {
			t.Errorf("expected count override 3, got %d", config.Purchase.Count)
		}
		if !config.Payment.AutoRecharge {
			t.Error("expected auto recharge override")
		}
		if config.Payment.MinBalance != 7000 {
			t.Errorf("expected min balance override 7000, got %d", config.Payment.MinBalance)
		}
		if config.Notify.WebhookURL != "https://example.com/hook" {
			t.Errorf("unexpected webhook url: %s", config.Notify.WebhookURL)
		}
		if InContainer() {
			t.Skip("container environment forces headless")
		}
		if config.Options.Headless {
			t.Error("expected headless override to false")
		}
	})

	t.Run("ApplyEnvOverrides rejects out-of-range count", func(t *testing.T) {
		for _, v := range []string{"0", "99"} {
			t.Setenv("LOTTO_PURCHASE_COUNT", v)

			err := ApplyEnvOverrides(DefaultConfig())
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("count %s: expected ErrInvalidConfig, got %v", v, err)
			}
		}
	})
}
