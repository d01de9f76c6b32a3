package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jhpark-dev/lottoctl/internal/browser"
	"github.com/jhpark-dev/lottoctl/internal/notify"
	"github.com/jhpark-dev/lottoctl/internal/repositories"
	"github.com/jhpark-dev/lottoctl/internal/services"
	"github.com/jhpark-dev/lottoctl/internal/shared"
	"github.com/jhpark-dev/lottoctl/internal/tasks"
	"github.com/jhpark-dev/lottoctl/internal/vault"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.Service
	notifier   notify.Notifier
	history    tasks.HistoryStore
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Service, Notifier and History are optional; when nil the runner builds
// them from the loaded configuration. Tests inject doubles here.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service
	Notifier   notify.Notifier
	History    tasks.HistoryStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		notifier:   opts.Notifier,
		history:    opts.History,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, credentialsCommand, configCommand, numbersCommand, historyCommand, siteCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reloads configuration from the command's --config flag and
// applies environment overrides.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return err
			}
			r.config = config
			r.configPath = path
		}
	}

	return shared.ApplyEnvOverrides(r.config)
}

// openVault returns the credential store at the command's --file flag or
// the configured path.
func (r *Runner) openVault(cmd *cli.Command) *vault.Vault {
	path := cmd.String("file")
	if path == "" {
		path = r.config.Security.CredentialsFile
	}
	if path == "" {
		path = "credentials.enc"
	}
	return vault.New(path)
}

// loadCredentials resolves the master password and decrypts the store.
// Without a credential file, LOTTO_USER_ID and LOTTO_PASSWORD stand in so
// containers can run without an interactive 'credentials set'.
func (r *Runner) loadCredentials(cmd *cli.Command) (*vault.Credentials, error) {
	store := r.openVault(cmd)
	if !store.Exists() {
		userID := os.Getenv("LOTTO_USER_ID")
		password := os.Getenv("LOTTO_PASSWORD")
		if userID != "" && password != "" {
			r.logger.Warn("no credential file, using LOTTO_USER_ID/LOTTO_PASSWORD from the environment")
			creds := &vault.Credentials{
				UserID:           userID,
				Password:         password,
				RechargePassword: os.Getenv("LOTTO_RECHARGE_PASSWORD"),
			}
			if err := creds.Validate(); err != nil {
				return nil, err
			}
			return creds, nil
		}
		return nil, fmt.Errorf("%w: no credential file at %s (run 'credentials set' first)", shared.ErrMissingCredentials, store.Path())
	}

	master, err := vault.ResolveMasterPassword(cmd.String("master-password"), true)
	if err != nil {
		return nil, err
	}

	return store.Load(master)
}

// openHistory opens the purchase database, running migrations as needed.
// The caller owns the returned handle.
func (r *Runner) openHistory() (*sql.DB, *repositories.PurchaseRepository, error) {
	path := r.config.Database.Path
	if path == "" {
		path = "lottoctl.db"
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, repositories.NewPurchaseRepository(db), nil
}

// siteService returns the injected service or launches a browser-backed one.
// The cleanup function closes the browser when one was started.
func (r *Runner) siteService(ctx context.Context) (services.Service, func(), error) {
	if r.service != nil {
		return r.service, func() {}, nil
	}

	opts := browser.Options{
		Headless: r.config.Options.Headless,
		ExecPath: r.config.Options.BrowserPath,
	}
	if r.config.Options.WaitTime > 0 {
		opts.Timeout = time.Duration(r.config.Options.WaitTime) * time.Second
	}

	session, err := browser.NewSession(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}

	return services.NewDhlotteryService(session, r.logger), session.Close, nil
}

// runNotifier returns the injected notifier or one for the configured webhook.
func (r *Runner) runNotifier(cmd *cli.Command) notify.Notifier {
	if cmd.Bool("no-notify") {
		return notify.Noop{}
	}
	if r.notifier != nil {
		return r.notifier
	}
	if r.config.Notify.WebhookURL == "" {
		return notify.Noop{}
	}
	return notify.NewWebhookNotifier(r.config.Notify.WebhookURL, r.httpClient)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
