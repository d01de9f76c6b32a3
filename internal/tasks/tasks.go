// package tasks implements the lottery purchase workflow.
//
// The core abstraction is BuyEngine, which orchestrates login, balance checks,
// deposit recharges, and game purchases against the lottery site.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jhpark-dev/lottoctl/internal/models"
	"github.com/jhpark-dev/lottoctl/internal/notify"
	"github.com/jhpark-dev/lottoctl/internal/picker"
	"github.com/jhpark-dev/lottoctl/internal/services"
	"github.com/jhpark-dev/lottoctl/internal/shared"
)

// GameResult records the outcome of one game in a run.
type GameResult struct {
	Index     int    `json:"index"`
	Mode      string `json:"mode"`
	Source    string `json:"source,omitempty"`
	Numbers   []int  `json:"numbers,omitempty"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// RunResult contains all data from a full purchase run.
type RunResult struct {
	RunID          string       `json:"run_id"`
	Balance        int          `json:"balance"`         // Balance before purchasing
	FinalBalance   int          `json:"final_balance"`   // Balance after recharge, before purchasing
	Recharged      bool         `json:"recharged"`       // Whether a recharge happened
	RechargeAmount int          `json:"recharge_amount"` // Amount recharged, 0 when none
	Games          []GameResult `json:"games"`           // Individual game outcomes
	SuccessCount   int          `json:"success_count"`   // Games bought
	FailedCount    int          `json:"failed_count"`    // Games that errored
	Spent          int          `json:"spent"`           // Total won spent on games
	DryRun         bool         `json:"dry_run"`
	Skipped        bool         `json:"skipped"`         // Run ended before purchasing
	SkipReason     string       `json:"skip_reason,omitempty"`
	ScreenshotPath string       `json:"screenshot_path,omitempty"`
}

// RunOptions controls a single invocation of the engine.
type RunOptions struct {
	UserID   string
	Password string
	DryRun   bool // Stop after the balance check
	Now      bool // Purchase even when today is not a configured purchase day
}

// Engine defines the purchase workflow operations.
type Engine interface {
	// Run performs a full login → balance → recharge → purchase workflow.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOptions) (*RunResult, error)
}

// HistoryStore persists purchase records.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type HistoryStore interface {
	Create(record *models.PurchaseRecord) error
}

// screenshotter is implemented by site clients that can capture the page.
type screenshotter interface {
	Screenshot(ctx context.Context, path string) error
}

// BuyEngine implements Engine against a lottery site client.
type BuyEngine struct {
	service  services.Service
	notifier notify.Notifier
	picker   *picker.Picker
	history  HistoryStore
	config   *shared.Config
	logger   *log.Logger
	now      func() time.Time
}

// NewBuyEngine creates a new BuyEngine with the provided dependencies.
//
// The notifier may be nil, in which case events are discarded. The history
// store may be nil, in which case purchases are not recorded.
func NewBuyEngine(service services.Service, notifier notify.Notifier, numberPicker *picker.Picker, history HistoryStore, config *shared.Config, logger *log.Logger) *BuyEngine {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if numberPicker == nil {
		numberPicker = picker.New(nil, nil)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BuyEngine{
		service:  service,
		notifier: notifier,
		picker:   numberPicker,
		history:  history,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *BuyEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// notifyEvent runs a notifier call and logs failures without aborting the run.
func (e *BuyEngine) notifyEvent(name string, fn func() error) {
	if err := fn(); err != nil {
		e.logger.Warn("notification failed", "event", name, "err", err)
	}
}

// Run performs a full purchase workflow.
//
// The run stops at the first failed step; individual game failures are
// tolerated and the run fails only when no game succeeds.
func (e *BuyEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOptions) (*RunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: site service not initialized", shared.ErrSiteUnavailable)
	}

	result := &RunResult{
		RunID:  shared.GenerateID(),
		DryRun: opts.DryRun,
	}

	e.notifyEvent("run start", func() error { return e.notifier.RunStart(ctx) })

	e.sendProgress(progress, loginUpdate(opts.UserID))
	e.notifyEvent("login start", func() error { return e.notifier.LoginStart(ctx, opts.UserID) })

	if err := e.service.Login(ctx, opts.UserID, opts.Password); err != nil {
		e.notifyEvent("login failure", func() error { return e.notifier.LoginFailure(ctx, opts.UserID, err.Error()) })
		return result, err
	}
	e.notifyEvent("login success", func() error { return e.notifier.LoginSuccess(ctx, opts.UserID) })

	e.sendProgress(progress, checkingBalanceUpdate())
	balance, err := e.service.Balance(ctx)
	if err != nil {
		e.notifyEvent("critical", func() error { return e.notifier.Critical(ctx, "Balance check failed", err.Error()) })
		return result, err
	}
	result.Balance = balance
	result.FinalBalance = balance
	e.sendProgress(progress, balanceUpdate(balance))
	e.notifyEvent("balance", func() error { return e.notifier.BalanceChecked(ctx, balance) })

	if opts.DryRun {
		result.Skipped = true
		result.SkipReason = "dry run"
		e.sendProgress(progress, completeUpdate("Dry run complete"))
		e.notifyEvent("run complete", func() error { return e.notifier.RunComplete(ctx) })
		return result, nil
	}

	balance, err = e.rechargeIfNeeded(ctx, progress, result, balance)
	if err != nil {
		return result, err
	}

	// A run proceeds as long as the deposit covers at least one game; the
	// purchase loop buys what it can and per-game failures are tolerated.
	if balance < services.GamePrice {
		err := fmt.Errorf("%w: have %d won, need %d won", shared.ErrInsufficientBalance, balance, services.GamePrice)
		e.notifyEvent("critical", func() error { return e.notifier.Critical(ctx, "Insufficient balance", err.Error()) })
		return result, err
	}

	if !opts.Now && !e.purchaseDay() {
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("%s is not a purchase day", e.now().Weekday())
		e.logger.Info("skipping purchase", "reason", result.SkipReason)
		e.sendProgress(progress, completeUpdate(result.SkipReason))
		e.notifyEvent("run complete", func() error { return e.notifier.RunComplete(ctx) })
		return result, nil
	}

	if err := e.purchase(ctx, progress, result); err != nil {
		return result, err
	}

	e.captureReceipt(ctx, result)

	e.sendProgress(progress, completeUpdate(fmt.Sprintf("Bought %d of %d games", result.SuccessCount, len(result.Games))))
	e.notifyEvent("run complete", func() error { return e.notifier.RunComplete(ctx) })
	return result, nil
}

// rechargeIfNeeded tops up the deposit when the balance is below the
// configured floor, then re-reads the balance from the site.
func (e *BuyEngine) rechargeIfNeeded(ctx context.Context, progress chan<- ProgressUpdate, result *RunResult, balance int) (int, error) {
	payment := e.config.Payment
	if balance >= payment.MinBalance || !payment.AutoRecharge {
		return balance, nil
	}

	amount := payment.RechargeAmount
	e.sendProgress(progress, rechargeUpdate(amount))
	e.notifyEvent("recharge start", func() error { return e.notifier.RechargeStart(ctx, amount) })

	if err := e.service.Recharge(ctx, amount); err != nil {
		e.notifyEvent("recharge failure", func() error { return e.notifier.RechargeFailure(ctx, amount, err.Error()) })
		return balance, err
	}

	// The site processes the payment asynchronously; trust its own figure
	// over arithmetic on the old balance.
	newBalance, err := e.service.Balance(ctx)
	if err != nil {
		e.notifyEvent("critical", func() error { return e.notifier.Critical(ctx, "Balance check failed after recharge", err.Error()) })
		return balance, err
	}

	result.Recharged = true
	result.RechargeAmount = amount
	result.FinalBalance = newBalance
	e.sendProgress(progress, balanceUpdate(newBalance))
	e.notifyEvent("recharge success", func() error { return e.notifier.RechargeSuccess(ctx, amount, newBalance) })
	return newBalance, nil
}

// purchase buys each configured game, tolerating individual failures.
func (e *BuyEngine) purchase(ctx context.Context, progress chan<- ProgressUpdate, result *RunResult) error {
	games := e.games()
	total := len(games)

	e.notifyEvent("purchase start", func() error { return e.notifier.PurchaseStart(ctx, total) })

	for i, game := range games {
		gameResult := GameResult{Index: i, Mode: game.Mode, Source: game.Source}

		numbers, err := e.picker.NumbersFor(game.Mode, game.Source, game.Numbers)
		if err == nil {
			gameResult.Numbers = numbers
			e.sendProgress(progress, purchaseGameUpdate(i+1, total, gameResult))
			err = e.service.PurchaseGame(ctx, services.Game{Mode: game.Mode, Numbers: numbers})
		}

		if err != nil {
			gameResult.Error = err.Error()
			e.logger.Error("game purchase failed", "game", i+1, "mode", game.Mode, "err", err)
			result.FailedCount++
		} else {
			gameResult.Succeeded = true
			result.SuccessCount++
			result.Spent += services.GamePrice
		}

		result.Games = append(result.Games, gameResult)
		e.sendProgress(progress, purchaseDoneUpdate(i+1, total, gameResult))
		e.record(result.RunID, gameResult)
	}

	if result.SuccessCount == 0 {
		err := fmt.Errorf("%w: none of %d games succeeded", shared.ErrPurchaseFailed, total)
		e.notifyEvent("purchase failure", func() error { return e.notifier.PurchaseFailure(ctx, total, err.Error()) })
		return err
	}

	e.notifyEvent("purchase success", func() error {
		return e.notifier.PurchaseSuccess(ctx, result.SuccessCount, total, result.Spent)
	})
	return nil
}

// games expands the configured game list to the purchase count, padding with
// auto games and truncating extras.
func (e *BuyEngine) games() []shared.GameConfig {
	games := make([]shared.GameConfig, 0, e.config.Purchase.Count)
	games = append(games, e.config.Purchase.Games...)

	for len(games) < e.config.Purchase.Count {
		games = append(games, shared.GameConfig{Mode: picker.ModeAuto})
	}
	return games[:e.config.Purchase.Count]
}

// record persists one game outcome; persistence failures only log.
func (e *BuyEngine) record(runID string, game GameResult) {
	if e.history == nil {
		return
	}

	cost := 0
	if game.Succeeded {
		cost = services.GamePrice
	}
	rec := models.NewPurchaseRecord(runID, game.Index, game.Mode, game.Source, game.Numbers, cost)
	rec.SetSucceeded(game.Succeeded)
	rec.SetError(game.Error)

	if err := e.history.Create(rec); err != nil {
		e.logger.Warn("failed to record purchase", "game", game.Index, "err", err)
	}
}

// captureReceipt screenshots the post-purchase page when configured.
func (e *BuyEngine) captureReceipt(ctx context.Context, result *RunResult) {
	if !e.config.Options.SaveScreenshot {
		return
	}
	shooter, ok := e.service.(screenshotter)
	if !ok {
		return
	}

	dir := e.config.Options.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("purchase_%s.png", e.now().Format("20060102_150405")))

	if err := shooter.Screenshot(ctx, path); err != nil {
		e.logger.Warn("failed to save screenshot", "path", path, "err", err)
		return
	}
	result.ScreenshotPath = path
}

// purchaseDay reports whether today is one of the configured purchase days.
// An empty list means every day is allowed.
func (e *BuyEngine) purchaseDay() bool {
	days := e.config.Options.PurchaseDays
	if len(days) == 0 {
		return true
	}

	today := strings.ToLower(e.now().Weekday().String())
	for _, day := range days {
		if strings.ToLower(day) == today {
			return true
		}
	}
	return false
}
