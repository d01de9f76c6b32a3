package tasks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/jhpark-dev/lottoctl/internal/models"
	"github.com/jhpark-dev/lottoctl/internal/notify"
	"github.com/jhpark-dev/lottoctl/internal/picker"
	"github.com/jhpark-dev/lottoctl/internal/services"
	"github.com/jhpark-dev/lottoctl/internal/shared"
)

// fakeService scripts site responses and records the call order.
type fakeService struct {
	loginErr     error
	balances     []int
	balanceErrs  []error
	rechargeErr  error
	purchaseErrs []error

	calls       []string
	balanceCall int
	gameCall    int
}

func (f *fakeService) Name() string { return "fake" }

func (f *fakeService) Login(ctx context.Context, userID, password string) error {
	f.calls = append(f.calls, "login")
	return f.loginErr
}

func (f *fakeService) Balance(ctx context.Context) (int, error) {
	f.calls = append(f.calls, "balance")
	i := f.balanceCall
	f.balanceCall++
	if i < len(f.balanceErrs) && f.balanceErrs[i] != nil {
		return 0, f.balanceErrs[i]
	}
	if i >= len(f.balances) {
		return 0, shared.ErrBalanceUnknown
	}
	return f.balances[i], nil
}

func (f *fakeService) Recharge(ctx context.Context, amount int) error {
	f.calls = append(f.calls, fmt.Sprintf("recharge %d", amount))
	return f.rechargeErr
}

func (f *fakeService) PurchaseGame(ctx context.Context, game services.Game) error {
	f.calls = append(f.calls, fmt.Sprintf("purchase %s", game.Mode))
	i := f.gameCall
	f.gameCall++
	if i < len(f.purchaseErrs) {
		return f.purchaseErrs[i]
	}
	return nil
}

// recordingNotifier tracks which events fired in order.
type recordingNotifier struct {
	notify.Noop
	events []string
}

func (r *recordingNotifier) RunStart(context.Context) error {
	r.events = append(r.events, "run_start")
	return nil
}
func (r *recordingNotifier) LoginFailure(context.Context, string, string) error {
	r.events = append(r.events, "login_failure")
	return nil
}
func (r *recordingNotifier) BalanceChecked(ctx context.Context, balance int) error {
	r.events = append(r.events, fmt.Sprintf("balance %d", balance))
	return nil
}
func (r *recordingNotifier) RechargeSuccess(ctx context.Context, amount, newBalance int) error {
	r.events = append(r.events, fmt.Sprintf("recharge_success %d %d", amount, newBalance))
	return nil
}
func (r *recordingNotifier) PurchaseSuccess(ctx context.Context, succeeded, attempted, spent int) error {
	r.events = append(r.events, fmt.Sprintf("purchase_success %d/%d", succeeded, attempted))
	return nil
}
func (r *recordingNotifier) PurchaseFailure(context.Context, int, string) error {
	r.events = append(r.events, "purchase_failure")
	return nil
}
func (r *recordingNotifier) Critical(ctx context.Context, title, detail string) error {
	r.events = append(r.events, "critical")
	return nil
}
func (r *recordingNotifier) RunComplete(context.Context) error {
	r.events = append(r.events, "run_complete")
	return nil
}

func (r *recordingNotifier) has(event string) bool {
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// memoryStore collects records without a database.
type memoryStore struct {
	records []*models.PurchaseRecord
	err     error
}

func (m *memoryStore) Create(rec *models.PurchaseRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func testConfig() *shared.Config {
	return &shared.Config{
		Purchase: shared.PurchaseConfig{
			Count: 2,
			Games: []shared.GameConfig{
				{Mode: "manual", Numbers: []int{1, 2, 3, 4, 5, 6}},
			},
		},
		Payment: shared.PaymentConfig{
			AutoRecharge:   true,
			RechargeAmount: 50000,
			MinBalance:     5000,
		},
	}
}

func testEngine(svc *fakeService, notifier notify.Notifier, store HistoryStore, config *shared.Config) *BuyEngine {
	engine := NewBuyEngine(svc, notifier, picker.New(nil, rand.New(rand.NewSource(1))), store, config, nil)
	engine.now = func() time.Time {
		// A Thursday.
		return time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)
	}
	return engine
}

func opts() RunOptions {
	return RunOptions{UserID: "hong1234", Password: "pw"}
}

func TestRunHappyPath(t *testing.T) {
	svc := &fakeService{balances: []int{20000}}
	notifier := &recordingNotifier{}
	store := &memoryStore{}
	engine := testEngine(svc, notifier, store, testConfig())

	result, err := engine.Run(context.Background(), nil, opts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.SuccessCount != 2 || result.FailedCount != 0 {
		t.Errorf("expected 2 successes, got %d/%d", result.SuccessCount, result.FailedCount)
	}
	if result.Spent != 2*services.GamePrice {
		t.Errorf("expected %d spent, got %d", 2*services.GamePrice, result.Spent)
	}
	if result.Recharged {
		t.Error("balance above floor should not recharge")
	}

	want := []string{"login", "balance", "purchase manual", "purchase auto"}
	if len(svc.calls) != len(want) {
		t.Fatalf("call order mismatch: %v", svc.calls)
	}
	for i, call := range want {
		if svc.calls[i] != call {
			t.Errorf("call %d: expected %q, got %q", i, call, svc.calls[i])
		}
	}

	if !notifier.has("purchase_success 2/2") || !notifier.has("run_complete") {
		t.Errorf("missing notifications: %v", notifier.events)
	}
	if len(store.records) != 2 {
		t.Errorf("expected 2 history records, got %d", len(store.records))
	}
}

func TestRunRecharge(t *testing.T) {
	t.Run("recharges below floor and re-reads balance", func(t *testing.T) {
		svc := &fakeService{balances: []int{1000, 51000}}
		notifier := &recordingNotifier{}
		engine := testEngine(svc, notifier, nil, testConfig())

		result, err := engine.Run(context.Background(), nil, opts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !result.Recharged || result.RechargeAmount != 50000 {
			t.Errorf("expected a 50000 recharge, got %+v", result)
		}
		if result.Balance != 1000 || result.FinalBalance != 51000 {
			t.Errorf("expected balances 1000 then 51000, got %d/%d", result.Balance, result.FinalBalance)
		}
		if !notifier.has("recharge_success 50000 51000") {
			t.Errorf("missing recharge notification: %v", notifier.events)
		}
		if svc.calls[2] != "recharge 50000" || svc.calls[3] != "balance" {
			t.Errorf("expected recharge then balance re-read: %v", svc.calls)
		}
	})

	t.Run("no recharge when disabled", func(t *testing.T) {
		config := testConfig()
		config.Payment.AutoRecharge = false
		svc := &fakeService{balances: []int{1000}}
		engine := testEngine(svc, nil, nil, config)

		result, err := engine.Run(context.Background(), nil, opts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, call := range svc.calls {
			if call == "recharge 50000" {
				t.Error("recharge must not run when disabled")
			}
		}
		if result.SuccessCount != 2 {
			t.Errorf("expected 2 games bought, got %d", result.SuccessCount)
		}
	})

	t.Run("recharge failure stops the run", func(t *testing.T) {
		svc := &fakeService{balances: []int{1000}, rechargeErr: shared.ErrRechargeFailed}
		engine := testEngine(svc, nil, nil, testConfig())

		_, err := engine.Run(context.Background(), nil, opts())
		if !errors.Is(err, shared.ErrRechargeFailed) {
			t.Errorf("expected ErrRechargeFailed, got %v", err)
		}
		for _, call := range svc.calls {
			if call == "purchase manual" {
				t.Error("purchase must not run after a failed recharge")
			}
		}
	})
}

func TestRunInsufficientBalance(t *testing.T) {
	t.Run("fails below a single game's price", func(t *testing.T) {
		config := testConfig()
		config.Payment.AutoRecharge = false
		svc := &fakeService{balances: []int{500}}
		notifier := &recordingNotifier{}
		engine := testEngine(svc, notifier, nil, config)

		_, err := engine.Run(context.Background(), nil, opts())
		if !errors.Is(err, shared.ErrInsufficientBalance) {
			t.Errorf("expected ErrInsufficientBalance, got %v", err)
		}
		for _, call := range svc.calls {
			if call == "purchase manual" || call == "purchase auto" {
				t.Errorf("purchase must not run on an empty deposit: %v", svc.calls)
			}
		}
		if !notifier.has("critical") {
			t.Errorf("missing critical notification: %v", notifier.events)
		}
	})

	t.Run("proceeds when balance covers fewer games than configured", func(t *testing.T) {
		config := testConfig()
		config.Purchase.Count = 5
		config.Payment.AutoRecharge = false
		svc := &fakeService{balances: []int{3000}}
		engine := testEngine(svc, nil, nil, config)

		result, err := engine.Run(context.Background(), nil, opts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Games) != 5 {
			t.Errorf("expected all 5 games attempted, got %d", len(result.Games))
		}
	})
}

func TestRunLoginFailure(t *testing.T) {
	svc := &fakeService{loginErr: shared.ErrLoginFailed}
	notifier := &recordingNotifier{}
	engine := testEngine(svc, notifier, nil, testConfig())

	_, err := engine.Run(context.Background(), nil, opts())
	if !errors.Is(err, shared.ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}

	if len(svc.calls) != 1 {
		t.Errorf("nothing should run after a failed login: %v", svc.calls)
	}
	if !notifier.has("login_failure") {
		t.Errorf("expected a login failure notification: %v", notifier.events)
	}
}

func TestRunDryRun(t *testing.T) {
	svc := &fakeService{balances: []int{800}}
	notifier := &recordingNotifier{}
	engine := testEngine(svc, notifier, nil, testConfig())

	o := opts()
	o.DryRun = true
	result, err := engine.Run(context.Background(), nil, o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Skipped || result.Balance != 800 {
		t.Errorf("expected a skipped run with the balance, got %+v", result)
	}
	if len(svc.calls) != 2 {
		t.Errorf("dry run must stop after the balance check: %v", svc.calls)
	}
	if !notifier.has("run_complete") {
		t.Errorf("dry run should still complete: %v", notifier.events)
	}
}

func TestRunPurchaseDayGate(t *testing.T) {
	config := testConfig()
	config.Options.PurchaseDays = []string{"monday"}

	t.Run("skips off days", func(t *testing.T) {
		svc := &fakeService{balances: []int{20000}}
		engine := testEngine(svc, nil, nil, config)

		result, err := engine.Run(context.Background(), nil, opts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Skipped {
			t.Error("expected purchase to be skipped on an off day")
		}
		for _, call := range svc.calls {
			if call == "purchase manual" {
				t.Error("no purchase on an off day")
			}
		}
	})

	t.Run("now flag overrides the gate", func(t *testing.T) {
		svc := &fakeService{balances: []int{20000}}
		engine := testEngine(svc, nil, nil, config)

		o := opts()
		o.Now = true
		result, err := engine.Run(context.Background(), nil, o)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Skipped || result.SuccessCount != 2 {
			t.Errorf("expected purchases with --now, got %+v", result)
		}
	})

	t.Run("configured day purchases", func(t *testing.T) {
		thursday := testConfig()
		thursday.Options.PurchaseDays = []string{"Thursday"}
		svc := &fakeService{balances: []int{20000}}
		engine := testEngine(svc, nil, nil, thursday)

		result, err := engine.Run(context.Background(), nil, opts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Skipped {
			t.Error("expected purchases on a configured day")
		}
	})
}

func TestRunGameFailures(t *testing.T) {
	t.Run("partial failures tolerated", func(t *testing.T) {
		svc := &fakeService{
			balances:     []int{20000},
			purchaseErrs: []error{shared.ErrPurchaseFailed, nil},
		}
		store := &memoryStore{}
		engine := testEngine(svc, nil, store, testConfig())

		result, err := engine.Run(context.Background(), nil, opts())
		if err != nil {
			t.Fatalf("partial failure should not fail the run: %v", err)
		}
		if result.SuccessCount != 1 || result.FailedCount != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}
		if result.Spent != services.GamePrice {
			t.Errorf("only successful games cost money, spent %d", result.Spent)
		}

		if len(store.records) != 2 {
			t.Fatalf("both outcomes should be recorded, got %d", len(store.records))
		}
		if store.records[0].Succeeded() || store.records[0].Error() == "" {
			t.Error("failed game should be recorded with its error")
		}
	})

	t.Run("total failure fails the run", func(t *testing.T) {
		svc := &fakeService{
			balances:     []int{20000},
			purchaseErrs: []error{shared.ErrPurchaseFailed, shared.ErrPurchaseFailed},
		}
		notifier := &recordingNotifier{}
		engine := testEngine(svc, notifier, nil, testConfig())

		_, err := engine.Run(context.Background(), nil, opts())
		if !errors.Is(err, shared.ErrPurchaseFailed) {
			t.Errorf("expected ErrPurchaseFailed, got %v", err)
		}
		if !notifier.has("purchase_failure") {
			t.Errorf("expected a purchase failure notification: %v", notifier.events)
		}
	})
}

func TestRunProgressUpdates(t *testing.T) {
	svc := &fakeService{balances: []int{20000}}
	engine := testEngine(svc, nil, nil, testConfig())

	progress := make(chan ProgressUpdate, 32)
	if _, err := engine.Run(context.Background(), progress, opts()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(progress)

	var phases []Phase
	for update := range progress {
		phases = append(phases, update.Phase)
	}
	if len(phases) == 0 {
		t.Fatal("expected progress updates")
	}
	if phases[0] != Login {
		t.Errorf("expected the run to start with login, got %s", phases[0])
	}
	if phases[len(phases)-1] != Complete {
		t.Errorf("expected the run to end with complete, got %s", phases[len(phases)-1])
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		Login:        "login",
		CheckBalance: "check_balance",
		Recharge:     "recharge",
		Purchase:     "purchase",
		SaveHistory:  "save_history",
		Complete:     "complete",
		Phase(99):    "",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
