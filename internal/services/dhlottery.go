package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jhpark-dev/lottoctl/internal/shared"
)

// Site page URLs.
const (
	LoginURL    = "https://www.dhlottery.co.kr/user.do?method=login"
	MyPageURL   = "https://www.dhlottery.co.kr/myPage.do?method=myPage"
	GameURL     = "https://ol.dhlottery.co.kr/olotto/game/game645.do"
	RechargeURL = "https://www.dhlottery.co.kr/payment.do?method=payment"
)

// driver is the subset of the browser session the site client uses.
// *browser.Session satisfies it; tests substitute a scripted fake.
type driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string) error
	SetValue(ctx context.Context, sel, value string) error
	Click(ctx context.Context, sel string) error
	ClickScript(ctx context.Context, sel string) error
	PressEnter(ctx context.Context, sel string) error
	Text(ctx context.Context, sel string) (string, error)
	Texts(ctx context.Context, sel string) ([]string, error)
	Evaluate(ctx context.Context, js string, out any) error
	Exists(ctx context.Context, sel string) (bool, error)
	IsChecked(ctx context.Context, sel string) (bool, error)
	SelectValue(ctx context.Context, sel, value string) error
	CurrentURL(ctx context.Context) (string, error)
	PageSource(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
}

// Selector fallback chains. The site's markup shifts between revisions, so
// every lookup tries several selectors in order, the way the original
// automation did.
var (
	userIDSelectors = []string{
		"#userId",
		"input[name='userId']",
		"input[type='text']",
	}
	passwordSelectors = []string{
		"#password",
		"input[name='password']",
		"input[type='password']",
	}
	loginButtonSelectors = []string{
		"input[type='submit'][value='로그인']",
		"button[type='submit']",
		"input[type='submit']",
		".btn_login",
	}
	balanceSelectors = []string{
		"td.ta_right",
		"strong.total_new",
		"div.money strong",
		"p.total_new strong",
	}
	rechargeAmountSelectors = []string{
		"#Amt",
		"select[name='Amt']",
		"#amount",
	}
	rechargeButtonSelectors = []string{
		"#btnPay",
		"input[value='충전하기']",
		"button.btn_common",
	}
)

// Login success and failure markers in the post-submit page.
var (
	loginSuccessMarkers = []string{"마이페이지", "로그아웃", "myPage", "logout"}
	loginFailureMarkers = []string{"아이디나 비밀번호", "로그인 실패", "잘못된"}
)

// DhlotteryService drives dhlottery.co.kr through a browser session.
type DhlotteryService struct {
	drv    driver
	logger *log.Logger
	settle time.Duration // wait after submits for the site to re-render
}

// NewDhlotteryService creates a site client over a browser driver.
func NewDhlotteryService(drv driver, logger *log.Logger) *DhlotteryService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DhlotteryService{drv: drv, logger: logger, settle: 2 * time.Second}
}

// Name implements Service.
func (s *DhlotteryService) Name() string { return "dhlottery" }

// Login implements Service.
func (s *DhlotteryService) Login(ctx context.Context, userID, password string) error {
	if userID == "" || password == "" {
		return fmt.Errorf("%w: user id and password required", shared.ErrMissingCredentials)
	}

	if err := s.drv.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}

	idSel, err := s.firstExisting(ctx, userIDSelectors)
	if err != nil {
		return fmt.Errorf("%w: user id field not found", shared.ErrLoginFailed)
	}
	if err := s.drv.SetValue(ctx, idSel, userID); err != nil {
		return fmt.Errorf("%w: failed to enter user id: %v", shared.ErrLoginFailed, err)
	}

	pwSel, err := s.firstExisting(ctx, passwordSelectors)
	if err != nil {
		return fmt.Errorf("%w: password field not found", shared.ErrLoginFailed)
	}
	if err := s.drv.SetValue(ctx, pwSel, password); err != nil {
		return fmt.Errorf("%w: failed to enter password: %v", shared.ErrLoginFailed, err)
	}

	if btnSel, err := s.firstExisting(ctx, loginButtonSelectors); err == nil {
		if err := s.drv.ClickScript(ctx, btnSel); err != nil {
			return fmt.Errorf("%w: failed to submit: %v", shared.ErrLoginFailed, err)
		}
	} else {
		// No button matched; submit with Enter from the password field.
		if err := s.drv.PressEnter(ctx, pwSel); err != nil {
			return fmt.Errorf("%w: failed to submit: %v", shared.ErrLoginFailed, err)
		}
	}

	if err := s.wait(ctx, s.settle); err != nil {
		return err
	}

	return s.confirmLogin(ctx)
}

// confirmLogin inspects the post-submit page for success or failure markers.
func (s *DhlotteryService) confirmLogin(ctx context.Context) error {
	url, err := s.drv.CurrentURL(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}
	source, err := s.drv.PageSource(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}

	for _, marker := range loginFailureMarkers {
		if strings.Contains(source, marker) {
			return fmt.Errorf("%w: site reported %q", shared.ErrLoginFailed, marker)
		}
	}
	for _, marker := range loginSuccessMarkers {
		if strings.Contains(url, marker) || strings.Contains(source, marker) {
			return nil
		}
	}

	return fmt.Errorf("%w: could not confirm login state at %s", shared.ErrLoginFailed, url)
}

// Balance implements Service.
//
// The deposit figure has no stable selector, so every candidate's text is
// parsed and the first plausible amount wins.
func (s *DhlotteryService) Balance(ctx context.Context) (int, error) {
	if err := s.drv.Navigate(ctx, MyPageURL); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}
	if err := s.wait(ctx, s.settle); err != nil {
		return 0, err
	}

	for _, sel := range balanceSelectors {
		texts, err := s.drv.Texts(ctx, sel)
		if err != nil {
			continue
		}
		for _, text := range texts {
			amount, err := ParseWon(text)
			if err != nil {
				continue
			}
			if !PlausibleBalance(amount) {
				s.logger.Debug("discarding implausible amount", "selector", sel, "amount", amount)
				continue
			}
			s.logger.Info("deposit balance read", "selector", sel, "amount", amount)
			return amount, nil
		}
	}

	return 0, shared.ErrBalanceUnknown
}

// Recharge implements Service.
func (s *DhlotteryService) Recharge(ctx context.Context, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: recharge amount must be positive, got %d", shared.ErrRechargeFailed, amount)
	}

	if err := s.drv.Navigate(ctx, RechargeURL); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}

	amtSel, err := s.firstExisting(ctx, rechargeAmountSelectors)
	if err != nil {
		return fmt.Errorf("%w: amount field not found", shared.ErrRechargeFailed)
	}
	if err := s.drv.SelectValue(ctx, amtSel, fmt.Sprintf("%d", amount)); err != nil {
		return fmt.Errorf("%w: failed to set amount: %v", shared.ErrRechargeFailed, err)
	}

	btnSel, err := s.firstExisting(ctx, rechargeButtonSelectors)
	if err != nil {
		return fmt.Errorf("%w: submit button not found", shared.ErrRechargeFailed)
	}
	if err := s.drv.ClickScript(ctx, btnSel); err != nil {
		return fmt.Errorf("%w: failed to submit: %v", shared.ErrRechargeFailed, err)
	}

	return s.wait(ctx, s.settle)
}

// PurchaseGame implements Service.
func (s *DhlotteryService) PurchaseGame(ctx context.Context, game Game) error {
	if err := s.setupGamePage(ctx); err != nil {
		return err
	}

	switch game.Mode {
	case "auto":
		if err := s.checkAutoSelect(ctx); err != nil {
			return err
		}
	case "semi":
		if err := s.clickNumbers(ctx, game.Numbers); err != nil {
			return err
		}
		if err := s.checkAutoSelect(ctx); err != nil {
			return err
		}
	case "manual":
		if err := s.clickNumbers(ctx, game.Numbers); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown play mode %q", shared.ErrPurchaseFailed, game.Mode)
	}

	if err := s.drv.ClickScript(ctx, "#btnSelectNum"); err != nil {
		return fmt.Errorf("%w: failed to confirm selection: %v", shared.ErrPurchaseFailed, err)
	}
	if err := s.wait(ctx, s.settle); err != nil {
		return err
	}

	return s.completePurchase(ctx)
}

// setupGamePage opens the game page, activates the mixed-selection tab, and
// sets the per-slip quantity to one game.
func (s *DhlotteryService) setupGamePage(ctx context.Context) error {
	if err := s.drv.Navigate(ctx, GameURL); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSiteUnavailable, err)
	}
	if err := s.drv.WaitVisible(ctx, "#amoundApply"); err != nil {
		return fmt.Errorf("%w: game page did not load", shared.ErrPurchaseFailed)
	}

	// Tab switch is best effort; the default tab usually works.
	if err := s.drv.Evaluate(ctx, "selectWayTab(0); true", nil); err != nil {
		s.logger.Debug("selectWayTab failed", "err", err)
	}

	if err := s.drv.SelectValue(ctx, "#amoundApply", "1"); err != nil {
		return fmt.Errorf("%w: failed to set quantity: %v", shared.ErrPurchaseFailed, err)
	}

	return nil
}

// clickNumbers toggles the given number checkboxes on.
func (s *DhlotteryService) clickNumbers(ctx context.Context, numbers []int) error {
	for _, n := range numbers {
		sel := fmt.Sprintf("#check645num%d", n)
		checked, err := s.drv.IsChecked(ctx, sel)
		if err != nil {
			return fmt.Errorf("%w: number %d not found: %v", shared.ErrPurchaseFailed, n, err)
		}
		if checked {
			continue
		}
		if err := s.drv.ClickScript(ctx, sel); err != nil {
			return fmt.Errorf("%w: failed to pick number %d: %v", shared.ErrPurchaseFailed, n, err)
		}
	}
	return nil
}

// checkAutoSelect turns on the checkbox that lets the site fill the
// remaining numbers.
func (s *DhlotteryService) checkAutoSelect(ctx context.Context) error {
	checked, err := s.drv.IsChecked(ctx, "#checkAutoSelect")
	if err != nil {
		return fmt.Errorf("%w: auto-select checkbox not found: %v", shared.ErrPurchaseFailed, err)
	}
	if !checked {
		if err := s.drv.ClickScript(ctx, "#checkAutoSelect"); err != nil {
			return fmt.Errorf("%w: failed to enable auto-select: %v", shared.ErrPurchaseFailed, err)
		}
	}
	return nil
}

// completePurchase clicks buy and confirms the popup.
func (s *DhlotteryService) completePurchase(ctx context.Context) error {
	if err := s.drv.ClickScript(ctx, "#btnBuy"); err != nil {
		return fmt.Errorf("%w: buy button not found: %v", shared.ErrPurchaseFailed, err)
	}
	if err := s.wait(ctx, s.settle); err != nil {
		return err
	}

	// The confirmation popup exposes a global close function; fall back to
	// clicking its confirm button when the function is missing.
	if err := s.drv.Evaluate(ctx, "closepopupLayerConfirm(true); true", nil); err == nil {
		return s.wait(ctx, s.settle)
	}

	for _, sel := range []string{
		"input[value='확인']",
		"#popupLayerConfirm input.button.lv2",
	} {
		if err := s.drv.ClickScript(ctx, sel); err == nil {
			return s.wait(ctx, s.settle)
		}
	}

	return fmt.Errorf("%w: purchase confirmation not found", shared.ErrPurchaseFailed)
}

// Screenshot captures the current page, for post-purchase receipts.
func (s *DhlotteryService) Screenshot(ctx context.Context, path string) error {
	return s.drv.Screenshot(ctx, path)
}

// firstExisting returns the first selector that matches a node.
func (s *DhlotteryService) firstExisting(ctx context.Context, selectors []string) (string, error) {
	for _, sel := range selectors {
		found, err := s.drv.Exists(ctx, sel)
		if err != nil {
			continue
		}
		if found {
			return sel, nil
		}
	}
	return "", fmt.Errorf("no selector matched: %v", selectors)
}

// wait sleeps while honoring context cancellation.
func (s *DhlotteryService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
