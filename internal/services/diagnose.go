package services

import (
	"context"
)

// CheckResult is one probe from a site diagnosis.
type CheckResult struct {
	Page     string `json:"page"`
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Found    bool   `json:"found"`
}

// Diagnose probes the login and game pages and reports which automation
// targets are reachable. Useful when the site markup changes and purchases
// start failing.
func (s *DhlotteryService) Diagnose(ctx context.Context) ([]CheckResult, error) {
	var results []CheckResult

	if err := s.drv.Navigate(ctx, LoginURL); err != nil {
		return nil, err
	}
	results = append(results, s.probe(ctx, "login", "user id field", userIDSelectors...)...)
	results = append(results, s.probe(ctx, "login", "password field", passwordSelectors...)...)
	results = append(results, s.probe(ctx, "login", "submit button", loginButtonSelectors...)...)

	if err := s.drv.Navigate(ctx, GameURL); err != nil {
		return nil, err
	}
	results = append(results, s.probe(ctx, "game", "quantity select", "#amoundApply")...)
	results = append(results, s.probe(ctx, "game", "auto-select checkbox", "#checkAutoSelect")...)
	results = append(results, s.probe(ctx, "game", "selection confirm", "#btnSelectNum")...)
	results = append(results, s.probe(ctx, "game", "buy button", "#btnBuy")...)
	results = append(results, s.probe(ctx, "game", "number checkbox", "#check645num1")...)

	return results, nil
}

func (s *DhlotteryService) probe(ctx context.Context, page, name string, selectors ...string) []CheckResult {
	var results []CheckResult
	for _, sel := range selectors {
		found, err := s.drv.Exists(ctx, sel)
		if err != nil {
			found = false
		}
		results = append(results, CheckResult{Page: page, Name: name, Selector: sel, Found: found})
	}
	return results
}
