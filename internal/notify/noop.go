package notify

import "context"

// Noop discards all milestones. Used when no webhook URL is configured.
type Noop struct{}

func (Noop) RunStart(context.Context) error                       { return nil }
func (Noop) LoginStart(context.Context, string) error             { return nil }
func (Noop) LoginSuccess(context.Context, string) error           { return nil }
func (Noop) LoginFailure(context.Context, string, string) error   { return nil }
func (Noop) BalanceChecked(context.Context, int) error            { return nil }
func (Noop) RechargeStart(context.Context, int) error             { return nil }
func (Noop) RechargeSuccess(context.Context, int, int) error      { return nil }
func (Noop) RechargeFailure(context.Context, int, string) error   { return nil }
func (Noop) PurchaseStart(context.Context, int) error             { return nil }
func (Noop) PurchaseSuccess(context.Context, int, int, int) error { return nil }
func (Noop) PurchaseFailure(context.Context, int, string) error   { return nil }
func (Noop) RunComplete(context.Context) error                    { return nil }
func (Noop) Critical(context.Context, string, string) error       { return nil }

// ForURL returns a webhook notifier for the URL, or a Noop when empty.
func ForURL(url string) Notifier {
	if url == "" {
		return Noop{}
	}
	return NewWebhookNotifier(url, nil)
}
