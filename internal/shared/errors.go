package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Workflow errors
	ErrLoginFailed         = fmt.Errorf("login failed")
	ErrBalanceUnknown      = fmt.Errorf("deposit balance could not be read")
	ErrInsufficientBalance = fmt.Errorf("insufficient deposit balance")
	ErrRechargeFailed      = fmt.Errorf("recharge failed")
	ErrPurchaseFailed      = fmt.Errorf("purchase failed")
	ErrSiteUnavailable     = fmt.Errorf("site unavailable")
	ErrTimeout             = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
