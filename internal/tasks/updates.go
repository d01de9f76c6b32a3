package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a purchase run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Login Phase = iota
	CheckBalance
	Recharge
	Purchase
	SaveHistory
	Complete
)

func (p Phase) String() string {
	switch p {
	case Login:
		return "login"
	case CheckBalance:
		return "check_balance"
	case Recharge:
		return "recharge"
	case Purchase:
		return "purchase"
	case SaveHistory:
		return "save_history"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func loginUpdate(userID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Login,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Logging in as %s...", userID),
	}
}

func balanceUpdate(balance int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckBalance,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Deposit balance: %d won", balance),
		Data:    balance,
	}
}

func checkingBalanceUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckBalance,
		Step:    1,
		Total:   1,
		Message: "Reading deposit balance...",
	}
}

func rechargeUpdate(amount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Recharge,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recharging %d won...", amount),
	}
}

func purchaseGameUpdate(step, total int, game GameResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Purchase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Buying %s game...", step, total, game.Mode),
		Data:    game,
	}
}

func purchaseDoneUpdate(step, total int, game GameResult) ProgressUpdate {
	status := "✓"
	if !game.Succeeded {
		status = "✗"
	}
	return ProgressUpdate{
		Phase:   Purchase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s game", step, total, status, game.Mode),
		Data:    game,
	}
}

func completeUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: message,
	}
}
