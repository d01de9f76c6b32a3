// package services defines interface Service for driving the lottery site
//
// The only production implementation runs a browser session against
// dhlottery.co.kr; tests substitute fakes.
package services

import (
	"context"
)

// Service defines the site operations the purchase workflow needs.
type Service interface {
	// Login authenticates the browser session with the site.
	Login(ctx context.Context, userID, password string) error

	// Balance reads the current deposit balance in won.
	Balance(ctx context.Context) (int, error)

	// Recharge tops up the deposit by the given amount in won.
	Recharge(ctx context.Context, amount int) error

	// PurchaseGame buys a single game with the given picks.
	PurchaseGame(ctx context.Context, game Game) error

	// Name returns the service name for logging.
	Name() string
}

// Game describes one game to buy.
type Game struct {
	Mode    string // "auto", "semi", or "manual"
	Numbers []int  // fixed picks; empty for auto
}

// GamePrice is the fixed cost of one Lotto 6/45 game in won.
const GamePrice = 1000
