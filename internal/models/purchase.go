package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PurchaseRecord is one game bought (or attempted) during a run.
//
// Numbers are stored as a comma-separated string in the database; an empty
// set means the site picked them (auto mode).
type PurchaseRecord struct {
	id        string
	sequence  int
	runID     string
	gameIndex int
	mode      string
	source    string
	numbers   []int
	cost      int
	succeeded bool
	errText   string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPurchaseRecord creates a record for one game in a run.
func NewPurchaseRecord(runID string, gameIndex int, mode, source string, numbers []int, cost int) *PurchaseRecord {
	now := time.Now()
	return &PurchaseRecord{
		runID:     runID,
		gameIndex: gameIndex,
		mode:      mode,
		source:    source,
		numbers:   numbers,
		cost:      cost,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PurchaseRecord) ID() string            { return p.id }
func (p *PurchaseRecord) Sequence() int         { return p.sequence }
func (p *PurchaseRecord) RunID() string         { return p.runID }
func (p *PurchaseRecord) GameIndex() int        { return p.gameIndex }
func (p *PurchaseRecord) Mode() string          { return p.mode }
func (p *PurchaseRecord) Source() string        { return p.source }
func (p *PurchaseRecord) Numbers() []int        { return p.numbers }
func (p *PurchaseRecord) Cost() int             { return p.cost }
func (p *PurchaseRecord) Succeeded() bool       { return p.succeeded }
func (p *PurchaseRecord) Error() string         { return p.errText }
func (p *PurchaseRecord) CreatedAt() time.Time  { return p.createdAt }
func (p *PurchaseRecord) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PurchaseRecord) DeletedAt() *time.Time { return p.deletedAt }

func (p *PurchaseRecord) SetID(id string)            { p.id = id }
func (p *PurchaseRecord) SetSequence(seq int)        { p.sequence = seq }
func (p *PurchaseRecord) SetSucceeded(ok bool)       { p.succeeded = ok }
func (p *PurchaseRecord) SetError(msg string)        { p.errText = msg }
func (p *PurchaseRecord) SetCreatedAt(ts time.Time)  { p.createdAt = ts }
func (p *PurchaseRecord) SetUpdatedAt(ts time.Time)  { p.updatedAt = ts }
func (p *PurchaseRecord) SetDeletedAt(ts *time.Time) { p.deletedAt = ts }

// Validate checks the record before persistence.
func (p *PurchaseRecord) Validate() error {
	if p.runID == "" {
		return fmt.Errorf("purchase record requires a run id")
	}
	if p.gameIndex < 0 {
		return fmt.Errorf("game index must not be negative, got %d", p.gameIndex)
	}
	if p.mode == "" {
		return fmt.Errorf("purchase record requires a play mode")
	}
	for _, n := range p.numbers {
		if n < 1 || n > 45 {
			return fmt.Errorf("number %d out of range 1..45", n)
		}
	}
	return nil
}

// NumbersString returns the picks as a comma-separated string for storage.
func (p *PurchaseRecord) NumbersString() string {
	parts := make([]string, len(p.numbers))
	for i, n := range p.numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// SetNumbersString parses a stored comma-separated pick list.
func (p *PurchaseRecord) SetNumbersString(s string) error {
	p.numbers = nil
	if s == "" {
		return nil
	}
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid stored number %q: %w", part, err)
		}
		p.numbers = append(p.numbers, n)
	}
	return nil
}
