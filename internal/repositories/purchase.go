package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jhpark-dev/lottoctl/internal/models"
	"github.com/jhpark-dev/lottoctl/internal/shared"
)

// PurchaseRepository implements models.Repository[*models.PurchaseRecord] for
// the purchase history.
//
// Handles purchase CRUD operations with soft delete support plus run- and
// recency-scoped lookups.
type PurchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new PurchaseRepository with the given database connection
func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create inserts a new purchase record into the database with generated ID and sequence
func (r *PurchaseRepository) Create(purchase *models.PurchaseRecord) error {
	sequence, err := NextSequence(r.db, "purchases")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	purchase.SetID(id)
	purchase.SetSequence(sequence)

	if err := purchase.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO purchases (id, sequence, run_id, game_index, mode, source, numbers, cost, succeeded, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		purchase.RunID(),
		purchase.GameIndex(),
		purchase.Mode(),
		purchase.Source(),
		purchase.NumbersString(),
		purchase.Cost(),
		purchase.Succeeded(),
		purchase.Error(),
		purchase.CreatedAt(),
		purchase.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	return nil
}

// Get retrieves a purchase record by ID, excluding soft-deleted records
func (r *PurchaseRepository) Get(id string) (*models.PurchaseRecord, error) {
	query := `
		SELECT id, sequence, run_id, game_index, mode, source, numbers, cost, succeeded, error, created_at, updated_at, deleted_at
		FROM purchases
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing purchase record in the database
func (r *PurchaseRepository) Update(purchase *models.PurchaseRecord) error {
	if err := purchase.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	purchase.SetUpdatedAt(now)

	query := `
		UPDATE purchases
		SET mode = ?, source = ?, numbers = ?, cost = ?, succeeded = ?, error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		purchase.Mode(),
		purchase.Source(),
		purchase.NumbersString(),
		purchase.Cost(),
		purchase.Succeeded(),
		purchase.Error(),
		now,
		purchase.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("purchase not found or already deleted: %s", purchase.ID())
	}

	return nil
}

// Delete soft-deletes a purchase record by ID
func (r *PurchaseRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE purchases
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("purchase not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all purchase records matching the given criteria, excluding soft-deleted records
func (r *PurchaseRepository) List(criteria map[string]any) ([]*models.PurchaseRecord, error) {
	query := `
		SELECT id, sequence, run_id, game_index, mode, source, numbers, cost, succeeded, error, created_at, updated_at, deleted_at
		FROM purchases
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	if succeeded, ok := criteria["succeeded"].(bool); ok {
		query += " AND succeeded = ?"
		args = append(args, succeeded)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.PurchaseRecord
	for rows.Next() {
		purchase, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return purchases, nil
}

// ListRecent retrieves the newest purchase records, most recent first.
func (r *PurchaseRepository) ListRecent(limit int) ([]*models.PurchaseRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, run_id, game_index, mode, source, numbers, cost, succeeded, error, created_at, updated_at, deleted_at
		FROM purchases
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.PurchaseRecord
	for rows.Next() {
		purchase, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return purchases, nil
}

// ByRun retrieves every record for one run ordered by game index.
func (r *PurchaseRepository) ByRun(runID string) ([]*models.PurchaseRecord, error) {
	records, err := r.List(map[string]any{"run_id": runID})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// scanOne scans a single row into a [models.PurchaseRecord]
func (r *PurchaseRepository) scanOne(row *sql.Row) (*models.PurchaseRecord, error) {
	var (
		id        string
		sequence  int
		runID     string
		gameIndex int
		mode      string
		source    string
		numbers   string
		cost      int
		succeeded bool
		errText   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &gameIndex, &mode, &source, &numbers, &cost, &succeeded, &errText, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan purchase: %w", err)
	}

	return r.build(id, sequence, runID, gameIndex, mode, source, numbers, cost, succeeded, errText, createdAt, updatedAt, deletedAt)
}

// scanRow scans a row from [sql.Rows] into a [models.PurchaseRecord]
func (r *PurchaseRepository) scanRow(rows *sql.Rows) (*models.PurchaseRecord, error) {
	var (
		id        string
		sequence  int
		runID     string
		gameIndex int
		mode      string
		source    string
		numbers   string
		cost      int
		succeeded bool
		errText   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &runID, &gameIndex, &mode, &source, &numbers, &cost, &succeeded, &errText, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan purchase: %w", err)
	}

	return r.build(id, sequence, runID, gameIndex, mode, source, numbers, cost, succeeded, errText, createdAt, updatedAt, deletedAt)
}

func (r *PurchaseRepository) build(id string, sequence int, runID string, gameIndex int, mode, source, numbers string, cost int, succeeded bool, errText string, createdAt, updatedAt time.Time, deletedAt sql.NullTime) (*models.PurchaseRecord, error) {
	purchase := models.NewPurchaseRecord(runID, gameIndex, mode, source, nil, cost)
	purchase.SetID(id)
	purchase.SetSequence(sequence)
	purchase.SetSucceeded(succeeded)
	purchase.SetError(errText)
	purchase.SetCreatedAt(createdAt)
	purchase.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		purchase.SetDeletedAt(&deletedAt.Time)
	}
	if err := purchase.SetNumbersString(numbers); err != nil {
		return nil, fmt.Errorf("failed to decode stored numbers: %w", err)
	}

	return purchase, nil
}
