package repositories

import (
	"path/filepath"
	"testing"

	"github.com/jhpark-dev/lottoctl/internal/models"
	"github.com/jhpark-dev/lottoctl/internal/shared"
)

func testRepo(t *testing.T) *PurchaseRepository {
	t.Helper()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewPurchaseRepository(db)
}

func record(runID string, gameIndex int, numbers []int) *models.PurchaseRecord {
	return models.NewPurchaseRecord(runID, gameIndex, "manual", "random", numbers, 1000)
}

func TestPurchaseRepositoryCreate(t *testing.T) {
	repo := testRepo(t)

	t.Run("assigns id and sequence", func(t *testing.T) {
		first := record("run-1", 0, []int{1, 2, 3, 4, 5, 6})
		if err := repo.Create(first); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if first.ID() == "" {
			t.Error("expected generated id")
		}
		if first.Sequence() == 0 {
			t.Error("expected nonzero sequence")
		}

		second := record("run-1", 1, []int{7, 8, 9, 10, 11, 12})
		if err := repo.Create(second); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if second.Sequence() <= first.Sequence() {
			t.Errorf("sequence did not advance: %d then %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("rejects invalid records", func(t *testing.T) {
		bad := record("run-1", 0, []int{0, 2, 3, 4, 5, 6})
		if err := repo.Create(bad); err == nil {
			t.Error("expected validation error for out-of-range number")
		}
	})
}

func TestPurchaseRepositoryGet(t *testing.T) {
	repo := testRepo(t)

	created := record("run-2", 0, []int{3, 14, 15, 26, 35, 44})
	created.SetSucceeded(true)
	if err := repo.Create(created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.Get(created.ID())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if got.RunID() != "run-2" || got.Mode() != "manual" || !got.Succeeded() {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.NumbersString() != "3,14,15,26,35,44" {
		t.Errorf("numbers mismatch: %s", got.NumbersString())
	}

	if _, err := repo.Get("missing"); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestPurchaseRepositoryUpdate(t *testing.T) {
	repo := testRepo(t)

	created := record("run-3", 0, nil)
	if err := repo.Create(created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	created.SetSucceeded(true)
	created.SetError("")
	if err := repo.Update(created); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.Get(created.ID())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Succeeded() {
		t.Error("expected succeeded flag to persist")
	}
}

func TestPurchaseRepositoryDelete(t *testing.T) {
	repo := testRepo(t)

	created := record("run-4", 0, nil)
	if err := repo.Create(created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Delete(created.ID()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(created.ID()); err == nil {
		t.Error("soft-deleted record should not be returned")
	}
	if err := repo.Delete(created.ID()); err == nil {
		t.Error("second delete should fail")
	}
}

func TestPurchaseRepositoryList(t *testing.T) {
	repo := testRepo(t)

	for i := range 3 {
		rec := record("run-a", i, nil)
		rec.SetSucceeded(i != 1)
		if err := repo.Create(rec); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if err := repo.Create(record("run-b", 0, nil)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("filters by run", func(t *testing.T) {
		records, err := repo.ByRun("run-a")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		for i, rec := range records {
			if rec.GameIndex() != i {
				t.Errorf("expected sequence order, got game index %d at position %d", rec.GameIndex(), i)
			}
		}
	})

	t.Run("filters by outcome", func(t *testing.T) {
		records, err := repo.List(map[string]any{"run_id": "run-a", "succeeded": false})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 1 || records[0].GameIndex() != 1 {
			t.Errorf("expected the single failed record, got %d", len(records))
		}
	})

	t.Run("recent is newest first", func(t *testing.T) {
		records, err := repo.ListRecent(2)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Sequence() < records[1].Sequence() {
			t.Error("expected descending sequence order")
		}
	})
}
