package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedGroup creates a group with the given participant names and returns
// the group and a name -> participant ID map.
func seedGroup(t *testing.T, store *SQLiteStore, name string, members ...string) (*models.Group, map[string]string) {
	t.Helper()
	ctx := context.Background()

	group := &models.Group{Name: name}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	ids := make(map[string]string, len(members))
	for _, m := range members {
		p := &models.Participant{GroupID: group.ID, Name: m}
		if err := store.AddParticipant(ctx, p); err != nil {
			t.Fatalf("AddParticipant(%s) failed: %v", m, err)
		}
		ids[m] = p.ID
	}
	return group, ids
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and timestamp", func(t *testing.T) {
		group := &models.Group{Name: "Trip"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Trip" {
			t.Errorf("Name mismatch: got %s, want Trip", got.Name)
		}
	})

	t.Run("GetGroup returns NotFoundError for nonexistent group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		var nf *models.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Expected NotFoundError, got %v", err)
		}
		if nf.Kind != "group" {
			t.Errorf("Kind = %s, want group", nf.Kind)
		}
	})

	t.Run("Active participant names are unique per group", func(t *testing.T) {
		group, ids := seedGroup(t, store, "Flat", "Anna")

		dup := &models.Participant{GroupID: group.ID, Name: "Anna"}
		if err := store.AddParticipant(ctx, dup); err == nil {
			t.Fatal("Expected duplicate active name to be rejected")
		}

		if err := store.RemoveParticipant(ctx, ids["Anna"], 0); err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}
		again := &models.Participant{GroupID: group.ID, Name: "Anna"}
		if err := store.AddParticipant(ctx, again); err != nil {
			t.Fatalf("Re-adding a removed name should succeed: %v", err)
		}

		active, err := store.ListParticipants(ctx, group.ID, false)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(active) != 1 || active[0].ID != again.ID {
			t.Errorf("Expected only the new Anna to be active, got %+v", active)
		}

		all, err := store.ListParticipants(ctx, group.ID, true)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("Expected 2 participants including removed, got %d", len(all))
		}
	})

	t.Run("RemoveParticipant twice returns NotFoundError", func(t *testing.T) {
		_, ids := seedGroup(t, store, "Twice", "Erik")
		if err := store.RemoveParticipant(ctx, ids["Erik"], 0); err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}
		err := store.RemoveParticipant(ctx, ids["Erik"], 0)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Expense split round-trips exactly", func(t *testing.T) {
		group, ids := seedGroup(t, store, "Round", "Anna", "Erik", "Maja")
		shares := map[string]float64{
			ids["Anna"]: 1.0 / 3,
			ids["Erik"]: 1.0 / 3,
			ids["Maja"]: 1.0 / 3,
		}
		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Hotel",
			Amount:      900,
			Currency:    "SEK",
			PayerID:     ids["Anna"],
			Category:    "lodging",
			Split:       models.Proportional(shares),
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Split.Kind != models.SplitProportional {
			t.Errorf("Kind = %v, want proportional", got.Split.Kind)
		}
		if len(got.Split.Entries) != 3 {
			t.Fatalf("Expected 3 split entries, got %d", len(got.Split.Entries))
		}
		for id, share := range shares {
			if got.Split.Entries[id] != share {
				t.Errorf("share for %s = %v, want %v", id, got.Split.Entries[id], share)
			}
		}
		if got.Description != "Hotel" || got.Amount != 900 || got.Currency != "SEK" || got.Category != "lodging" {
			t.Errorf("unexpected expense fields: %+v", got)
		}
	})

	t.Run("Generated description keeps non-ASCII category intact", func(t *testing.T) {
		group, ids := seedGroup(t, store, "Stuga", "Åsa", "Örjan")
		expense := &models.Expense{
			GroupID:  group.ID,
			Amount:   120,
			Currency: "SEK",
			PayerID:  ids["Åsa"],
			Category: "övrigt",
			Date:     1704196800,
			Split:    models.Proportional(map[string]float64{ids["Åsa"]: 0.5, ids["Örjan"]: 0.5}),
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !utf8.ValidString(got.Description) {
			t.Fatalf("Description is not valid UTF-8: %q", got.Description)
		}
		if got.Description != "Övrigt - Jan 2, 2024" {
			t.Errorf("Description = %q, want %q", got.Description, "Övrigt - Jan 2, 2024")
		}
	})

	t.Run("UpdateExpense replaces the split set", func(t *testing.T) {
		group, ids := seedGroup(t, store, "Update", "Anna", "Erik", "Maja")
		expense := &models.Expense{
			GroupID: group.ID, Description: "Taxi", Amount: 100, Currency: "SEK", PayerID: ids["Anna"],
			Split: models.Proportional(map[string]float64{ids["Anna"]: 0.5, ids["Erik"]: 0.5}),
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.Amount = 120
		expense.Split = models.FixedAmounts(map[string]float64{ids["Maja"]: 120})
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Split.Kind != models.SplitFixed {
			t.Errorf("Kind = %v, want fixed", got.Split.Kind)
		}
		if len(got.Split.Entries) != 1 || got.Split.Entries[ids["Maja"]] != 120 {
			t.Errorf("Expected split to be fully replaced, got %+v", got.Split.Entries)
		}
		if got.Amount != 120 {
			t.Errorf("Amount = %v, want 120", got.Amount)
		}
	})

	t.Run("UpdateExpense and DeleteExpense on unknown ID", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: "missing", Amount: 1, Currency: "SEK"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("UpdateExpense: expected ErrNotFound, got %v", err)
		}
		err = store.DeleteExpense(ctx, "missing")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("DeleteExpense: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpenses keeps insertion order and filters", func(t *testing.T) {
		group, ids := seedGroup(t, store, "List", "Anna", "Erik")
		inputs := []struct {
			desc     string
			category string
			date     int64
		}{
			{"Late", "food", 3000},
			{"Early", "travel", 1000},
			{"Middle", "food", 2000},
		}
		for _, in := range inputs {
			e := &models.Expense{
				GroupID: group.ID, Description: in.desc, Amount: 10, Currency: "SEK",
				PayerID: ids["Anna"], Category: in.category, Date: in.date,
				Split: models.Proportional(map[string]float64{ids["Anna"]: 0.5, ids["Erik"]: 0.5}),
			}
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		all, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(all) != 3 || all[0].Description != "Late" || all[2].Description != "Middle" {
			t.Errorf("Expected insertion order, got %v", descriptions(all))
		}
		for _, e := range all {
			if len(e.Split.Entries) != 2 {
				t.Errorf("%s: expected 2 split entries, got %d", e.Description, len(e.Split.Entries))
			}
		}

		food, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{Category: "food"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(food) != 2 {
			t.Errorf("Expected 2 food expenses, got %v", descriptions(food))
		}

		ranged, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{From: 1500, To: 2500})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(ranged) != 1 || ranged[0].Description != "Middle" {
			t.Errorf("Expected only Middle in range, got %v", descriptions(ranged))
		}
	})

	t.Run("DeleteGroup cascades", func(t *testing.T) {
		group, ids := seedGroup(t, store, "Doomed", "Anna", "Erik")
		expense := &models.Expense{
			GroupID: group.ID, Description: "Dinner", Amount: 50, Currency: "SEK", PayerID: ids["Anna"],
			Split: models.Proportional(map[string]float64{ids["Anna"]: 0.5, ids["Erik"]: 0.5}),
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		settlement := &models.Settlement{GroupID: group.ID, FromID: ids["Erik"], ToID: ids["Anna"], Amount: 25, Currency: "SEK"}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected expense to be deleted, got %v", err)
		}
		if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected settlement to be deleted, got %v", err)
		}
		if _, err := store.GetParticipant(ctx, ids["Anna"]); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected participant to be deleted, got %v", err)
		}
	})

	t.Run("Snapshot includes removed participants and settlements", func(t *testing.T) {
		group, ids := seedGroup(t, store, "Snap", "Anna", "Olof")
		expense := &models.Expense{
			GroupID: group.ID, Description: "Boat", Amount: 400, Currency: "SEK", PayerID: ids["Anna"],
			Split: models.Proportional(map[string]float64{ids["Anna"]: 0.5, ids["Olof"]: 0.5}),
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.CreateSettlement(ctx, &models.Settlement{
			GroupID: group.ID, FromID: ids["Olof"], ToID: ids["Anna"], Amount: 50, Currency: "SEK", Note: "swish",
		}); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if err := store.RemoveParticipant(ctx, ids["Olof"], 0); err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}

		snap, err := store.Snapshot(ctx, group.ID)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if snap.Group.Name != "Snap" {
			t.Errorf("Group name = %s, want Snap", snap.Group.Name)
		}
		if len(snap.Participants) != 2 {
			t.Errorf("Expected 2 participants, got %d", len(snap.Participants))
		}
		if members := snap.Members(); members[ids["Olof"]] || !members[ids["Anna"]] {
			t.Errorf("Members() = %v, want only Anna", members)
		}
		if len(snap.Expenses) != 1 || len(snap.Expenses[0].Split.Entries) != 2 {
			t.Errorf("Expected the expense with its split intact, got %+v", snap.Expenses)
		}
		if len(snap.Settlements) != 1 || snap.Settlements[0].Note != "swish" {
			t.Errorf("Expected 1 settlement with note, got %+v", snap.Settlements)
		}
	})

	t.Run("LatestRate returns newest rate", func(t *testing.T) {
		if _, err := store.LatestRate(ctx, "EUR", "SEK"); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound before any rate, got %v", err)
		}
		if err := store.SaveRate(ctx, &models.ExchangeRate{From: "EUR", To: "SEK", Rate: 11, FetchedAt: 100}); err != nil {
			t.Fatalf("SaveRate failed: %v", err)
		}
		if err := store.SaveRate(ctx, &models.ExchangeRate{From: "EUR", To: "SEK", Rate: 11.5, FetchedAt: 200, Source: "api"}); err != nil {
			t.Fatalf("SaveRate failed: %v", err)
		}

		rate, err := store.LatestRate(ctx, "EUR", "SEK")
		if err != nil {
			t.Fatalf("LatestRate failed: %v", err)
		}
		if rate.Rate != 11.5 || rate.Source != "api" {
			t.Errorf("LatestRate = %+v, want 11.5 from api", rate)
		}
	})
}

func TestGenerateDescription(t *testing.T) {
	tests := []struct {
		category     string
		wantContains string
	}{
		{"", "Expense - Jan 2, 2024"},
		{"food", "Food - Jan 2, 2024"},
		{"övrigt", "Övrigt - Jan 2, 2024"},
		{"ä", "Ä - Jan 2, 2024"},
	}

	date := int64(1704196800) // 2024-01-02 12:00 UTC
	for _, tt := range tests {
		t.Run(tt.wantContains, func(t *testing.T) {
			got := generateDescription(tt.category, date)
			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("generateDescription(%q) = %q, want to contain %q", tt.category, got, tt.wantContains)
			}
		})
	}
}

func descriptions(expenses []*models.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.Description
	}
	return out
}
