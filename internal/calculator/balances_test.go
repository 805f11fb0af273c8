package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

// fixedRates is a RateProvider backed by a "FROM/TO" map.
type fixedRates map[string]float64

func (r fixedRates) Rate(_ context.Context, from, to string) (float64, error) {
	rate, ok := r[from+"/"+to]
	if !ok {
		return 0, fmt.Errorf("no rate for %s/%s", from, to)
	}
	return rate, nil
}

func tripSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Group: models.Group{ID: "trip", Name: "Trip"},
		Participants: []models.Participant{
			{ID: "anna", GroupID: "trip", Name: "Anna"},
			{ID: "erik", GroupID: "trip", Name: "Erik"},
			{ID: "maja", GroupID: "trip", Name: "Maja"},
		},
	}
}

func TestComputeBalances_HotelScenario(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{{
		ID: "hotel", Description: "Hotel", Amount: 900, Currency: "SEK", PayerID: "anna",
		Split: EqualSplit("anna", "erik", "maja"),
	}}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	want := map[string]float64{"anna": 600, "erik": -300, "maja": -300}
	for id, net := range want {
		if math.Abs(balances[id].Net-net) > 0.01 {
			t.Errorf("%s net = %v, want %v", id, balances[id].Net, net)
		}
	}
	if math.Abs(balances["anna"].TotalPaid-900) > 0.01 {
		t.Errorf("Anna paid = %v, want 900", balances["anna"].TotalPaid)
	}
	if math.Abs(balances["anna"].TotalOwed-300) > 0.01 {
		t.Errorf("Anna owed = %v, want 300", balances["anna"].TotalOwed)
	}
	if balances["erik"].Name != "Erik" || balances["erik"].Currency != "SEK" {
		t.Errorf("unexpected Erik balance: %+v", balances["erik"])
	}
}

func TestComputeBalances_MultiCurrency(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{
		{ID: "e1", Amount: 100, Currency: "EUR", PayerID: "erik", Split: EqualSplit("erik", "maja")},
		{ID: "e2", Amount: 50, Currency: "USD", PayerID: "maja", Split: EqualSplit("erik", "maja")},
	}
	rates := fixedRates{"EUR/SEK": 11, "USD/SEK": 9}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", rates)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	// Erik paid 1100, owes 550 + 225. Maja paid 450, owes 550 + 225.
	tests := []struct {
		id              string
		paid, owed, net float64
	}{
		{"erik", 1100, 775, 325},
		{"maja", 450, 775, -325},
		{"anna", 0, 0, 0},
	}
	for _, tt := range tests {
		b := balances[tt.id]
		if math.Abs(b.TotalPaid-tt.paid) > 0.01 || math.Abs(b.TotalOwed-tt.owed) > 0.01 || math.Abs(b.Net-tt.net) > 0.01 {
			t.Errorf("%s = paid %v owed %v net %v, want %v/%v/%v",
				tt.id, b.TotalPaid, b.TotalOwed, b.Net, tt.paid, tt.owed, tt.net)
		}
	}

	if sum := NetSum(balances); math.Abs(sum) > float64(len(balances))*models.Epsilon {
		t.Errorf("net sum = %v, want 0", sum)
	}
}

func TestComputeBalances_MissingRateFailsClosed(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{
		{ID: "e1", Amount: 100, Currency: "GBP", PayerID: "erik", Split: EqualSplit("erik", "maja")},
	}

	_, err := ComputeBalances(context.Background(), snap, "SEK", fixedRates{"EUR/SEK": 11})
	var convErr *models.ConversionUnavailableError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionUnavailableError, got %v", err)
	}
	if convErr.From != "GBP" || convErr.To != "SEK" {
		t.Errorf("conversion error = %s -> %s, want GBP -> SEK", convErr.From, convErr.To)
	}
	if !errors.Is(err, models.ErrConversionUnavailable) {
		t.Error("error should unwrap to ErrConversionUnavailable")
	}
}

func TestComputeBalances_RejectsNonPositiveRate(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{
		{ID: "e1", Amount: 100, Currency: "EUR", PayerID: "erik", Split: EqualSplit("erik", "maja")},
	}

	_, err := ComputeBalances(context.Background(), snap, "SEK", fixedRates{"EUR/SEK": 0})
	if !errors.Is(err, models.ErrConversionUnavailable) {
		t.Fatalf("expected ErrConversionUnavailable, got %v", err)
	}
}

func TestComputeBalances_FixedSplit(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{{
		ID: "dinner", Amount: 100, Currency: "EUR", PayerID: "anna",
		Split: models.FixedAmounts(map[string]float64{"anna": 20, "erik": 30, "maja": 50}),
	}}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", fixedRates{"EUR/SEK": 10})
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	want := map[string]float64{"anna": 800, "erik": -300, "maja": -500}
	for id, net := range want {
		if math.Abs(balances[id].Net-net) > 0.01 {
			t.Errorf("%s net = %v, want %v", id, balances[id].Net, net)
		}
	}
}

func TestComputeBalances_ToleratedSplitStillConserves(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{{
		ID: "e1", Amount: 1000, Currency: "SEK", PayerID: "anna",
		Split: models.Proportional(map[string]float64{"anna": 0.333, "erik": 0.333, "maja": 0.333}),
	}}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}
	if sum := NetSum(balances); math.Abs(sum) > 1e-9 {
		t.Errorf("net sum = %v, want 0", sum)
	}
}

func TestComputeBalances_UnallocatedExpense(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{
		{ID: "e1", Amount: 80, Currency: "SEK", PayerID: "erik"},
	}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	erik := balances["erik"]
	if math.Abs(erik.Unallocated-80) > 0.01 {
		t.Errorf("Erik unallocated = %v, want 80", erik.Unallocated)
	}
	if math.Abs(erik.Net) > 0.01 {
		t.Errorf("Erik net = %v, want 0", erik.Net)
	}
}

func TestComputeBalances_RemovedParticipant(t *testing.T) {
	snap := tripSnapshot()
	snap.Participants = append(snap.Participants,
		models.Participant{ID: "olof", GroupID: "trip", Name: "Olof", RemovedAt: 1700000000},
		models.Participant{ID: "idle", GroupID: "trip", Name: "Idle", RemovedAt: 1700000000},
	)
	snap.Expenses = []models.Expense{{
		ID: "e1", Amount: 400, Currency: "SEK", PayerID: "anna",
		Split: EqualSplit("anna", "olof"),
	}}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	olof, ok := balances["olof"]
	if !ok {
		t.Fatal("removed participant with history should have a balance")
	}
	if !olof.Removed {
		t.Error("Olof should be flagged as removed")
	}
	if math.Abs(olof.Net+200) > 0.01 {
		t.Errorf("Olof net = %v, want -200", olof.Net)
	}
	if _, ok := balances["idle"]; ok {
		t.Error("removed participant without history should be omitted")
	}
	if _, ok := balances["maja"]; !ok {
		t.Error("active participant without activity should be present")
	}
}

func TestComputeBalances_Settlements(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{{
		ID: "hotel", Amount: 900, Currency: "SEK", PayerID: "anna",
		Split: EqualSplit("anna", "erik", "maja"),
	}}
	snap.Settlements = []models.Settlement{
		{ID: "s1", FromID: "erik", ToID: "anna", Amount: 300, Currency: "SEK"},
	}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	if math.Abs(balances["erik"].Net) > 0.01 {
		t.Errorf("Erik net = %v, want 0 after settling", balances["erik"].Net)
	}
	if math.Abs(balances["anna"].Net-300) > 0.01 {
		t.Errorf("Anna net = %v, want 300", balances["anna"].Net)
	}
}

func TestComputeBalances_InvalidTargetCurrency(t *testing.T) {
	_, err := ComputeBalances(context.Background(), tripSnapshot(), "kronor", nil)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConvert(t *testing.T) {
	got, err := Convert(context.Background(), 10, "EUR", "SEK", fixedRates{"EUR/SEK": 11})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if math.Abs(got-110) > 1e-9 {
		t.Errorf("Convert = %v, want 110", got)
	}

	same, err := Convert(context.Background(), 10, "SEK", "SEK", nil)
	if err != nil || same != 10 {
		t.Errorf("identity Convert = %v, %v; want 10, nil", same, err)
	}
}
