package calculator

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func balancesFromNets(nets map[string]float64) map[models.ParticipantID]models.Balance {
	balances := make(map[models.ParticipantID]models.Balance, len(nets))
	for name, net := range nets {
		balances[name] = models.Balance{ParticipantID: name, Name: name, Currency: "SEK", Net: net}
	}
	return balances
}

func assertSettled(t *testing.T, balances map[models.ParticipantID]models.Balance, transfers []models.Transfer) {
	t.Helper()
	for id, net := range ApplyTransfers(balances, transfers) {
		if math.Abs(net) > models.NoiseFloor+1e-9 {
			t.Errorf("%s left with %v after settlement", id, net)
		}
	}
	for _, tr := range transfers {
		if tr.From == tr.To {
			t.Errorf("self transfer emitted: %+v", tr)
		}
		if tr.Amount <= models.NoiseFloor {
			t.Errorf("transfer below noise floor emitted: %+v", tr)
		}
	}
}

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name         string
		nets         map[string]float64
		wantCount    int
		validateFunc func(t *testing.T, transfers []models.Transfer)
	}{
		{
			name:      "hotel scenario",
			nets:      map[string]float64{"Anna": 600, "Erik": -300, "Maja": -300},
			wantCount: 2,
			validateFunc: func(t *testing.T, transfers []models.Transfer) {
				want := []struct {
					from, to string
					amount   float64
				}{
					{"Erik", "Anna", 300},
					{"Maja", "Anna", 300},
				}
				for i, w := range want {
					got := transfers[i]
					if got.From != w.from || got.To != w.to || math.Abs(got.Amount-w.amount) > 0.01 {
						t.Errorf("transfer %d = %s->%s %v, want %s->%s %v",
							i, got.From, got.To, got.Amount, w.from, w.to, w.amount)
					}
					if got.Currency != "SEK" {
						t.Errorf("transfer %d currency = %s, want SEK", i, got.Currency)
					}
				}
			},
		},
		{
			name:      "already settled",
			nets:      map[string]float64{"Anna": 0, "Erik": 0.005, "Maja": -0.005},
			wantCount: 0,
		},
		{
			name:      "one debtor pays two creditors",
			nets:      map[string]float64{"A": 100, "B": 50, "C": -150},
			wantCount: 2,
			validateFunc: func(t *testing.T, transfers []models.Transfer) {
				if transfers[0].To != "A" || transfers[1].To != "B" {
					t.Errorf("creditors should be paid in name order, got %+v", transfers)
				}
			},
		},
		{
			name:      "chain of partial matches",
			nets:      map[string]float64{"A": 70, "B": 30, "C": -40, "D": -60},
			wantCount: 3,
		},
		{
			name:      "float noise does not create transfers",
			nets:      map[string]float64{"A": 100.004, "B": -100},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := balancesFromNets(tt.nets)
			transfers, err := PlanSettlement(balances, "SEK")
			if err != nil {
				t.Fatalf("PlanSettlement failed: %v", err)
			}
			if len(transfers) != tt.wantCount {
				t.Fatalf("expected %d transfers, got %d: %+v", tt.wantCount, len(transfers), transfers)
			}
			assertSettled(t, balances, transfers)
			if tt.validateFunc != nil {
				tt.validateFunc(t, transfers)
			}
		})
	}
}

func TestPlanSettlement_Deterministic(t *testing.T) {
	nets := map[string]float64{"A": 12.5, "B": 40, "C": -7.25, "D": -20, "E": -25.25}
	balances := balancesFromNets(nets)

	first, err := PlanSettlement(balances, "SEK")
	if err != nil {
		t.Fatalf("PlanSettlement failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := PlanSettlement(balances, "SEK")
		if err != nil {
			t.Fatalf("PlanSettlement failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("plan changed between runs:\n%+v\n%+v", first, again)
		}
	}
}

func TestPlanSettlement_ConservationViolation(t *testing.T) {
	balances := balancesFromNets(map[string]float64{"A": 100, "B": -40})

	transfers, err := PlanSettlement(balances, "SEK")
	var violation *models.ConservationViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected ConservationViolationError, got %v", err)
	}
	if transfers != nil {
		t.Errorf("no transfers should be emitted on violation, got %+v", transfers)
	}
	if math.Abs(violation.Credit-100) > 1e-9 || math.Abs(violation.Debt-40) > 1e-9 {
		t.Errorf("violation = %+v, want credit 100 and debt 40", violation)
	}
}

func TestComputeAndPlan_MultiCurrencyScenario(t *testing.T) {
	snap := tripSnapshot()
	snap.Expenses = []models.Expense{
		{ID: "e1", Amount: 100, Currency: "EUR", PayerID: "erik", Split: EqualSplit("erik", "maja")},
		{ID: "e2", Amount: 50, Currency: "USD", PayerID: "maja", Split: EqualSplit("erik", "maja")},
	}

	balances, err := ComputeBalances(context.Background(), snap, "SEK", fixedRates{"EUR/SEK": 11, "USD/SEK": 9})
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}
	transfers, err := PlanSettlement(balances, "SEK")
	if err != nil {
		t.Fatalf("PlanSettlement failed: %v", err)
	}

	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %+v", transfers)
	}
	if transfers[0].From != "maja" || transfers[0].To != "erik" || math.Abs(transfers[0].Amount-325) > 0.01 {
		t.Errorf("transfer = %+v, want maja -> erik 325", transfers[0])
	}
	assertSettled(t, balances, transfers)
}

func TestPlanSettlement_ImbalanceAboveNoiseFloor(t *testing.T) {
	tests := []struct {
		name string
		nets map[string]float64
	}{
		{"few cents missing", map[string]float64{"A": 0.30, "B": -0.15, "C": -0.13}},
		{"many participants", map[string]float64{
			"A": 10.50, "B": -1, "C": -1, "D": -1, "E": -1, "F": -1,
			"G": -1, "H": -1, "I": -1, "J": -1, "K": -0.55,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfers, err := PlanSettlement(balancesFromNets(tt.nets), "SEK")
			if !errors.Is(err, models.ErrConservation) {
				t.Fatalf("expected ErrConservation, got %v with %+v", err, transfers)
			}
			if transfers != nil {
				t.Errorf("no transfers should be emitted on violation, got %+v", transfers)
			}
		})
	}
}
