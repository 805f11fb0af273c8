package service

import (
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func groupToAPI(g *models.Group) *api.Group {
	return &api.Group{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}

func participantToAPI(p *models.Participant) *api.Participant {
	return &api.Participant{
		ID:        p.ID,
		GroupID:   p.GroupID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
		RemovedAt: p.RemovedAt,
	}
}

func participantsToAPI(ps []*models.Participant) []*api.Participant {
	out := make([]*api.Participant, len(ps))
	for i, p := range ps {
		out[i] = participantToAPI(p)
	}
	return out
}

func splitToAPI(s models.Split) api.Split {
	if s.Empty() {
		return api.Split{}
	}
	return api.Split{Kind: s.Kind.String(), Entries: s.Clone().Entries}
}

// splitFromAPI decodes a wire split. An entry-less split is always empty,
// whatever its kind says.
func splitFromAPI(s api.Split) (models.Split, error) {
	if len(s.Entries) == 0 {
		return models.Split{}, nil
	}
	kind, err := models.ParseSplitKind(s.Kind)
	if err != nil {
		return models.Split{}, err
	}
	entries := make(map[models.ParticipantID]float64, len(s.Entries))
	for id, v := range s.Entries {
		entries[id] = v
	}
	return models.Split{Kind: kind, Entries: entries}, nil
}

func expenseToAPI(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		PayerID:     e.PayerID,
		Category:    e.Category,
		Date:        e.Date,
		Split:       splitToAPI(e.Split),
		Unallocated: e.Unallocated(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func balancesToAPI(bs []models.Balance) []*api.Balance {
	out := make([]*api.Balance, len(bs))
	for i, b := range bs {
		out[i] = &api.Balance{
			ParticipantID: b.ParticipantID,
			Name:          b.Name,
			Currency:      b.Currency,
			TotalPaid:     b.TotalPaid,
			TotalOwed:     b.TotalOwed,
			Net:           b.Net,
			Removed:       b.Removed,
			Unallocated:   b.Unallocated,
		}
	}
	return out
}

func transfersToAPI(ts []models.Transfer) []*api.Transfer {
	out := make([]*api.Transfer, len(ts))
	for i, t := range ts {
		out[i] = &api.Transfer{
			From:     t.From,
			FromName: t.FromName,
			To:       t.To,
			ToName:   t.ToName,
			Amount:   t.Amount,
			Currency: t.Currency,
		}
	}
	return out
}

func settlementToAPI(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		FromID:    s.FromID,
		ToID:      s.ToID,
		Amount:    s.Amount,
		Currency:  s.Currency,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
}

func statisticsToAPI(s *ledger.Statistics) *api.Statistics {
	out := &api.Statistics{
		GroupID:          s.GroupID,
		ParticipantCount: s.ParticipantCount,
		RemovedCount:     s.RemovedCount,
		ExpenseCount:     s.ExpenseCount,
		UnallocatedCount: s.UnallocatedCount,
		SettlementCount:  s.SettlementCount,
		TotalsByCurrency: make([]api.CurrencyTotal, len(s.TotalsByCurrency)),
		Currency:         s.Currency,
		Total:            s.Total,
		LargestExpenseID: s.LargestExpenseID,
		LargestExpense:   s.LargestExpenseDesc,
	}
	for i, t := range s.TotalsByCurrency {
		out.TotalsByCurrency[i] = api.CurrencyTotal{Currency: t.Currency, Amount: t.Amount}
	}
	return out
}
