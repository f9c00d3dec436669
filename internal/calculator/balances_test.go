package calculator

import (
	"testing"

	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

func user(id string) Entity {
	return Entity{Kind: KindUser, ID: models.ID(id), Label: id}
}

func pending(id string) Entity {
	return Entity{Kind: KindPending, ID: models.ID(id), Label: id}
}

func edge(debtor, creditor Entity, amount string) DebtEdge {
	return DebtEdge{Debtor: debtor, Creditor: creditor, Amount: amount}
}

func TestSummarizeDebts(t *testing.T) {
	a, b, c := user("A"), user("B"), user("C")

	tests := []struct {
		name         string
		edges        []DebtEdge
		validateFunc func(t *testing.T, s *DebtSummary)
	}{
		{
			name: "net balances across three members",
			edges: []DebtEdge{
				edge(a, b, "30"),
				edge(a, c, "20"),
				edge(c, b, "10"),
			},
			validateFunc: func(t *testing.T, s *DebtSummary) {
				want := map[string]money.Cents{"user:A": -5000, "user:B": 4000, "user:C": 1000}
				for key, w := range want {
					if got := s.Balance(key); got != w {
						t.Errorf("balance[%s] = %d, want %d", key, got, w)
					}
				}
				if s.TotalOutstanding != 6000 {
					t.Errorf("total outstanding = %d, want 6000", s.TotalOutstanding)
				}
				if len(s.Balances) != 3 || s.Balances[0].Entity.Key() != "user:A" {
					t.Errorf("balances should be in first-seen order, got %+v", s.Balances)
				}
				// A -> C 20 is not rewritten through C; pairs stay pairwise.
				if len(s.Suggestions) != 3 {
					t.Errorf("got %d suggestions, want 3", len(s.Suggestions))
				}
			},
		},
		{
			name: "duplicate pairs coalesce",
			edges: []DebtEdge{
				edge(a, b, "10"),
				edge(c, b, "12"),
				edge(a, b, "15"),
			},
			validateFunc: func(t *testing.T, s *DebtSummary) {
				if len(s.Suggestions) != 2 {
					t.Fatalf("got %d suggestions, want 2", len(s.Suggestions))
				}
				first := s.Suggestions[0]
				if first.Debtor.Key() != "user:A" || first.Creditor.Key() != "user:B" || first.Amount != 2500 {
					t.Errorf("first suggestion = %+v, want A->B 25.00", first)
				}
				if s.Suggestions[1].Amount != 1200 {
					t.Errorf("second suggestion amount = %d, want 1200", s.Suggestions[1].Amount)
				}
			},
		},
		{
			name: "malformed and negative amounts are skipped",
			edges: []DebtEdge{
				edge(a, b, "abc"),
				edge(a, b, "-5"),
				edge(a, b, "0"),
				edge(a, b, ""),
				edge(a, b, "Infinity"),
				edge(b, c, "7.25"),
			},
			validateFunc: func(t *testing.T, s *DebtSummary) {
				if s.Skipped != 5 {
					t.Errorf("skipped = %d, want 5", s.Skipped)
				}
				if s.Balance("user:A") != 0 {
					t.Errorf("A should not appear, balance = %d", s.Balance("user:A"))
				}
				if s.Balance("user:C") != 725 {
					t.Errorf("C balance = %d, want 725", s.Balance("user:C"))
				}
				if len(s.Suggestions) != 1 {
					t.Errorf("got %d suggestions, want 1", len(s.Suggestions))
				}
			},
		},
		{
			name: "amounts beyond the minor unit range are skipped",
			edges: []DebtEdge{
				edge(a, b, "100000000000000000000"),
				edge(a, c, "3"),
			},
			validateFunc: func(t *testing.T, s *DebtSummary) {
				if s.Skipped != 1 {
					t.Errorf("skipped = %d, want 1", s.Skipped)
				}
				if s.Balance("user:B") != 0 {
					t.Errorf("B should not appear, balance = %d", s.Balance("user:B"))
				}
				if s.Balance("user:A") != -300 || s.TotalOutstanding != 300 {
					t.Errorf("A balance = %d, total = %d, want -300 and 300", s.Balance("user:A"), s.TotalOutstanding)
				}
				if len(s.Suggestions) != 1 || s.Suggestions[0].Creditor.Key() != "user:C" {
					t.Errorf("suggestions = %+v, want only A->C", s.Suggestions)
				}
			},
		},
		{
			name: "pending user kept apart from registered user with same id",
			edges: []DebtEdge{
				edge(pending("X"), a, "5"),
				edge(user("X"), a, "3"),
			},
			validateFunc: func(t *testing.T, s *DebtSummary) {
				if s.Balance("pending:X") != -500 {
					t.Errorf("pending balance = %d, want -500", s.Balance("pending:X"))
				}
				if s.Balance("user:X") != -300 {
					t.Errorf("user balance = %d, want -300", s.Balance("user:X"))
				}
				if len(s.Suggestions) != 2 {
					t.Errorf("got %d suggestions, want 2", len(s.Suggestions))
				}
			},
		},
		{
			name: "top counterparties break ties by first seen",
			edges: []DebtEdge{
				edge(a, b, "10"),
				edge(a, c, "10"),
				edge(c, b, "4"),
				edge(a, c, "2"),
			},
			validateFunc: func(t *testing.T, s *DebtSummary) {
				top, ok := s.TopCreditor("user:A")
				if !ok || top.Entity.Key() != "user:B" || top.Amount != 1000 {
					t.Errorf("top creditor of A = %+v, want B 10.00", top)
				}
				top, ok = s.TopDebtor("user:B")
				if !ok || top.Entity.Key() != "user:A" {
					t.Errorf("top debtor of B = %+v, want A", top)
				}
				if _, ok := s.TopCreditor("user:B"); ok {
					t.Error("B owes nobody, expected no top creditor")
				}
			},
		},
		{
			name:  "no edges",
			edges: nil,
			validateFunc: func(t *testing.T, s *DebtSummary) {
				if len(s.Balances) != 0 || len(s.Suggestions) != 0 || s.TotalOutstanding != 0 {
					t.Errorf("expected empty summary, got %+v", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SummarizeDebts(tt.edges)

			var sum money.Cents
			for _, b := range s.Balances {
				sum += b.Balance
			}
			if sum != 0 {
				t.Errorf("net balances sum to %d, want 0", sum)
			}

			tt.validateFunc(t, s)
		})
	}
}

func TestByMagnitude(t *testing.T) {
	a, b, c := user("A"), user("B"), user("C")
	s := SummarizeDebts([]DebtEdge{
		edge(a, b, "1"),
		edge(c, b, "9"),
	})

	top := s.ByMagnitude(2)
	if len(top) != 2 {
		t.Fatalf("got %d rows, want 2", len(top))
	}
	if top[0].Entity.Key() != "user:B" || top[0].Balance != 1000 {
		t.Errorf("largest = %+v, want B +10.00", top[0])
	}
	if top[1].Entity.Key() != "user:C" {
		t.Errorf("second = %+v, want C", top[1])
	}
	if len(s.ByMagnitude(0)) != 3 {
		t.Error("limit 0 should return every balance")
	}
}

func TestEdgesFromDebts(t *testing.T) {
	debts := []models.Debt{
		{
			DebtorID:            "00000000-0000-0000-0000-000000000000",
			DebtorPendingUserID: "p1",
			DebtorEmail:         "invitee@example.com",
			CreditorID:          "u2",
			CreditorName:        "Bob",
			Amount:              "3.50",
		},
	}

	edges := EdgesFromDebts(debts)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Debtor.Key() != "pending:p1" {
		t.Errorf("debtor key = %q, want pending:p1", edges[0].Debtor.Key())
	}
	if edges[0].Debtor.Label != "invitee@example.com" {
		t.Errorf("debtor label = %q", edges[0].Debtor.Label)
	}
	if edges[0].Creditor.Key() != "user:u2" || edges[0].Creditor.Label != "Bob" {
		t.Errorf("creditor = %+v", edges[0].Creditor)
	}
}
