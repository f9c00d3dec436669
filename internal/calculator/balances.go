package calculator

import (
	"sort"

	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

// EntityKind separates registered users from pending invitees so the two
// identifier spaces never collide.
type EntityKind string

const (
	KindUser    EntityKind = "user"
	KindPending EntityKind = "pending"
)

// Entity is one side of a debt.
type Entity struct {
	Kind  EntityKind
	ID    models.ID
	Label string
}

// Key identifies the entity across a group ("user:<id>" or "pending:<id>").
func (e Entity) Key() string {
	return string(e.Kind) + ":" + string(e.ID)
}

// DebtEdge represents a debt from one entity to another.
type DebtEdge struct {
	Debtor   Entity // who owes
	Creditor Entity // who is owed
	Amount   string
}

// EdgesFromDebts converts service debt rows into debt edges. A pending-user
// identifier, when present, wins over the user identifier.
func EdgesFromDebts(debts []models.Debt) []DebtEdge {
	edges := make([]DebtEdge, len(debts))
	for i, d := range debts {
		edges[i] = DebtEdge{
			Debtor:   entityOf(d.DebtorID, d.DebtorPendingUserID, d.DebtorName, d.DebtorEmail),
			Creditor: entityOf(d.CreditorID, d.CreditorPendingUserID, d.CreditorName, d.CreditorEmail),
			Amount:   d.Amount,
		}
	}
	return edges
}

func entityOf(userID, pendingID models.ID, name, email string) Entity {
	label := models.UserSummary{Name: name, Email: email}.Label()
	if pendingID != "" {
		return Entity{Kind: KindPending, ID: pendingID, Label: label}
	}
	return Entity{Kind: KindUser, ID: userID, Label: label}
}

// NetBalance is an entity's signed position: positive when owed money,
// negative when it owes money.
type NetBalance struct {
	Entity  Entity
	Balance money.Cents
}

// Suggestion is a suggested settlement: Debtor pays Creditor Amount.
type Suggestion struct {
	Debtor   Entity
	Creditor Entity
	Amount   money.Cents
}

// Counterparty is the single largest debt edge touching an entity.
type Counterparty struct {
	Entity Entity
	Amount money.Cents
}

// DebtSummary is everything derived from one group's debt edges.
type DebtSummary struct {
	// Balances holds one row per entity in first-seen order. Sums to zero.
	Balances []NetBalance

	// Suggestions coalesces edges by (debtor, creditor), largest first.
	Suggestions []Suggestion

	// TotalOutstanding is the sum of every valid edge.
	TotalOutstanding money.Cents

	// Skipped counts edges dropped for a missing, zero or negative amount.
	Skipped int

	topCreditor map[string]Counterparty
	topDebtor   map[string]Counterparty
	index       map[string]int
}

// Balance returns the net balance for the entity key, zero if unseen.
func (s *DebtSummary) Balance(key string) money.Cents {
	if i, ok := s.index[key]; ok {
		return s.Balances[i].Balance
	}
	return 0
}

// TopCreditor returns who the entity should pay first: the creditor of the
// largest single edge where the entity is the debtor.
func (s *DebtSummary) TopCreditor(key string) (Counterparty, bool) {
	c, ok := s.topCreditor[key]
	return c, ok
}

// TopDebtor returns who should pay the entity first: the debtor of the
// largest single edge where the entity is the creditor.
func (s *DebtSummary) TopDebtor(key string) (Counterparty, bool) {
	c, ok := s.topDebtor[key]
	return c, ok
}

// ByMagnitude returns up to limit balances ordered by absolute value,
// largest first. limit <= 0 returns all of them.
func (s *DebtSummary) ByMagnitude(limit int) []NetBalance {
	out := make([]NetBalance, len(s.Balances))
	copy(out, s.Balances)
	sort.SliceStable(out, func(i, j int) bool {
		return abs(out[i].Balance) > abs(out[j].Balance)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SummarizeDebts aggregates debt edges into net balances, settlement
// suggestions and per-entity top counterparties.
//
// Edges whose amount does not parse, or is zero or negative, contribute
// nothing; the summary never fails on a malformed row.
//
// Suggestions only merge edges that already share a debtor and creditor.
// Chains (A owes B, B owes C) are left as they are.
func SummarizeDebts(edges []DebtEdge) *DebtSummary {
	s := &DebtSummary{
		topCreditor: make(map[string]Counterparty),
		topDebtor:   make(map[string]Counterparty),
		index:       make(map[string]int),
	}
	pairIndex := make(map[string]int)

	for _, edge := range edges {
		amount, err := money.Parse(edge.Amount)
		if err != nil || amount <= 0 {
			s.Skipped++
			continue
		}

		debtorKey, creditorKey := edge.Debtor.Key(), edge.Creditor.Key()
		s.addBalance(edge.Debtor, -amount)
		s.addBalance(edge.Creditor, amount)
		s.TotalOutstanding += amount

		pairKey := debtorKey + "|" + creditorKey
		if i, ok := pairIndex[pairKey]; ok {
			s.Suggestions[i].Amount += amount
		} else {
			pairIndex[pairKey] = len(s.Suggestions)
			s.Suggestions = append(s.Suggestions, Suggestion{
				Debtor:   edge.Debtor,
				Creditor: edge.Creditor,
				Amount:   amount,
			})
		}

		// Strictly greater keeps the first-seen edge on ties.
		if existing, ok := s.topCreditor[debtorKey]; !ok || amount > existing.Amount {
			s.topCreditor[debtorKey] = Counterparty{Entity: edge.Creditor, Amount: amount}
		}
		if existing, ok := s.topDebtor[creditorKey]; !ok || amount > existing.Amount {
			s.topDebtor[creditorKey] = Counterparty{Entity: edge.Debtor, Amount: amount}
		}
	}

	sort.SliceStable(s.Suggestions, func(i, j int) bool {
		return s.Suggestions[i].Amount > s.Suggestions[j].Amount
	})
	return s
}

func (s *DebtSummary) addBalance(e Entity, delta money.Cents) {
	key := e.Key()
	if i, ok := s.index[key]; ok {
		s.Balances[i].Balance += delta
		return
	}
	s.index[key] = len(s.Balances)
	s.Balances = append(s.Balances, NetBalance{Entity: e, Balance: delta})
}

func abs(c money.Cents) money.Cents {
	if c < 0 {
		return -c
	}
	return c
}
