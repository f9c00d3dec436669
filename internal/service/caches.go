package service

import (
	"time"

	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
)

// Entry lifetimes per resource kind.
const (
	TTLMe              = 30 * time.Second
	TTLGroups          = 20 * time.Second
	TTLMembers         = 15 * time.Second
	TTLExpenses        = 12 * time.Second
	TTLExpenseDetail   = 15 * time.Second
	TTLBalances        = 12 * time.Second
	TTLDebts           = 12 * time.Second
	TTLOverallBalances = 12 * time.Second
	TTLSettlements     = 12 * time.Second
	TTLActivity        = 10 * time.Second
)

// Caches holds one cache per resource kind.
//
// Singleton resources (Me, Groups, OverallBalances) use the empty key.
// Per-group resources use cache.Key(groupID, ...) so cache.Key(groupID) is
// the scope that clears one group.
type Caches struct {
	Me              *cache.Cache[models.Me]
	Groups          *cache.Cache[[]models.UserGroup]
	Members         *cache.Cache[[]models.GroupMember]
	Expenses        *cache.Cache[[]models.GroupExpense]
	ExpenseDetail   *cache.Cache[models.ExpenseDetail]
	Balances        *cache.Cache[[]models.GroupBalance]
	Debts           *cache.Cache[[]models.Debt]
	OverallBalances *cache.Cache[[]models.OverallBalance]
	Settlements     *cache.Cache[[]models.SettlementWithUsers]
	Activity        *cache.Cache[[]models.Activity]
}

// NewCaches creates an empty cache for every resource kind.
func NewCaches(opts ...cache.Option) *Caches {
	return &Caches{
		Me:              cache.New[models.Me](string(ResourceMe), TTLMe, opts...),
		Groups:          cache.New[[]models.UserGroup](string(ResourceGroups), TTLGroups, opts...),
		Members:         cache.New[[]models.GroupMember](string(ResourceMembers), TTLMembers, opts...),
		Expenses:        cache.New[[]models.GroupExpense](string(ResourceExpenses), TTLExpenses, opts...),
		ExpenseDetail:   cache.New[models.ExpenseDetail](string(ResourceExpenseDetail), TTLExpenseDetail, opts...),
		Balances:        cache.New[[]models.GroupBalance](string(ResourceBalances), TTLBalances, opts...),
		Debts:           cache.New[[]models.Debt](string(ResourceDebts), TTLDebts, opts...),
		OverallBalances: cache.New[[]models.OverallBalance](string(ResourceOverallBalances), TTLOverallBalances, opts...),
		Settlements:     cache.New[[]models.SettlementWithUsers](string(ResourceSettlements), TTLSettlements, opts...),
		Activity:        cache.New[[]models.Activity](string(ResourceActivity), TTLActivity, opts...),
	}
}

// invalidator returns the Invalidate method of the cache for r.
func (c *Caches) invalidator(r Resource) func(scopes ...string) {
	switch r {
	case ResourceMe:
		return c.Me.Invalidate
	case ResourceGroups:
		return c.Groups.Invalidate
	case ResourceMembers:
		return c.Members.Invalidate
	case ResourceExpenses:
		return c.Expenses.Invalidate
	case ResourceExpenseDetail:
		return c.ExpenseDetail.Invalidate
	case ResourceBalances:
		return c.Balances.Invalidate
	case ResourceDebts:
		return c.Debts.Invalidate
	case ResourceOverallBalances:
		return c.OverallBalances.Invalidate
	case ResourceSettlements:
		return c.Settlements.Invalidate
	case ResourceActivity:
		return c.Activity.Invalidate
	default:
		return func(...string) {}
	}
}

// Clear drops every entry and in-flight fetch of every cache.
func (c *Caches) Clear() {
	for _, r := range allResources {
		c.invalidator(r)()
	}
}
