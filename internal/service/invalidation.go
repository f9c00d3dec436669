package service

import (
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
)

// Resource names a cached resource kind.
type Resource string

const (
	ResourceMe              Resource = "me"
	ResourceGroups          Resource = "groups"
	ResourceMembers         Resource = "members"
	ResourceExpenses        Resource = "expenses"
	ResourceExpenseDetail   Resource = "expense_detail"
	ResourceBalances        Resource = "balances"
	ResourceDebts           Resource = "debts"
	ResourceOverallBalances Resource = "overall_balances"
	ResourceSettlements     Resource = "settlements"
	ResourceActivity        Resource = "activity"
)

var allResources = []Resource{
	ResourceMe, ResourceGroups, ResourceMembers, ResourceExpenses, ResourceExpenseDetail,
	ResourceBalances, ResourceDebts, ResourceOverallBalances, ResourceSettlements, ResourceActivity,
}

// Operation names a successful write.
type Operation string

const (
	OpLogin            Operation = "login"
	OpLogout           Operation = "logout"
	OpCreateGroup      Operation = "create_group"
	OpInviteMember     Operation = "invite_member"
	OpAcceptInvitation Operation = "accept_invitation"
	OpJoinInvitation   Operation = "join_invitation"
	OpCreateExpense    Operation = "create_expense"
	OpCreateSettlement Operation = "create_settlement"
)

// Target is one cache cleared by an operation. Group-scoped targets clear
// only the written group's keys.
type Target struct {
	Resource Resource
	PerGroup bool
}

// ledgerWrite is everything derived from a group's expenses and settlements.
var ledgerWrite = []Target{
	{ResourceExpenses, true},
	{ResourceExpenseDetail, true},
	{ResourceSettlements, true},
	{ResourceBalances, true},
	{ResourceDebts, true},
	{ResourceActivity, true},
	{ResourceOverallBalances, false},
}

var membershipWrite = []Target{
	{ResourceMembers, true},
	{ResourceGroups, false},
}

var invalidationGraph = map[Operation][]Target{
	OpCreateGroup:      {{ResourceGroups, false}, {ResourceOverallBalances, false}},
	OpInviteMember:     membershipWrite,
	OpAcceptInvitation: membershipWrite,
	OpJoinInvitation:   membershipWrite,
	OpCreateExpense:    ledgerWrite,
	OpCreateSettlement: ledgerWrite,
}

// Targets returns the caches op clears. Login and logout clear everything
// since the identity changed.
func Targets(op Operation) []Target {
	if op == OpLogin || op == OpLogout {
		targets := make([]Target, len(allResources))
		for i, r := range allResources {
			targets[i] = Target{Resource: r}
		}
		return targets
	}
	return invalidationGraph[op]
}

// Invalidate clears the caches affected by op. A group-scoped target with
// an empty groupID clears the whole cache.
func (c *Caches) Invalidate(op Operation, groupID models.ID) {
	for _, t := range Targets(op) {
		invalidate := c.invalidator(t.Resource)
		if t.PerGroup && !groupID.IsZero() {
			invalidate(cache.Key(string(groupID)))
			continue
		}
		invalidate()
	}
}
