package service

import (
	"context"
	"net/http"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
)

// BalanceService reads balances and debts.
type BalanceService struct {
	deps
}

// ListBalances returns every member's totals in a group.
func (s *BalanceService) ListBalances(ctx context.Context, groupID models.ID, force bool) ([]models.GroupBalance, error) {
	if err := requireID("group id", groupID); err != nil {
		return nil, err
	}
	return s.caches.Balances.Get(ctx, cache.Key(string(groupID)), func(ctx context.Context) ([]models.GroupBalance, error) {
		return apiclient.Call[[]models.GroupBalance](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "balances"),
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// ListDebts returns a group's outstanding debt edges.
func (s *BalanceService) ListDebts(ctx context.Context, groupID models.ID, force bool) ([]models.Debt, error) {
	if err := requireID("group id", groupID); err != nil {
		return nil, err
	}
	return s.caches.Debts.Get(ctx, cache.Key(string(groupID)), func(ctx context.Context) ([]models.Debt, error) {
		return apiclient.Call[[]models.Debt](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "debts"),
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// OverallBalances returns the user's position in every group.
func (s *BalanceService) OverallBalances(ctx context.Context, force bool) ([]models.OverallBalance, error) {
	return s.caches.OverallBalances.Get(ctx, "", func(ctx context.Context) ([]models.OverallBalance, error) {
		return apiclient.Call[[]models.OverallBalance](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   "/users/me/balances",
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// DebtSummary nets a group's debts into balances and settlement suggestions.
func (s *BalanceService) DebtSummary(ctx context.Context, groupID models.ID, force bool) (*calculator.DebtSummary, error) {
	debts, err := s.ListDebts(ctx, groupID, force)
	if err != nil {
		return nil, err
	}

	summary := calculator.SummarizeDebts(calculator.EdgesFromDebts(debts))
	if summary.Skipped > 0 {
		s.logger.Warn("Skipped malformed debt rows", "group_id", groupID, "skipped", summary.Skipped)
	}
	return summary, nil
}
