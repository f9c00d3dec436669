package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

var (
	errSettlementParties = errors.New("a settlement needs exactly one payer and one payee")
	errSettlementSelf    = errors.New("payer and payee must be different")
	errSettlementAmount  = errors.New("settlement amount must be greater than 0")
)

// SettlementService reads and records settlements.
type SettlementService struct {
	deps
}

// ListSettlements returns a group's settlements.
func (s *SettlementService) ListSettlements(ctx context.Context, groupID models.ID, force bool) ([]models.SettlementWithUsers, error) {
	if err := requireID("group id", groupID); err != nil {
		return nil, err
	}
	return s.caches.Settlements.Get(ctx, cache.Key(string(groupID)), func(ctx context.Context) ([]models.SettlementWithUsers, error) {
		return apiclient.Call[[]models.SettlementWithUsers](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "settlements"),
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// CreateSettlement records a payment from payer to payee.
func (s *SettlementService) CreateSettlement(ctx context.Context, groupID models.ID, in models.CreateSettlementInput) (models.Settlement, error) {
	s.logger.Info("CreateSettlement request received", "group_id", groupID, "amount", in.Amount)

	if err := requireID("group id", groupID); err != nil {
		return models.Settlement{}, err
	}
	if err := validate.Struct(in); err != nil {
		return models.Settlement{}, invalidInput(err)
	}

	payer := models.Party{UserID: in.PayerID, PendingUserID: in.PayerPendingUserID}
	payee := models.Party{UserID: in.PayeeID, PendingUserID: in.PayeePendingUserID}
	for _, p := range []models.Party{payer, payee} {
		if p.UserID.IsZero() == p.PendingUserID.IsZero() {
			return models.Settlement{}, invalidInput(errSettlementParties)
		}
	}
	if payer == payee {
		return models.Settlement{}, invalidInput(errSettlementSelf)
	}

	amount, err := money.Parse(in.Amount)
	if err != nil {
		return models.Settlement{}, invalidInput(err)
	}
	if amount <= 0 {
		return models.Settlement{}, invalidInput(errSettlementAmount)
	}
	in.Amount = amount.String()
	if in.CurrencyCode == "" {
		in.CurrencyCode = defaultCurrency
	}
	if in.Status == "" {
		in.Status = models.SettlementPending
	}

	settlement, err := apiclient.Call[models.Settlement](ctx, s.api, apiclient.Request{
		Method: http.MethodPost,
		Path:   groupPath(groupID, "settlements"),
		Body:   in,
		Auth:   true,
	})
	if err != nil {
		s.logger.Error("CreateSettlement failed", "group_id", groupID, "error", err)
		return models.Settlement{}, err
	}
	s.caches.Invalidate(OpCreateSettlement, groupID)

	s.logger.Info("Settlement recorded", "group_id", groupID, "settlement_id", settlement.ID)
	return settlement, nil
}

// SettleSuggestion records the suggested transfer as a completed settlement.
func (s *SettlementService) SettleSuggestion(ctx context.Context, groupID models.ID, sg calculator.Suggestion, method string) (models.Settlement, error) {
	in := models.CreateSettlementInput{
		Amount:        sg.Amount.String(),
		Status:        models.SettlementCompleted,
		PaymentMethod: method,
	}
	if sg.Debtor.Kind == calculator.KindPending {
		in.PayerPendingUserID = sg.Debtor.ID
	} else {
		in.PayerID = sg.Debtor.ID
	}
	if sg.Creditor.Kind == calculator.KindPending {
		in.PayeePendingUserID = sg.Creditor.ID
	} else {
		in.PayeeID = sg.Creditor.ID
	}
	return s.CreateSettlement(ctx, groupID, in)
}
