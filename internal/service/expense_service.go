package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

// DefaultExpensePageSize is the page size of ListExpenses when none is given.
const DefaultExpensePageSize = 10

// ExpenseService reads and writes group expenses.
type ExpenseService struct {
	deps
}

// NewExpense is the input of CreateExpense. Splits are built from Mode and
// Participants.
type NewExpense struct {
	Title        string                `validate:"required,max=200"`
	Notes        string                `validate:"max=1000"`
	Amount       string                `validate:"required,numeric"`
	CurrencyCode string                `validate:"omitempty,len=3,uppercase"`
	Date         string                `validate:"required,datetime=2006-01-02"`
	CategoryID   models.ID             `validate:"-"`
	Tags         []string              `validate:"dive,required"`
	Payments     []models.PaymentInput `validate:"required,min=1,dive"`
	Mode         calculator.Mode       `validate:"-"`
	Participants []calculator.Input    `validate:"-"`
}

// ListExpenses returns one page of a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID models.ID, page Page, force bool) ([]models.GroupExpense, error) {
	if err := requireID("group id", groupID); err != nil {
		return nil, err
	}
	page = page.withDefaultLimit(DefaultExpensePageSize)
	key := cache.Key(string(groupID), strconv.Itoa(page.Limit), strconv.Itoa(page.Offset))

	return s.caches.Expenses.Get(ctx, key, func(ctx context.Context) ([]models.GroupExpense, error) {
		return apiclient.Call[[]models.GroupExpense](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "expenses", "search"),
			Query:  page.query(),
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// GetExpense returns one expense with its payments and splits.
func (s *ExpenseService) GetExpense(ctx context.Context, groupID, expenseID models.ID, force bool) (models.ExpenseDetail, error) {
	if err := requireID("group id", groupID); err != nil {
		return models.ExpenseDetail{}, err
	}
	if err := requireID("expense id", expenseID); err != nil {
		return models.ExpenseDetail{}, err
	}

	key := cache.Key(string(groupID), string(expenseID))
	return s.caches.ExpenseDetail.Get(ctx, key, func(ctx context.Context) (models.ExpenseDetail, error) {
		return apiclient.Call[models.ExpenseDetail](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "expenses", string(expenseID)),
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// BuildRequest validates in and turns it into the wire request. Nothing is
// sent; a *calculator.ValidationError names the violated split rule.
func BuildRequest(in NewExpense) (models.CreateExpenseRequest, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return models.CreateExpenseRequest{}, invalidInput(err)
	}

	total, err := money.Parse(in.Amount)
	if err != nil {
		return models.CreateExpenseRequest{}, invalidInput(err)
	}

	var paid money.Cents
	payments := make([]models.PaymentInput, len(in.Payments))
	for i, p := range in.Payments {
		amount, err := money.Parse(p.Amount)
		if err != nil || amount <= 0 {
			return models.CreateExpenseRequest{}, invalidInput(fmt.Errorf("payment %d: amount must be greater than 0", i+1))
		}
		if p.UserID.IsZero() == p.PendingUserID.IsZero() {
			return models.CreateExpenseRequest{}, invalidInput(fmt.Errorf("payment %d: exactly one of user id and pending user id is required", i+1))
		}
		paid += amount
		p.Amount = amount.String()
		payments[i] = p
	}
	if paid != total {
		return models.CreateExpenseRequest{}, invalidInput(fmt.Errorf("payments add up to %s, expected %s", paid, total))
	}

	allocs, err := calculator.BuildSplits(total, in.Participants, in.Mode)
	if err != nil {
		return models.CreateExpenseRequest{}, invalidInput(err)
	}
	splits := make([]models.SplitInput, len(allocs))
	for i, a := range allocs {
		splits[i] = a.SplitInput()
	}

	req := models.CreateExpenseRequest{
		Title:        in.Title,
		Notes:        in.Notes,
		Amount:       total.String(),
		CurrencyCode: in.CurrencyCode,
		Date:         in.Date,
		CategoryID:   in.CategoryID,
		Tags:         in.Tags,
		Payments:     payments,
		Splits:       splits,
	}
	if req.CurrencyCode == "" {
		req.CurrencyCode = defaultCurrency
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	return req, nil
}

// CreateExpense validates and submits a new expense, then seeds the detail
// cache with the created expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID models.ID, in NewExpense) (models.ExpenseDetail, error) {
	s.logger.Info("CreateExpense request received",
		"group_id", groupID,
		"amount", in.Amount,
		"mode", in.Mode,
		"participants_count", len(in.Participants),
	)

	if err := requireID("group id", groupID); err != nil {
		return models.ExpenseDetail{}, err
	}
	req, err := BuildRequest(in)
	if err != nil {
		s.logger.Warn("CreateExpense rejected", "group_id", groupID, "error", err)
		return models.ExpenseDetail{}, err
	}

	detail, err := apiclient.Call[models.ExpenseDetail](ctx, s.api, apiclient.Request{
		Method: http.MethodPost,
		Path:   groupPath(groupID, "expenses"),
		Body:   req,
		Auth:   true,
	})
	if err != nil {
		s.logger.Error("CreateExpense failed", "group_id", groupID, "error", err)
		return models.ExpenseDetail{}, err
	}

	s.caches.Invalidate(OpCreateExpense, groupID)
	if !detail.Expense.ID.IsZero() {
		s.caches.ExpenseDetail.Set(cache.Key(string(groupID), string(detail.Expense.ID)), detail)
	}

	s.logger.Info("Expense created", "group_id", groupID, "expense_id", detail.Expense.ID)
	return detail, nil
}
