package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/service"
)

const envPassword = "SPLITSYNC_PASSWORD"

// passwordFlag falls back to SPLITSYNC_PASSWORD so the password can stay
// out of shell history.
func passwordFlag(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p
	}
	return os.Getenv(envPassword)
}

func loginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			if _, err := a.client.Auth.Login(cmd.Context(), email, passwordFlag(cmd)); err != nil {
				return err
			}
			return a.out.message("Signed in as " + email)
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (or "+envPassword+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func signupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			_, err := a.client.Auth.Signup(cmd.Context(), service.SignupInput{
				Name:     name,
				Email:    email,
				Password: passwordFlag(cmd),
			})
			if err != nil {
				return err
			}
			return a.out.message("Account created for " + email)
		},
	}
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (or "+envPassword+")")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget the stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			var err error
			if all {
				err = a.client.Auth.LogoutAll(cmd.Context())
			} else {
				err = a.client.Auth.Logout(cmd.Context())
			}
			if err != nil {
				// The local session is gone either way.
				a.logger.Warn("Logout request failed", "error", err)
			}
			return a.out.message("Signed out")
		},
	}
	cmd.Flags().Bool("all", false, "Revoke every session of the account")
	return cmd
}

func meCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.client.Users.Me(cmd.Context(), false)
			if err != nil {
				return err
			}
			return a.out.result(me, func(w io.Writer) {
				fmt.Fprintf(w, "%s <%s>\nid: %s\n", me.Name, me.Email, me.ID)
			})
		},
	}
}

func groupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List your groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.client.Groups.ListGroups(cmd.Context(), false)
			if err != nil {
				return err
			}
			rows := make([][]string, len(groups))
			for i, g := range groups {
				rows[i] = []string{g.ID.String(), g.Name, g.CurrencyCode, g.MemberRole}
			}
			return a.out.table(groups, []string{"ID", "NAME", "CURRENCY", "ROLE"}, rows)
		},
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, _ := cmd.Flags().GetString("currency")
			description, _ := cmd.Flags().GetString("description")
			group, err := a.client.Groups.CreateGroup(cmd.Context(), service.NewGroup{
				Name:         args[0],
				Description:  description,
				CurrencyCode: currency,
			})
			if err != nil {
				return err
			}
			return a.out.result(group, func(w io.Writer) {
				fmt.Fprintf(w, "Created group %s (%s)\n", group.Name, group.ID)
			})
		},
	}
	create.Flags().String("currency", "", "ISO currency code (default USD)")
	create.Flags().String("description", "", "Group description")
	cmd.AddCommand(create)
	return cmd
}

func membersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members GROUP",
		Short: "List a group's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.client.Groups.ListMembers(cmd.Context(), models.ParseID(args[0]), false)
			if err != nil {
				return err
			}
			rows := make([][]string, len(members))
			for i, m := range members {
				id := m.UserID.String()
				if m.IsPending() {
					id = pendingPrefix + id
				}
				rows[i] = []string{id, m.User.Label(), m.Role, m.Status}
			}
			return a.out.table(members, []string{"ID", "NAME", "ROLE", "STATUS"}, rows)
		},
	}
}

func inviteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite GROUP EMAIL",
		Short: "Invite someone to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			result, err := a.client.Groups.CreateInvitation(cmd.Context(), models.ParseID(args[0]), service.NewInvitation{
				Email: args[1],
				Name:  name,
				Role:  role,
			})
			if err != nil {
				return err
			}
			return a.out.result(result, func(w io.Writer) {
				fmt.Fprintf(w, "%s\ntoken: %s\n", result.Message, result.Token)
			})
		},
	}
	cmd.Flags().String("name", "", "Invitee name")
	cmd.Flags().String("role", "member", "Role: member or admin")
	return cmd
}

func invitationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invitation",
		Short: "Inspect, accept or join through an invitation",
	}

	show := &cobra.Command{
		Use:   "show TOKEN",
		Short: "Show an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.client.Groups.GetInvitation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.out.result(inv, func(w io.Writer) {
				fmt.Fprintf(w, "%s invited %s to %s (%s, expires %s)\n",
					inv.InviterName, inv.Email, inv.GroupName, inv.Status, inv.ExpiresAt)
			})
		},
	}

	accept := &cobra.Command{
		Use:   "accept TOKEN",
		Short: "Join the group as the signed-in user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.Groups.AcceptInvitation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.out.message(msg.Message)
		},
	}

	join := &cobra.Command{
		Use:   "join TOKEN",
		Short: "Join the group without signing in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			msg, err := a.client.Groups.JoinViaInvitation(cmd.Context(), args[0], passwordFlag(cmd), name)
			if err != nil {
				return err
			}
			return a.out.message(msg.Message)
		},
	}
	join.Flags().String("name", "", "Display name for a new account")
	join.Flags().String("password", "", "Password (or "+envPassword+")")

	cmd.AddCommand(show, accept, join)
	return cmd
}

func pageFlags(cmd *cobra.Command, limit int) {
	cmd.Flags().Int("limit", limit, "Page size")
	cmd.Flags().Int("offset", 0, "Rows to skip")
}

func pageFrom(cmd *cobra.Command) service.Page {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	return service.Page{Limit: limit, Offset: offset}
}

func expensesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses GROUP",
		Short: "List a group's expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.client.Expenses.ListExpenses(cmd.Context(), models.ParseID(args[0]), pageFrom(cmd), false)
			if err != nil {
				return err
			}
			table := make([][]string, len(rows))
			for i, r := range rows {
				table[i] = []string{r.Expense.Date, r.Expense.ID.String(), r.Expense.Title, r.Expense.Amount, r.Expense.CurrencyCode}
			}
			return a.out.table(rows, []string{"DATE", "ID", "TITLE", "AMOUNT", "CURRENCY"}, table)
		},
	}
	pageFlags(cmd, service.DefaultExpensePageSize)
	return cmd
}

func expenseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expense GROUP EXPENSE",
		Short: "Show one expense with its payments and splits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.client.Expenses.GetExpense(cmd.Context(), models.ParseID(args[0]), models.ParseID(args[1]), false)
			if err != nil {
				return err
			}
			return a.out.result(detail, func(w io.Writer) {
				e := detail.Expense
				fmt.Fprintf(w, "%s  %s %s  (%s)\n", e.Title, e.Amount, e.CurrencyCode, e.Date)
				for _, p := range detail.Payments {
					fmt.Fprintf(w, "  paid  %-24s %s\n", p.User.Label(), p.Amount)
				}
				for _, s := range detail.Splits {
					fmt.Fprintf(w, "  owes  %-24s %s (%s)\n", s.User.Label(), s.AmountOwned, s.SplitType)
				}
			})
		},
	}
}

func addExpenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-expense GROUP",
		Short: "Record an expense",
		Long: `Record an expense and split it between participants.

Parties are user ids, or pending:<id> for invitees without an account.
  --paid-by u1=30.00
  --split u1 --split u2                       (equal)
  --mode fixed --split u1=10 --split u2=20
  --mode percentage --split u1=60 --split u2=40
  --mode shares --split u1=2 --split pending:p1=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := newExpenseFromFlags(cmd)
			if err != nil {
				return err
			}
			detail, err := a.client.Expenses.CreateExpense(cmd.Context(), models.ParseID(args[0]), in)
			if err != nil {
				var verr *calculator.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("%s", verr.Message)
				}
				return err
			}
			return a.out.result(detail, func(w io.Writer) {
				fmt.Fprintf(w, "Recorded %s (%s %s)\n", detail.Expense.ID, detail.Expense.Amount, detail.Expense.CurrencyCode)
			})
		},
	}

	f := cmd.Flags()
	f.String("title", "", "What the expense was for")
	f.String("amount", "", "Total amount")
	f.String("currency", "", "ISO currency code (default USD)")
	f.String("date", time.Now().Format(time.DateOnly), "Date (YYYY-MM-DD)")
	f.String("notes", "", "Notes")
	f.StringSlice("tag", nil, "Tag (repeatable)")
	f.StringArray("paid-by", nil, "Payer as <user>=<amount> (repeatable)")
	f.String("mode", string(calculator.ModeEqual), "Split mode: equal, fixed, percentage, shares")
	f.StringArray("split", nil, "Participant as <user> or <user>=<value> (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("paid-by")
	_ = cmd.MarkFlagRequired("split")
	return cmd
}

func newExpenseFromFlags(cmd *cobra.Command) (service.NewExpense, error) {
	f := cmd.Flags()
	title, _ := f.GetString("title")
	amount, _ := f.GetString("amount")
	currency, _ := f.GetString("currency")
	date, _ := f.GetString("date")
	notes, _ := f.GetString("notes")
	tags, _ := f.GetStringSlice("tag")
	payers, _ := f.GetStringArray("paid-by")
	modeName, _ := f.GetString("mode")
	splits, _ := f.GetStringArray("split")

	mode, err := calculator.ParseMode(modeName)
	if err != nil {
		return service.NewExpense{}, err
	}

	in := service.NewExpense{
		Title:        title,
		Notes:        notes,
		Amount:       amount,
		CurrencyCode: currency,
		Date:         date,
		Tags:         tags,
		Mode:         mode,
	}
	for _, p := range payers {
		payment, err := parsePayment(p)
		if err != nil {
			return service.NewExpense{}, err
		}
		in.Payments = append(in.Payments, payment)
	}
	for _, s := range splits {
		participant, err := parseParticipant(s, mode)
		if err != nil {
			return service.NewExpense{}, err
		}
		in.Participants = append(in.Participants, participant)
	}
	return in, nil
}

func balancesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balances [GROUP]",
		Short: "Show balances of a group, or your balance in every group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				overall, err := a.client.Balances.OverallBalances(cmd.Context(), false)
				if err != nil {
					return err
				}
				rows := make([][]string, len(overall))
				for i, b := range overall {
					rows[i] = []string{b.GroupName, b.TotalPaid, b.TotalOwed, b.Balance, b.CurrencyCode}
				}
				return a.out.table(overall, []string{"GROUP", "PAID", "OWED", "BALANCE", "CURRENCY"}, rows)
			}

			balances, err := a.client.Balances.ListBalances(cmd.Context(), models.ParseID(args[0]), false)
			if err != nil {
				return err
			}
			rows := make([][]string, len(balances))
			for i, b := range balances {
				name := b.UserName
				if name == "" {
					name = b.UserEmail
				}
				rows[i] = []string{name, b.TotalPaid, b.TotalOwed, b.Balance}
			}
			return a.out.table(balances, []string{"MEMBER", "PAID", "OWED", "BALANCE"}, rows)
		},
	}
}

// debtView is the JSON form of a debt summary.
type debtView struct {
	TotalOutstanding string           `json:"total_outstanding"`
	Balances         []balanceView    `json:"balances"`
	Suggestions      []suggestionView `json:"suggestions"`
	Skipped          int              `json:"skipped,omitempty"`
}

type balanceView struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Balance     string            `json:"balance"`
	Pay         *counterpartyView `json:"pay,omitempty"`
	ReceiveFrom *counterpartyView `json:"receive_from,omitempty"`
}

// counterpartyView is the largest single debt behind a member's balance.
type counterpartyView struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// hint is the next step for the member: whom to pay when they owe, or whom
// to collect from when they are owed.
func (b balanceView) hint() string {
	switch {
	case b.Pay != nil:
		return fmt.Sprintf("pay %s %s", b.Pay.Name, b.Pay.Amount)
	case b.ReceiveFrom != nil:
		return fmt.Sprintf("receive %s from %s", b.ReceiveFrom.Amount, b.ReceiveFrom.Name)
	default:
		return "settled up"
	}
}

type suggestionView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func newDebtView(s *calculator.DebtSummary) debtView {
	v := debtView{
		TotalOutstanding: s.TotalOutstanding.String(),
		Balances:         make([]balanceView, len(s.Balances)),
		Suggestions:      make([]suggestionView, len(s.Suggestions)),
		Skipped:          s.Skipped,
	}
	for i, b := range s.Balances {
		key := b.Entity.Key()
		bv := balanceView{Key: key, Name: b.Entity.Label, Balance: b.Balance.String()}
		switch {
		case b.Balance < 0:
			if top, ok := s.TopCreditor(key); ok {
				bv.Pay = &counterpartyView{Name: top.Entity.Label, Amount: top.Amount.String()}
			}
		case b.Balance > 0:
			if top, ok := s.TopDebtor(key); ok {
				bv.ReceiveFrom = &counterpartyView{Name: top.Entity.Label, Amount: top.Amount.String()}
			}
		}
		v.Balances[i] = bv
	}
	for i, sg := range s.Suggestions {
		v.Suggestions[i] = suggestionView{From: sg.Debtor.Label, To: sg.Creditor.Label, Amount: sg.Amount.String()}
	}
	return v
}

func debtsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "debts GROUP",
		Short: "Show who owes whom and suggested settlements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.client.Balances.DebtSummary(cmd.Context(), models.ParseID(args[0]), false)
			if err != nil {
				return err
			}
			view := newDebtView(summary)
			return a.out.result(view, func(w io.Writer) {
				fmt.Fprintf(w, "Outstanding: %s\n\n", view.TotalOutstanding)
				for _, b := range view.Balances {
					fmt.Fprintf(w, "  %-24s %10s  %s\n", b.Name, b.Balance, b.hint())
				}
				if len(view.Suggestions) > 0 {
					fmt.Fprintln(w, "\nSuggested settlements:")
				}
				for i, sg := range view.Suggestions {
					fmt.Fprintf(w, "  %d. %s pays %s %s\n", i+1, sg.From, sg.To, sg.Amount)
				}
			})
		},
	}
}

func settleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle GROUP",
		Short: "Record a settlement",
		Long: `Record a payment between two members, either explicitly with
--from, --to and --amount, or by number from the suggestions of "debts".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := models.ParseID(args[0])
			f := cmd.Flags()
			method, _ := f.GetString("method")

			if n, _ := f.GetInt("suggestion"); n > 0 {
				summary, err := a.client.Balances.DebtSummary(cmd.Context(), groupID, true)
				if err != nil {
					return err
				}
				if n > len(summary.Suggestions) {
					return fmt.Errorf("there are only %d suggestions", len(summary.Suggestions))
				}
				settlement, err := a.client.Settlements.SettleSuggestion(cmd.Context(), groupID, summary.Suggestions[n-1], method)
				if err != nil {
					return err
				}
				return a.out.result(settlement, func(w io.Writer) {
					fmt.Fprintf(w, "Recorded settlement %s (%s)\n", settlement.ID, settlement.Amount)
				})
			}

			from, _ := f.GetString("from")
			to, _ := f.GetString("to")
			amount, _ := f.GetString("amount")
			status, _ := f.GetString("status")
			notes, _ := f.GetString("notes")

			payer, err := parseParty(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			payee, err := parseParty(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			settlement, err := a.client.Settlements.CreateSettlement(cmd.Context(), groupID, models.CreateSettlementInput{
				PayerID:            payer.UserID,
				PayerPendingUserID: payer.PendingUserID,
				PayeeID:            payee.UserID,
				PayeePendingUserID: payee.PendingUserID,
				Amount:             amount,
				Status:             status,
				PaymentMethod:      method,
				Notes:              notes,
			})
			if err != nil {
				return err
			}
			return a.out.result(settlement, func(w io.Writer) {
				fmt.Fprintf(w, "Recorded settlement %s (%s)\n", settlement.ID, settlement.Amount)
			})
		},
	}

	f := cmd.Flags()
	f.Int("suggestion", 0, "Settle suggestion N as listed by the debts command")
	f.String("from", "", "Payer")
	f.String("to", "", "Payee")
	f.String("amount", "", "Amount paid")
	f.String("status", "", "pending, completed or cancelled (default pending)")
	f.String("method", "", "Payment method")
	f.String("notes", "", "Notes")
	return cmd
}

func activityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity GROUP",
		Short: "Show a group's activity feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.client.Activity.ListActivity(cmd.Context(), models.ParseID(args[0]), pageFrom(cmd), false)
			if err != nil {
				return err
			}
			table := make([][]string, len(rows))
			for i, r := range rows {
				table[i] = []string{r.CreatedAt, r.User.Label(), r.Action, r.EntityType}
			}
			return a.out.table(rows, []string{"WHEN", "WHO", "ACTION", "ENTITY"}, table)
		},
	}
	pageFlags(cmd, service.DefaultActivityPageSize)
	return cmd
}

func themesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List preset and saved themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := a.client.Themes.Presets(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := a.client.Themes.UserThemes(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(presets)+len(saved))
			for _, p := range presets {
				rows = append(rows, []string{"preset", p.Slug, p.Name})
			}
			for _, t := range saved {
				rows = append(rows, []string{"saved", t.ID.String(), t.Name})
			}
			view := map[string]any{"presets": presets, "saved": saved}
			return a.out.table(view, []string{"KIND", "ID", "NAME"}, rows)
		},
	}
}
