package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

// Mode selects how an expense total is allocated across participants.
type Mode string

const (
	ModeEqual      Mode = "equal"
	ModeFixed      Mode = "fixed"
	ModePercentage Mode = "percentage"
	ModeShares     Mode = "shares"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeEqual, ModeFixed, ModePercentage, ModeShares:
		return m, nil
	default:
		return "", &ValidationError{Rule: RuleMode, Message: fmt.Sprintf("Unknown split mode %q.", s)}
	}
}

// Rules reported by ValidationError.
const (
	RuleMode            = "mode"
	RuleTotal           = "total"
	RuleParticipants    = "participants"
	RuleAmount          = "fixed.amount"
	RuleFixedTotal      = "fixed.total"
	RulePercentage      = "percentage.value"
	RulePercentageTotal = "percentage.total"
	RuleShares          = "shares.value"
	RuleSharesTotal     = "shares.total"
)

// ValidationError names the allocation constraint an input violated.
type ValidationError struct {
	Rule    string
	Index   int // offending participant, -1 when the rule is about the whole split
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(rule string, index int, msg string) *ValidationError {
	return &ValidationError{Rule: rule, Index: index, Message: msg}
}

// percentTolerance is the largest accepted distance from 100 (exclusive).
var (
	percentTolerance = decimal.New(1, -2)
	oneHundred       = decimal.NewFromInt(100)
)

// Input is one participant together with the value its mode needs.
type Input struct {
	Party models.Party

	// Amount is the owed amount for ModeFixed.
	Amount money.Cents

	// Percentage is the owed percentage for ModePercentage.
	Percentage decimal.Decimal

	// Shares is the share count for ModeShares.
	Shares int64
}

// Allocation is one participant's validated line, ready to submit.
type Allocation struct {
	Party      models.Party
	Mode       Mode
	Amount     money.Cents     // fixed only
	Percentage decimal.Decimal // percentage only, rounded to 2 dp
	Shares     int64           // shares only

	// Owed is the client-side preview of what the participant will owe.
	Owed money.Cents
}

// SplitInput converts the allocation to its wire form.
func (a Allocation) SplitInput() models.SplitInput {
	in := models.SplitInput{
		UserID:        a.Party.UserID,
		PendingUserID: a.Party.PendingUserID,
		Type:          string(a.Mode),
	}
	switch a.Mode {
	case ModeFixed:
		in.Amount = a.Amount.String()
	case ModePercentage:
		in.Percentage = a.Percentage.StringFixed(2)
	case ModeShares:
		in.Shares = a.Shares
	}
	return in
}

// BuildSplits validates the per-participant inputs for mode against total and
// returns one allocation per input, in input order. Nothing is returned when
// any constraint fails.
//
// Owed previews follow the service's rounding: equal splits hand the extra
// minor units to the first participants, percentage and share splits round
// each line to cents and give the remainder to the last participant.
func BuildSplits(total money.Cents, inputs []Input, mode Mode) ([]Allocation, error) {
	if total <= 0 {
		return nil, invalid(RuleTotal, -1, "Enter a total amount greater than 0.")
	}
	if len(inputs) == 0 {
		return nil, invalid(RuleParticipants, -1, "Select at least one participant.")
	}

	switch mode {
	case ModeEqual:
		return equalSplits(total, inputs), nil
	case ModeFixed:
		return fixedSplits(total, inputs)
	case ModePercentage:
		return percentageSplits(total, inputs)
	case ModeShares:
		return shareSplits(total, inputs)
	default:
		return nil, invalid(RuleMode, -1, fmt.Sprintf("Unknown split mode %q.", mode))
	}
}

func equalSplits(total money.Cents, inputs []Input) []Allocation {
	owed := money.SplitEvenly(total, len(inputs))
	out := make([]Allocation, len(inputs))
	for i, in := range inputs {
		out[i] = Allocation{Party: in.Party, Mode: ModeEqual, Owed: owed[i]}
	}
	return out
}

func fixedSplits(total money.Cents, inputs []Input) ([]Allocation, error) {
	var sum money.Cents
	out := make([]Allocation, len(inputs))
	for i, in := range inputs {
		if in.Amount <= 0 {
			return nil, invalid(RuleAmount, i, "Enter a valid fixed amount for each selected participant.")
		}
		sum += in.Amount
		out[i] = Allocation{Party: in.Party, Mode: ModeFixed, Amount: in.Amount, Owed: in.Amount}
	}
	if sum != total {
		return nil, invalid(RuleFixedTotal, -1, "Fixed split amounts must add up to total expense amount.")
	}
	return out, nil
}

func percentageSplits(total money.Cents, inputs []Input) ([]Allocation, error) {
	sum := decimal.Zero
	out := make([]Allocation, len(inputs))
	for i, in := range inputs {
		// The submitted value is rounded to 2 dp and must stay positive.
		pct := in.Percentage.Round(2)
		if !pct.IsPositive() {
			return nil, invalid(RulePercentage, i, "Enter a valid percentage for each selected participant.")
		}
		sum = sum.Add(in.Percentage)
		out[i] = Allocation{Party: in.Party, Mode: ModePercentage, Percentage: pct}
	}
	if sum.Sub(oneHundred).Abs().GreaterThanOrEqual(percentTolerance) {
		return nil, invalid(RulePercentageTotal, -1, "Percentages must add up to 100.")
	}

	totalDec := total.Decimal()
	var allocated money.Cents
	for i := range out {
		if i == len(out)-1 {
			out[i].Owed = total - allocated
			break
		}
		owed := money.FromDecimal(totalDec.Mul(out[i].Percentage).Div(oneHundred))
		out[i].Owed = owed
		allocated += owed
	}
	return out, nil
}

func shareSplits(total money.Cents, inputs []Input) ([]Allocation, error) {
	var totalShares int64
	out := make([]Allocation, len(inputs))
	for i, in := range inputs {
		if in.Shares <= 0 {
			return nil, invalid(RuleShares, i, "Enter a valid whole number of shares for each selected participant.")
		}
		totalShares += in.Shares
		out[i] = Allocation{Party: in.Party, Mode: ModeShares, Shares: in.Shares}
	}
	if totalShares <= 0 {
		return nil, invalid(RuleSharesTotal, -1, "Shares must be greater than 0.")
	}

	totalDec := total.Decimal()
	sharesDec := decimal.NewFromInt(totalShares)
	var allocated money.Cents
	for i := range out {
		if i == len(out)-1 {
			out[i].Owed = total - allocated
			break
		}
		owed := money.FromDecimal(totalDec.Mul(decimal.NewFromInt(out[i].Shares)).Div(sharesDec))
		out[i].Owed = owed
		allocated += owed
	}
	return out, nil
}
