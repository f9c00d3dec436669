package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

const pendingPrefix = "pending:"

// parseParty reads "<id>" as a registered user and "pending:<id>" as a
// pending invitee.
func parseParty(s string) (models.Party, error) {
	s = strings.TrimSpace(s)
	if id, ok := strings.CutPrefix(s, pendingPrefix); ok {
		if id == "" {
			return models.Party{}, fmt.Errorf("empty pending user id")
		}
		return models.Party{PendingUserID: models.ParseID(id)}, nil
	}
	if s == "" {
		return models.Party{}, fmt.Errorf("empty user id")
	}
	return models.Party{UserID: models.ParseID(s)}, nil
}

// parsePayment reads "<party>=<amount>".
func parsePayment(s string) (models.PaymentInput, error) {
	who, amount, ok := strings.Cut(s, "=")
	if !ok {
		return models.PaymentInput{}, fmt.Errorf("payment %q: want <user>=<amount>", s)
	}
	party, err := parseParty(who)
	if err != nil {
		return models.PaymentInput{}, fmt.Errorf("payment %q: %w", s, err)
	}
	return models.PaymentInput{
		UserID:        party.UserID,
		PendingUserID: party.PendingUserID,
		Amount:        strings.TrimSpace(amount),
	}, nil
}

// parseParticipant reads "<party>" for equal splits and "<party>=<value>"
// for the other modes.
func parseParticipant(s string, mode calculator.Mode) (calculator.Input, error) {
	who, value, hasValue := strings.Cut(s, "=")
	party, err := parseParty(who)
	if err != nil {
		return calculator.Input{}, fmt.Errorf("participant %q: %w", s, err)
	}
	in := calculator.Input{Party: party}
	if mode == calculator.ModeEqual {
		return in, nil
	}
	if !hasValue {
		return calculator.Input{}, fmt.Errorf("participant %q: %s splits need <user>=<value>", s, mode)
	}

	value = strings.TrimSpace(value)
	switch mode {
	case calculator.ModeFixed:
		in.Amount, err = money.Parse(value)
	case calculator.ModePercentage:
		in.Percentage, err = decimal.NewFromString(value)
	case calculator.ModeShares:
		in.Shares, err = strconv.ParseInt(value, 10, 64)
	}
	if err != nil {
		return calculator.Input{}, fmt.Errorf("participant %q: %w", s, err)
	}
	return in, nil
}
