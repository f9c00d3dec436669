package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

func TestParseParty(t *testing.T) {
	p, err := parseParty(" u1 ")
	require.NoError(t, err)
	assert.Equal(t, models.Party{UserID: "u1"}, p)

	p, err = parseParty("pending:p1")
	require.NoError(t, err)
	assert.Equal(t, models.Party{PendingUserID: "p1"}, p)

	_, err = parseParty("pending:")
	assert.Error(t, err)
	_, err = parseParty("")
	assert.Error(t, err)
}

func TestParsePayment(t *testing.T) {
	p, err := parsePayment("u1=12.50")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInput{UserID: "u1", Amount: "12.50"}, p)

	_, err = parsePayment("u1")
	assert.Error(t, err)
}

func TestParseParticipant(t *testing.T) {
	tests := []struct {
		input        string
		mode         calculator.Mode
		wantErr      bool
		validateFunc func(t *testing.T, in calculator.Input)
	}{
		{input: "u1", mode: calculator.ModeEqual},
		{input: "u1=9", mode: calculator.ModeEqual},
		{
			input: "u1=4.25", mode: calculator.ModeFixed,
			validateFunc: func(t *testing.T, in calculator.Input) {
				assert.Equal(t, money.Cents(425), in.Amount)
			},
		},
		{
			input: "pending:p1=33.33", mode: calculator.ModePercentage,
			validateFunc: func(t *testing.T, in calculator.Input) {
				assert.Equal(t, "33.33", in.Percentage.String())
				assert.Equal(t, models.ID("p1"), in.Party.PendingUserID)
			},
		},
		{
			input: "u1=3", mode: calculator.ModeShares,
			validateFunc: func(t *testing.T, in calculator.Input) {
				assert.Equal(t, int64(3), in.Shares)
			},
		},
		{input: "u1", mode: calculator.ModeShares, wantErr: true},
		{input: "u1=lots", mode: calculator.ModeShares, wantErr: true},
		{input: "u1=abc", mode: calculator.ModePercentage, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.input, func(t *testing.T) {
			in, err := parseParticipant(tt.input, tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, in.Party.ID().IsZero())
			if tt.validateFunc != nil {
				tt.validateFunc(t, in)
			}
		})
	}
}
