package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: " 1 ", want: 100},
		{in: "0.005", want: 1},
		{in: "-2.50", want: -250},
		{in: "100", want: 10000},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "92233720368547758.07", want: 9223372036854775807},
		{in: "92233720368547758.08", wantErr: true},
		{in: "100000000000000000000", wantErr: true},
		{in: "-100000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "12.34", Cents(1234).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "100.00", Cents(10000).String())
}

func TestSplitEvenly(t *testing.T) {
	assert.Equal(t, []Cents{34, 33, 33}, SplitEvenly(100, 3))
	assert.Equal(t, []Cents{50, 50}, SplitEvenly(100, 2))
	assert.Equal(t, []Cents{2, 2, 1, 1}, SplitEvenly(6, 4))
	assert.Nil(t, SplitEvenly(100, 0))

	var sum Cents
	for _, c := range SplitEvenly(1001, 7) {
		sum += c
	}
	assert.Equal(t, Cents(1001), sum)
}
