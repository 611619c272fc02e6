package moneypkg

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "Integer", input: "100", want: "100.00"},
		{name: "TwoDecimals", input: "40.25", want: "40.25"},
		{name: "OneDecimal", input: "0.5", want: "0.50"},
		{name: "TrailingZeros", input: "10.500", want: "10.50"},
		{name: "Zero", input: "0", wantErr: ErrNotPositive},
		{name: "Negative", input: "-1.00", wantErr: ErrNotPositive},
		{name: "TooPrecise", input: "1.001", wantErr: ErrTooPrecise},
		{name: "Malformed", input: "!@#$", wantErr: ErrMalformed},
		{name: "Empty", input: "", wantErr: ErrMalformed},
		{name: "Exponent", input: "1e3", wantErr: ErrMalformed},
		{name: "ExponentAboveMax", input: "1e16", wantErr: ErrMalformed},
		{name: "HugeExponent", input: "1e50000000", wantErr: ErrMalformed},
		{name: "UpperExponent", input: "2.5E2", wantErr: ErrMalformed},
		{name: "Max", input: "9999999999999999.99", want: "9999999999999999.99"},
		{name: "AboveMax", input: "10000000000000000", wantErr: ErrTooLarge},
		{name: "FarAboveMax", input: "100000000000000000000", wantErr: ErrTooLarge},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, Format(got))
		})
	}
}

func TestExceeds(t *testing.T) {
	require.False(t, Exceeds(Max))
	require.True(t, Exceeds(Max.Add(decimal.RequireFromString("0.01"))))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "0.00", Format(decimal.Zero))
	require.Equal(t, "60.00", Format(decimal.NewFromInt(60)))
	require.Equal(t, "1234.57", Format(decimal.RequireFromString("1234.567")))
}
