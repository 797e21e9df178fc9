package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRupees(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"50", 5000, false},
		{"50.00", 5000, false},
		{"20.5", 2050, false},
		{"0.01", 1, false},
		{"1000.00", 100000, false},
		{"-10", -1000, false}, // sign validation belongs to callers
		{"50.005", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRupees(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "50.00", FormatRupees(5000))
	assert.Equal(t, "0.05", FormatRupees(5))
	assert.Equal(t, "950.00", FormatRupees(95000))
	assert.Equal(t, "20.50", FormatRupees(2050))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Rs. 30.00", Label(3000))
}

func TestRoundTrip(t *testing.T) {
	for _, paise := range []int64{0, 1, 99, 100, 2000, 123456} {
		got, err := ParseRupees(FormatRupees(paise))
		require.NoError(t, err)
		assert.Equal(t, paise, got)
	}
}
