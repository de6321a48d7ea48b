package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"01/02/2024", true},
		{"29/02/2024", true},
		{"29/02/2023", false},
		{"32/01/2024", false},
		{"1/2/2024", false},
		{"01-02-2024", false},
		{"2024/02/01", false},
		{"01/13/2024", false},
		{"", false},
		{" 01/02/2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := Parse(tt.input)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, clierr.Is(err, clierr.InvalidDate))
				assert.False(t, Validate(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, d.String())
			assert.True(t, Validate(tt.input))
		})
	}
}

func TestParse_Fields(t *testing.T) {
	d, err := Parse("07/03/2025")
	require.NoError(t, err)
	assert.Equal(t, 7, d.Day())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 2025, d.Year())
}

func TestNow_IsValid(t *testing.T) {
	now := Now()
	assert.True(t, Validate(now))
	assert.Len(t, now, len(Layout))
}

func TestFrom(t *testing.T) {
	d := From(time.Date(2026, time.October, 17, 23, 59, 0, 0, time.Local))
	assert.Equal(t, "17/10/2026", d.String())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare("31/12/2023", "01/01/2024"))
	assert.Equal(t, 1, Compare("02/01/2024", "01/02/2023"))
	assert.Equal(t, 0, Compare("15/06/2024", "15/06/2024"))
	assert.Equal(t, -1, Compare("garbage", "15/06/2024"))
	assert.Equal(t, 1, Compare("15/06/2024", ""))
	assert.Equal(t, 0, Compare("x", "y"))
}
