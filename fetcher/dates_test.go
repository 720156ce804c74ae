package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateAt(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    string
		expect string
	}{
		{"already normalized", "2026-05-01", "2026-05-01"},
		{"german full date", "01.05.2026", "2026-05-01"},
		{"german day and month", "01.05.", "2026-05-01"},
		{"single digit padding preserved", "09.03.2026", "2026-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDateAt(tt.raw, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestNormalizeDateAtRejectsGarbage(t *testing.T) {
	now := time.Now()
	for _, raw := range []string{"", "morgen", "2026/05/01", "32.13.2026"} {
		_, err := normalizeDateAt(raw, now)
		assert.Error(t, err, "input %q", raw)
	}
}
