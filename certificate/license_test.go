package certificate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseGenerator_Format(t *testing.T) {
	ts := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	license := LicenseGenerator{}.Generate(7, 42, ts)
	assert.Regexp(t, LicensePattern, license)
	assert.True(t, strings.HasPrefix(license, "CERT-T7-P42-"), license)
	parts := strings.Split(license, "-")
	require.Len(t, parts, 5)
	assert.Len(t, parts[4], 12)

	custom := LicenseGenerator{Prefix: "hse/ab"}.Generate(1, 2, ts)
	assert.True(t, strings.HasPrefix(custom, "HSEAB-T1-P2-"), custom)
	assert.Regexp(t, LicensePattern, custom)
}

func TestLicenseGenerator_Unique(t *testing.T) {
	g := LicenseGenerator{}
	seen := make(map[string]struct{}, 10000)
	now := time.Now()
	for i := 0; i < 10000; i++ {
		l := g.Generate(uint(i%7), uint(i%13), now)
		_, dup := seen[l]
		require.False(t, dup, "duplicate license %s", l)
		seen[l] = struct{}{}
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		first, last string
		expected    string
	}{
		{"Jane", "", "Jane"},
		{"", "Doe", "Doe"},
		{"  Jane ", " Doe  ", "Jane Doe"},
		{"Mary  Ann", "Smith", "Mary Ann Smith"},
		{"", "   ", FallbackName},
	}
	for _, test := range tests {
		t.Run(
			test.expected, func(t *testing.T) {
				assert.Equal(t, test.expected, FormatName(test.first, test.last))
			},
		)
	}
}

func TestTrainingName(t *testing.T) {
	assert.Equal(t, "First Aid", TrainingName(" First Aid ", 3))
	assert.Equal(t, "Training #3", TrainingName("", 3))
}
