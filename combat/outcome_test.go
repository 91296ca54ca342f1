package combat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in   string
		want Phase
	}{
		{"shooting", Shooting},
		{"shoot", Shooting},
		{"", Shooting},
		{"fight", Fight},
		{"melee", Fight},
	}
	for _, tt := range tests {
		got, err := ParsePhase(tt.in)
		require.NoError(t, err, "Phase %q should parse", tt.in)
		require.Equal(t, tt.want, got, "Phase %q", tt.in)
	}

	_, err := ParsePhase("psychic")
	require.Error(t, err, "Unknown phase should be rejected")
}
