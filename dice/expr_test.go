package dice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		in      string
		want    Expr
		str     string
		wantErr bool
	}{
		{in: "3", want: Fixed(3), str: "3"},
		{in: "D6", want: Expr{Count: 1, Sides: 6}, str: "D6"},
		{in: "d3+3", want: Expr{Count: 1, Sides: 3, Modifier: 3}, str: "D3+3"},
		{in: " 2D6 - 1 ", want: Expr{Count: 2, Sides: 6, Modifier: -1}, str: "2D6-1"},
		{in: "", want: Expr{}, str: "0"},
		{in: "D", wantErr: true},
		{in: "0D6", wantErr: true},
		{in: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpr(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidExpr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.str, got.String())
		})
	}
}

func TestExprRoll(t *testing.T) {
	require.Equal(t, 4, MustParse("4").Roll(NewScripted(1)), "Fixed values should not consume dice")
	require.Equal(t, 3, MustParse("D3").Roll(NewScripted(5)), "D3 should halve a d6 rounding up")
	require.Equal(t, 11, MustParse("2D6-1").Roll(NewScripted(6, 6)), "Modifiers should be added to the dice")
	require.Equal(t, 0, MustParse("D3-5").Roll(NewScripted(1)), "Results should floor at zero")
	require.Equal(t, 9, MustParse("D6+3").Max())
	require.InDelta(t, 5.5, MustParse("D3+3").Mean(), 1e-9)
}

func TestExprRollBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := Expr{
			Count:    rapid.IntRange(1, 4).Draw(t, "count"),
			Sides:    rapid.SampledFrom([]int{3, 6}).Draw(t, "sides"),
			Modifier: rapid.IntRange(-2, 3).Draw(t, "modifier"),
		}
		v := e.Roll(NewRNG(rapid.Uint64().Draw(t, "seed")))
		if v < 0 || v > e.Max() {
			t.Fatalf("%s rolled %d outside [0, %d]", e, v, e.Max())
		}
	})
}

func TestExprJSON(t *testing.T) {
	var w struct {
		Attacks Expr `json:"attacks"`
		Damage  Expr `json:"damage"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"attacks": 2, "damage": "D3+1"}`), &w))
	require.Equal(t, Fixed(2), w.Attacks, "Numbers should decode as fixed values")
	require.Equal(t, Expr{Count: 1, Sides: 3, Modifier: 1}, w.Damage, "Strings should decode as expressions")

	out, err := json.Marshal(w)
	require.NoError(t, err)
	require.JSONEq(t, `{"attacks": 2, "damage": "D3+1"}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"attacks": true}`), &w), "Other JSON types should be rejected")
}
