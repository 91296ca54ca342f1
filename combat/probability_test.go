package combat

import (
	"testing"

	"combatsim/game"
	"combatsim/rules"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWoundThreshold(t *testing.T) {
	tests := []struct {
		strength, toughness, want int
	}{
		{8, 4, 2},
		{5, 4, 3},
		{4, 4, 4},
		{3, 4, 5},
		{2, 4, 6},
		{3, 6, 6},
		{12, 6, 2},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, WoundThreshold(tt.strength, tt.toughness), "S%d against T%d", tt.strength, tt.toughness)
	}
}

func TestSaveProbability(t *testing.T) {
	require.InDelta(t, 3.0/6, SaveProbability(3, -1), 1e-9, "A 3+ save against AP-1 needs a 4+")
	require.Equal(t, 0.0, SaveProbability(4, -3), "Modified saves of 7+ always fail")
	require.Equal(t, 0.0, SaveProbability(0, 0), "No save always fails")
	require.Equal(t, 1.0, SaveProbability(1, 0), "Saves of 1+ always pass")

	require.Equal(t, 4, EffectiveSave(2, -4, 4, false))
	require.Equal(t, 3, EffectiveSave(3, -1, 0, true))
	require.Equal(t, 4, EffectiveSave(3, -1, 4, false), "An equal invulnerable save changes nothing")
}

func TestProbabilityBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		save := rapid.IntRange(0, 7).Draw(t, "save")
		ap := rapid.IntRange(-6, -1).Draw(t, "ap")
		p := SaveProbability(save, ap)
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
		require.GreaterOrEqual(t, SaveProbability(save, ap+1)+1e-9, p, "Less AP never makes saves worse")

		skill := rapid.IntRange(1, 7).Draw(t, "skill")
		mod := rapid.IntRange(-3, 3).Draw(t, "mod")
		hit := HitProbability(skill, mod)
		require.GreaterOrEqual(t, hit, 1.0/6)
		require.LessOrEqual(t, hit, 5.0/6)
	})
}

func TestExpectedDamage(t *testing.T) {
	bolter := weapon("bolter", 2, 3, 4, 0, 1, "")
	target := marines(5)

	// 2 attacks * 4/6 hit * 3/6 wound * 2/6 failed save * 1 damage.
	require.InDelta(t, 2.0*4/6*3/6*2/6, ExpectedDamage(bolter, target, rules.ModifierSet{}), 1e-9)

	torrent := ExpectedDamage(bolter, target, rules.ModifierSet{Torrent: true})
	require.InDelta(t, 2.0*3/6*2/6, torrent, 1e-9)

	dev := ExpectedDamage(bolter, target, rules.ModifierSet{DevastatingWounds: true})
	require.Greater(t, dev, ExpectedDamage(bolter, target, rules.ModifierSet{}))

	tough := makeUnit("tough", 1, game.Stats{Toughness: 4, Save: 3, Wounds: 3, FeelNoPain: 4})
	require.InDelta(t, ExpectedDamage(bolter, target, rules.ModifierSet{})/2, ExpectedDamage(bolter, tough, rules.ModifierSet{}), 1e-9)
}

func TestExpectedUnitDamage(t *testing.T) {
	bolter := weapon("bolter", 2, 3, 4, 0, 1, "")
	target := marines(5)
	one := ExpectedDamage(bolter, target, rules.ModifierSet{})

	require.InDelta(t, 5*one, ExpectedUnitDamage(bolter, target, rules.ModifierSet{}, 5), 1e-9)
	require.InDelta(t, one, ExpectedUnitDamage(bolter, target, rules.ModifierSet{}, 1), 1e-9)
	require.Zero(t, ExpectedUnitDamage(bolter, target, rules.ModifierSet{}, 0), "No firing models should deal no damage")

	// Rapid fire adds one attack per model: 5 models * 3 attacks * 4/6 * 3/6 * 2/6.
	inRange := rules.ModifierSet{RapidFire: 1, InRapidFireRange: true}
	require.InDelta(t, 5*3.0*4/6*3/6*2/6, ExpectedUnitDamage(bolter, target, inRange, 5), 1e-9)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "models")
		require.InDelta(t, float64(n)*one, ExpectedUnitDamage(bolter, target, rules.ModifierSet{}, n), 1e-9)
	})
}
