package rules

import (
	"fmt"
	"strings"
)

// Reroll is the scope of a re-roll. Scopes are ordered so the widest wins
// when modifier sets are merged.
type Reroll int

const (
	RerollNone Reroll = iota
	RerollOnes
	RerollFailed
	RerollAll // every die that is not already a critical
)

var rerollNames = []string{"none", "ones", "failed", "all"}

func (r Reroll) String() string {
	if r < 0 || int(r) >= len(rerollNames) {
		return "none"
	}
	return rerollNames[r]
}

func (r Reroll) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Reroll) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		*r = RerollNone
		return nil
	}
	for i, name := range rerollNames {
		if name == s {
			*r = Reroll(i)
			return nil
		}
	}
	return fmt.Errorf("unknown reroll scope %q", s)
}

// AntiKeyword lowers the critical wound value against targets carrying
// Keyword.
type AntiKeyword struct {
	Keyword   string `yaml:"keyword" json:"keyword"`
	Threshold int    `yaml:"threshold" json:"threshold"`
}

// ModifierSet is the composed set of effects for one weapon assignment. It is
// rebuilt for every assignment and never stored on a weapon profile.
type ModifierSet struct {
	HitModifier       int           `yaml:"hit_modifier,omitempty" json:"hit_modifier,omitempty"`
	HitReroll         Reroll        `yaml:"hit_reroll,omitempty" json:"hit_reroll,omitempty"`
	WoundModifier     int           `yaml:"wound_modifier,omitempty" json:"wound_modifier,omitempty"`
	WoundReroll       Reroll        `yaml:"wound_reroll,omitempty" json:"wound_reroll,omitempty"`
	DevastatingWounds bool          `yaml:"devastating_wounds,omitempty" json:"devastating_wounds,omitempty"`
	LethalHits        bool          `yaml:"lethal_hits,omitempty" json:"lethal_hits,omitempty"`
	SustainedHits     int           `yaml:"sustained_hits,omitempty" json:"sustained_hits,omitempty"` // extra hits per critical hit
	Torrent           bool          `yaml:"torrent,omitempty" json:"torrent,omitempty"`
	TwinLinked        bool          `yaml:"twin_linked,omitempty" json:"twin_linked,omitempty"`
	Anti              []AntiKeyword `yaml:"anti,omitempty" json:"anti,omitempty"`
	FeelNoPain        int           `yaml:"feel_no_pain,omitempty" json:"feel_no_pain,omitempty"`
	Invulnerable      int           `yaml:"invulnerable,omitempty" json:"invulnerable,omitempty"`
	IgnoresCover      bool          `yaml:"ignores_cover,omitempty" json:"ignores_cover,omitempty"`
	HasCover          bool          `yaml:"has_cover,omitempty" json:"has_cover,omitempty"`
	Blast             bool          `yaml:"blast,omitempty" json:"blast,omitempty"`
	RapidFire         int           `yaml:"rapid_fire,omitempty" json:"rapid_fire,omitempty"` // bonus attacks per firing model
	InRapidFireRange  bool          `yaml:"in_rapid_fire_range,omitempty" json:"in_rapid_fire_range,omitempty"`
	Conversion        int           `yaml:"conversion,omitempty" json:"conversion,omitempty"` // critical hit value at long range
	AtLongRange       bool          `yaml:"at_long_range,omitempty" json:"at_long_range,omitempty"`
}

// Merge combines two sets. Every field merges commutatively: modifiers add,
// flags OR, scopes and bonuses take the larger value and thresholds take the
// better (lower, non-zero) value.
func (m ModifierSet) Merge(o ModifierSet) ModifierSet {
	out := m
	out.HitModifier += o.HitModifier
	out.HitReroll = max(m.HitReroll, o.HitReroll)
	out.WoundModifier += o.WoundModifier
	out.WoundReroll = max(m.WoundReroll, o.WoundReroll)
	out.DevastatingWounds = m.DevastatingWounds || o.DevastatingWounds
	out.LethalHits = m.LethalHits || o.LethalHits
	out.SustainedHits = max(m.SustainedHits, o.SustainedHits)
	out.Torrent = m.Torrent || o.Torrent
	out.TwinLinked = m.TwinLinked || o.TwinLinked
	out.Anti = mergeAnti(m.Anti, o.Anti)
	out.FeelNoPain = BestThreshold(m.FeelNoPain, o.FeelNoPain)
	out.Invulnerable = BestThreshold(m.Invulnerable, o.Invulnerable)
	out.IgnoresCover = m.IgnoresCover || o.IgnoresCover
	out.HasCover = m.HasCover || o.HasCover
	out.Blast = m.Blast || o.Blast
	out.RapidFire = max(m.RapidFire, o.RapidFire)
	out.InRapidFireRange = m.InRapidFireRange || o.InRapidFireRange
	out.Conversion = BestThreshold(m.Conversion, o.Conversion)
	out.AtLongRange = m.AtLongRange || o.AtLongRange
	return out
}

// mergeAnti unions anti entries keeping the best threshold per keyword, in
// first-seen keyword order.
func mergeAnti(a, b []AntiKeyword) []AntiKeyword {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	var out []AntiKeyword
	index := map[string]int{}
	for _, e := range append(append([]AntiKeyword(nil), a...), b...) {
		key := strings.ToLower(e.Keyword)
		if i, ok := index[key]; ok {
			out[i].Threshold = BestThreshold(out[i].Threshold, e.Threshold)
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}

// BestThreshold returns the lower of two N+ thresholds, treating 0 as absent.
func BestThreshold(a, b int) int {
	switch {
	case a <= 0:
		return max(b, 0)
	case b <= 0:
		return a
	default:
		return min(a, b)
	}
}

// CritHitThreshold is the unmodified hit roll that counts as a critical hit.
func (m ModifierSet) CritHitThreshold() int {
	if m.Conversion > 0 && m.AtLongRange {
		return m.Conversion
	}
	return 6
}

// CritWoundThreshold is the unmodified wound roll that counts as a critical
// wound against a target with the given keyword predicate.
func (m ModifierSet) CritWoundThreshold(hasKeyword func(string) bool) int {
	crit := 6
	for _, a := range m.Anti {
		if a.Threshold > 0 && hasKeyword != nil && hasKeyword(a.Keyword) {
			crit = min(crit, a.Threshold)
		}
	}
	return crit
}

// EffectiveWoundReroll folds twin-linked into the wound re-roll scope.
func (m ModifierSet) EffectiveWoundReroll() Reroll {
	if m.TwinLinked {
		return max(m.WoundReroll, RerollFailed)
	}
	return m.WoundReroll
}
