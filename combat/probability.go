package combat

import (
	"combatsim/game"
	"combatsim/rules"
	"combatsim/utils"
)

func clampRoll(v int) int {
	return utils.Clamp(v, 2, 6)
}

// chance is the probability of rolling threshold or more on a d6.
func chance(threshold int) float64 {
	switch {
	case threshold >= 7:
		return 0
	case threshold <= 1:
		return 1
	default:
		return float64(7-threshold) / 6
	}
}

// HitThreshold is the natural roll needed to hit.
func HitThreshold(skill, modifier int) int {
	return clampRoll(skill - modifier)
}

// WoundThreshold compares strength to toughness.
func WoundThreshold(strength, toughness int) int {
	switch {
	case strength >= 2*toughness:
		return 2
	case strength > toughness:
		return 3
	case strength == toughness:
		return 4
	case 2*strength <= toughness:
		return 6
	default:
		return 5
	}
}

// SaveThreshold is the armour save worsened by AP. A unit without a save
// returns 7.
func SaveThreshold(save, ap int) int {
	if save <= 0 {
		return 7
	}
	return save + utils.Abs(ap)
}

// EffectiveSave applies cover to the armour save and swaps in the
// invulnerable save when it is strictly better. Cover needs an armour save
// to improve.
func EffectiveSave(save, ap, invulnerable int, cover bool) int {
	t := SaveThreshold(save, ap)
	if cover && save > 0 {
		t--
	}
	if invulnerable > 0 && invulnerable < t {
		t = invulnerable
	}
	return t
}

func HitProbability(skill, modifier int) float64 {
	return chance(HitThreshold(skill, modifier))
}

func WoundProbability(strength, toughness, modifier int) float64 {
	return chance(clampRoll(WoundThreshold(strength, toughness) - modifier))
}

// SaveProbability is the chance an armour save succeeds against AP.
func SaveProbability(save, ap int) float64 {
	return chance(SaveThreshold(save, ap))
}

// ExpectedUnitDamage estimates the damage of models firing models sharing the
// weapon profile. Attacks and rapid fire scale per model, as they do when an
// assignment is resolved.
func ExpectedUnitDamage(weapon game.WeaponProfile, defender *game.Unit, mods rules.ModifierSet, models int) float64 {
	if models <= 0 {
		return 0
	}
	return float64(models) * ExpectedDamage(weapon, defender, mods)
}

// ExpectedDamage estimates the damage one firing model deals to defender,
// ignoring re-rolls, blast and model allocation.
func ExpectedDamage(weapon game.WeaponProfile, defender *game.Unit, mods rules.ModifierSet) float64 {
	attacks := weapon.Attacks.Mean()
	if mods.InRapidFireRange {
		attacks += float64(mods.RapidFire)
	}

	var hits, crits float64
	if mods.Torrent {
		hits = attacks
	} else {
		pCrit := chance(mods.CritHitThreshold())
		pHit := max(HitProbability(weapon.Skill, mods.HitModifier), pCrit)
		crits = attacks * pCrit
		hits = attacks*(pHit-pCrit) + crits*float64(mods.SustainedHits)
		if !mods.LethalHits {
			hits += crits
		}
	}
	autoWounds := 0.0
	if mods.LethalHits {
		autoWounds = crits
	}

	stats := defender.Meta.Stats
	pWound := WoundProbability(weapon.Strength, stats.Toughness, mods.WoundModifier)
	pCritWound := chance(mods.CritWoundThreshold(defender.HasKeyword))
	pWound = max(pWound, pCritWound)
	mortal := 0.0
	if mods.DevastatingWounds {
		mortal = hits * pCritWound
		pWound -= pCritWound
	}
	wounds := autoWounds + hits*pWound

	invuln := rules.BestThreshold(stats.Invulnerable, mods.Invulnerable)
	save := EffectiveSave(stats.Save, weapon.AP, invuln, mods.HasCover && !mods.IgnoresCover)
	unsaved := wounds*(1-chance(save)) + mortal

	damage := weapon.Damage.Mean()
	if fnp := rules.BestThreshold(stats.FeelNoPain, mods.FeelNoPain); fnp > 0 {
		damage *= 1 - chance(fnp)
	}
	return unsaved * damage
}
