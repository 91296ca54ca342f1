package combat

import (
	"combatsim/dice"
	"combatsim/game"
	"combatsim/rules"
)

// pipeline resolves a single assignment.
type pipeline struct {
	attacker *game.Unit
	weapon   *game.WeaponProfile
	target   *game.Unit
	mods     rules.ModifierSet
	defence  rules.ModifierSet
	view     *overlay
	src      dice.Source
	out      *Outcome
	result   AssignmentResult
}

func (p *pipeline) run(a Assignment) {
	attacks := p.attackCount(a)
	p.result.Attacks = attacks
	if attacks <= 0 {
		return
	}
	hits, lethal := p.hitStage(attacks)
	normal, mortal := p.woundStage(hits)
	normal += lethal
	p.result.Wounds = normal + mortal
	p.result.MortalWounds = mortal
	p.allocateWounds(normal, mortal)
}

func (p *pipeline) record(rec DiceRollRecord) {
	rec.WeaponID = p.weapon.ID
	p.out.Dice = append(p.out.Dice, rec)
}

// firingModels counts the listed models that are still alive, or every alive
// model of the attacker when none are listed. Ids that do not name a model of
// the attacker are trusted as firing.
func (p *pipeline) firingModels(ids []string) int {
	if len(ids) == 0 {
		return p.view.aliveModels(p.attacker.ID)
	}
	n := 0
	for _, id := range ids {
		idx := p.attacker.ModelIndex(id)
		if idx < 0 {
			n++
			continue
		}
		if s, ok := p.view.model(p.attacker.ID, idx); ok && s.alive {
			n++
		}
	}
	return n
}

func (p *pipeline) attackCount(a Assignment) int {
	firing := p.firingModels(a.ModelIDs)
	if firing == 0 {
		return 0
	}
	rec := DiceRollRecord{Context: ContextAttacks, Auto: true}
	total := a.Attacks
	if total <= 0 {
		total = 0
		rec.Auto = p.weapon.Attacks.IsFixed()
		for i := 0; i < firing; i++ {
			n := p.weapon.Attacks.Roll(p.src)
			rec.Raw = append(rec.Raw, n)
			total += n
		}
	}
	if p.mods.InRapidFireRange && p.mods.RapidFire > 0 {
		total += p.mods.RapidFire * firing
	}
	if p.mods.Blast {
		alive := p.view.aliveModels(p.target.ID)
		total += alive / 5
		if alive >= 6 {
			total = max(total, 3)
		}
	}
	total = max(total, 0)
	rec.Modified = []int{total}
	rec.Successes = total
	p.record(rec)
	return total
}

// hitStage returns the hits that still need a wound roll and the hits that
// wound automatically through lethal hits.
func (p *pipeline) hitStage(attacks int) (hits, lethal int) {
	if p.mods.Torrent {
		p.record(DiceRollRecord{Context: ContextHit, Successes: attacks, Auto: true})
		p.result.Hits = attacks
		return attacks, 0
	}
	c := check{
		context:   ContextHit,
		threshold: HitThreshold(p.weapon.Skill, p.mods.HitModifier),
		crit:      p.mods.CritHitThreshold(),
		reroll:    p.mods.HitReroll,
		modifier:  p.mods.HitModifier,
	}
	for _, r := range p.roll(c, attacks) {
		if !r.success {
			continue
		}
		if !r.critical {
			hits++
			continue
		}
		p.result.CriticalHits++
		if p.mods.LethalHits {
			lethal++
		} else {
			hits++
		}
		// Extra hits from sustained hits are never critical.
		hits += p.mods.SustainedHits
	}
	p.result.Hits = hits + lethal
	return hits, lethal
}

// woundStage returns the wounds that go to saves and the mortal wounds.
func (p *pipeline) woundStage(hits int) (normal, mortal int) {
	if hits == 0 {
		return 0, 0
	}
	c := check{
		context:   ContextWound,
		threshold: clampRoll(WoundThreshold(p.weapon.Strength, p.target.Meta.Stats.Toughness) - p.mods.WoundModifier),
		crit:      p.mods.CritWoundThreshold(p.target.HasKeyword),
		reroll:    p.mods.EffectiveWoundReroll(),
		modifier:  p.mods.WoundModifier,
	}
	for _, r := range p.roll(c, hits) {
		if !r.success {
			continue
		}
		if r.critical {
			p.result.CriticalWounds++
			if p.mods.DevastatingWounds {
				mortal++
				continue
			}
		}
		normal++
	}
	return normal, mortal
}

// allocateWounds resolves saves and damage one wound at a time so that every
// wound is allocated against the board as it stands. Mortal wounds follow the
// normal wounds and skip the save.
func (p *pipeline) allocateWounds(normal, mortal int) {
	save := DiceRollRecord{Context: ContextSave}
	damage := DiceRollRecord{Context: ContextDamage, Auto: p.weapon.Damage.IsFixed()}
	fnp := DiceRollRecord{Context: ContextFeelNoPain, Threshold: p.defence.FeelNoPain}

	for i := 0; i < normal; i++ {
		idx := p.view.allocate(p.target)
		if p.save(p.saveThreshold(idx), &save) {
			continue
		}
		p.result.SavesFailed++
		p.inflict(idx, &damage, &fnp)
	}
	for i := 0; i < mortal; i++ {
		p.inflict(p.view.allocate(p.target), &damage, &fnp)
	}

	if normal > 0 {
		p.record(save)
	}
	if len(damage.Modified) > 0 {
		p.record(damage)
	}
	if len(fnp.Raw) > 0 {
		p.record(fnp)
	}
}

func (p *pipeline) saveThreshold(idx int) int {
	invuln := p.defence.Invulnerable
	if idx >= 0 {
		invuln = rules.BestThreshold(invuln, p.target.Models[idx].Invulnerable)
	}
	cover := p.mods.HasCover && !p.mods.IgnoresCover
	return EffectiveSave(p.target.Meta.Stats.Save, p.weapon.AP, invuln, cover)
}

// save reports whether the saving throw succeeded. Thresholds of 7 or more
// fail and thresholds of 1 or less pass without a roll.
func (p *pipeline) save(threshold int, rec *DiceRollRecord) bool {
	if rec.Threshold == 0 {
		rec.Threshold = threshold
	}
	switch {
	case threshold >= 7:
		rec.Auto = true
		rec.Failures++
		return false
	case threshold <= 1:
		rec.Auto = true
		rec.Successes++
		return true
	}
	v := p.src.RollD6()
	rec.Raw = append(rec.Raw, v)
	rec.Modified = append(rec.Modified, v)
	if v != 1 && v >= threshold {
		rec.Successes++
		return true
	}
	rec.Failures++
	return false
}

// inflict rolls damage for one unsaved wound and applies it to the model at
// idx. Damage beyond the model's remaining wounds is overkill; with no model
// left the whole amount is overkill.
func (p *pipeline) inflict(idx int, damage, fnp *DiceRollRecord) {
	amount := p.weapon.Damage.Roll(p.src)
	if !p.weapon.Damage.IsFixed() {
		damage.Raw = append(damage.Raw, amount)
	}
	damage.Modified = append(damage.Modified, amount)
	damage.Successes += amount

	if threshold := p.defence.FeelNoPain; threshold > 0 {
		negated := 0
		for i := 0; i < amount; i++ {
			v := p.src.RollD6()
			fnp.Raw = append(fnp.Raw, v)
			fnp.Modified = append(fnp.Modified, v)
			if v >= threshold {
				negated++
				fnp.Successes++
			} else {
				fnp.Failures++
			}
		}
		amount -= negated
	}

	p.result.DamageInflicted += amount
	if amount == 0 {
		return
	}
	if idx < 0 {
		p.result.Overkill += amount
		return
	}

	s, _ := p.view.model(p.target.ID, idx)
	applied := min(amount, s.wounds)
	s.wounds -= applied
	p.result.DamageApplied += applied
	p.result.Overkill += amount - applied
	p.out.Diffs = append(p.out.Diffs, game.SetWounds(p.target.ID, idx, s.wounds))
	if s.wounds == 0 && s.alive {
		s.alive = false
		p.result.ModelsKilled++
		p.out.Diffs = append(p.out.Diffs, game.SetAlive(p.target.ID, idx, false))
	}
	p.view.set(p.target.ID, idx, s)
}
