package simulator

import (
	"combatsim/combat"
	"combatsim/dice"
	"combatsim/game"
	"combatsim/stats"
)

type lastKnown struct {
	wounds int
	alive  bool
}

// trial runs one trial on its own fork of the board with its own dice.
func (r *Runner) trial(p *plan, index int) stats.TrialResult {
	board := p.board.Fork()
	src := dice.NewRNG(dice.DeriveSeed(p.seed, index))
	res := stats.TrialResult{Index: index, Weapons: map[string]stats.WeaponBreakdown{}}

	last := make([]lastKnown, board.ModelCount(p.defender))
	for i := range last {
		last[i].wounds, last[i].alive, _ = board.Model(p.defender, i)
	}

	for _, a := range p.attackers {
		if board.AliveModels(a.unitID) == 0 {
			continue
		}
		for _, asg := range a.assignments {
			out := r.resolver.Resolve(p.phase, combat.Action{
				AttackerUnitID: a.unitID,
				Assignments:    []combat.Assignment{asg},
			}, board, src)
			r.metrics.AddResolution()

			for _, err := range board.Apply(out.Diffs...) {
				r.logger.Debug().Err(err).Int("trial", index).Msg("Skipped diff")
			}
			applied, killed := extract(p.defender, out.Diffs, last)
			t := out.Totals()

			res.TotalDamage += t.DamageInflicted
			res.AppliedDamage += applied
			res.ModelsKilled += killed
			res.Attacks += t.Attacks
			res.Hits += t.Hits
			res.Wounds += t.Wounds
			res.MortalWounds += t.MortalWounds
			res.SavesFailed += t.SavesFailed

			key := stats.WeaponKey(a.unitID, asg.WeaponID)
			w := res.Weapons[key]
			w.UnitID, w.WeaponID = a.unitID, asg.WeaponID
			w.Add(stats.WeaponBreakdown{
				Attacks:      t.Attacks,
				Hits:         t.Hits,
				Wounds:       t.Wounds,
				MortalWounds: t.MortalWounds,
				SavesFailed:  t.SavesFailed,
				Damage:       t.DamageInflicted,
				ModelsKilled: killed,
			})
			res.Weapons[key] = w
		}
	}

	res.Overkill = max(0, res.TotalDamage-p.wounds)
	return res
}

// extract measures the damage and kills a batch of diffs caused against the
// defender, relative to the last known state of each model in this trial.
func extract(defender string, diffs []game.Diff, last []lastKnown) (applied, killed int) {
	for _, d := range diffs {
		if d.UnitID != defender || d.Model < 0 || d.Model >= len(last) {
			continue
		}
		prev := &last[d.Model]
		switch d.Kind {
		case game.SetCurrentWounds:
			if d.Wounds < prev.wounds {
				applied += prev.wounds - d.Wounds
			}
			prev.wounds = d.Wounds
		case game.SetAliveFlag:
			if prev.alive && !d.Alive {
				killed++
			}
			prev.alive = d.Alive
		}
	}
	return applied, killed
}
