package combat

import (
	"combatsim/dice"
	"combatsim/game"
)

func weapon(id string, attacks, skill, strength, ap, damage int, special string) game.WeaponProfile {
	return game.WeaponProfile{
		ID: id, Name: id, Type: game.Ranged,
		Attacks: dice.Fixed(attacks), Skill: skill, Strength: strength, AP: ap,
		Damage: dice.Fixed(damage), SpecialRules: special,
	}
}

func makeUnit(id string, models int, stats game.Stats, weapons ...game.WeaponProfile) *game.Unit {
	u, err := game.UnitDoc{
		ID:         id,
		ModelCount: models,
		Meta:       game.Meta{Stats: stats, Weapons: weapons},
	}.Build()
	if err != nil {
		panic(err)
	}
	return u
}

// marines: T4, 3+ save, 2 wounds per model.
func marines(models int) *game.Unit {
	u := makeUnit("marines", models, game.Stats{Toughness: 4, Save: 3, Wounds: 2})
	u.Meta.Keywords = []string{"Infantry"}
	return u
}

// squad is an attacking unit of n one-wound models carrying w.
func squad(n int, w game.WeaponProfile) *game.Unit {
	return makeUnit("shooter", n, game.Stats{Toughness: 4, Save: 3, Wounds: 1}, w)
}

func shooter(w game.WeaponProfile) *game.Unit {
	return squad(1, w)
}

func shoot(attacker, defender *game.Unit, a Assignment, script ...int) (Outcome, *dice.Scripted, *game.Board) {
	board := game.NewBoard(attacker, defender)
	src := dice.NewScripted(script...)
	if a.TargetUnitID == "" {
		a.TargetUnitID = defender.ID
	}
	out := NewResolver().ResolveShoot(Action{AttackerUnitID: attacker.ID, Assignments: []Assignment{a}}, board, src)
	return out, src, board
}

func record(out Outcome, c Context) (DiceRollRecord, bool) {
	for _, r := range out.Dice {
		if r.Context == c {
			return r, true
		}
	}
	return DiceRollRecord{}, false
}
