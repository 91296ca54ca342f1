package game

import "combatsim/dice"

func makeUnit(id string, models, wounds int) *Unit {
	doc := UnitDoc{
		ID:         id,
		ModelCount: models,
		Meta: Meta{
			Stats: Stats{Toughness: 4, Save: 3, Wounds: wounds},
			Weapons: []WeaponProfile{{
				ID: "bolt-rifle", Name: "Bolt rifle", Type: Ranged,
				Attacks: dice.Fixed(2), Skill: 3, Strength: 4, AP: -1, Damage: dice.Fixed(1),
				SpecialRules: "Assault, Heavy",
			}},
			Abilities: []Ability{{Name: "Oath of Moment", Description: "Re-roll hit rolls"}},
			Keywords:  []string{"Infantry", "Imperium"},
		},
	}
	u, err := doc.Build()
	if err != nil {
		panic(err)
	}
	return u
}
