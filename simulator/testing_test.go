package simulator

import (
	"combatsim/dice"
	"combatsim/game"
)

func fixture() *game.Catalog {
	docs := []game.UnitDoc{
		{
			ID: "intercessors", ModelCount: 5,
			Meta: game.Meta{
				Stats: game.Stats{Toughness: 4, Save: 3, Wounds: 2},
				Weapons: []game.WeaponProfile{
					{ID: "bolt-rifle", Type: game.Ranged, Attacks: dice.Fixed(2), Skill: 3, Strength: 4, AP: -1, Damage: dice.Fixed(1), SpecialRules: "Assault, Heavy"},
					{ID: "plasma", Type: game.Ranged, Attacks: dice.MustParse("D3"), Skill: 3, Strength: 8, AP: -3, Damage: dice.Fixed(2)},
					{ID: "knife", Type: game.Melee, Attacks: dice.Fixed(3), Skill: 3, Strength: 4, Damage: dice.Fixed(1)},
				},
				Keywords: []string{"Infantry"},
			},
		},
		{
			ID: "flamers", ModelCount: 1,
			Meta: game.Meta{
				Stats: game.Stats{Toughness: 4, Save: 3, Wounds: 2},
				Weapons: []game.WeaponProfile{
					{ID: "flamer", Type: game.Ranged, Attacks: dice.Fixed(20), Skill: 0, Strength: 9, Damage: dice.Fixed(3), SpecialRules: "Torrent, Ignores Cover"},
				},
			},
		},
		{
			ID: "guardsmen", ModelCount: 10,
			Meta: game.Meta{
				Stats:    game.Stats{Toughness: 3, Save: 5, Wounds: 1},
				Keywords: []string{"Infantry"},
			},
		},
		{
			ID: "grunt", ModelCount: 1,
			Meta: game.Meta{Stats: game.Stats{Toughness: 3, Wounds: 1}},
		},
	}
	c, err := game.BuildCatalog(docs)
	if err != nil {
		panic(err)
	}
	return c
}

func baseConfig() Config {
	return Config{
		Trials:    500,
		Attackers: []AttackerConfig{{UnitID: "intercessors", Weapons: []WeaponSelection{{WeaponID: "bolt-rifle"}, {WeaponID: "plasma"}}}},
		Defender:  DefenderConfig{UnitID: "guardsmen"},
		Phase:     "shooting",
		Seed:      42,
	}
}
