package rules

type Category string

const (
	CategoryHit         Category = "hit"
	CategoryWound       Category = "wound"
	CategorySave        Category = "save"
	CategoryDamage      Category = "damage"
	CategorySituational Category = "situational"
)

type RuleID string

const (
	HitPlus1            RuleID = "hit_plus_1"
	HitMinus1           RuleID = "hit_minus_1"
	RerollHitsOnes      RuleID = "reroll_hits_ones"
	RerollHitsFailed    RuleID = "reroll_hits_failed"
	LethalHits          RuleID = "lethal_hits"
	SustainedHits1      RuleID = "sustained_hits_1"
	Torrent             RuleID = "torrent"
	WoundPlus1          RuleID = "wound_plus_1"
	WoundMinus1         RuleID = "wound_minus_1"
	RerollWoundsOnes    RuleID = "reroll_wounds_ones"
	RerollWoundsFailed  RuleID = "reroll_wounds_failed"
	TwinLinked          RuleID = "twin_linked"
	DevastatingWounds   RuleID = "devastating_wounds"
	AntiInfantry4       RuleID = "anti_infantry_4"
	AntiVehicle4        RuleID = "anti_vehicle_4"
	AntiMonster4        RuleID = "anti_monster_4"
	AntiCharacter4      RuleID = "anti_character_4"
	Cover               RuleID = "cover"
	IgnoresCover        RuleID = "ignores_cover"
	Invulnerable4       RuleID = "invulnerable_4"
	Invulnerable5       RuleID = "invulnerable_5"
	FeelNoPain5         RuleID = "feel_no_pain_5"
	FeelNoPain6         RuleID = "feel_no_pain_6"
	RapidFire           RuleID = "rapid_fire"
	Blast               RuleID = "blast"
	ConversionLongRange RuleID = "conversion_long_range"
)

// universal rules are always offered for toggling, detected or not.
var universal = []RuleID{HitPlus1, HitMinus1, WoundPlus1, WoundMinus1, Cover, RapidFire, Torrent}

func definitions() []RuleDefinition {
	return []RuleDefinition{
		{
			ID: HitPlus1, Name: "+1 to Hit", Category: CategoryHit,
			ConflictsWith: []RuleID{HitMinus1, Torrent},
			Apply:         func(m *ModifierSet) { m.HitModifier++ },
		},
		{
			ID: HitMinus1, Name: "-1 to Hit", Category: CategoryHit,
			ConflictsWith: []RuleID{HitPlus1, Torrent},
			Apply:         func(m *ModifierSet) { m.HitModifier-- },
		},
		{
			ID: RerollHitsOnes, Name: "Re-roll Hit Rolls of 1", Category: CategoryHit,
			ConflictsWith: []RuleID{RerollHitsFailed, Torrent},
			Apply:         func(m *ModifierSet) { m.HitReroll = max(m.HitReroll, RerollOnes) },
		},
		{
			ID: RerollHitsFailed, Name: "Re-roll Failed Hit Rolls", Category: CategoryHit,
			ConflictsWith: []RuleID{RerollHitsOnes, Torrent},
			Apply:         func(m *ModifierSet) { m.HitReroll = max(m.HitReroll, RerollFailed) },
		},
		{
			ID: LethalHits, Name: "Lethal Hits", Category: CategoryHit,
			Apply: func(m *ModifierSet) { m.LethalHits = true },
		},
		{
			ID: SustainedHits1, Name: "Sustained Hits 1", Category: CategoryHit,
			Apply: func(m *ModifierSet) { m.SustainedHits = max(m.SustainedHits, 1) },
		},
		{
			ID: Torrent, Name: "Torrent", Category: CategoryHit,
			ConflictsWith: []RuleID{HitPlus1, HitMinus1, RerollHitsOnes, RerollHitsFailed},
			Apply:         func(m *ModifierSet) { m.Torrent = true },
		},
		{
			ID: WoundPlus1, Name: "+1 to Wound", Category: CategoryWound,
			ConflictsWith: []RuleID{WoundMinus1},
			Apply:         func(m *ModifierSet) { m.WoundModifier++ },
		},
		{
			ID: WoundMinus1, Name: "-1 to Wound", Category: CategoryWound,
			ConflictsWith: []RuleID{WoundPlus1},
			Apply:         func(m *ModifierSet) { m.WoundModifier-- },
		},
		{
			ID: RerollWoundsOnes, Name: "Re-roll Wound Rolls of 1", Category: CategoryWound,
			ConflictsWith: []RuleID{RerollWoundsFailed},
			Apply:         func(m *ModifierSet) { m.WoundReroll = max(m.WoundReroll, RerollOnes) },
		},
		{
			ID: RerollWoundsFailed, Name: "Re-roll Failed Wound Rolls", Category: CategoryWound,
			ConflictsWith: []RuleID{RerollWoundsOnes},
			Apply:         func(m *ModifierSet) { m.WoundReroll = max(m.WoundReroll, RerollFailed) },
		},
		{
			ID: TwinLinked, Name: "Twin-linked", Category: CategoryWound,
			Apply: func(m *ModifierSet) { m.TwinLinked = true },
		},
		{
			ID: DevastatingWounds, Name: "Devastating Wounds", Category: CategoryWound,
			Apply: func(m *ModifierSet) { m.DevastatingWounds = true },
		},
		{ID: AntiInfantry4, Name: "Anti-Infantry 4+", Category: CategoryWound, Text: "Anti-Infantry 4+"},
		{ID: AntiVehicle4, Name: "Anti-Vehicle 4+", Category: CategoryWound, Text: "Anti-Vehicle 4+"},
		{ID: AntiMonster4, Name: "Anti-Monster 4+", Category: CategoryWound, Text: "Anti-Monster 4+"},
		{ID: AntiCharacter4, Name: "Anti-Character 4+", Category: CategoryWound, Text: "Anti-Character 4+"},
		{
			ID: Cover, Name: "Benefit of Cover", Category: CategorySave,
			ConflictsWith: []RuleID{IgnoresCover},
			Apply:         func(m *ModifierSet) { m.HasCover = true },
		},
		{
			ID: IgnoresCover, Name: "Ignores Cover", Category: CategorySave,
			ConflictsWith: []RuleID{Cover},
			Apply:         func(m *ModifierSet) { m.IgnoresCover = true },
		},
		{
			ID: Invulnerable4, Name: "4+ Invulnerable Save", Category: CategorySave,
			ConflictsWith: []RuleID{Invulnerable5},
			Apply:         func(m *ModifierSet) { m.Invulnerable = BestThreshold(m.Invulnerable, 4) },
		},
		{
			ID: Invulnerable5, Name: "5+ Invulnerable Save", Category: CategorySave,
			ConflictsWith: []RuleID{Invulnerable4},
			Apply:         func(m *ModifierSet) { m.Invulnerable = BestThreshold(m.Invulnerable, 5) },
		},
		{
			ID: FeelNoPain5, Name: "Feel No Pain 5+", Category: CategoryDamage,
			ConflictsWith: []RuleID{FeelNoPain6},
			Apply:         func(m *ModifierSet) { m.FeelNoPain = BestThreshold(m.FeelNoPain, 5) },
		},
		{
			ID: FeelNoPain6, Name: "Feel No Pain 6+", Category: CategoryDamage,
			ConflictsWith: []RuleID{FeelNoPain5},
			Apply:         func(m *ModifierSet) { m.FeelNoPain = BestThreshold(m.FeelNoPain, 6) },
		},
		{
			ID: RapidFire, Name: "Rapid Fire Range", Category: CategorySituational,
			Apply: func(m *ModifierSet) { m.InRapidFireRange = true },
		},
		{
			ID: Blast, Name: "Blast", Category: CategorySituational,
			Apply: func(m *ModifierSet) { m.Blast = true },
		},
		{
			ID: ConversionLongRange, Name: "Conversion (Long Range)", Category: CategorySituational,
			Apply: func(m *ModifierSet) { m.AtLongRange = true },
		},
	}
}

// Pattern maps a case-insensitive substring of rule text to a rule id.
// Excludes suppresses the match when the text also contains it.
type Pattern struct {
	Contains string
	Excludes string
	Rule     RuleID
}

func patterns() []Pattern {
	return []Pattern{
		{Contains: "lethal hits", Rule: LethalHits},
		{Contains: "sustained hits", Rule: SustainedHits1},
		{Contains: "torrent", Rule: Torrent},
		{Contains: "twin-linked", Rule: TwinLinked},
		{Contains: "twin linked", Rule: TwinLinked},
		{Contains: "devastating wounds", Rule: DevastatingWounds},
		{Contains: "anti-infantry", Rule: AntiInfantry4},
		{Contains: "anti-vehicle", Rule: AntiVehicle4},
		{Contains: "anti-monster", Rule: AntiMonster4},
		{Contains: "anti-character", Rule: AntiCharacter4},
		{Contains: "ignores cover", Rule: IgnoresCover},
		{Contains: "benefit of cover", Rule: Cover},
		{Contains: "blast", Rule: Blast},
		{Contains: "rapid fire", Rule: RapidFire},
		{Contains: "conversion", Rule: ConversionLongRange},
		{Contains: "re-roll hit rolls of 1", Rule: RerollHitsOnes},
		{Contains: "re-roll a hit roll of 1", Rule: RerollHitsOnes},
		{Contains: "re-roll hit rolls", Excludes: "of 1", Rule: RerollHitsFailed},
		{Contains: "re-roll the hit roll", Excludes: "of 1", Rule: RerollHitsFailed},
		{Contains: "re-roll wound rolls of 1", Rule: RerollWoundsOnes},
		{Contains: "re-roll a wound roll of 1", Rule: RerollWoundsOnes},
		{Contains: "re-roll wound rolls", Excludes: "of 1", Rule: RerollWoundsFailed},
		{Contains: "re-roll the wound roll", Excludes: "of 1", Rule: RerollWoundsFailed},
		{Contains: "add 1 to the hit roll", Rule: HitPlus1},
		{Contains: "+1 to hit", Rule: HitPlus1},
		{Contains: "subtract 1 from the hit roll", Rule: HitMinus1},
		{Contains: "stealth", Rule: HitMinus1},
		{Contains: "add 1 to the wound roll", Rule: WoundPlus1},
		{Contains: "+1 to wound", Rule: WoundPlus1},
		{Contains: "subtract 1 from the wound roll", Rule: WoundMinus1},
		{Contains: "4+ invulnerable", Rule: Invulnerable4},
		{Contains: "5+ invulnerable", Rule: Invulnerable5},
		{Contains: "feel no pain 5+", Rule: FeelNoPain5},
		{Contains: "feel no pain 6+", Rule: FeelNoPain6},
	}
}
