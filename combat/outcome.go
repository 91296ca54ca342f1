package combat

import (
	"fmt"

	"combatsim/game"
	"combatsim/rules"
)

type Phase string

const (
	Shooting Phase = "shooting"
	Fight    Phase = "fight"
)

func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case Shooting, "shoot", "":
		return Shooting, nil
	case Fight, "melee":
		return Fight, nil
	default:
		return "", fmt.Errorf("unknown phase %q", s)
	}
}

// WeaponType is the weapon type a phase resolves.
func (p Phase) WeaponType() game.WeaponType {
	if p == Fight {
		return game.Melee
	}
	return game.Ranged
}

// Assignment is one weapon pointed at one target.
type Assignment struct {
	WeaponID     string            `json:"weapon_id"`
	TargetUnitID string            `json:"target_unit_id"`
	ModelIDs     []string          `json:"model_ids,omitempty"` // firing models, all of them count when empty
	Attacks      int               `json:"attacks,omitempty"`   // replaces the rolled attack total when > 0
	Modifiers    rules.ModifierSet `json:"modifiers"`
}

type Action struct {
	AttackerUnitID string       `json:"attacker_unit_id"`
	Assignments    []Assignment `json:"assignments"`
}

type Context string

const (
	ContextAttacks    Context = "attacks"
	ContextHit        Context = "to_hit"
	ContextWound      Context = "to_wound"
	ContextSave       Context = "save"
	ContextDamage     Context = "damage"
	ContextFeelNoPain Context = "feel_no_pain"
)

type RerollAudit struct {
	Index int `json:"index"`
	From  int `json:"from"`
	To    int `json:"to"`
}

// DiceRollRecord is the audit of one stage of one assignment. Raw holds the
// first roll of every die, Modified the kept value after re-rolls with the
// stage modifier added. Auto marks results produced without rolling.
type DiceRollRecord struct {
	Context   Context       `json:"context"`
	WeaponID  string        `json:"weapon_id"`
	Raw       []int         `json:"raw"`
	Modified  []int         `json:"modified"`
	Rerolls   []RerollAudit `json:"rerolls,omitempty"`
	Threshold int           `json:"threshold,omitempty"`
	Successes int           `json:"successes"`
	Failures  int           `json:"failures"`
	Critical  int           `json:"critical,omitempty"`
	Auto      bool          `json:"auto,omitempty"`
}

// AssignmentResult holds the counters of one resolved assignment.
type AssignmentResult struct {
	WeaponID        string `json:"weapon_id"`
	TargetUnitID    string `json:"target_unit_id"`
	Attacks         int    `json:"attacks"`
	Hits            int    `json:"hits"`
	CriticalHits    int    `json:"critical_hits"`
	Wounds          int    `json:"wounds"`
	CriticalWounds  int    `json:"critical_wounds"`
	MortalWounds    int    `json:"mortal_wounds"`
	SavesFailed     int    `json:"saves_failed"`
	DamageInflicted int    `json:"damage_inflicted"`
	DamageApplied   int    `json:"damage_applied"`
	ModelsKilled    int    `json:"models_killed"`
	Overkill        int    `json:"overkill"`
}

// Outcome is the result of one action. Diffs are proposals; the board the
// action was resolved against is left untouched.
type Outcome struct {
	Success     bool               `json:"success"`
	Dice        []DiceRollRecord   `json:"dice"`
	Diffs       []game.Diff        `json:"diffs"`
	Assignments []AssignmentResult `json:"assignments"`
	Errors      []string           `json:"errors,omitempty"`
}

func (o *Outcome) fail(format string, args ...any) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
}

// Totals sums the counters of every assignment.
func (o Outcome) Totals() AssignmentResult {
	var t AssignmentResult
	for _, a := range o.Assignments {
		t.Attacks += a.Attacks
		t.Hits += a.Hits
		t.CriticalHits += a.CriticalHits
		t.Wounds += a.Wounds
		t.CriticalWounds += a.CriticalWounds
		t.MortalWounds += a.MortalWounds
		t.SavesFailed += a.SavesFailed
		t.DamageInflicted += a.DamageInflicted
		t.DamageApplied += a.DamageApplied
		t.ModelsKilled += a.ModelsKilled
		t.Overkill += a.Overkill
	}
	return t
}
