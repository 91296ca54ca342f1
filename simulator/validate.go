package simulator

import (
	"combatsim/combat"
	"combatsim/game"
	"combatsim/meta"
	"combatsim/rules"
)

// Validate checks a configuration with the default rule registry.
func Validate(lookup game.Lookup, cfg Config) rules.Validation {
	return validate(lookup, rules.Default(), cfg)
}

func validate(lookup game.Lookup, registry *rules.Registry, cfg Config) rules.Validation {
	v := rules.Validation{Valid: true}

	phase, err := combat.ParsePhase(string(cfg.Phase))
	if err != nil {
		v.Add("%v", err)
	}

	trials := cfg.Trials
	if trials == 0 {
		trials = meta.DefaultTrials
	}
	if trials < meta.MinTrials || trials > meta.MaxTrials {
		v.Add("trials must be between %d and %d, got %d", meta.MinTrials, meta.MaxTrials, cfg.Trials)
	}

	if len(cfg.Attackers) == 0 {
		v.Add("at least one attacker is required")
	}
	for _, a := range cfg.Attackers {
		if a.UnitID == "" {
			v.Add("attacker unit id is required")
			continue
		}
		if a.UnitID == cfg.Defender.UnitID {
			v.Add("unit %q cannot attack itself", a.UnitID)
		}
		u, ok := lookup.Unit(a.UnitID)
		if !ok {
			v.Add("unknown attacker unit %q", a.UnitID)
			continue
		}
		if err == nil {
			validateWeapons(&v, u, a, phase)
		}
	}

	if cfg.Defender.UnitID == "" {
		v.Add("a defender is required")
	} else if d, ok := lookup.Unit(cfg.Defender.UnitID); !ok {
		v.Add("unknown defender unit %q", cfg.Defender.UnitID)
	} else if len(d.Models) == 0 && cfg.Defender.Overrides.ModelCount == 0 {
		v.Add("defender %q has no models", d.ID)
	}
	validateOverrides(&v, cfg.Defender.Overrides)

	rv := registry.Validate(cfg.ActiveRules())
	for _, e := range rv.Errors {
		v.Add("%s", e)
	}
	return v
}

func validateWeapons(v *rules.Validation, u *game.Unit, a AttackerConfig, phase combat.Phase) {
	if len(a.Weapons) == 0 {
		if len(phaseWeapons(u, phase)) == 0 {
			v.Add("attacker %q has no %s weapons", u.ID, phase.WeaponType())
		}
		return
	}
	for _, s := range a.Weapons {
		w, ok := u.Weapon(s.WeaponID)
		if !ok {
			v.Add("attacker %q has no weapon %q", u.ID, s.WeaponID)
			continue
		}
		if w.Kind() != phase.WeaponType() {
			v.Add("weapon %q of %q is %s and cannot be used in the %s phase", w.ID, u.ID, w.Kind(), phase)
		}
		if s.Attacks < 0 {
			v.Add("weapon %q of %q has negative attacks", w.ID, u.ID)
		}
	}
}

func validateOverrides(v *rules.Validation, o Overrides) {
	values := []struct {
		name  string
		value int
	}{
		{"toughness", o.Toughness},
		{"save", o.Save},
		{"wounds_per_model", o.WoundsPerModel},
		{"model_count", o.ModelCount},
		{"invulnerable", o.Invulnerable},
		{"feel_no_pain", o.FeelNoPain},
	}
	for _, f := range values {
		if f.value < 0 {
			v.Add("override %s must not be negative", f.name)
		}
	}
}

func phaseWeapons(u *game.Unit, phase combat.Phase) []game.WeaponProfile {
	var out []game.WeaponProfile
	for _, w := range u.Meta.Weapons {
		if w.Kind() == phase.WeaponType() {
			out = append(out, w)
		}
	}
	return out
}
