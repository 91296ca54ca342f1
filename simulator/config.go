package simulator

import (
	"fmt"
	"os"
	"strings"

	"combatsim/combat"
	"combatsim/game"
	"combatsim/rules"

	"gopkg.in/yaml.v3"
)

// WeaponSelection picks one weapon of an attacking unit.
type WeaponSelection struct {
	WeaponID string   `yaml:"weapon_id" json:"weapon_id"`
	ModelIDs []string `yaml:"model_ids,omitempty" json:"model_ids,omitempty"`
	Attacks  int      `yaml:"attacks,omitempty" json:"attacks,omitempty"`
}

// AttackerConfig names an attacking unit. With no weapons listed every weapon
// usable in the phase fires.
type AttackerConfig struct {
	UnitID  string            `yaml:"unit_id" json:"unit_id"`
	Weapons []WeaponSelection `yaml:"weapons,omitempty" json:"weapons,omitempty"`
}

// Overrides replace defender characteristics for the simulation. Zero leaves
// a value unchanged.
type Overrides struct {
	Toughness      int `yaml:"toughness,omitempty" json:"toughness,omitempty"`
	Save           int `yaml:"save,omitempty" json:"save,omitempty"`
	WoundsPerModel int `yaml:"wounds_per_model,omitempty" json:"wounds_per_model,omitempty"`
	ModelCount     int `yaml:"model_count,omitempty" json:"model_count,omitempty"`
	Invulnerable   int `yaml:"invulnerable,omitempty" json:"invulnerable,omitempty"`
	FeelNoPain     int `yaml:"feel_no_pain,omitempty" json:"feel_no_pain,omitempty"`
}

type DefenderConfig struct {
	UnitID    string    `yaml:"unit_id" json:"unit_id"`
	Overrides Overrides `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// Config describes one simulation. Seed 0 asks for a random seed, which is
// reported back in the result.
type Config struct {
	Trials      int              `yaml:"trials" json:"trials"`
	Attackers   []AttackerConfig `yaml:"attackers" json:"attackers"`
	Defender    DefenderConfig   `yaml:"defender" json:"defender"`
	RuleToggles map[string]bool  `yaml:"rule_toggles,omitempty" json:"rule_toggles,omitempty"`
	Phase       combat.Phase     `yaml:"phase,omitempty" json:"phase,omitempty"`
	Seed        uint64           `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ActiveRules returns the toggled-on rule ids, sorted.
func (c Config) ActiveRules() []rules.RuleID {
	return rules.Active(c.RuleToggles)
}

// ValidationError is returned when a simulation is started with an invalid
// configuration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid simulation config: " + strings.Join(e.Errors, "; ")
}

// ApplyRuleModifiers composes the modifier set of every toggled-on rule.
func ApplyRuleModifiers(registry *rules.Registry, cfg Config) rules.ModifierSet {
	return registry.Apply(rules.ModifierSet{}, cfg.ActiveRules())
}

// Scenario is a self-contained simulation file: the units taking part and
// the simulation to run.
type Scenario struct {
	Units      []game.UnitDoc `yaml:"units"`
	Simulation Config         `yaml:"simulation"`
}

// LoadScenario reads a YAML scenario and builds its catalog.
func LoadScenario(path string) (*game.Catalog, Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Config{}, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	var s Scenario
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return nil, Config{}, fmt.Errorf("decode scenario: %w", err)
	}
	catalog, err := game.BuildCatalog(s.Units)
	if err != nil {
		return nil, Config{}, fmt.Errorf("build scenario units: %w", err)
	}
	return catalog, s.Simulation, nil
}
