package stats

import (
	"maps"
	"slices"
)

// WeaponBreakdown holds the counters one weapon of one attacker produced in
// a trial.
type WeaponBreakdown struct {
	UnitID       string `json:"unit_id"`
	WeaponID     string `json:"weapon_id"`
	Attacks      int    `json:"attacks"`
	Hits         int    `json:"hits"`
	Wounds       int    `json:"wounds"`
	MortalWounds int    `json:"mortal_wounds"`
	SavesFailed  int    `json:"saves_failed"`
	Damage       int    `json:"damage"`
	ModelsKilled int    `json:"models_killed"`
}

func (w *WeaponBreakdown) Add(o WeaponBreakdown) {
	w.Attacks += o.Attacks
	w.Hits += o.Hits
	w.Wounds += o.Wounds
	w.MortalWounds += o.MortalWounds
	w.SavesFailed += o.SavesFailed
	w.Damage += o.Damage
	w.ModelsKilled += o.ModelsKilled
}

// WeaponKey identifies a weapon of an attacking unit.
func WeaponKey(unitID, weaponID string) string {
	return unitID + "/" + weaponID
}

// TrialResult is the outcome of one simulated trial. TotalDamage counts every
// point inflicted after feel no pain, AppliedDamage only the wounds actually
// removed from the defender.
type TrialResult struct {
	Index         int                        `json:"index"`
	TotalDamage   int                        `json:"total_damage"`
	AppliedDamage int                        `json:"applied_damage"`
	ModelsKilled  int                        `json:"models_killed"`
	Overkill      int                        `json:"overkill"`
	Attacks       int                        `json:"attacks"`
	Hits          int                        `json:"hits"`
	Wounds        int                        `json:"wounds"`
	MortalWounds  int                        `json:"mortal_wounds"`
	SavesFailed   int                        `json:"saves_failed"`
	Weapons       map[string]WeaponBreakdown `json:"weapons,omitempty"`
}

type Percentiles struct {
	P0   int `json:"p0"`
	P25  int `json:"p25"`
	P50  int `json:"p50"`
	P75  int `json:"p75"`
	P95  int `json:"p95"`
	P100 int `json:"p100"`
}

// Values returns the percentiles in ascending order of rank.
func (p Percentiles) Values() []int {
	return []int{p.P0, p.P25, p.P50, p.P75, p.P95, p.P100}
}

// WeaponSummary is the per-trial mean of a weapon's breakdown.
type WeaponSummary struct {
	UnitID       string  `json:"unit_id"`
	WeaponID     string  `json:"weapon_id"`
	Attacks      float64 `json:"attacks"`
	Hits         float64 `json:"hits"`
	Wounds       float64 `json:"wounds"`
	MortalWounds float64 `json:"mortal_wounds"`
	SavesFailed  float64 `json:"saves_failed"`
	Damage       float64 `json:"damage"`
	ModelsKilled float64 `json:"models_killed"`
}

type SimulationResult struct {
	TrialsRun         int             `json:"trials_run"`
	Seed              uint64          `json:"seed"`
	DefenderModels    int             `json:"defender_models"`
	DefenderWounds    int             `json:"defender_wounds"`
	CumulativeDamage  int             `json:"cumulative_damage"`
	MeanDamage        float64         `json:"mean_damage"`
	MeanModelsKilled  float64         `json:"mean_models_killed"`
	Histogram         map[int]int     `json:"histogram"`
	KillProbability   float64         `json:"kill_probability"`
	ExpectedSurvivors float64         `json:"expected_survivors"`
	DamageEfficiency  float64         `json:"damage_efficiency"`
	Percentiles       Percentiles     `json:"percentiles"`
	Weapons           []WeaponSummary `json:"weapons"`
	Trials            []TrialResult   `json:"trials,omitempty"`
}

// HistogramKeys returns the damage values present in the histogram, sorted.
func (r SimulationResult) HistogramKeys() []int {
	return slices.Sorted(maps.Keys(r.Histogram))
}
