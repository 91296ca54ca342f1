package stats

import (
	"maps"
	"slices"
	"sort"

	"combatsim/utils"
)

// Aggregator reduces trial results into a SimulationResult. Trials must be
// added in index order for the result to be reproducible.
type Aggregator struct {
	models int
	wounds int
	trials []TrialResult
}

// NewAggregator takes the defender's model count and total wounds at full
// health.
func NewAggregator(models, wounds int) *Aggregator {
	return &Aggregator{models: models, wounds: wounds}
}

func (a *Aggregator) Add(t TrialResult) {
	a.trials = append(a.trials, t)
}

func (a *Aggregator) Len() int {
	return len(a.trials)
}

func (a *Aggregator) Result() SimulationResult {
	r := SimulationResult{
		TrialsRun:      len(a.trials),
		DefenderModels: a.models,
		DefenderWounds: a.wounds,
		Histogram:      map[int]int{},
		Trials:         a.trials,
	}
	if len(a.trials) == 0 {
		r.ExpectedSurvivors = float64(a.models)
		return r
	}

	n := float64(len(a.trials))
	damage := make([]int, 0, len(a.trials))
	kills, killed := 0, 0
	for _, t := range a.trials {
		damage = append(damage, t.TotalDamage)
		r.CumulativeDamage += t.TotalDamage
		r.Histogram[t.TotalDamage]++
		killed += t.ModelsKilled
		if t.ModelsKilled >= a.models {
			kills++
		}
	}

	r.MeanDamage = float64(r.CumulativeDamage) / n
	r.MeanModelsKilled = float64(killed) / n
	r.KillProbability = float64(kills) / n
	r.ExpectedSurvivors = max(0, float64(a.models)-r.MeanModelsKilled)
	if r.MeanDamage > 0 {
		r.DamageEfficiency = min(r.MeanDamage, float64(a.wounds)) / r.MeanDamage
	}

	sort.Ints(damage)
	r.Percentiles = Percentiles{
		P0:   Percentile(damage, 0),
		P25:  Percentile(damage, 0.25),
		P50:  Percentile(damage, 0.5),
		P75:  Percentile(damage, 0.75),
		P95:  Percentile(damage, 0.95),
		P100: Percentile(damage, 1),
	}
	r.Weapons = a.weaponSummaries(n)
	return r
}

// Percentile indexes a sorted slice at floor(p*len), clamped to the last
// element.
func Percentile(sorted []int, p float64) int {
	if len(sorted) == 0 {
		return 0
	}
	i := int(p * float64(len(sorted)))
	return sorted[utils.Clamp(i, 0, len(sorted)-1)]
}

// weaponSummaries averages each weapon over every trial, in order of first
// appearance.
func (a *Aggregator) weaponSummaries(n float64) []WeaponSummary {
	totals := map[string]*WeaponBreakdown{}
	var order []string
	for _, t := range a.trials {
		for _, k := range slices.Sorted(maps.Keys(t.Weapons)) {
			w := t.Weapons[k]
			total, ok := totals[k]
			if !ok {
				total = &WeaponBreakdown{UnitID: w.UnitID, WeaponID: w.WeaponID}
				totals[k] = total
				order = append(order, k)
			}
			total.Add(w)
		}
	}

	out := make([]WeaponSummary, 0, len(order))
	for _, k := range order {
		w := totals[k]
		out = append(out, WeaponSummary{
			UnitID:       w.UnitID,
			WeaponID:     w.WeaponID,
			Attacks:      float64(w.Attacks) / n,
			Hits:         float64(w.Hits) / n,
			Wounds:       float64(w.Wounds) / n,
			MortalWounds: float64(w.MortalWounds) / n,
			SavesFailed:  float64(w.SavesFailed) / n,
			Damage:       float64(w.Damage) / n,
			ModelsKilled: float64(w.ModelsKilled) / n,
		})
	}
	return out
}
