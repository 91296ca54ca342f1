package simulator

import (
	"strconv"
	"strings"
	"sync"

	"combatsim/combat"
	"combatsim/dice"
	"combatsim/game"
	"combatsim/meta"
	"combatsim/metrics"
	"combatsim/rules"
	"combatsim/stats"
	"combatsim/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Option func(r *Runner)

func WithWorkers(workers int) Option {
	return func(r *Runner) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

func WithRegistry(registry *rules.Registry) Option {
	return func(r *Runner) {
		if registry != nil {
			r.registry = registry
		}
	}
}

func WithMetrics() Option {
	return func(r *Runner) {
		r.metrics = metrics.NewCollector()
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner runs Monte Carlo simulations against the units of a lookup.
type Runner struct {
	lookup   game.Lookup
	registry *rules.Registry
	resolver *combat.Resolver
	workers  int
	metrics  metrics.Collector
	logger   zerolog.Logger
}

func NewRunner(lookup game.Lookup, options ...Option) *Runner {
	r := &Runner{ // Default values
		lookup:   lookup,
		registry: rules.Default(),
		workers:  meta.GoRoutines,
		metrics:  metrics.NewDummyCollector(),
		logger:   log.Logger,
	}
	for _, option := range options {
		option(r)
	}
	r.resolver = combat.NewResolver(combat.WithRegistry(r.registry), combat.WithLogger(r.logger))
	return r
}

// SimulateCombat runs a simulation with default settings.
func SimulateCombat(lookup game.Lookup, cfg Config) (stats.SimulationResult, error) {
	return NewRunner(lookup).Simulate(cfg)
}

func (r *Runner) Validate(cfg Config) rules.Validation {
	return validate(r.lookup, r.registry, cfg)
}

func (r *Runner) Simulate(cfg Config) (stats.SimulationResult, error) {
	result, _, err := r.Run(cfg)
	return result, err
}

// Run validates cfg, runs every trial and aggregates the results. The result
// only depends on the configuration and the seed, never on the number of
// workers.
func (r *Runner) Run(cfg Config) (stats.SimulationResult, metrics.RunMetric, error) {
	if v := r.Validate(cfg); !v.Valid {
		return stats.SimulationResult{}, metrics.RunMetric{}, &ValidationError{Errors: v.Errors}
	}
	p, err := r.prepare(cfg)
	if err != nil {
		return stats.SimulationResult{}, metrics.RunMetric{}, err
	}

	workers := utils.Clamp(r.workers, 1, p.trials)
	r.logger.Info().Msgf("Simulating %d trials on %d workers with seed %d", p.trials, workers, p.seed)

	r.metrics.Start(workers, p.trials)
	results := r.iterate(p, workers)
	metric := r.metrics.Complete()

	agg := stats.NewAggregator(p.models, p.wounds)
	for _, t := range results {
		agg.Add(t)
	}
	result := agg.Result()
	result.Seed = p.seed

	r.logger.Info().Msgf("Mean damage %.2f, kill probability %.3f", result.MeanDamage, result.KillProbability)
	return result, metric, nil
}

// iterate runs every trial on a pool of workers. Each trial writes its own
// slot so the results come back in trial order.
func (r *Runner) iterate(p *plan, workers int) []stats.TrialResult {
	results := make([]stats.TrialResult, p.trials)
	task := make(chan int, p.trials)
	for i := 0; i < p.trials; i++ {
		task <- i
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range task {
				results[index] = r.trial(p, index)
				r.metrics.AddTrial()
			}
		}()
	}

	wg.Wait()
	return results
}

type attackerPlan struct {
	unitID      string
	assignments []combat.Assignment
}

// plan is everything a trial needs, derived once per simulation.
type plan struct {
	board     *game.Board
	defender  string
	attackers []attackerPlan
	phase     combat.Phase
	seed      uint64
	trials    int
	models    int
	wounds    int
}

func (r *Runner) prepare(cfg Config) (*plan, error) {
	phase, err := combat.ParsePhase(string(cfg.Phase))
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			return nil, err
		}
	}
	trials := cfg.Trials
	if trials == 0 {
		trials = meta.DefaultTrials
	}

	mods := ApplyRuleModifiers(r.registry, cfg)
	base, _ := r.lookup.Unit(cfg.Defender.UnitID)
	defender := deriveDefender(r.registry, base, mods, cfg.Defender.Overrides)

	// Defensive values now live on the defender, where overrides can win.
	mods.FeelNoPain = 0
	mods.Invulnerable = 0

	p := &plan{
		board:    game.NewBoard(defender),
		defender: defender.ID,
		phase:    phase,
		seed:     seed,
		trials:   utils.Clamp(trials, meta.MinTrials, meta.MaxTrials),
		models:   len(defender.Models),
		wounds:   defender.TotalWounds(),
	}

	anti := r.registry.AntiKeywordText(cfg.ActiveRules())
	for _, a := range cfg.Attackers {
		u, _ := r.lookup.Unit(a.UnitID)
		attacker := deriveAttacker(u, anti)
		p.board.Put(attacker)

		ap := attackerPlan{unitID: attacker.ID}
		for _, s := range selections(attacker, a, phase) {
			ap.assignments = append(ap.assignments, combat.Assignment{
				WeaponID:     s.WeaponID,
				TargetUnitID: defender.ID,
				ModelIDs:     s.ModelIDs,
				Attacks:      s.Attacks,
				Modifiers:    mods,
			})
		}
		p.attackers = append(p.attackers, ap)
	}
	return p, nil
}

func selections(u *game.Unit, a AttackerConfig, phase combat.Phase) []WeaponSelection {
	if len(a.Weapons) > 0 {
		return a.Weapons
	}
	var out []WeaponSelection
	for _, w := range phaseWeapons(u, phase) {
		out = append(out, WeaponSelection{WeaponID: w.ID})
	}
	return out
}

// deriveDefender resets the defender to full health and applies toggled
// defensive rules, then the explicit overrides on top.
func deriveDefender(registry *rules.Registry, u *game.Unit, mods rules.ModifierSet, o Overrides) *game.Unit {
	d := u.Copy()
	foldAbilities(registry, d)
	st := &d.Meta.Stats
	st.FeelNoPain = rules.BestThreshold(st.FeelNoPain, mods.FeelNoPain)
	st.Invulnerable = rules.BestThreshold(st.Invulnerable, mods.Invulnerable)

	if o.Toughness > 0 {
		st.Toughness = o.Toughness
	}
	if o.Save > 0 {
		st.Save = o.Save
	}
	if o.FeelNoPain > 0 {
		st.FeelNoPain = o.FeelNoPain
	}
	if o.Invulnerable > 0 {
		st.Invulnerable = o.Invulnerable
		for i := range d.Models {
			d.Models[i].Invulnerable = o.Invulnerable
		}
	}
	if o.ModelCount > 0 {
		d.Models = resize(d, o.ModelCount)
	}
	if o.WoundsPerModel > 0 {
		st.Wounds = o.WoundsPerModel
		for i := range d.Models {
			d.Models[i].MaxWounds = o.WoundsPerModel
		}
	}
	for i := range d.Models {
		d.Models[i].MaxWounds = max(d.Models[i].MaxWounds, 1)
		d.Models[i].CurrentWounds = d.Models[i].MaxWounds
		d.Models[i].Alive = true
	}
	return d
}

// foldAbilities moves invulnerable and feel no pain values written in ability
// text onto the stat line, dropping those abilities so the resolver does not
// read them a second time.
func foldAbilities(registry *rules.Registry, d *game.Unit) {
	st := &d.Meta.Stats
	kept := d.Meta.Abilities[:0]
	for _, ab := range d.Meta.Abilities {
		own := registry.ParseAll(ab.Name, ab.Description)
		if own.Invulnerable == 0 && own.FeelNoPain == 0 {
			kept = append(kept, ab)
			continue
		}
		st.Invulnerable = rules.BestThreshold(st.Invulnerable, own.Invulnerable)
		st.FeelNoPain = rules.BestThreshold(st.FeelNoPain, own.FeelNoPain)
	}
	d.Meta.Abilities = kept
}

// resize truncates the model list or extends it with copies of the first
// model.
func resize(u *game.Unit, n int) []game.Model {
	if n <= len(u.Models) {
		return u.Models[:n]
	}
	template := game.Model{MaxWounds: max(u.Meta.Stats.Wounds, 1)}
	if len(u.Models) > 0 {
		template = u.Models[0]
	}
	models := append([]game.Model(nil), u.Models...)
	for i := len(models); i < n; i++ {
		m := template
		m.ID = u.ID + "-" + strconv.Itoa(i+1)
		models = append(models, m)
	}
	return models
}

// deriveAttacker copies an attacker and appends the anti-keyword rule text of
// the active rules to every weapon.
func deriveAttacker(u *game.Unit, anti []string) *game.Unit {
	a := u.Copy()
	if len(anti) == 0 {
		return a
	}
	extra := strings.Join(anti, ", ")
	for i, w := range a.Meta.Weapons {
		if w.SpecialRules == "" {
			a.Meta.Weapons[i].SpecialRules = extra
		} else {
			a.Meta.Weapons[i].SpecialRules = w.SpecialRules + ", " + extra
		}
	}
	return a
}
