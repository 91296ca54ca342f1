package combat

import (
	"combatsim/dice"
	"combatsim/game"
	"combatsim/rules"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Option func(r *Resolver)

func WithRegistry(registry *rules.Registry) Option {
	return func(r *Resolver) {
		if registry != nil {
			r.registry = registry
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver runs the hit, wound, save and damage pipeline. It holds no state
// between calls and is safe for concurrent use.
type Resolver struct {
	registry *rules.Registry
	logger   zerolog.Logger
}

func NewResolver(options ...Option) *Resolver {
	r := &Resolver{
		registry: rules.Default(),
		logger:   log.Logger,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// ResolveShoot resolves the ranged assignments of an action.
func (r *Resolver) ResolveShoot(action Action, board *game.Board, src dice.Source) Outcome {
	return r.Resolve(Shooting, action, board, src)
}

// ResolveMelee resolves the melee assignments of an action.
func (r *Resolver) ResolveMelee(action Action, board *game.Board, src dice.Source) Outcome {
	return r.Resolve(Fight, action, board, src)
}

// Resolve resolves every assignment of the action in order. Later assignments
// see the damage dealt by earlier ones. Assignments that cannot be resolved
// are skipped and reported in Outcome.Errors.
func (r *Resolver) Resolve(phase Phase, action Action, board *game.Board, src dice.Source) Outcome {
	out := Outcome{}
	attacker, ok := board.Static(action.AttackerUnitID)
	if !ok {
		out.fail("unknown attacker unit %q", action.AttackerUnitID)
		return out
	}
	view := newOverlay(board)
	resolved := 0
	for _, a := range action.Assignments {
		if r.resolveAssignment(phase, attacker, a, view, src, &out) {
			resolved++
		}
	}
	out.Success = resolved > 0 || len(action.Assignments) == 0
	return out
}

func (r *Resolver) resolveAssignment(phase Phase, attacker *game.Unit, a Assignment, view *overlay, src dice.Source, out *Outcome) bool {
	weapon, ok := attacker.Weapon(a.WeaponID)
	if !ok {
		out.fail("unit %q has no weapon %q", attacker.ID, a.WeaponID)
		return false
	}
	if weapon.Kind() != phase.WeaponType() {
		out.fail("weapon %q is %s and cannot be used in the %s phase", weapon.ID, weapon.Kind(), phase)
		return false
	}
	target, ok := view.board.Static(a.TargetUnitID)
	if !ok {
		out.fail("unknown target unit %q", a.TargetUnitID)
		return false
	}

	mods := r.registry.Parse(weapon.SpecialRules).Merge(a.Modifiers)
	p := &pipeline{
		weapon:   weapon,
		target:   target,
		mods:     mods,
		defence:  r.defence(target, mods),
		view:     view,
		src:      src,
		out:      out,
		result:   AssignmentResult{WeaponID: weapon.ID, TargetUnitID: target.ID},
		attacker: attacker,
	}
	if view.aliveModels(target.ID) == 0 {
		r.logger.Debug().Str("weapon", weapon.ID).Str("target", target.ID).Msg("Target destroyed, skipping")
		out.Assignments = append(out.Assignments, p.result)
		return true
	}
	p.run(a)
	out.Assignments = append(out.Assignments, p.result)

	r.logger.Debug().
		Str("weapon", weapon.ID).
		Str("target", target.ID).
		Int("attacks", p.result.Attacks).
		Int("hits", p.result.Hits).
		Int("wounds", p.result.Wounds).
		Int("damage", p.result.DamageInflicted).
		Int("killed", p.result.ModelsKilled).
		Msg("Resolved assignment")
	return true
}

// defence gathers the defender's own invulnerable and feel no pain values,
// from its profile and its ability text, merged with the assignment's.
func (r *Resolver) defence(target *game.Unit, mods rules.ModifierSet) rules.ModifierSet {
	var texts []string
	for _, ab := range target.Meta.Abilities {
		texts = append(texts, ab.Name, ab.Description)
	}
	own := r.registry.ParseAll(texts...)
	return rules.ModifierSet{
		Invulnerable: rules.BestThreshold(rules.BestThreshold(own.Invulnerable, target.Meta.Stats.Invulnerable), mods.Invulnerable),
		FeelNoPain:   rules.BestThreshold(rules.BestThreshold(own.FeelNoPain, target.Meta.Stats.FeelNoPain), mods.FeelNoPain),
	}
}
