package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"combatsim/utils"
)

// RuleDefinition is one entry of the rule catalog. Apply only adds to or
// merges into the set it is given. Anti-keyword rules have no Apply; their
// Text is injected onto weapons instead.
type RuleDefinition struct {
	ID            RuleID            `json:"id"`
	Name          string            `json:"name"`
	Category      Category          `json:"category"`
	ConflictsWith []RuleID          `json:"conflicts_with,omitempty"`
	Text          string            `json:"text,omitempty"`
	Apply         func(*ModifierSet) `json:"-"`
}

func (d RuleDefinition) Conflicts(other RuleID) bool {
	return utils.FindIndex(d.ConflictsWith, other) >= 0
}

// TextSource exposes the free text rules are detected in.
type TextSource interface {
	RuleTexts() []string
}

// Validation is the structured outcome of a pre-flight check.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (v *Validation) Add(format string, args ...any) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Registry is the read-only rule catalog. The parse cache is the only state
// written after construction and is safe for concurrent use.
type Registry struct {
	defs      []RuleDefinition
	index     map[RuleID]int
	patterns  []Pattern
	universal []RuleID
	parsed    sync.Map // string -> ModifierSet
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, built on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(definitions(), patterns(), universal)
		if err != nil {
			panic(fmt.Sprintf("rules: invalid built-in catalog: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

func NewRegistry(defs []RuleDefinition, pats []Pattern, always []RuleID) (*Registry, error) {
	r := &Registry{
		defs:      append([]RuleDefinition(nil), defs...),
		index:     make(map[RuleID]int, len(defs)),
		patterns:  append([]Pattern(nil), pats...),
		universal: append([]RuleID(nil), always...),
	}
	for i, d := range r.defs {
		if _, ok := r.index[d.ID]; ok {
			return nil, fmt.Errorf("duplicate rule %q", d.ID)
		}
		r.index[d.ID] = i
	}
	for _, d := range r.defs {
		for _, c := range d.ConflictsWith {
			if _, ok := r.index[c]; !ok {
				return nil, fmt.Errorf("rule %q conflicts with unknown rule %q", d.ID, c)
			}
		}
	}
	for _, p := range r.patterns {
		if _, ok := r.index[p.Rule]; !ok {
			return nil, fmt.Errorf("pattern %q names unknown rule %q", p.Contains, p.Rule)
		}
	}
	for _, id := range r.universal {
		if _, ok := r.index[id]; !ok {
			return nil, fmt.Errorf("universal rule %q is not defined", id)
		}
	}
	return r, nil
}

func (r *Registry) Get(id RuleID) (RuleDefinition, bool) {
	i, ok := r.index[id]
	if !ok {
		return RuleDefinition{}, false
	}
	return r.defs[i], true
}

// All returns every definition in registration order.
func (r *Registry) All() []RuleDefinition {
	return append([]RuleDefinition(nil), r.defs...)
}

func (r *Registry) ByCategory(c Category) []RuleDefinition {
	var out []RuleDefinition
	for _, d := range r.defs {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// Validate rejects unknown ids and every active pair where either rule lists
// the other as a conflict.
func (r *Registry) Validate(ids []RuleID) Validation {
	v := Validation{Valid: true}
	active := dedupe(ids)
	for _, id := range active {
		if _, ok := r.index[id]; !ok {
			v.Add("unknown rule %q", id)
		}
	}
	for i := 0; i < len(active); i++ {
		a, ok := r.Get(active[i])
		if !ok {
			continue
		}
		for j := i + 1; j < len(active); j++ {
			b, ok := r.Get(active[j])
			if !ok {
				continue
			}
			if a.Conflicts(b.ID) || b.Conflicts(a.ID) {
				v.Add("rule %q conflicts with %q", a.ID, b.ID)
			}
		}
	}
	return v
}

// Apply runs every active rule's closure, in registration order, against a
// copy of base. Unknown ids and anti-keyword rules are ignored here.
func (r *Registry) Apply(base ModifierSet, ids []RuleID) ModifierSet {
	out := base
	out.Anti = append([]AntiKeyword(nil), base.Anti...)
	active := toSet(ids)
	for _, d := range r.defs {
		if _, ok := active[d.ID]; ok && d.Apply != nil {
			d.Apply(&out)
		}
	}
	return out
}

// AntiKeywordText returns the special-rule text for every active anti-keyword
// rule, to be appended to attacking weapons.
func (r *Registry) AntiKeywordText(ids []RuleID) []string {
	var out []string
	active := toSet(ids)
	for _, d := range r.defs {
		if _, ok := active[d.ID]; ok && d.Text != "" {
			out = append(out, d.Text)
		}
	}
	return out
}

// Detect returns the rule ids whose patterns match text.
func (r *Registry) Detect(text string) []RuleID {
	lower := strings.ToLower(text)
	found := map[RuleID]struct{}{}
	for _, p := range r.patterns {
		if !strings.Contains(lower, p.Contains) {
			continue
		}
		if p.Excludes != "" && strings.Contains(lower, p.Excludes) {
			continue
		}
		found[p.Rule] = struct{}{}
	}
	return r.ordered(found)
}

// ExtractUnitRules detects rules in the weapons and abilities of the given
// units and adds the universal set, in registration order.
func (r *Registry) ExtractUnitRules(sources ...TextSource) []RuleID {
	found := toSet(r.universal)
	for _, s := range sources {
		for _, text := range s.RuleTexts() {
			for _, id := range r.Detect(text) {
				found[id] = struct{}{}
			}
		}
	}
	return r.ordered(found)
}

func (r *Registry) ordered(set map[RuleID]struct{}) []RuleID {
	out := make([]RuleID, 0, len(set))
	for _, d := range r.defs {
		if _, ok := set[d.ID]; ok {
			out = append(out, d.ID)
		}
	}
	return out
}

// Active returns the ids switched on in a toggle map, sorted.
func Active(toggles map[string]bool) []RuleID {
	var out []RuleID
	for _, k := range slices.Sorted(maps.Keys(toggles)) {
		if toggles[k] {
			out = append(out, RuleID(k))
		}
	}
	return out
}

func toSet(ids []RuleID) map[RuleID]struct{} {
	set := make(map[RuleID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func dedupe(ids []RuleID) []RuleID {
	seen := map[RuleID]struct{}{}
	var out []RuleID
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
