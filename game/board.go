package game

import "fmt"

// unitState is the mutable part of a unit, indexed by model.
type unitState struct {
	wounds []int
	alive  []bool
}

func (s *unitState) copy() *unitState {
	return &unitState{
		wounds: append([]int(nil), s.wounds...),
		alive:  append([]bool(nil), s.alive...),
	}
}

// Board is a snapshot of the units taking part in combat. Unit metadata is
// shared and read-only; only the per-model wounds and alive flags are owned
// by the board, which keeps Fork cheap enough to call once per trial.
type Board struct {
	units map[string]*Unit
	order []string
	state map[string]*unitState
}

func NewBoard(units ...*Unit) *Board {
	b := &Board{
		units: make(map[string]*Unit, len(units)),
		state: make(map[string]*unitState, len(units)),
	}
	for _, u := range units {
		b.Put(u)
	}
	return b
}

// BoardFrom builds a board from the units a lookup knows about.
func BoardFrom(lookup Lookup, ids ...string) (*Board, error) {
	b := NewBoard()
	for _, id := range ids {
		u, ok := lookup.Unit(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, id)
		}
		b.Put(u)
	}
	return b, nil
}

// Put adds or replaces a unit, taking its model state from u.Models.
func (b *Board) Put(u *Unit) {
	if _, ok := b.units[u.ID]; !ok {
		b.order = append(b.order, u.ID)
	}
	s := &unitState{
		wounds: make([]int, len(u.Models)),
		alive:  make([]bool, len(u.Models)),
	}
	for i, m := range u.Models {
		s.wounds[i] = m.CurrentWounds
		s.alive[i] = m.Alive
	}
	b.units[u.ID] = u
	b.state[u.ID] = s
}

// Fork returns an independent copy of the model state sharing unit metadata.
func (b *Board) Fork() *Board {
	f := &Board{
		units: b.units,
		order: b.order,
		state: make(map[string]*unitState, len(b.state)),
	}
	for id, s := range b.state {
		f.state[id] = s.copy()
	}
	return f
}

func (b *Board) IDs() []string {
	return append([]string(nil), b.order...)
}

// Static returns the shared unit metadata without copying. Its Models field
// reflects the state at Put time, not the live board.
func (b *Board) Static(id string) (*Unit, bool) {
	u, ok := b.units[id]
	return u, ok
}

// Unit materialises the live state of a unit as a standalone copy.
func (b *Board) Unit(id string) (*Unit, bool) {
	u, ok := b.units[id]
	if !ok {
		return nil, false
	}
	c := u.Copy()
	s := b.state[id]
	for i := range c.Models {
		c.Models[i].CurrentWounds = s.wounds[i]
		c.Models[i].Alive = s.alive[i]
	}
	return c, true
}

func (b *Board) ModelCount(id string) int {
	if s, ok := b.state[id]; ok {
		return len(s.alive)
	}
	return 0
}

// Model returns the current wounds and alive flag of a model.
func (b *Board) Model(id string, idx int) (wounds int, alive bool, ok bool) {
	s, found := b.state[id]
	if !found || idx < 0 || idx >= len(s.alive) {
		return 0, false, false
	}
	return s.wounds[idx], s.alive[idx], true
}

func (b *Board) AliveModels(id string) int {
	s, ok := b.state[id]
	if !ok {
		return 0
	}
	n := 0
	for _, a := range s.alive {
		if a {
			n++
		}
	}
	return n
}

// RemainingWounds sums current wounds over alive models.
func (b *Board) RemainingWounds(id string) int {
	s, ok := b.state[id]
	if !ok {
		return 0
	}
	total := 0
	for i, a := range s.alive {
		if a {
			total += s.wounds[i]
		}
	}
	return total
}

// Apply folds diffs into the board in order. A diff that does not resolve is
// skipped and reported; the remaining diffs are still applied.
func (b *Board) Apply(diffs ...Diff) []error {
	var errs []error
	for _, d := range diffs {
		s, ok := b.state[d.UnitID]
		if !ok {
			errs = append(errs, fmt.Errorf("apply %s: %w", d.Path(), ErrUnknownUnit))
			continue
		}
		if d.Model < 0 || d.Model >= len(s.alive) {
			errs = append(errs, fmt.Errorf("apply %s: %w", d.Path(), ErrUnknownModel))
			continue
		}
		switch d.Kind {
		case SetCurrentWounds:
			s.wounds[d.Model] = max(d.Wounds, 0)
		case SetAliveFlag:
			s.alive[d.Model] = d.Alive
		default:
			errs = append(errs, fmt.Errorf("apply %s: unknown diff kind %d", d.Path(), d.Kind))
		}
	}
	return errs
}
