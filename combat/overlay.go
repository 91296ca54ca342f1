package combat

import "combatsim/game"

type modelKey struct {
	unit  string
	model int
}

type modelState struct {
	wounds int
	alive  bool
}

// overlay records the damage of the action being resolved on top of a board
// without writing to it.
type overlay struct {
	board   *game.Board
	changed map[modelKey]modelState
}

func newOverlay(board *game.Board) *overlay {
	return &overlay{board: board, changed: map[modelKey]modelState{}}
}

func (o *overlay) model(unit string, idx int) (modelState, bool) {
	if s, ok := o.changed[modelKey{unit, idx}]; ok {
		return s, true
	}
	wounds, alive, ok := o.board.Model(unit, idx)
	return modelState{wounds: wounds, alive: alive}, ok
}

func (o *overlay) set(unit string, idx int, s modelState) {
	o.changed[modelKey{unit, idx}] = s
}

func (o *overlay) aliveModels(unit string) int {
	n := 0
	for i := 0; i < o.board.ModelCount(unit); i++ {
		if s, _ := o.model(unit, i); s.alive {
			n++
		}
	}
	return n
}

// allocate picks the model that takes the next wound: a wounded model if
// there is one, else the first alive model. It returns -1 when none is alive.
func (o *overlay) allocate(unit *game.Unit) int {
	first := -1
	for i := range unit.Models {
		s, ok := o.model(unit.ID, i)
		if !ok || !s.alive {
			continue
		}
		if s.wounds < unit.Models[i].MaxWounds {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}
