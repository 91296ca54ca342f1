package game

import "fmt"

type DiffKind int

const (
	SetCurrentWounds DiffKind = iota
	SetAliveFlag
)

func (k DiffKind) String() string {
	switch k {
	case SetCurrentWounds:
		return "current_wounds"
	case SetAliveFlag:
		return "alive"
	default:
		return "unknown"
	}
}

// Diff is a single proposed scalar mutation of a model. The resolver only
// emits diffs; callers decide when to apply them.
type Diff struct {
	Kind   DiffKind `json:"kind"`
	UnitID string   `json:"unit_id"`
	Model  int      `json:"model"`
	Wounds int      `json:"wounds,omitempty"`
	Alive  bool     `json:"alive,omitempty"`
}

func SetWounds(unitID string, model, wounds int) Diff {
	return Diff{Kind: SetCurrentWounds, UnitID: unitID, Model: model, Wounds: wounds}
}

func SetAlive(unitID string, model int, alive bool) Diff {
	return Diff{Kind: SetAliveFlag, UnitID: unitID, Model: model, Alive: alive}
}

// Path identifies the mutated field, e.g. units.squad.models.2.current_wounds.
func (d Diff) Path() string {
	return fmt.Sprintf("units.%s.models.%d.%s", d.UnitID, d.Model, d.Kind)
}

func (d Diff) String() string {
	switch d.Kind {
	case SetCurrentWounds:
		return fmt.Sprintf("%s=%d", d.Path(), d.Wounds)
	default:
		return fmt.Sprintf("%s=%t", d.Path(), d.Alive)
	}
}
