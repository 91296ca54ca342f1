package game

import (
	"errors"
	"strings"

	"combatsim/dice"
	"combatsim/utils"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrUnknownModel  = errors.New("unknown model")
	ErrDuplicateUnit = errors.New("duplicate unit")
)

type WeaponType string

const (
	Ranged WeaponType = "ranged"
	Melee  WeaponType = "melee"
)

// WeaponProfile is a static weapon characteristic line. Profiles are shared
// between units and trials and must not be modified after loading.
type WeaponProfile struct {
	ID           string     `yaml:"id" json:"id"`
	Name         string     `yaml:"name" json:"name"`
	Type         WeaponType `yaml:"type" json:"type"`
	Range        int        `yaml:"range,omitempty" json:"range,omitempty"`
	Attacks      dice.Expr  `yaml:"attacks" json:"attacks"`
	Skill        int        `yaml:"skill" json:"skill"` // BS or WS, e.g. 3 means 3+
	Strength     int        `yaml:"strength" json:"strength"`
	AP           int        `yaml:"ap" json:"ap"` // signed, -1 worsens saves by one
	Damage       dice.Expr  `yaml:"damage" json:"damage"`
	SpecialRules string     `yaml:"special_rules,omitempty" json:"special_rules,omitempty"`
}

// Kind returns the weapon type, treating an unset type as ranged.
func (w *WeaponProfile) Kind() WeaponType {
	if w.Type == "" {
		return Ranged
	}
	return w.Type
}

type Stats struct {
	Toughness    int `yaml:"toughness" json:"toughness"`
	Save         int `yaml:"save" json:"save"`
	Move         int `yaml:"move,omitempty" json:"move,omitempty"`
	Leadership   int `yaml:"leadership,omitempty" json:"leadership,omitempty"`
	Wounds       int `yaml:"wounds" json:"wounds"` // per model
	Invulnerable int `yaml:"invulnerable,omitempty" json:"invulnerable,omitempty"`
	FeelNoPain   int `yaml:"feel_no_pain,omitempty" json:"feel_no_pain,omitempty"`
}

type Ability struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type Meta struct {
	Stats     Stats           `yaml:"stats" json:"stats"`
	Weapons   []WeaponProfile `yaml:"weapons" json:"weapons"`
	Abilities []Ability       `yaml:"abilities,omitempty" json:"abilities,omitempty"`
	Keywords  []string        `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

type Model struct {
	ID            string `json:"id"`
	Alive         bool   `json:"alive"`
	CurrentWounds int    `json:"current_wounds"`
	MaxWounds     int    `json:"max_wounds"`
	BaseSize      int    `json:"base_size,omitempty"`
	Position      Point  `json:"position"`
	Invulnerable  int    `json:"invulnerable,omitempty"` // 0 when the model has none
}

type Unit struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Owner  string  `json:"owner,omitempty"`
	Models []Model `json:"models"`
	Meta   Meta    `json:"meta"`
}

// Copy returns a deep copy of the unit.
func (u *Unit) Copy() *Unit {
	c := *u
	c.Models = append([]Model(nil), u.Models...)
	c.Meta.Weapons = append([]WeaponProfile(nil), u.Meta.Weapons...)
	c.Meta.Abilities = append([]Ability(nil), u.Meta.Abilities...)
	c.Meta.Keywords = append([]string(nil), u.Meta.Keywords...)
	return &c
}

// Weapon finds a weapon profile by id, falling back to a case-insensitive
// name match.
func (u *Unit) Weapon(id string) (*WeaponProfile, bool) {
	i := utils.FindIndexFunc(u.Meta.Weapons, func(w WeaponProfile) bool { return w.ID == id })
	if i < 0 {
		i = utils.FindIndexFunc(u.Meta.Weapons, func(w WeaponProfile) bool { return strings.EqualFold(w.Name, id) })
	}
	if i < 0 {
		return nil, false
	}
	return &u.Meta.Weapons[i], true
}

// ModelIndex returns the index of the model with the given id, or -1.
func (u *Unit) ModelIndex(id string) int {
	return utils.FindIndexFunc(u.Models, func(m Model) bool { return m.ID == id })
}

func (u *Unit) AliveModels() int {
	n := 0
	for _, m := range u.Models {
		if m.Alive {
			n++
		}
	}
	return n
}

// TotalWounds sums the maximum wounds of every model.
func (u *Unit) TotalWounds() int {
	total := 0
	for _, m := range u.Models {
		total += m.MaxWounds
	}
	return total
}

func (u *Unit) HasKeyword(keyword string) bool {
	for _, k := range u.Meta.Keywords {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(keyword)) {
			return true
		}
	}
	return false
}

// RuleTexts returns every free-text fragment rules can be detected in: weapon
// special rules, ability names and ability descriptions.
func (u *Unit) RuleTexts() []string {
	var texts []string
	for _, w := range u.Meta.Weapons {
		if w.SpecialRules != "" {
			texts = append(texts, w.SpecialRules)
		}
	}
	for _, a := range u.Meta.Abilities {
		texts = append(texts, a.Name)
		if a.Description != "" {
			texts = append(texts, a.Description)
		}
	}
	return texts
}

// Lookup resolves unit ids to their current data.
type Lookup interface {
	Unit(id string) (*Unit, bool)
}
