package game

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Catalog is an in-memory Lookup over loaded unit data.
type Catalog struct {
	units map[string]*Unit
	order []string
}

func NewCatalog(units ...*Unit) (*Catalog, error) {
	c := &Catalog{units: make(map[string]*Unit, len(units))}
	for _, u := range units {
		if _, ok := c.units[u.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUnit, u.ID)
		}
		c.units[u.ID] = u
		c.order = append(c.order, u.ID)
	}
	return c, nil
}

// Unit returns a deep copy so callers can never mutate catalog data.
func (c *Catalog) Unit(id string) (*Unit, bool) {
	u, ok := c.units[id]
	if !ok {
		return nil, false
	}
	return u.Copy(), true
}

func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Board returns a board holding every catalog unit.
func (c *Catalog) Board() *Board {
	b := NewBoard()
	for _, id := range c.order {
		b.Put(c.units[id].Copy())
	}
	return b
}

// UnitDoc is the file representation of a unit. Models may be listed
// explicitly or generated from ModelCount.
type UnitDoc struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	Owner      string     `yaml:"owner,omitempty" json:"owner,omitempty"`
	ModelCount int        `yaml:"model_count,omitempty" json:"model_count,omitempty"`
	Models     []ModelDoc `yaml:"models,omitempty" json:"models,omitempty"`
	Meta       Meta       `yaml:"meta" json:"meta"`
}

type ModelDoc struct {
	ID            string `yaml:"id" json:"id"`
	Wounds        int    `yaml:"wounds,omitempty" json:"wounds,omitempty"`
	CurrentWounds *int   `yaml:"current_wounds,omitempty" json:"current_wounds,omitempty"`
	Alive         *bool  `yaml:"alive,omitempty" json:"alive,omitempty"`
	BaseSize      int    `yaml:"base_size,omitempty" json:"base_size,omitempty"`
	Position      Point  `yaml:"position,omitempty" json:"position,omitempty"`
	Invulnerable  int    `yaml:"invulnerable,omitempty" json:"invulnerable,omitempty"`
}

// Build converts the document into a Unit, filling defaults: models start
// alive at full wounds and take their maximum wounds from the unit stats.
func (d UnitDoc) Build() (*Unit, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("unit %q: missing id", d.Name)
	}
	docs := d.Models
	if len(docs) == 0 {
		for i := 0; i < d.ModelCount; i++ {
			docs = append(docs, ModelDoc{ID: d.ID + "-" + strconv.Itoa(i+1)})
		}
	}
	u := &Unit{
		ID:     d.ID,
		Name:   d.Name,
		Owner:  d.Owner,
		Meta:   d.Meta,
		Models: make([]Model, 0, len(docs)),
	}
	u.Meta.Weapons = append([]WeaponProfile(nil), d.Meta.Weapons...)
	if u.Name == "" {
		u.Name = d.ID
	}
	for i, md := range docs {
		m := Model{
			ID:           md.ID,
			MaxWounds:    md.Wounds,
			BaseSize:     md.BaseSize,
			Position:     md.Position,
			Invulnerable: md.Invulnerable,
		}
		if m.ID == "" {
			m.ID = d.ID + "-" + strconv.Itoa(i+1)
		}
		if m.MaxWounds <= 0 {
			m.MaxWounds = max(d.Meta.Stats.Wounds, 1)
		}
		m.CurrentWounds = m.MaxWounds
		if md.CurrentWounds != nil {
			m.CurrentWounds = min(max(*md.CurrentWounds, 0), m.MaxWounds)
		}
		m.Alive = m.CurrentWounds > 0
		if md.Alive != nil {
			m.Alive = *md.Alive && m.CurrentWounds > 0
		}
		u.Models = append(u.Models, m)
	}
	for i, w := range u.Meta.Weapons {
		if w.ID == "" {
			u.Meta.Weapons[i].ID = w.Name
		}
		if w.Type == "" {
			u.Meta.Weapons[i].Type = Ranged
		}
	}
	return u, nil
}

type catalogDoc struct {
	Units []UnitDoc `yaml:"units"`
}

// LoadCatalog reads a YAML document with a top-level units list.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return BuildCatalog(doc.Units)
}

func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

func BuildCatalog(docs []UnitDoc) (*Catalog, error) {
	units := make([]*Unit, 0, len(docs))
	for _, d := range docs {
		u, err := d.Build()
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return NewCatalog(units...)
}
