package game

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrUnknownUnitType is returned when a unit is requested for a type the
// catalog does not define. It is a data error and is never recovered from.
var ErrUnknownUnitType = errors.New("unknown unit type")

// UnitType is the static template units are instantiated from.
type UnitType struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	HP          int      `yaml:"hp"`
	Attack      int      `yaml:"attack"`
	Defense     int      `yaml:"defense"`
	Cost        int      `yaml:"cost"`
	Counters    []string `yaml:"counters"`
	CounteredBy []string `yaml:"countered_by"`
}

// Unit is one combat entity owned by an army.
type Unit struct {
	Type        string
	Name        string
	HP          int
	MaxHP       int
	Attack      int
	Defense     int
	counters    []string
	counteredBy []string
}

// Counters reports whether u gets the counter bonus against unitType.
func (u *Unit) Counters(unitType string) bool {
	return slices.Contains(u.counters, unitType)
}

// CounteredBy reports whether unitType counters u.
func (u *Unit) CounteredBy(unitType string) bool {
	return slices.Contains(u.counteredBy, unitType)
}

// Alive is true while the unit has hit points left.
func (u *Unit) Alive() bool { return u.HP > 0 }

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%d/%d)", u.Type, u.HP, u.MaxHP)
}

// UnitCatalog indexes unit templates by type id.
type UnitCatalog struct {
	types map[string]*UnitType
	order []string
}

type unitFile struct {
	Units []*UnitType `yaml:"units"`
}

// LoadUnitCatalog decodes unit templates from YAML.
func LoadUnitCatalog(r io.Reader) (*UnitCatalog, error) {
	var f unitFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode unit catalog: %w", err)
	}
	uc := &UnitCatalog{types: make(map[string]*UnitType, len(f.Units))}
	for _, ut := range f.Units {
		if ut.ID == "" {
			return nil, fmt.Errorf("unit %q: missing id", ut.Name)
		}
		if ut.HP <= 0 {
			return nil, fmt.Errorf("unit %q: hp must be positive", ut.ID)
		}
		if _, dup := uc.types[ut.ID]; dup {
			return nil, fmt.Errorf("unit %q: duplicate id", ut.ID)
		}
		uc.types[ut.ID] = ut
		uc.order = append(uc.order, ut.ID)
	}
	return uc, nil
}

// LoadUnitCatalogFile reads unit templates from disk.
func LoadUnitCatalogFile(path string) (*UnitCatalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadUnitCatalog(fh)
}

// DefaultUnitCatalog returns the built-in unit templates.
func DefaultUnitCatalog() (*UnitCatalog, error) {
	fh, err := dataFS.Open("data/units.yaml")
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadUnitCatalog(fh)
}

// Type returns the template for id.
func (uc *UnitCatalog) Type(id string) (*UnitType, bool) {
	ut, ok := uc.types[id]
	return ut, ok
}

// IDs returns all unit type ids in catalog order.
func (uc *UnitCatalog) IDs() []string {
	out := make([]string, len(uc.order))
	copy(out, uc.order)
	return out
}

// New instantiates one unit of the given type at full health.
func (uc *UnitCatalog) New(id string) (*Unit, error) {
	ut, ok := uc.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnitType, id)
	}
	return &Unit{
		Type:        ut.ID,
		Name:        ut.Name,
		HP:          ut.HP,
		MaxHP:       ut.HP,
		Attack:      ut.Attack,
		Defense:     ut.Defense,
		counters:    slices.Clone(ut.Counters),
		counteredBy: slices.Clone(ut.CounteredBy),
	}, nil
}

// Roster is a compact army composition: unit type -> count, in order.
type Roster []RosterEntry

// RosterEntry is one line of a Roster.
type RosterEntry struct {
	Type  string `yaml:"type" json:"type"`
	Count int    `yaml:"count" json:"count"`
}

// Build instantiates every unit of the roster in order.
func (uc *UnitCatalog) Build(r Roster) ([]*Unit, error) {
	var units []*Unit
	for _, e := range r {
		for i := 0; i < e.Count; i++ {
			u, err := uc.New(e.Type)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		}
	}
	return units, nil
}
