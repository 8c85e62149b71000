package features

import "sort"

// OthersState is both the catch-all form option and the abbreviation the
// model was trained with for states outside its training set.
const (
	OthersState        = "Others"
	OthersAbbreviation = "others"
)

// StateInfo is what the transform needs to know about a state.
type StateInfo struct {
	Name         string
	Abbreviation string
	Population   int64
}

// StateDirectory resolves a state name to its model abbreviation and a
// representative city population.
type StateDirectory interface {
	Resolve(name string) StateInfo
	Names() []string
}

// modelStates are the states the classifier saw during training, with the
// population of their largest city.
var modelStates = map[string]StateInfo{
	"South Carolina": {Abbreviation: "SC", Population: 150227},
	"New York":       {Abbreviation: "NY", Population: 8336817},
	"Florida":        {Abbreviation: "FL", Population: 949611},
	"Michigan":       {Abbreviation: "MI", Population: 639111},
	"California":     {Abbreviation: "CA", Population: 3898747},
	"Pennsylvania":   {Abbreviation: "PA", Population: 1603797},
	"Texas":          {Abbreviation: "TX", Population: 2304580},
	"Kentucky":       {Abbreviation: "KY", Population: 633045},
	"Wyoming":        {Abbreviation: "WY", Population: 65132},
	"Alabama":        {Abbreviation: "AL", Population: 215006},
	"Louisiana":      {Abbreviation: "LA", Population: 383997},
	"Georgia":        {Abbreviation: "GA", Population: 498715},
	"Colorado":       {Abbreviation: "CO", Population: 715522},
	"Ohio":           {Abbreviation: "OH", Population: 905748},
	"Wisconsin":      {Abbreviation: "WI", Population: 577222},
	"Arkansas":       {Abbreviation: "AR", Population: 202591},
	"New Jersey":     {Abbreviation: "NJ", Population: 311549},
	"Iowa":           {Abbreviation: "IA", Population: 214133},
	"Maryland":       {Abbreviation: "MD", Population: 585708},
	"Mississippi":    {Abbreviation: "MS", Population: 153701},
	"Kansas":         {Abbreviation: "KS", Population: 397532},
	"Illinois":       {Abbreviation: "IL", Population: 2746388},
	"Missouri":       {Abbreviation: "MO", Population: 508090},
	"Maine":          {Abbreviation: "ME", Population: 68408},
	"Tennessee":      {Abbreviation: "TN", Population: 689447},
	"Minnesota":      {Abbreviation: "MN", Population: 429954},
	"Oklahoma":       {Abbreviation: "OK", Population: 681054},
	"Washington":     {Abbreviation: "WA", Population: 737015},
	"West Virginia":  {Abbreviation: "WV", Population: 48864},
	"New Mexico":     {Abbreviation: "NM", Population: 564559},
	"Nebraska":       {Abbreviation: "NE", Population: 486051},
	"Virginia":       {Abbreviation: "VA", Population: 459470},
	"Oregon":         {Abbreviation: "OR", Population: 652503},
	"Indiana":        {Abbreviation: "IN", Population: 887642},
	"North Carolina": {Abbreviation: "NC", Population: 874579},
	"North Dakota":   {Abbreviation: "ND", Population: 125990},
}

// otherStatePopulations covers the remaining states. They all map to the
// "others" abbreviation but still get a population.
var otherStatePopulations = map[string]int64{
	"Alaska":               291247,
	"Arizona":              1608139,
	"Connecticut":          148654,
	"Delaware":             70898,
	"District of Columbia": 689545,
	"Hawaii":               350964,
	"Idaho":                235684,
	"Massachusetts":        675647,
	"Montana":              117116,
	"Nevada":               641903,
	"New Hampshire":        115644,
	"Rhode Island":         190934,
	"South Dakota":         192517,
	"Utah":                 199723,
	"Vermont":              44743,
}

// StateTable is an in-memory StateDirectory.
type StateTable struct {
	primary   map[string]StateInfo
	secondary map[string]int64
}

// NewStateTable builds a directory from a primary (in-model) table and a
// secondary population table. Either may be nil.
func NewStateTable(primary map[string]StateInfo, secondary map[string]int64) *StateTable {
	t := &StateTable{
		primary:   make(map[string]StateInfo, len(primary)),
		secondary: make(map[string]int64, len(secondary)),
	}
	for name, info := range primary {
		info.Name = name
		t.primary[name] = info
	}
	for name, pop := range secondary {
		t.secondary[name] = pop
	}
	return t
}

// DefaultStates returns the built-in state tables.
func DefaultStates() *StateTable {
	return NewStateTable(modelStates, otherStatePopulations)
}

// Resolve never fails: unknown names map to "others" with the secondary
// population, or 0 when the name is in neither table.
func (t *StateTable) Resolve(name string) StateInfo {
	name = normalizeLabel(name)
	if info, ok := t.primary[name]; ok {
		return info
	}
	return StateInfo{
		Name:         name,
		Abbreviation: OthersAbbreviation,
		Population:   t.secondary[name],
	}
}

// Names lists the selectable states: the model states alphabetically, then
// the others, then the catch-all.
func (t *StateTable) Names() []string {
	primary := make([]string, 0, len(t.primary))
	for name := range t.primary {
		primary = append(primary, name)
	}
	sort.Strings(primary)

	secondary := make([]string, 0, len(t.secondary))
	for name := range t.secondary {
		if _, dup := t.primary[name]; dup {
			continue
		}
		secondary = append(secondary, name)
	}
	sort.Strings(secondary)

	names := append(primary, secondary...)
	return append(names, OthersState)
}

// Primary returns a copy of the in-model table.
func (t *StateTable) Primary() map[string]StateInfo {
	out := make(map[string]StateInfo, len(t.primary))
	for k, v := range t.primary {
		out[k] = v
	}
	return out
}

// Secondary returns a copy of the fallback population table.
func (t *StateTable) Secondary() map[string]int64 {
	out := make(map[string]int64, len(t.secondary))
	for k, v := range t.secondary {
		out[k] = v
	}
	return out
}
