package region

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// Division is one of the nine U.S. census divisions and its member states.
type Division struct {
	Name   string   `json:"name"`
	States []string `json:"states"`
}

var divisions = []Division{
	{Name: "pacific", States: []string{"AK", "WA", "OR", "CA", "HI"}},
	{Name: "mountain", States: []string{"MT", "ID", "WY", "NV", "UT", "CO", "AZ", "NM"}},
	{Name: "westnorthcentral", States: []string{"IA", "KS", "MN", "MO", "NE", "ND", "SD"}},
	{Name: "westsouthcentral", States: []string{"OK", "TX", "AR", "LA"}},
	{Name: "eastnorthcentral", States: []string{"WI", "MI", "IL", "IN", "OH"}},
	{Name: "eastsouthcentral", States: []string{"KY", "TN", "AL", "MS"}},
	{Name: "southatlantic", States: []string{"WV", "MD", "DE", "VA", "NC", "SC", "GA", "FL"}},
	{Name: "middleatlantic", States: []string{"PA", "NJ", "NY"}},
	{Name: "newengland", States: []string{"ME", "VT", "NH", "MA", "RI", "CT"}},
}

// Divisions returns a copy of the static division list.
func Divisions() []Division {
	out := make([]Division, len(divisions))
	for i, d := range divisions {
		out[i] = Division{Name: d.Name, States: append([]string(nil), d.States...)}
	}
	return out
}

// LookupDivision finds a division by name, ignoring case.
func LookupDivision(name string) (Division, bool) {
	for _, d := range Divisions() {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return Division{}, false
}

// BuildDivisions returns one Region per division, each defined by its member
// states in stateColumn, together with the static reference list. The list
// covers all 50 states: pacific includes HI and westsouthcentral holds AR,
// where older copies of the table listed AK twice and omitted HI.
func BuildDivisions(tbl *table.Table, stateColumn string) ([]*Region, []Division, error) {
	ref := Divisions()
	out := make([]*Region, 0, len(ref))
	for _, d := range ref {
		r := New(d.Name, tbl)
		if err := r.AddCategory(stateColumn, d.States...); err != nil {
			return nil, nil, fmt.Errorf("build divisions: %w", err)
		}
		out = append(out, r)
	}
	return out, ref, nil
}

// DivisionsTable renders the reference list as a Table with columns
// "division" and "states" (comma-joined).
func DivisionsTable() (*table.Table, error) {
	records := [][]string{{"division", "states"}}
	for _, d := range divisions {
		records = append(records, []string{d.Name, strings.Join(d.States, ",")})
	}
	return table.FromRecords(records)
}
