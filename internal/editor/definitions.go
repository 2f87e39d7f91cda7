package editor

import "luasense/internal/protocol"

// Location is one definition target. Resolved is false for symbols without
// a source position, such as interpreter builtins; the widget shows those
// as descriptions only, with no jump.
type Location struct {
	Name        string
	Line        int
	Column      int
	Resolved    bool
	Description string
}

// LocationsFor converts definition results into widget locations.
func LocationsFor(defs []protocol.DefinitionResult) []Location {
	if len(defs) == 0 {
		return nil
	}
	locs := make([]Location, 0, len(defs))
	for _, d := range defs {
		loc := Location{Name: d.Name, Description: d.Description}
		if d.Line != nil && d.Column != nil {
			loc.Line = *d.Line
			loc.Column = *d.Column
			loc.Resolved = true
		}
		locs = append(locs, loc)
	}
	return locs
}
