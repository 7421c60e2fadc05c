package block

import "github.com/walteh/blockreplace/pkg/richtext"

// Field is a named text-bearing attribute of a unit. Fields keep their
// declaration order; scanning iterates them in that order.
type Field struct {
	Name  string
	Value richtext.Rich
}

// Unit is one node of the document's block tree. Units are owned by the
// host: this module reads and rewrites field values but never creates or
// destroys units.
type Unit struct {
	ID       string
	Type     string
	Children []*Unit
	Fields   []Field
}

// Field returns the value of the named field, if present.
func (u *Unit) Field(name string) (richtext.Rich, bool) {
	for _, f := range u.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return richtext.Rich{}, false
}

// FieldNames returns the unit's field names in declaration order.
func (u *Unit) FieldNames() []string {
	names := make([]string, 0, len(u.Fields))
	for _, f := range u.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Walk visits every unit depth-first in pre-order, children in tree order.
// This is the document order used for match numbering.
func Walk(units []*Unit, visit func(*Unit)) {
	for _, u := range units {
		visit(u)
		Walk(u.Children, visit)
	}
}
