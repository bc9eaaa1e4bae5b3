package heuristic

import "encoding/json"

// Assignment is one series placed in a category. Single-instance categories
// hold bare assignments (just the series id); multi-instance categories hold
// typed ones, whose TypeField names the template placeholder (dwi_type,
// fmap_type, swi_type) that Type fills in.
type Assignment struct {
	Item      string
	TypeField string
	Type      string
}

// Bare returns an assignment carrying only a series id.
func Bare(item string) Assignment {
	return Assignment{Item: item}
}

// Typed returns an assignment that also fills the template placeholder
// typeField with label.
func Typed(item, typeField, label string) Assignment {
	return Assignment{Item: item, TypeField: typeField, Type: label}
}

func (a Assignment) IsBare() bool {
	return a.TypeField == ""
}

// MarshalJSON writes bare assignments as a string and typed ones as
// {"item": ..., "<type field>": ...}.
func (a Assignment) MarshalJSON() ([]byte, error) {
	if a.IsBare() {
		return json.Marshal(a.Item)
	}

	return json.Marshal(map[string]string{
		"item":      a.Item,
		a.TypeField: a.Type,
	})
}
