package heuristic

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Info maps each declared template to the series assigned to it.
type Info map[*TemplateKey][]Assignment

// Keys returns the keys sorted by template.
func (info Info) Keys() []*TemplateKey {
	keys := make([]*TemplateKey, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Template() < keys[j].Template() })

	return keys
}

// Lookup finds a category by its template string.
func (info Info) Lookup(template string) (*TemplateKey, []Assignment, bool) {
	for k, v := range info {
		if k.Template() == template {
			return k, v, true
		}
	}

	return nil, nil, false
}

type infoEntry struct {
	Template          string       `json:"template"`
	OutType           []string     `json:"outtype"`
	AnnotationClasses []string     `json:"annotation_classes"`
	Items             []Assignment `json:"items"`
}

// MarshalJSON writes an array of categories sorted by template, since pointer
// keys have no JSON form.
func (info Info) MarshalJSON() ([]byte, error) {
	entries := make([]infoEntry, 0, len(info))
	for _, k := range info.Keys() {
		items := info[k]
		if items == nil {
			items = []Assignment{}
		}

		entries = append(entries, infoEntry{
			Template:          k.Template(),
			OutType:           k.OutType(),
			AnnotationClasses: k.AnnotationClasses(),
			Items:             items,
		})
	}

	return json.Marshal(entries)
}

// WriteTSV writes one line per assignment: template, series id, type field
// and type label (the last two are empty for bare assignments). Categories
// with no assignments produce no lines.
func (info Info) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "template", "item", "type_field", "type"); err != nil {
		return err
	}

	for _, k := range info.Keys() {
		for _, a := range info[k] {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k.Template(), a.Item, a.TypeField, a.Type); err != nil {
				return err
			}
		}
	}

	return nil
}
