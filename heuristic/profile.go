package heuristic

import (
	"fmt"

	"github.com/carbocation/dicombids/seqinfo"
)

// Profile is one heuristic: the categories it declares and the rules that
// fill them. Rules are evaluated in order, independently of one another, so a
// series may land in several categories.
type Profile struct {
	Name        string
	Description string
	Keys        []*TemplateKey
	Rules       []Rule
}

// clone copies the key and rule tables so edits to the copy do not reach p.
// Keys themselves are immutable and are shared.
func (p Profile) clone() Profile {
	out := p
	out.Keys = append([]*TemplateKey(nil), p.Keys...)
	out.Rules = append([]Rule(nil), p.Rules...)
	return out
}

// Validate checks that the table is usable: at least one key, no duplicate
// keys or templates, and every rule pointing at a declared key with a
// predicate (and, for Append rules, a placeholder to fill).
func (p Profile) Validate() error {
	if len(p.Keys) == 0 {
		return fmt.Errorf("profile %q declares no keys", p.Name)
	}

	declared := make(map[*TemplateKey]struct{}, len(p.Keys))
	templates := make(map[string]struct{}, len(p.Keys))
	for _, k := range p.Keys {
		if k == nil {
			return fmt.Errorf("profile %q declares a nil key", p.Name)
		}
		if _, dup := templates[k.Template()]; dup {
			return fmt.Errorf("profile %q declares template %s twice", p.Name, k.Template())
		}
		declared[k] = struct{}{}
		templates[k.Template()] = struct{}{}
	}

	for i, r := range p.Rules {
		if _, ok := declared[r.Key]; !ok {
			return fmt.Errorf("profile %q rule %d (%s) targets an undeclared key", p.Name, i, r.Name)
		}
		if r.Match == nil {
			return fmt.Errorf("profile %q rule %d (%s) has no predicate", p.Name, i, r.Name)
		}
		if r.Style == Append && (r.TypeField == "" || r.Label == "") {
			return fmt.Errorf("profile %q rule %d (%s) appends without a type field and label", p.Name, i, r.Name)
		}
	}

	return nil
}

// Classify folds infos, in order, over the rule table. The result has exactly
// the profile's keys, each mapped to a non-nil (possibly empty) list. infos is
// not modified.
func (p Profile) Classify(infos []seqinfo.SeqInfo) Info {
	info := make(Info, len(p.Keys))
	for _, k := range p.Keys {
		info[k] = []Assignment{}
	}

	for i := range infos {
		s := &infos[i]

		for _, r := range p.Rules {
			if r.Disabled || !r.Match(s) {
				continue
			}

			switch r.Style {
			case Overwrite:
				info[r.Key] = []Assignment{r.assignment(s)}
			case Append:
				info[r.Key] = append(info[r.Key], r.assignment(s))
			}
		}
	}

	return info
}
