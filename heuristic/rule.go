package heuristic

import (
	"strings"

	"github.com/carbocation/dicombids/seqinfo"
)

// Style says what a matching rule does to its category.
type Style int

const (
	// Overwrite replaces the category's list with the one matching series,
	// so the last match in input order wins.
	Overwrite Style = iota

	// Append adds a typed assignment, keeping every match in input order.
	Append
)

func (s Style) String() string {
	switch s {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	}

	return "unknown"
}

// Predicate tests one series.
type Predicate func(s *seqinfo.SeqInfo) bool

// Rule maps series that satisfy Match onto Key. For Append rules, TypeField
// and Label become the typed assignment's placeholder and value. A Disabled
// rule stays in the table but is never evaluated.
type Rule struct {
	Name      string
	Key       *TemplateKey
	Match     Predicate
	Style     Style
	TypeField string
	Label     string
	Disabled  bool
}

func (r Rule) assignment(s *seqinfo.SeqInfo) Assignment {
	if r.Style == Append {
		return Typed(s.SeriesID, r.TypeField, r.Label)
	}

	return Bare(s.SeriesID)
}

// ProtocolContains matches a case-sensitive substring of the protocol name.
func ProtocolContains(sub string) Predicate {
	return func(s *seqinfo.SeqInfo) bool { return strings.Contains(s.ProtocolName, sub) }
}

// DescriptionContains matches a case-sensitive substring of the series
// description.
func DescriptionContains(sub string) Predicate {
	return func(s *seqinfo.SeqInfo) bool { return strings.Contains(s.SeriesDescription, sub) }
}

func Dim3(n int) Predicate {
	return func(s *seqinfo.SeqInfo) bool { return s.Dim3 == n }
}

func Dim4(n int) Predicate {
	return func(s *seqinfo.SeqInfo) bool { return s.Dim4 == n }
}

// All matches when every predicate does. All() matches everything.
func All(preds ...Predicate) Predicate {
	return func(s *seqinfo.SeqInfo) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}
