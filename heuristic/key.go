// Package heuristic assigns scanned series to BIDS output templates. A Profile
// is a table of rules; Classify folds a sequence of seqinfo records over that
// table and returns, for every template the profile declares, the series that
// belong to it.
package heuristic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
)

// ErrInvalidTemplate is returned by CreateKey for an empty template.
var ErrInvalidTemplate = errors.New("template must be a valid format string")

// DefaultOutType is used when a key is created without output types.
var DefaultOutType = []string{"nii.gz"}

// TemplateKey names one output category: a filename template with
// {subject}-style placeholders, the output file types to produce, and
// optional annotation classes. Keys are created once and compared by
// identity, so a *TemplateKey works as a map key. The fields are only
// reachable through accessors that return copies.
type TemplateKey struct {
	template          string
	outType           []string
	annotationClasses []string
}

// CreateKey builds a TemplateKey. A nil or empty outType means
// DefaultOutType. annotationClasses may be nil.
func CreateKey(template string, outType []string, annotationClasses []string) (*TemplateKey, error) {
	if template == "" {
		return nil, pfx.Err(ErrInvalidTemplate)
	}

	if len(outType) == 0 {
		outType = DefaultOutType
	}

	return &TemplateKey{
		template:          template,
		outType:           copyStrings(outType),
		annotationClasses: copyStrings(annotationClasses),
	}, nil
}

// MustCreateKey is CreateKey for package-level rule tables, where a bad
// template is a programming error.
func MustCreateKey(template string, outType []string, annotationClasses []string) *TemplateKey {
	k, err := CreateKey(template, outType, annotationClasses)
	if err != nil {
		panic(err)
	}

	return k
}

func (k *TemplateKey) Template() string { return k.template }

func (k *TemplateKey) OutType() []string { return copyStrings(k.outType) }

func (k *TemplateKey) AnnotationClasses() []string { return copyStrings(k.annotationClasses) }

func (k *TemplateKey) String() string {
	return fmt.Sprintf("%s (%s)", k.template, strings.Join(k.outType, ","))
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}

	out := make([]string, len(in))
	copy(out, in)
	return out
}
