package extract

import (
	"strings"

	"golang.org/x/text/cases"
)

// Vocabulary is the ordered, append-only set of canonical attribute names
// seen so far in a run. Names are compared exactly. It is not safe for
// concurrent writers.
type Vocabulary struct {
	names []string
	index map[string]struct{}
	folds map[string]string
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		index: make(map[string]struct{}),
		folds: make(map[string]string),
	}
}

// Seed adds names in order, skipping blanks and exact duplicates.
func (v *Vocabulary) Seed(names ...string) {
	for _, n := range names {
		v.add(n)
	}
}

// Observe adds every attribute name of result not yet present, in mention
// order. A nil result is ignored.
func (v *Vocabulary) Observe(result *ReviewResult) {
	if result == nil {
		return
	}
	for _, m := range result.Attributes {
		v.add(m.Attribute)
	}
}

// Current returns a copy of the vocabulary in insertion order.
func (v *Vocabulary) Current() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of names.
func (v *Vocabulary) Len() int { return len(v.names) }

// Contains reports whether name is present exactly.
func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.index[name]
	return ok
}

// NearDuplicate returns the existing entry that name collides with after
// case folding and whitespace collapsing, when name itself is not present.
func (v *Vocabulary) NearDuplicate(name string) (string, bool) {
	if v.Contains(name) {
		return "", false
	}
	existing, ok := v.folds[foldKey(name)]
	return existing, ok
}

func (v *Vocabulary) add(name string) {
	if name == "" {
		return
	}
	if v.index == nil {
		v.index = make(map[string]struct{})
		v.folds = make(map[string]string)
	}
	if _, ok := v.index[name]; ok {
		return
	}
	v.index[name] = struct{}{}
	v.names = append(v.names, name)
	if k := foldKey(name); k != "" {
		if _, ok := v.folds[k]; !ok {
			v.folds[k] = name
		}
	}
}

// foldKey is the comparison form used for near-duplicate detection.
func foldKey(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
