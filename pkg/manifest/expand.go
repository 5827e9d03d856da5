package manifest

import (
	"strconv"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/line"
)

// Expand resolves the named sequence depth-first into a line. Every
// occurrence becomes a fresh element; repeated labels are uniqued with an
// occurrence suffix (QF, QF.2, QF.3) kept within the label length limit.
func (m *Manifest) Expand(sequence string) (*line.Line, error) {
	entries, ok := m.sequences[sequence]
	if !ok {
		return nil, errors.New(errors.ErrCodeSequenceNotFound,
			"manifest %q has no sequence %q", m.name, sequence)
	}

	var labels []string
	var walk func(entries []string)
	walk = func(entries []string) {
		for _, entry := range entries {
			if sub, isSeq := m.sequences[entry]; isSeq {
				walk(sub)
				continue
			}
			labels = append(labels, entry)
		}
	}
	walk(entries)

	if len(labels) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest,
			"sequence %q expands to no elements", sequence)
	}

	used := make(map[string]bool, len(labels))
	counts := make(map[string]int, len(labels))
	elements := make([]element.Element, 0, len(labels))
	for _, label := range labels {
		counts[label]++
		unique := uniqueLabel(label, counts[label], used)
		used[unique] = true

		el, err := m.buildAs(label, unique)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	return line.New(sequence, elements)
}

// uniqueLabel suffixes repeated labels with their occurrence index,
// truncating the base so the result stays a valid label.
func uniqueLabel(label string, occurrence int, used map[string]bool) string {
	if occurrence == 1 && !used[label] {
		return label
	}
	for n := occurrence; ; n++ {
		suffix := "." + strconv.Itoa(n)
		base := label
		if len(base)+len(suffix) > errors.MaxLabelLength {
			base = base[:errors.MaxLabelLength-len(suffix)]
		}
		candidate := base + suffix
		if !used[candidate] {
			return candidate
		}
	}
}
