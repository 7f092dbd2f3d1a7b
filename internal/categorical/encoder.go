// Package categorical maps ride-condition labels to the integer codes the
// estimator was trained on.
package categorical

import (
	"fmt"
	"sort"
)

// Feature names, matching the dataset column names.
const (
	FeatureCrowd          = "crowd"
	FeatureTraffic        = "traffic"
	FeatureUserExperience = "user_experience"
)

// UnknownCategoryError is returned when a label was not seen at fit time.
type UnknownCategoryError struct {
	Feature string
	Label   string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s category %q", e.Feature, e.Label)
}

// Encoder is a closed label set. Codes are the positions of the labels in
// sorted order, so refitting on the same corpus always yields the same codes.
// An Encoder is never mutated after it is built.
type Encoder struct {
	feature string
	classes []string
	codes   map[string]int
}

// Fit builds an encoder from every distinct label in labels.
func Fit(feature string, labels []string) *Encoder {
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return newEncoder(feature, classes)
}

// FromClasses rebuilds an encoder from its persisted class list. The list
// must be sorted and free of duplicates, exactly as Fit produces it.
func FromClasses(feature string, classes []string) (*Encoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder %s: no classes", feature)
	}
	for i := 1; i < len(classes); i++ {
		if classes[i-1] >= classes[i] {
			return nil, fmt.Errorf("encoder %s: classes not sorted and unique at %q", feature, classes[i])
		}
	}
	cp := make([]string, len(classes))
	copy(cp, classes)
	return newEncoder(feature, cp), nil
}

func newEncoder(feature string, classes []string) *Encoder {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &Encoder{feature: feature, classes: classes, codes: codes}
}

// Encode returns the code for label or an *UnknownCategoryError.
func (e *Encoder) Encode(label string) (int, error) {
	code, ok := e.codes[label]
	if !ok {
		return 0, &UnknownCategoryError{Feature: e.feature, Label: label}
	}
	return code, nil
}

func (e *Encoder) Feature() string { return e.feature }

func (e *Encoder) Len() int { return len(e.classes) }

// Classes returns a copy of the known labels in code order.
func (e *Encoder) Classes() []string {
	cp := make([]string, len(e.classes))
	copy(cp, e.classes)
	return cp
}
