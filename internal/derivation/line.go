// Package derivation checks a derivation line by line.
//
// A derivation is a slice of Line records. The checker never mutates the
// slice; it builds a private snapshot with parsed formulas and normalised
// justifications, resolves citations against it and hands each content
// line to the rule its justification selects.
package derivation

import (
	"fmt"
	"strings"
)

// LineKind classifies a line record
type LineKind int

const (
	// KindUnset asks the checker to infer the kind from the justification
	KindUnset LineKind = iota
	KindPremise
	KindAssumption
	KindPlain
	KindConclusion
	KindShelfMarker
	KindGapMarker
)

var kindNames = map[LineKind]string{
	KindUnset:       "",
	KindPremise:     "premise",
	KindAssumption:  "assumption",
	KindPlain:       "plain",
	KindConclusion:  "conclusion",
	KindShelfMarker: "shelf",
	KindGapMarker:   "gap",
}

func (k LineKind) String() string {
	if name, ok := kindNames[k]; ok && name != "" {
		return name
	}
	return "unset"
}

// IsMarker reports whether lines of this kind carry no content
func (k LineKind) IsMarker() bool {
	return k == KindShelfMarker || k == KindGapMarker
}

// MarshalText renders the kind by name in YAML and JSON documents
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(kindNames[k]), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (k *LineKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, n := range kindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown line kind %q", text)
}

// Line is one row of a derivation as an editor would hand it over
type Line struct {
	Label         string   `yaml:"label" json:"label"`
	Depth         int      `yaml:"depth" json:"depth"`
	Formula       string   `yaml:"formula" json:"formula"`
	Justification string   `yaml:"justification" json:"justification"`
	Kind          LineKind `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// HasContent reports whether the line holds a formula to check
func (l Line) HasContent() bool {
	return !l.Kind.IsMarker() && strings.TrimSpace(l.Formula) != ""
}

func (l Line) String() string {
	bars := ""
	if l.Depth > 1 {
		bars = strings.Repeat("| ", l.Depth-1)
	}
	switch l.Kind {
	case KindShelfMarker:
		return fmt.Sprintf("%s. %s%s", l.Label, bars, shelfText)
	case KindGapMarker:
		return fmt.Sprintf("%s. %s%s", l.Label, bars, gapText)
	}
	if l.Justification == "" {
		return fmt.Sprintf("%s. %s%s", l.Label, bars, l.Formula)
	}
	return fmt.Sprintf("%s. %s%s :: %s", l.Label, bars, l.Formula, l.Justification)
}
