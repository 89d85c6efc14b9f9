package derivation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a derivation together with the language and ruleset it is
// written for. Language and Ruleset are registry references such as
// "lm.arithmetic" or "lm.nd@^2"; empty means the caller's default.
type Document struct {
	Language string `yaml:"language,omitempty" json:"language,omitempty"`
	Ruleset  string `yaml:"ruleset,omitempty" json:"ruleset,omitempty"`
	Lines    []Line `yaml:"lines" json:"lines"`
}

// Formulas written in the text format for the two marker kinds
const (
	shelfText = "---"
	gapText   = "..."
)

var rowLabel = regexp.MustCompile(`^([\p{L}\p{N}_']+)\.(?:\s+|$)(.*)$`)

// ParseText reads the plain text format: one line per row,
//
//	label. [| …] formula :: justification
//
// where each leading bar adds one level of depth. Rows starting with % are
// comments, except "% language: name" and "% ruleset: name@constraint".
func ParseText(r io.Reader) (*Document, error) {
	doc := &Document{}
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "%") {
			doc.directive(strings.TrimSpace(text[1:]))
			continue
		}
		row++
		line := Line{Label: strconv.Itoa(row), Depth: 1}
		if m := rowLabel.FindStringSubmatch(text); m != nil {
			line.Label, text = m[1], m[2]
		}
		text = strings.TrimSpace(text)
		for strings.HasPrefix(text, "|") {
			line.Depth++
			text = strings.TrimSpace(text[1:])
		}
		formula, just, _ := strings.Cut(text, "::")
		line.Formula = strings.TrimSpace(formula)
		line.Justification = strings.TrimSpace(just)
		switch line.Formula {
		case shelfText:
			line.Kind, line.Formula = KindShelfMarker, ""
		case gapText:
			line.Kind, line.Formula = KindGapMarker, ""
		}
		doc.Lines = append(doc.Lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read derivation: %w", err)
	}
	return doc, nil
}

func (d *Document) directive(text string) {
	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "language":
		d.Language = strings.TrimSpace(value)
	case "ruleset":
		d.Ruleset = strings.TrimSpace(value)
	}
}

// DecodeYAML reads a YAML derivation document
func DecodeYAML(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse derivation: %w", err)
	}
	doc.fillDefaults()
	return doc, nil
}

// DecodeJSON reads a JSON derivation document
func DecodeJSON(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse derivation: %w", err)
	}
	doc.fillDefaults()
	return doc, nil
}

// fillDefaults gives unlabeled lines their position and missing depths 1
func (d *Document) fillDefaults() {
	for i := range d.Lines {
		if d.Lines[i].Label == "" {
			d.Lines[i].Label = strconv.Itoa(i + 1)
		}
		if d.Lines[i].Depth == 0 {
			d.Lines[i].Depth = 1
		}
	}
}

// LoadFile reads a derivation, choosing the format by extension:
// .yaml and .yml are YAML, .json is JSON, anything else is text
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read derivation file: %w", err)
	}
	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = DecodeYAML(data)
	case ".json":
		doc, err = DecodeJSON(data)
	default:
		doc, err = ParseText(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Text renders the document in the text format ParseText reads
func (d *Document) Text() string {
	var b strings.Builder
	if d.Language != "" {
		fmt.Fprintf(&b, "%% language: %s\n", d.Language)
	}
	if d.Ruleset != "" {
		fmt.Fprintf(&b, "%% ruleset: %s\n", d.Ruleset)
	}
	for _, l := range d.Lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}
