// Package registry keeps the languages and rulesets a checker can be built
// from, each under a name and a semantic version.
//
// References are written name or name@constraint, for example "lm.nd",
// "lm.nd@1.0.0" or "lm.nd@^2". A bare name picks the highest version.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	semver "github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/rules"
)

var (
	// ErrNotFound is returned when no entry satisfies a reference
	ErrNotFound = errors.New("not found")
	// ErrIncompatible is returned when a ruleset cannot check a language
	ErrIncompatible = errors.New("incompatible language")
)

// Ref is a parsed name@constraint reference
type Ref struct {
	Name       string
	Constraint *semver.Constraints
}

func (r Ref) String() string {
	if r.Constraint == nil {
		return r.Name
	}
	return r.Name + "@" + r.Constraint.String()
}

// ParseRef splits ref into a name and an optional version constraint
func ParseRef(ref string) (Ref, error) {
	name, constraint, found := strings.Cut(strings.TrimSpace(ref), "@")
	if name == "" {
		return Ref{}, fmt.Errorf("empty name in reference %q", ref)
	}
	if !found {
		return Ref{Name: name}, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return Ref{}, fmt.Errorf("bad version constraint in %q: %w", ref, err)
	}
	return Ref{Name: name, Constraint: c}, nil
}

type entry[T any] struct {
	version *semver.Version
	value   T
}

// index holds the versions of each name, sorted ascending
type index[T any] map[string][]entry[T]

func (ix index[T]) add(name, version string, value T) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%s: bad version %q: %w", name, version, err)
	}
	for _, e := range ix[name] {
		if e.version.Equal(v) {
			return fmt.Errorf("%s@%s is already registered", name, version)
		}
	}
	list := append(ix[name], entry[T]{version: v, value: value})
	sort.Slice(list, func(i, j int) bool { return list[i].version.LessThan(list[j].version) })
	ix[name] = list
	return nil
}

// find returns the highest version satisfying ref
func (ix index[T]) find(ref Ref) (T, bool) {
	list := ix[ref.Name]
	for i := len(list) - 1; i >= 0; i-- {
		if ref.Constraint == nil || ref.Constraint.Check(list[i].version) {
			return list[i].value, true
		}
	}
	var zero T
	return zero, false
}

func (ix index[T]) all() []T {
	names := make([]string, 0, len(ix))
	for name := range ix {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []T
	for _, name := range names {
		for _, e := range ix[name] {
			out = append(out, e.value)
		}
	}
	return out
}

// Registry is a thread-safe catalog of languages and rulesets
type Registry struct {
	mu        sync.RWMutex
	languages index[*language.Language]
	rulesets  index[*rules.Ruleset]
}

// New returns an empty registry
func New() *Registry {
	return &Registry{
		languages: make(index[*language.Language]),
		rulesets:  make(index[*rules.Ruleset]),
	}
}

// Default returns a registry holding the built-in languages and rulesets
func Default() *Registry {
	r := New()
	for _, l := range language.Builtins() {
		if err := r.AddLanguage(l); err != nil {
			panic(err)
		}
	}
	for _, rs := range rules.Builtins() {
		if err := r.AddRuleset(rs); err != nil {
			panic(err)
		}
	}
	return r
}

// AddLanguage registers l under its name and version
func (r *Registry) AddLanguage(l *language.Language) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.languages.add(l.Name, l.Version, l)
}

// AddRuleset registers rs under its name and version
func (r *Registry) AddRuleset(rs *rules.Ruleset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rulesets.add(rs.Name, rs.Version, rs)
}

// Language resolves a language reference
func (r *Registry) Language(ref string) (*language.Language, error) {
	parsed, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.languages.find(parsed); ok {
		return l, nil
	}
	return nil, fmt.Errorf("language %s: %w", parsed, ErrNotFound)
}

// Ruleset resolves a ruleset reference
func (r *Registry) Ruleset(ref string) (*rules.Ruleset, error) {
	parsed, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rs, ok := r.rulesets.find(parsed); ok {
		return rs, nil
	}
	return nil, fmt.Errorf("ruleset %s: %w", parsed, ErrNotFound)
}

// Resolve resolves both references and checks that the ruleset supports
// the language
func (r *Registry) Resolve(languageRef, rulesetRef string) (*language.Language, *rules.Ruleset, error) {
	l, err := r.Language(languageRef)
	if err != nil {
		return nil, nil, err
	}
	rs, err := r.Ruleset(rulesetRef)
	if err != nil {
		return nil, nil, err
	}
	if !rs.Supports(l.Name) {
		return nil, nil, fmt.Errorf("%s cannot check %s: %w", rs, l, ErrIncompatible)
	}
	return l, rs, nil
}

// Languages lists every registered language by name, then version
func (r *Registry) Languages() []*language.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.languages.all()
}

// Rulesets lists every registered ruleset by name, then version
func (r *Registry) Rulesets() []*rules.Ruleset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rulesets.all()
}
