package collection

import (
	"sort"
	"strings"
)

type nameSet map[string]struct{}

func parseNames(raw string) nameSet {
	set := make(nameSet)
	if raw == "" {
		return set
	}
	for _, name := range strings.Split(raw, ",") {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

func (s nameSet) sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AllowList restricts processing to the listed names. An empty list permits
// everything.
type AllowList struct {
	names nameSet
}

// NewAllowList parses a comma separated list; blank entries are skipped.
func NewAllowList(raw string) AllowList {
	return AllowList{names: parseNames(raw)}
}

// Permits reports whether name may be processed.
func (l AllowList) Permits(name string) bool {
	if len(l.names) == 0 {
		return true
	}
	_, ok := l.names[name]
	return ok
}

// Contains reports whether name is explicitly listed.
func (l AllowList) Contains(name string) bool {
	_, ok := l.names[name]
	return ok
}

// Len returns the number of listed names.
func (l AllowList) Len() int { return len(l.names) }

// Names returns the listed names sorted.
func (l AllowList) Names() []string { return l.names.sorted() }

// MarshalYAML renders the list as a sorted sequence.
func (l AllowList) MarshalYAML() (any, error) { return l.Names(), nil }

// DenyList excludes the listed names from processing.
type DenyList struct {
	names nameSet
}

// NewDenyList parses a comma separated list; blank entries are skipped.
func NewDenyList(raw string) DenyList {
	return DenyList{names: parseNames(raw)}
}

// Permits reports whether name is not excluded.
func (l DenyList) Permits(name string) bool {
	_, ok := l.names[name]
	return !ok
}

// Contains reports whether name is excluded.
func (l DenyList) Contains(name string) bool {
	_, ok := l.names[name]
	return ok
}

// Len returns the number of excluded names.
func (l DenyList) Len() int { return len(l.names) }

// Names returns the excluded names sorted.
func (l DenyList) Names() []string { return l.names.sorted() }

// MarshalYAML renders the list as a sorted sequence.
func (l DenyList) MarshalYAML() (any, error) { return l.Names(), nil }
