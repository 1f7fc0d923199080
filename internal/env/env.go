// Package env reads raw settings from the process environment. A variable is
// considered empty when it is absent or its trimmed value is "", and empty
// variables always fall back to the caller supplied default.
package env

import (
	"os"
	"strings"
)

// Source returns the raw value of a variable and whether it is present.
type Source interface {
	LookupEnv(name string) (string, bool)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(name string) (string, bool)

// LookupEnv calls f(name).
func (f SourceFunc) LookupEnv(name string) (string, bool) {
	return f(name)
}

// OS is the process environment.
var OS Source = SourceFunc(os.LookupEnv)

// Map is a fixed environment, mostly useful in tests and for hosts that
// resolve several workers from prepared variable sets.
type Map map[string]string

// LookupEnv returns m[name].
func (m Map) LookupEnv(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Reader answers presence and emptiness questions over a Source.
type Reader struct {
	src Source
}

// NewReader wraps src; a nil src reads the process environment.
func NewReader(src Source) Reader {
	if src == nil {
		src = OS
	}
	return Reader{src: src}
}

// IsSet reports whether the variable is present, regardless of its content.
func (r Reader) IsSet(name string) bool {
	_, ok := r.src.LookupEnv(name)
	return ok
}

// IsEmpty reports whether the variable is absent or blank.
func (r Reader) IsEmpty(name string) bool {
	v, ok := r.src.LookupEnv(name)
	return !ok || strings.TrimSpace(v) == ""
}

// Present is the inverse of IsEmpty. Boolean style flags use it.
func (r Reader) Present(name string) bool {
	return !r.IsEmpty(name)
}

// GetOrDefault returns the trimmed value of name, or def when it is empty.
func (r Reader) GetOrDefault(name, def string) string {
	v, ok := r.Lookup(name)
	if !ok {
		return def
	}
	return v
}

// Get returns the trimmed value of name, "" when empty.
func (r Reader) Get(name string) string {
	return r.GetOrDefault(name, "")
}

// Lookup returns the trimmed value and true, or "" and false when the
// variable is empty. It satisfies envconfig.Lookuper so struct decoding sees
// blank variables as unset.
func (r Reader) Lookup(name string) (string, bool) {
	v, ok := r.src.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}
