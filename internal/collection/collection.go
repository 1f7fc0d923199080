// Package collection parses the comma separated collection grammars used by
// gha2db settings: plain lists, sign-prefixed override maps, name sets and
// keyed maps. Entries that do not have the expected shape are dropped;
// entries with a well formed shape but an unparsable typed value are errors.
package collection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/devstats/gha2db/internal/convert"
)

// ErrDuplicateDefinition matches every *DuplicateDefinitionError.
var ErrDuplicateDefinition = errors.New("duplicate definition")

// DuplicateDefinitionError reports a key defined twice within one map.
type DuplicateDefinitionError struct {
	Var      string
	Key      string
	Existing string
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("%s: key %q already defined as %s", e.Var, e.Key, e.Existing)
}

// Is makes errors.Is(err, ErrDuplicateDefinition) hold.
func (e *DuplicateDefinitionError) Is(target error) bool { return target == ErrDuplicateDefinition }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *DuplicateDefinitionError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("var", e.Var)
	enc.AddString("key", e.Key)
	enc.AddString("existing", e.Existing)
	return nil
}

// List splits raw on commas. Empty raw yields a copy of def.
func List(raw string, def []string) []string {
	if raw == "" {
		return clone(def)
	}
	return strings.Split(raw, ",")
}

// IntList splits raw on commas and converts every entry. Empty raw yields a
// copy of def.
func IntList(name, raw string, def []int) ([]int, error) {
	if raw == "" {
		return clone(def), nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := convert.Int(name, part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Overrides parses "+a,-b" into {a: true, b: false}. Entries without a sign
// or without a name are ignored.
func Overrides(raw string) map[string]bool {
	out := make(map[string]bool)
	if raw == "" {
		return out
	}
	for _, entry := range strings.Split(raw, ",") {
		if len(entry) < 2 {
			continue
		}
		name := entry[1:]
		switch entry[0] {
		case '+':
			out[name] = true
		case '-':
			out[name] = false
		}
	}
	return out
}

// RunLimit is the longest a program may run and the exit status it reports
// when that limit is hit.
type RunLimit struct {
	Duration   time.Duration `yaml:"duration"`
	ExitStatus int           `yaml:"status"`
}

func (l RunLimit) String() string {
	return fmt.Sprintf("{duration:%s, status:%d}", l.Duration, l.ExitStatus)
}

// RunDurations parses "prog:duration:status" triples. Entries with another
// field count are ignored. A program listed twice is an error.
func RunDurations(name, raw string) (map[string]RunLimit, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]RunLimit
	for _, entry := range strings.Split(raw, ",") {
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			continue
		}
		prog := strings.TrimSpace(fields[0])
		d, err := convert.Duration(name, fields[1])
		if err != nil {
			return nil, err
		}
		status, err := convert.Int(name, fields[2])
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make(map[string]RunLimit)
		}
		if existing, ok := out[prog]; ok {
			return nil, &DuplicateDefinitionError{Var: name, Key: prog, Existing: existing.String()}
		}
		out[prog] = RunLimit{Duration: d, ExitStatus: status}
	}
	return out, nil
}

// PeriodModes records which variants of a period are forced to recompute.
type PeriodModes struct {
	Hist   bool `yaml:"hist"`
	NoHist bool `yaml:"no_hist"`
}

// Has reports whether the histogram (hist=true) or plain variant is forced.
func (m PeriodModes) Has(hist bool) bool {
	if hist {
		return m.Hist
	}
	return m.NoHist
}

// ComputePeriods parses "period:t,period:f" entries. Entries with another
// field count or a flag other than t/f are ignored.
func ComputePeriods(raw string) map[string]PeriodModes {
	if raw == "" {
		return nil
	}
	var out map[string]PeriodModes
	for _, entry := range strings.Split(raw, ",") {
		fields := strings.Split(entry, ":")
		if len(fields) != 2 {
			continue
		}
		period := fields[0]
		flag := strings.TrimSpace(fields[1])
		if flag != "t" && flag != "f" {
			continue
		}
		if out == nil {
			out = make(map[string]PeriodModes)
		}
		modes := out[period]
		if flag == "t" {
			modes.Hist = true
		} else {
			modes.NoHist = true
		}
		out[period] = modes
	}
	return out
}

func clone[T any](src []T) []T {
	if src == nil {
		return nil
	}
	out := make([]T, len(src))
	copy(out, src)
	return out
}
