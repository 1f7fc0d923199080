// Package convert turns raw setting strings into typed values. Every failure
// is reported as a *MalformedValueError naming the variable, the offending
// text and the requested type.
package convert

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
	"go.uber.org/zap/zapcore"
)

// ErrMalformedValue matches every *MalformedValueError.
var ErrMalformedValue = errors.New("malformed value")

// MalformedValueError reports a present value that does not parse as Type.
type MalformedValueError struct {
	Var   string
	Value string
	Type  string
	Err   error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("cannot convert %s=%q to %s: %v", e.Var, e.Value, e.Type, e.Err)
}

func (e *MalformedValueError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedValue) hold.
func (e *MalformedValueError) Is(target error) bool { return target == ErrMalformedValue }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *MalformedValueError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("var", e.Var)
	enc.AddString("value", e.Value)
	enc.AddString("type", e.Type)
	return nil
}

func malformed(name, raw, typ string, err error) error {
	return &MalformedValueError{Var: name, Value: raw, Type: typ, Err: err}
}

// Int parses raw as a base 10 integer.
func Int(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, malformed(name, raw, "int", err)
	}
	return v, nil
}

// Float parses raw as a 64 bit float.
func Float(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, malformed(name, raw, "float64", err)
	}
	return v, nil
}

// Duration parses raw as a duration. Besides the time.ParseDuration units it
// accepts days and weeks ("2d", "1w").
func Duration(name, raw string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, malformed(name, raw, "duration", err)
	}
	return d, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Time parses raw with the first matching layout, in UTC.
func Time(name, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, malformed(name, raw, "time", errors.New("no matching layout"))
}

// Regexp compiles raw.
func Regexp(name, raw string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, malformed(name, raw, "regexp", err)
	}
	return re, nil
}
