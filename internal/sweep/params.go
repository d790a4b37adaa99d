// Package sweep runs randomized parameter sweeps of the operation catalogue.
//
// A sweep is described by a parameter string in the form used by the NeoML test
// suite, for example
//
//	"Height = (1..50); Width = (1..50); BatchSize = (1..5); Values = (-1..1); TestCount = 100;"
//
// Every trial draws its dimensions and data from the intervals, runs one operation on
// two backends and reports the largest absolute difference between their outputs.
package sweep

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports a malformed parameter string.
	ErrSyntax = errors.New("sweep: malformed parameters")
	// ErrMissing reports a parameter the sweep needs but the string does not define.
	ErrMissing = errors.New("sweep: missing parameter")
)

// Interval is an inclusive integer range.
type Interval struct {
	Begin int
	End   int
}

// Uniform draws an integer uniformly from the interval.
func (i Interval) Uniform(rng *rand.Rand) int {
	return i.Begin + rng.IntN(i.End-i.Begin+1)
}

// UniformFloat draws a float32 uniformly from [Begin, End].
func (i Interval) UniformFloat(rng *rand.Rand) float32 {
	return float32(i.Begin) + rng.Float32()*float32(i.End-i.Begin)
}

func (i Interval) String() string {
	return fmt.Sprintf("(%d..%d)", i.Begin, i.End)
}

// Params holds the named values of a parameter string.
type Params struct {
	values map[string]string
}

// Parse parses a parameter string. Entries are separated by ';' and have the form
// "Name = value" or "Name = (begin..end)". Whitespace is ignored.
func Parse(s string) (Params, error) {
	p := Params{values: make(map[string]string)}
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return Params{}, fmt.Errorf("%w: entry %q", ErrSyntax, entry)
		}
		if _, err := parseInterval(value); err != nil {
			return Params{}, fmt.Errorf("%w: %s: %w", ErrSyntax, name, err)
		}
		p.values[name] = value
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Params {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Has reports whether name is defined.
func (p Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Interval returns the interval named name. A single value v is the interval (v..v).
func (p Params) Interval(name string) (Interval, error) {
	value, ok := p.values[name]
	if !ok {
		return Interval{}, fmt.Errorf("%w: %s", ErrMissing, name)
	}
	return parseInterval(value)
}

// Int returns the single integer value named name.
func (p Params) Int(name string) (int, error) {
	i, err := p.Interval(name)
	if err != nil {
		return 0, err
	}
	if i.Begin != i.End {
		return 0, fmt.Errorf("%w: %s is an interval %s", ErrSyntax, name, i)
	}
	return i.Begin, nil
}

// With returns p merged with other. Values from other take precedence.
func (p Params) With(other Params) Params {
	merged := Params{values: make(map[string]string, len(p.values)+len(other.values))}
	for k, v := range p.values {
		merged.values[k] = v
	}
	for k, v := range other.values {
		merged.values[k] = v
	}
	return merged
}

// String formats the parameters in parameter string syntax with names sorted.
func (p Params) String() string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s = %s;", name, p.values[name])
	}
	return sb.String()
}

func parseInterval(value string) (Interval, error) {
	if !strings.HasPrefix(value, "(") {
		v, err := strconv.Atoi(value)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Begin: v, End: v}, nil
	}
	inner, ok := strings.CutSuffix(value[1:], ")")
	if !ok {
		return Interval{}, fmt.Errorf("unterminated interval %q", value)
	}
	begin, end, ok := strings.Cut(inner, "..")
	if !ok {
		return Interval{}, fmt.Errorf("interval %q has no '..'", value)
	}
	b, err := strconv.Atoi(strings.TrimSpace(begin))
	if err != nil {
		return Interval{}, err
	}
	e, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return Interval{}, err
	}
	if e < b {
		return Interval{}, fmt.Errorf("interval %q is empty", value)
	}
	return Interval{Begin: b, End: e}, nil
}
