// Package envconfig reads the engine configuration from environment variables.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var returns an environment variable stripped of surrounding whitespace and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// String returns a getter for a string variable with a default.
func String(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable. A set but unparsable value counts as true.
func Bool(key string) func() bool {
	return func() bool {
		if s := Var(key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// Uint returns a getter for an unsigned integer variable with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

var (
	// Backend is the backend opened when none is named. Configured via BORN_BACKEND.
	Backend = String("BORN_BACKEND", "cpu")
	// NumThreads bounds the worker goroutines of the parallel backends. Configured via BORN_NUM_THREADS.
	NumThreads = Uint("BORN_NUM_THREADS", uint(runtime.NumCPU())) //nolint:gosec // G115: NumCPU is positive.
	// GridWorkgroup is the workgroup size of the grid backend. Configured via BORN_GRID_WORKGROUP.
	GridWorkgroup = Uint("BORN_GRID_WORKGROUP", 256)
	// GridElementTasks makes the grid backend launch one dropout task per element.
	// Configured via BORN_GRID_ELEMENT_TASKS.
	GridElementTasks = Bool("BORN_GRID_ELEMENT_TASKS")
)

// LogLevel returns the log level. Configured via BORN_DEBUG:
// unset or false is INFO, true is DEBUG, and an integer n is slog.Level(-4n).
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("BORN_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// EnvVar describes one configuration variable and its current value.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every configuration variable keyed by name.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"BORN_BACKEND":            {"BORN_BACKEND", Backend(), "Backend used when none is named (default: cpu)"},
		"BORN_NUM_THREADS":        {"BORN_NUM_THREADS", NumThreads(), "Maximum worker goroutines for parallel backends (default: number of CPUs)"},
		"BORN_GRID_WORKGROUP":     {"BORN_GRID_WORKGROUP", GridWorkgroup(), "Tasks per workgroup on the grid backend (default: 256)"},
		"BORN_GRID_ELEMENT_TASKS": {"BORN_GRID_ELEMENT_TASKS", GridElementTasks(), "Launch one dropout task per element on the grid backend"},
		"BORN_DEBUG":              {"BORN_DEBUG", LogLevel(), "Show additional debug information (e.g. BORN_DEBUG=1)"},
	}
}

// Values returns the current value of every variable as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
