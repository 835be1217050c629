// Package diag adapts github.com/tliron/commonlog to the small Logger
// interfaces package compiler and package vm depend on, so neither of them
// needs to know which logging backend the host process wired up.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// Logger wraps a named commonlog.Logger. It is passed by value where the
// compiler/vm packages expect their own Logger interface.
type Logger struct {
	backend commonlog.Logger
}

// New returns a Logger backed by commonlog's registered simple backend,
// under the given component name (e.g. "compiler", "vm").
func New(name string) Logger {
	return Logger{backend: commonlog.GetLogger(name)}
}

// SetVerbose raises or lowers the process-wide maximum log level; verbose
// is true to also emit Debug records, false to restrict to Warning/above.
func SetVerbose(verbose bool) {
	if verbose {
		commonlog.SetMaxLevel(commonlog.Debug)
	} else {
		commonlog.SetMaxLevel(commonlog.Warning)
	}
}

func (l Logger) Warn(msg string, fields map[string]any) {
	l.backend.Warning(withFields(msg, fields))
}

func (l Logger) Debug(msg string, fields map[string]any) {
	l.backend.Debug(withFields(msg, fields))
}

// withFields renders fields deterministically (sorted keys) so log output
// is stable across runs, which matters for anything that diffs it in tests.
func withFields(msg string, fields map[string]any) string {
	if len(fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return msg + " (" + strings.Join(parts, ", ") + ")"
}
