// pkg/util/errlog.go

package util

import (
	"fmt"
	"strings"
)

// ErrorLog accumulates validation errors and warnings for a single owning
// object. Computations log and continue; nothing in the library aborts on
// a validation failure. The log is ring-bounded: past the size limit the
// oldest entry is evicted and the message gains a "[...]" prefix.
type ErrorLog struct {
	name     string
	messages []string
	hasError bool
	evicted  bool
	limit    int
}

const DefaultErrorLogLimit = 25

func NewErrorLog(name string) *ErrorLog {
	return &ErrorLog{name: name, limit: DefaultErrorLogLimit}
}

func (e *ErrorLog) SetSizeLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

func (e *ErrorLog) add(msg string) {
	e.messages = append(e.messages, msg)
	if len(e.messages) > e.limit {
		e.messages = e.messages[1:]
		e.evicted = true
	}
}

func (e *ErrorLog) AddError(format string, args ...any) {
	e.hasError = true
	e.add("ERROR in " + e.name + ": " + fmt.Sprintf(format, args...))
}

func (e *ErrorLog) AddWarning(format string, args ...any) {
	e.add("Warning in " + e.name + ": " + fmt.Sprintf(format, args...))
}

// IsPositive logs an error and returns false unless val > 0.
func (e *ErrorLog) IsPositive(method string, val float64) bool {
	if val > 0 {
		return true
	}
	e.AddError("[%s] Value %.4f is non positive", method, val)
	return false
}

// IsNonNegative logs an error and returns false unless val >= 0.
func (e *ErrorLog) IsNonNegative(method string, val float64) bool {
	if val >= 0 {
		return true
	}
	e.AddError("[%s] Value %.4f is negative", method, val)
	return false
}

func (e *ErrorLog) HasError() bool {
	return e.hasError
}

func (e *ErrorLog) HasMessage() bool {
	return len(e.messages) > 0
}

// Message drains the log, returning all accumulated entries.
func (e *ErrorLog) Message() string {
	s := e.MessageNoClear()
	e.messages = e.messages[:0]
	e.hasError = false
	e.evicted = false
	return s
}

func (e *ErrorLog) MessageNoClear() string {
	if len(e.messages) == 0 {
		return ""
	}
	s := strings.Join(e.messages, "\n") + "\n"
	if e.evicted {
		s = "[...] " + s
	}
	return s
}
