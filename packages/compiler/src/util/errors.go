package util

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind groups compiler errors by what the caller has to fix.
type ErrorKind string

const (
	ErrorKindTemplate      ErrorKind = "template"
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindSyncAsync     ErrorKind = "sync-async"
	ErrorKindStyleCycle    ErrorKind = "style-cycle"
	ErrorKindInternal      ErrorKind = "internal"
)

// CompileError is the common shape of every error surfaced by the compiler.
type CompileError struct {
	Kind    ErrorKind
	Type    string
	Message string
	Cause   error
}

func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so callers can test errors.Is(err, util.ErrSyncAsync).
func (e *CompileError) Is(target error) bool {
	var t *CompileError
	if errors.As(target, &t) {
		return t.Type == "" && t.Message == "" && e.Kind == t.Kind
	}
	return false
}

var (
	ErrConfiguration = &CompileError{Kind: ErrorKindConfiguration}
	ErrSyncAsync     = &CompileError{Kind: ErrorKindSyncAsync}
	ErrStyleCycle    = &CompileError{Kind: ErrorKindStyleCycle}
	ErrTemplate      = &CompileError{Kind: ErrorKindTemplate}
)

// ConfigurationError reports a declaration that is wired up wrongly.
func ConfigurationError(typeName, format string, args ...any) error {
	return &CompileError{Kind: ErrorKindConfiguration, Type: typeName, Message: fmt.Sprintf(format, args...)}
}

// SyncAsyncError is returned when synchronous compilation meets a load that has not finished.
func SyncAsyncError(typeName string) error {
	return &CompileError{
		Kind:    ErrorKindSyncAsync,
		Type:    typeName,
		Message: fmt.Sprintf("Can't compile synchronously as %s is still being loaded!", typeName),
	}
}

// StyleCycleError names the stylesheet URLs that depend on each other.
func StyleCycleError(cycle []string) error {
	return &CompileError{
		Kind:    ErrorKindStyleCycle,
		Message: "Cyclic stylesheet dependency: " + strings.Join(cycle, " -> "),
	}
}

// InternalError marks a broken compiler invariant.
func InternalError(format string, args ...any) error {
	return &CompileError{Kind: ErrorKindInternal, Message: "Internal Error: " + fmt.Sprintf(format, args...)}
}

// TemplateParseError aggregates the errors of one template.
type TemplateParseError struct {
	Type   string
	Errors []*ParseError
}

func (e *TemplateParseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.String()
	}
	return fmt.Sprintf("Template parse errors:\n%s", strings.Join(msgs, "\n"))
}

func (e *TemplateParseError) Is(target error) bool {
	return target == ErrTemplate
}

// NewTemplateParseError returns nil when errs holds no error-level entries.
func NewTemplateParseError(typeName string, errs []*ParseError) error {
	var fatal []*ParseError
	for _, err := range errs {
		if err.Level == ParseErrorLevelError {
			fatal = append(fatal, err)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	return &TemplateParseError{Type: typeName, Errors: fatal}
}
