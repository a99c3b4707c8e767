package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrInvalidSchema    = errors.New("tablegen: invalid schema")
	ErrMissingConfig    = errors.New("tablegen: missing configuration")
	ErrInvalidEdge      = errors.New("tablegen: invalid edge")
	ErrGenerationFailed = errors.New("tablegen: generation failed")
)

// describe renders "tablegen: <what> <where...>: <msg>: <cause>", leaving
// out empty segments.
func describe(what string, where []string, msg string, cause error) string {
	var b strings.Builder
	b.WriteString("tablegen: ")
	b.WriteString(what)
	for _, w := range where {
		if w != "" {
			b.WriteByte(' ')
			b.WriteString(w)
		}
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// labeled returns "label value", or "" for an empty value.
func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + " " + value
}

// SchemaError reports a table or column whose name cannot become a Go
// identifier. The table is skipped and generation continues.
type SchemaError struct {
	Table   string
	Column  string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	return describe("schema error", []string{labeled("table", e.Table), labeled("column", e.Column)}, e.Message, e.Cause)
}

func (e *SchemaError) Unwrap() error        { return e.Cause }
func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError returns a SchemaError for table and, optionally, column.
func NewSchemaError(table, column, message string, cause error) *SchemaError {
	return &SchemaError{Table: table, Column: column, Message: message, Cause: cause}
}

// ConfigError reports an option that was rejected while building a Config
// or registering an emitter.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	where := []string{fmt.Sprintf("for %q", e.Option)}
	if e.Value != nil {
		where = append(where, fmt.Sprintf("(value: %v)", e.Value))
	}
	return describe("config error", where, e.Message, nil)
}

func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError returns a ConfigError. A nil value is omitted from the message.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// EdgeError reports a foreign key that points outside the generated table
// set. It is collected as a warning and the owning side is still emitted.
type EdgeError struct {
	From    string
	To      string
	Edge    string
	Message string
	Cause   error
}

func (e *EdgeError) Error() string {
	var tables string
	switch {
	case e.From != "" && e.To != "":
		tables = fmt.Sprintf("(%s -> %s)", e.From, e.To)
	case e.From != "":
		tables = "from " + e.From
	}
	return describe("edge error", []string{labeled("on edge", e.Edge), tables}, e.Message, e.Cause)
}

func (e *EdgeError) Unwrap() error        { return e.Cause }
func (e *EdgeError) Is(target error) bool { return target == ErrInvalidEdge }

// NewEdgeError returns an EdgeError for the constraint edge between from and to.
func NewEdgeError(from, to, edge, message string, cause error) *EdgeError {
	return &EdgeError{From: from, To: to, Edge: edge, Message: message, Cause: cause}
}

// GenerationError reports an artifact that could not be rendered or written.
type GenerationError struct {
	Kind    Kind
	File    string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	var file string
	if e.File != "" {
		file = "(file: " + e.File + ")"
	}
	return describe("generation error", []string{labeled("in", string(e.Kind)), file}, e.Message, e.Cause)
}

func (e *GenerationError) Unwrap() error        { return e.Cause }
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError for the artifact at file.
func NewGenerationError(kind Kind, file, message string, cause error) *GenerationError {
	return &GenerationError{Kind: kind, File: file, Message: message, Cause: cause}
}

func isA[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool { return isA[*SchemaError](err) }

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool { return isA[*ConfigError](err) }

// IsEdgeError reports whether err wraps an *EdgeError.
func IsEdgeError(err error) bool { return isA[*EdgeError](err) }

// IsGenerationError reports whether err wraps a *GenerationError.
func IsGenerationError(err error) bool { return isA[*GenerationError](err) }
