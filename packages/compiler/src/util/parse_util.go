package util

import (
	"fmt"
	"strings"
)

// ParseLocation represents a location in the source file
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{
		File:   file,
		Offset: offset,
		Line:   line,
		Col:    col,
	}
}

// LocationAt computes the line and column of offset inside file.
func LocationAt(file *ParseSourceFile, offset int) *ParseLocation {
	if offset > len(file.Content) {
		offset = len(file.Content)
	}
	line := strings.Count(file.Content[:offset], "\n")
	col := offset
	if nl := strings.LastIndexByte(file.Content[:offset], '\n'); nl >= 0 {
		col = offset - nl - 1
	}
	return NewParseLocation(file, offset, line, col)
}

// String returns a string representation of the location
func (p *ParseLocation) String() string {
	if p.Offset >= 0 {
		return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line, p.Col)
	}
	return p.File.URL
}

// MoveBy moves the location by delta characters
func (p *ParseLocation) MoveBy(delta int) *ParseLocation {
	offset := p.Offset + delta
	if offset < 0 {
		offset = 0
	}
	return LocationAt(p.File, offset)
}

// GetContext returns the source context around the location
func (p *ParseLocation) GetContext(maxChars, maxLines int) *Context {
	content := p.File.Content
	if p.Offset < 0 || len(content) == 0 {
		return nil
	}
	offset := p.Offset
	if offset > len(content) {
		offset = len(content)
	}

	start := offset
	for chars, lines := 0, 0; chars < maxChars && start > 0; chars++ {
		start--
		if content[start] == '\n' {
			lines++
			if lines == maxLines {
				break
			}
		}
	}
	end := offset
	for chars, lines := 0, 0; chars < maxChars && end < len(content); chars++ {
		if content[end] == '\n' {
			lines++
			if lines == maxLines {
				break
			}
		}
		end++
	}

	return &Context{
		Before: content[start:offset],
		After:  content[offset:end],
	}
}

// Context represents source context around a location
type Context struct {
	Before string
	After  string
}

// ParseSourceFile represents a source file
type ParseSourceFile struct {
	Content string
	URL     string
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{
		Content: content,
		URL:     url,
	}
}

// ParseSourceSpan represents a span of source code
type ParseSourceSpan struct {
	Start   *ParseLocation
	End     *ParseLocation
	Details string
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation) *ParseSourceSpan {
	return &ParseSourceSpan{Start: start, End: end}
}

// SpanOf builds a span over [start, end) of file.
func SpanOf(file *ParseSourceFile, start, end int) *ParseSourceSpan {
	return NewParseSourceSpan(LocationAt(file, start), LocationAt(file, end))
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// ParseErrorLevel represents the level of a parse error
type ParseErrorLevel int

const (
	ParseErrorLevelWarning ParseErrorLevel = iota
	ParseErrorLevelError
)

// ParseError represents a parse error
type ParseError struct {
	Span  *ParseSourceSpan
	Msg   string
	Level ParseErrorLevel
}

// NewParseError creates a new ParseError
func NewParseError(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelError,
	}
}

// NewParseWarning creates a new ParseWarning
func NewParseWarning(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelWarning,
	}
}

// Error implements the error interface
func (p *ParseError) Error() string {
	return p.String()
}

// ContextualMessage returns the error message with context
func (p *ParseError) ContextualMessage() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	ctx := p.Span.Start.GetContext(100, 3)
	if ctx == nil {
		return p.Msg
	}
	level := "ERROR"
	if p.Level == ParseErrorLevelWarning {
		level = "WARNING"
	}
	return fmt.Sprintf(`%s ("%s[%s ->]%s")`, p.Msg, ctx.Before, level, ctx.After)
}

// String returns a string representation of the error
func (p *ParseError) String() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	details := ""
	if p.Span.Details != "" {
		details = ", " + p.Span.Details
	}
	return fmt.Sprintf("%s: %s%s", p.ContextualMessage(), p.Span.Start, details)
}

// TypeSourceSpan is the span used for errors about a declared type rather than a template
// position, e.g. "in component MyComp in app.toml".
func TypeSourceSpan(kind, typeName, sourceURL string) *ParseSourceSpan {
	file := NewParseSourceFile("", fmt.Sprintf("in %s %s in %s", kind, typeName, sourceURL))
	return NewParseSourceSpan(NewParseLocation(file, -1, -1, -1), NewParseLocation(file, -1, -1, -1))
}
