package common

import (
	"encoding/json"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ngjit-go/packages/core"
)

func invalidPipeArgument(pipe string, value any) *core.RuntimeError {
	return core.NewRuntimeError("InvalidPipeArgument: '%s' for pipe '%s'", core.Stringify(value), pipe)
}

func stringArg(pipe string, value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	}
	panic(invalidPipeArgument(pipe, value))
}

// UpperCasePipe transforms text to upper case.
type UpperCasePipe struct{}

func (UpperCasePipe) Transform(value any, _ ...any) any {
	s, ok := stringArg("UpperCasePipe", value)
	if !ok {
		return nil
	}
	return strings.ToUpper(s)
}

// LowerCasePipe transforms text to lower case.
type LowerCasePipe struct{}

func (LowerCasePipe) Transform(value any, _ ...any) any {
	s, ok := stringArg("LowerCasePipe", value)
	if !ok {
		return nil
	}
	return strings.ToLower(s)
}

// TitleCasePipe capitalizes the first letter of each word and lower-cases the rest.
type TitleCasePipe struct {
	caser cases.Caser
}

func (p *TitleCasePipe) Transform(value any, _ ...any) any {
	s, ok := stringArg("TitleCasePipe", value)
	if !ok {
		return nil
	}
	return p.caser.String(s)
}

// JsonPipe renders a value as indented JSON.
type JsonPipe struct{}

func (JsonPipe) Transform(value any, _ ...any) any {
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		panic(invalidPipeArgument("JsonPipe", value))
	}
	return string(b)
}

// SlicePipe returns the part of a string or list between start and an optional end.
// Negative indices count from the end.
type SlicePipe struct{}

func (SlicePipe) Transform(value any, args ...any) any {
	if value == nil {
		return nil
	}
	if len(args) == 0 {
		panic(core.NewRuntimeError("SlicePipe requires a start index"))
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.String && v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		panic(invalidPipeArgument("SlicePipe", value))
	}
	n := v.Len()
	start := clampIndex(int(core.ToNumber(args[0])), n)
	end := n
	if len(args) > 1 && args[1] != nil {
		end = clampIndex(int(core.ToNumber(args[1])), n)
	}
	if end < start {
		end = start
	}
	if v.Kind() == reflect.String {
		return v.String()[start:end]
	}
	out := make([]any, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, v.Index(i).Interface())
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// Declared pipe types.
var (
	UpperCasePipeType = core.NewType("UpperCasePipe", func(...any) any { return UpperCasePipe{} })
	LowerCasePipeType = core.NewType("LowerCasePipe", func(...any) any { return LowerCasePipe{} })
	TitleCasePipeType = core.NewType("TitleCasePipe", func(...any) any {
		return &TitleCasePipe{caser: cases.Title(language.Und)}
	})
	JsonPipeType  = core.NewType("JsonPipe", func(...any) any { return JsonPipe{} })
	SlicePipeType = core.NewType("SlicePipe", func(...any) any { return SlicePipe{} })
)
