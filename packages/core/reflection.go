package core

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PropertyTag overrides the template-visible name of a struct field, e.g. `ng:"$implicit"`.
const PropertyTag = "ng"

// FieldName is the template-visible name of a struct field: its ng tag, or the field
// name with the first letter lowered.
func FieldName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup(PropertyTag); ok {
		if i := strings.IndexByte(tag, ','); i >= 0 {
			tag = tag[:i]
		}
		if tag == "-" {
			return ""
		}
		if tag != "" {
			return tag
		}
	}
	return uncapitalize(f.Name)
}

// MethodName is the template-visible name of a method.
func MethodName(m reflect.Method) string {
	return uncapitalize(m.Name)
}

func uncapitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// GetProperty reads name from obj: map keys, struct fields, methods (bound), and "length" of
// slices and strings. The second result is false when obj has no such property.
func GetProperty(obj any, name string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	v := reflect.ValueOf(obj)
	if m := methodByName(v, name); m.IsValid() {
		return m.Interface(), true
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}
		return e.Interface(), true
	case reflect.Struct:
		if f, ok := fieldByName(v, name); ok {
			return f.Interface(), true
		}
	case reflect.Slice, reflect.Array, reflect.String:
		if name == "length" {
			return v.Len(), true
		}
	}
	return nil, false
}

// GetKey reads obj[key] for maps, slices, arrays and strings, falling back to GetProperty.
func GetKey(obj any, key any) any {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() != reflect.Struct {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		i, ok := toIndex(key)
		if !ok || i < 0 || i >= v.Len() {
			if s, ok := key.(string); ok {
				res, _ := GetProperty(obj, s)
				return res
			}
			return nil
		}
		if v.Kind() == reflect.String {
			return string(v.String()[i])
		}
		return v.Index(i).Interface()
	case reflect.Map:
		kv, err := ConvertValue(key, v.Type().Key())
		if err != nil {
			return nil
		}
		e := v.MapIndex(kv)
		if !e.IsValid() {
			return nil
		}
		return e.Interface()
	}
	res, _ := GetProperty(obj, Stringify(key))
	return res
}

func toIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int64:
		return int(k), true
	case float64:
		if k == math.Trunc(k) {
			return int(k), true
		}
	}
	return 0, false
}

// SetProperty writes value to obj.name. InputSetter implementations take precedence.
func SetProperty(obj any, name string, value any) error {
	if setter, ok := obj.(InputSetter); ok {
		setter.SetInput(name, value)
		return nil
	}
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return fmt.Errorf("cannot set property %q on nil", name)
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("cannot set property %q on nil", name)
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return fmt.Errorf("cannot set property %q on nil map", name)
		}
		ev, err := ConvertValue(value, v.Type().Elem())
		if err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		v.SetMapIndex(reflect.ValueOf(name).Convert(v.Type().Key()), ev)
		return nil
	case reflect.Struct:
		f, ok := fieldByName(v, name)
		if !ok {
			return fmt.Errorf("%s has no property %q", v.Type(), name)
		}
		if !f.CanSet() {
			return fmt.Errorf("property %q of %s is not settable", name, v.Type())
		}
		fv, err := ConvertValue(value, f.Type())
		if err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		f.Set(fv)
		return nil
	}
	return fmt.Errorf("cannot set property %q on %T", name, obj)
}

func fieldByName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if FieldName(f) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func methodByName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if MethodName(t.Method(i)) == name {
			return v.Method(i)
		}
	}
	return reflect.Value{}
}

// ConvertValue converts value so that it can be assigned to t. Numbers convert between
// kinds, nil becomes the zero value, and callables are adapted to the target func type.
func ConvertValue(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	switch t.Kind() {
	case reflect.Interface:
		if v.Type().Implements(t) {
			return v, nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if f, ok := toFloat(v); ok {
			return reflect.ValueOf(f).Convert(t), nil
		}
	case reflect.String:
		return reflect.ValueOf(Stringify(value)).Convert(t), nil
	case reflect.Bool:
		return reflect.ValueOf(Truthy(value)).Convert(t), nil
	case reflect.Slice:
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			out := reflect.MakeSlice(t, v.Len(), v.Len())
			for i := 0; i < v.Len(); i++ {
				ev, err := ConvertValue(v.Index(i).Interface(), t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	case reflect.Func:
		if v.Kind() == reflect.Func {
			return adaptFunc(v, t), nil
		}
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, t)
}

func adaptFunc(fn reflect.Value, t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		in := make([]any, 0, len(args))
		for i, a := range args {
			if t.IsVariadic() && i == len(args)-1 {
				for j := 0; j < a.Len(); j++ {
					in = append(in, a.Index(j).Interface())
				}
				break
			}
			in = append(in, a.Interface())
		}
		res := CallFunc(fn.Interface(), in...)
		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		if t.NumOut() > 0 {
			if rv, err := ConvertValue(res, t.Out(0)); err == nil {
				out[0] = rv
			}
		}
		return out
	})
}

// CallFunc calls any Go func with loosely typed arguments. Missing arguments are zero values;
// a trailing non-nil error result panics.
func CallFunc(fn any, args ...any) any {
	if fn == nil {
		panic(NewRuntimeError("value is not a function"))
	}
	if f, ok := fn.(func(...any) any); ok {
		return f(args...)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(NewRuntimeError("%T is not a function", fn))
	}
	t := v.Type()
	n := t.NumIn()
	fixed := n
	if t.IsVariadic() {
		fixed = n - 1
	}
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < fixed; i++ {
		var a any
		if i < len(args) {
			a = args[i]
		}
		in = append(in, convertArg(a, t.In(i), i))
	}
	if t.IsVariadic() {
		et := t.In(n - 1).Elem()
		for i := fixed; i < len(args); i++ {
			in = append(in, convertArg(args[i], et, i))
		}
	}
	out := v.Call(in)
	if len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			panic(last.Interface().(error))
		}
		out = out[:len(out)-1]
		if len(out) == 0 {
			return nil
		}
	}
	return out[0].Interface()
}

func convertArg(a any, t reflect.Type, i int) reflect.Value {
	av, err := ConvertValue(a, t)
	if err != nil {
		panic(NewRuntimeError("argument %d: %v", i, err))
	}
	return av
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		return f, err == nil
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ToNumber converts a value the way template arithmetic does; non-numbers become NaN.
func ToNumber(value any) float64 {
	if value == nil {
		return 0
	}
	if f, ok := toFloat(reflect.ValueOf(value)); ok {
		return f
	}
	return math.NaN()
}

// IsNumber reports whether value is any Go numeric kind.
func IsNumber(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Truthy follows template truthiness: nil, false, 0, NaN and "" are false.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return !v.IsNil()
	}
	if IsNumber(value) {
		f := ToNumber(value)
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Stringify renders a value for text nodes and attributes. nil renders as "".
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	if IsNumber(value) {
		f := ToNumber(value)
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("%v", value)
}

// LooseEqual is the == of template expressions: numbers compare by value, nil equals nil.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if IsNumber(a) && IsNumber(b) {
		return ToNumber(a) == ToNumber(b)
	}
	if IsNumber(a) || IsNumber(b) {
		if _, ok := a.(string); ok {
			return ToNumber(a) == ToNumber(b)
		}
		if _, ok := b.(string); ok {
			return ToNumber(a) == ToNumber(b)
		}
	}
	return Identical(a, b)
}

// Identical is reference equality for maps, slices and funcs and value equality otherwise.
// Pure pipes compare their arguments with it.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if IsNumber(a) && IsNumber(b) {
		return ToNumber(a) == ToNumber(b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
