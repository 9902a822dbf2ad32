package nbt

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/mcnbt/errs"
)

var tagInterface = reflect.TypeFor[Tag]()

// Marshal converts a Go value into a tag tree.
//
// Struct fields are encoded as compound entries in declaration order. The
// entry name comes from the `nbt` struct tag, falling back to the field name:
//
//	type Section struct {
//	    Y           int8      `nbt:"Y"`
//	    BlockLight  []byte    `nbt:"BlockLight,omitempty"`
//	    Palette     []string  `nbt:"palette"`
//	    Scratch     string    `nbt:"-"`
//	}
//
// Go kinds map as follows: bool, int8 and uint8 to Byte; int16 and uint16 to
// Short; int32 and uint32 to Int; int, int64, uint and uint64 to Long;
// float32 to Float; float64 to Double; string to String; []byte, []int32 and
// []int64 to the array tags; other slices and arrays to List; structs and
// map[string]T to Compound (map keys sorted). Values that already implement
// Tag are used as is. Nil pointers and interfaces in fields and maps are
// skipped.
func Marshal(v any) (Tag, error) {
	if v == nil {
		return nil, fmt.Errorf("nbt: %w: nil value", errs.ErrUnsupportedType)
	}

	return marshalValue(reflect.ValueOf(v))
}

// MarshalNamed is like Marshal and wraps the result in a document root.
func MarshalNamed(name string, v any) (NamedTag, error) {
	t, err := Marshal(v)
	if err != nil {
		return NamedTag{}, err
	}

	return NamedTag{Name: name, Tag: t}, nil
}

// Unmarshal stores the contents of t in the value pointed to by v.
//
// It accepts everything Marshal produces. Integer tags may be stored in any
// integer kind that can hold the value, unknown compound entries are
// ignored, and targets of type Tag or any receive the tag itself.
func Unmarshal(t Tag, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("nbt: %w: Unmarshal needs a non-nil pointer, got %T", errs.ErrUnsupportedType, v)
	}
	if t == nil {
		return fmt.Errorf("nbt: %w: nil tag", errs.ErrUnsupportedType)
	}

	return unmarshalValue(t, rv.Elem())
}

func isNilable(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

func marshalValue(rv reflect.Value) (Tag, error) {
	if rv.Kind() == reflect.Pointer && rv.Type().Elem().Implements(tagInterface) {
		if rv.IsNil() {
			return nil, fmt.Errorf("nbt: %w: nil %s", errs.ErrUnsupportedType, rv.Type())
		}
		return marshalValue(rv.Elem())
	}
	if rv.Type().Implements(tagInterface) {
		if isNilable(rv) && rv.IsNil() && rv.Kind() != reflect.Slice {
			return nil, fmt.Errorf("nbt: %w: nil %s", errs.ErrUnsupportedType, rv.Type())
		}
		return rv.Interface().(Tag), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, fmt.Errorf("nbt: %w: nil %s", errs.ErrUnsupportedType, rv.Type())
		}
		return marshalValue(rv.Elem())
	case reflect.Bool:
		if rv.Bool() {
			return Byte(1), nil
		}
		return Byte(0), nil
	case reflect.Int8:
		return Byte(rv.Int()), nil
	case reflect.Uint8:
		return Byte(int8(rv.Uint())), nil
	case reflect.Int16:
		return Short(rv.Int()), nil
	case reflect.Uint16:
		return Short(int16(rv.Uint())), nil
	case reflect.Int32:
		return Int(rv.Int()), nil
	case reflect.Uint32:
		return Int(int32(rv.Uint())), nil
	case reflect.Int, reflect.Int64:
		return Long(rv.Int()), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return Long(int64(rv.Uint())), nil
	case reflect.Float32:
		return Float(rv.Float()), nil
	case reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		return marshalSequence(rv)
	case reflect.Map:
		return marshalMap(rv)
	case reflect.Struct:
		return marshalStruct(rv)
	default:
		return nil, fmt.Errorf("nbt: %w: %s", errs.ErrUnsupportedType, rv.Type())
	}
}

func marshalSequence(rv reflect.Value) (Tag, error) {
	elem := rv.Type().Elem()
	n := rv.Len()

	if !elem.Implements(tagInterface) {
		switch elem.Kind() {
		case reflect.Uint8:
			out := make(ByteArray, n)
			for i := range out {
				out[i] = byte(rv.Index(i).Uint())
			}
			return out, nil
		case reflect.Int32:
			out := make(IntArray, n)
			for i := range out {
				out[i] = int32(rv.Index(i).Int())
			}
			return out, nil
		case reflect.Int64:
			out := make(LongArray, n)
			for i := range out {
				out[i] = rv.Index(i).Int()
			}
			return out, nil
		}
	}

	elemType, static := staticTagType(elem)
	if !static {
		elemType = TagEnd
	}

	items := make([]Tag, 0, n)
	for i := range n {
		t, err := marshalValue(rv.Index(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		if !static && i == 0 {
			elemType = t.Type()
		}
		items = append(items, t)
	}

	return NewList(elemType, items...)
}

func marshalMap(rv reflect.Value) (Tag, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("nbt: %w: map key %s", errs.ErrUnsupportedType, rv.Type().Key())
	}

	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})

	c := NewCompound()
	for _, k := range keys {
		v := rv.MapIndex(k)
		if isNilable(v) && v.Kind() != reflect.Slice && v.IsNil() {
			continue
		}
		t, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.String(), err)
		}
		c.Set(k.String(), t)
	}

	return c, nil
}

func marshalStruct(rv reflect.Value) (Tag, error) {
	c := NewCompound()
	for _, f := range cachedFields(rv.Type()) {
		fv := rv.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		if isNilable(fv) && fv.Kind() != reflect.Slice && fv.IsNil() {
			continue
		}

		t, err := marshalValue(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		c.Set(f.name, t)
	}

	return c, nil
}

// staticTagType reports the tag type every value of t marshals to, if fixed.
func staticTagType(t reflect.Type) (TagType, bool) {
	if t.Kind() == reflect.Pointer && t.Elem().Implements(tagInterface) {
		return staticTagType(t.Elem())
	}
	if t.Implements(tagInterface) {
		if t.Kind() == reflect.Interface {
			return 0, false
		}
		return reflect.Zero(t).Interface().(Tag).Type(), true
	}

	switch t.Kind() {
	case reflect.Pointer:
		return staticTagType(t.Elem())
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return TagByte, true
	case reflect.Int16, reflect.Uint16:
		return TagShort, true
	case reflect.Int32, reflect.Uint32:
		return TagInt, true
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return TagLong, true
	case reflect.Float32:
		return TagFloat, true
	case reflect.Float64:
		return TagDouble, true
	case reflect.String:
		return TagString, true
	case reflect.Slice, reflect.Array:
		if !t.Elem().Implements(tagInterface) {
			switch t.Elem().Kind() {
			case reflect.Uint8:
				return TagByteArray, true
			case reflect.Int32:
				return TagIntArray, true
			case reflect.Int64:
				return TagLongArray, true
			}
		}
		return TagList, true
	case reflect.Map:
		return TagCompound, t.Key().Kind() == reflect.String
	case reflect.Struct:
		return TagCompound, true
	default:
		return 0, false
	}
}

type field struct {
	name      string
	index     int
	omitEmpty bool
}

var fieldCache sync.Map // map[reflect.Type][]field

func cachedFields(t reflect.Type) []field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]field)
	}

	fields := make([]field, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("nbt")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, field{
			name:      name,
			index:     i,
			omitEmpty: slices.Contains(strings.Split(opts, ","), "omitempty"),
		})
	}

	f, _ := fieldCache.LoadOrStore(t, fields)

	return f.([]field)
}

func cannotUnmarshal(t Tag, dst reflect.Type) error {
	return fmt.Errorf("nbt: %w: cannot unmarshal %s into %s", errs.ErrUnsupportedType, t.Type(), dst)
}

func unmarshalValue(t Tag, dst reflect.Value) error {
	dt := dst.Type()
	if reflect.TypeOf(t).AssignableTo(dt) {
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dt.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dt.Elem()))
		}
		return unmarshalValue(t, dst.Elem())
	case reflect.Bool:
		b, ok := t.(Byte)
		if !ok {
			return cannotUnmarshal(t, dt)
		}
		dst.SetBool(b != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := signedValue(t)
		if !ok || dst.OverflowInt(n) {
			return cannotUnmarshal(t, dt)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := unsignedValue(t)
		if !ok || dst.OverflowUint(n) {
			return cannotUnmarshal(t, dt)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		switch v := t.(type) {
		case Float:
			dst.SetFloat(float64(v))
		case Double:
			dst.SetFloat(float64(v))
		default:
			return cannotUnmarshal(t, dt)
		}
	case reflect.String:
		s, ok := t.(String)
		if !ok {
			return cannotUnmarshal(t, dt)
		}
		dst.SetString(string(s))
	case reflect.Slice:
		n, at, ok := sequenceOf(t)
		if !ok {
			return cannotUnmarshal(t, dt)
		}
		dst.Set(reflect.MakeSlice(dt, n, n))
		return unmarshalElements(n, at, dst)
	case reflect.Array:
		n, at, ok := sequenceOf(t)
		if !ok || n > dst.Len() {
			return cannotUnmarshal(t, dt)
		}
		dst.SetZero()
		return unmarshalElements(n, at, dst)
	case reflect.Map:
		c, ok := t.(*Compound)
		if !ok || dt.Key().Kind() != reflect.String {
			return cannotUnmarshal(t, dt)
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dt, c.Len()))
		}
		for name, sub := range c.All() {
			ev := reflect.New(dt.Elem()).Elem()
			if err := unmarshalValue(sub, ev); err != nil {
				return fmt.Errorf("key %q: %w", name, err)
			}
			dst.SetMapIndex(reflect.ValueOf(name).Convert(dt.Key()), ev)
		}
	case reflect.Struct:
		c, ok := t.(*Compound)
		if !ok {
			return cannotUnmarshal(t, dt)
		}
		for _, f := range cachedFields(dt) {
			sub, ok := c.Get(f.name)
			if !ok {
				continue
			}
			if err := unmarshalValue(sub, dst.Field(f.index)); err != nil {
				return fmt.Errorf("field %s: %w", f.name, err)
			}
		}
	default:
		return cannotUnmarshal(t, dt)
	}

	return nil
}

func unmarshalElements(n int, at func(int) Tag, dst reflect.Value) error {
	for i := range n {
		if err := unmarshalValue(at(i), dst.Index(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}

	return nil
}

// sequenceOf exposes the array tags and List through one element accessor.
func sequenceOf(t Tag) (int, func(int) Tag, bool) {
	switch v := t.(type) {
	case ByteArray:
		return len(v), func(i int) Tag { return Byte(int8(v[i])) }, true
	case IntArray:
		return len(v), func(i int) Tag { return Int(v[i]) }, true
	case LongArray:
		return len(v), func(i int) Tag { return Long(v[i]) }, true
	case *List:
		return v.Len(), v.At, true
	default:
		return 0, nil, false
	}
}

func signedValue(t Tag) (int64, bool) {
	switch v := t.(type) {
	case Byte:
		return int64(v), true
	case Short:
		return int64(v), true
	case Int:
		return int64(v), true
	case Long:
		return int64(v), true
	default:
		return 0, false
	}
}

// unsignedValue reinterprets the tag's bits at its own width, so a uint8
// stored as Byte(-1) reads back as 255.
func unsignedValue(t Tag) (uint64, bool) {
	switch v := t.(type) {
	case Byte:
		return uint64(uint8(v)), true
	case Short:
		return uint64(uint16(v)), true
	case Int:
		return uint64(uint32(v)), true
	case Long:
		return uint64(v), true
	default:
		return 0, false
	}
}
