package nbt

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/format"
)

// TagType identifies the wire type of a tag.
type TagType = format.TagType

const (
	TagEnd       = format.TagEnd
	TagByte      = format.TagByte
	TagShort     = format.TagShort
	TagInt       = format.TagInt
	TagLong      = format.TagLong
	TagFloat     = format.TagFloat
	TagDouble    = format.TagDouble
	TagByteArray = format.TagByteArray
	TagString    = format.TagString
	TagList      = format.TagList
	TagCompound  = format.TagCompound
	TagIntArray  = format.TagIntArray
	TagLongArray = format.TagLongArray
)

// Tag is implemented by every NBT value.
//
// The concrete types are End, Byte, Short, Int, Long, Float, Double,
// ByteArray, String, IntArray, LongArray, *List and *Compound.
type Tag interface {
	Type() TagType
}

type (
	// End marks an absent document root; it never appears inside a tree.
	End struct{}

	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
	LongArray []int64
)

func (End) Type() TagType       { return TagEnd }
func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (ByteArray) Type() TagType { return TagByteArray }
func (String) Type() TagType    { return TagString }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }
func (*List) Type() TagType     { return TagList }
func (*Compound) Type() TagType { return TagCompound }

// NamedTag is a document root: a tag together with its root name.
//
// A root whose Tag is End (or nil) is an empty document and encodes as a
// single zero byte.
type NamedTag struct {
	Name string
	Tag  Tag
}

// IsEmpty reports whether the document has no root tag.
func (n NamedTag) IsEmpty() bool {
	return n.Tag == nil || n.Tag.Type() == TagEnd
}

// List is a homogeneous sequence of tags.
//
// The element type is fixed when the list is created and every element must
// match it. An empty list still carries its element type, which is written
// back on encoding. A parsed empty list keeps its element byte as read, even
// one outside the defined tag types.
type List struct {
	elem  TagType
	items []Tag
}

// NewList creates a list of the given element type holding items.
//
// Returns an error wrapping errs.ErrListTypeMismatch if an item does not
// match elem, or errs.ErrInvalidTagType if elem is invalid, or End with items.
func NewList(elem TagType, items ...Tag) (*List, error) {
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: list element type %d", errs.ErrInvalidTagType, elem)
	}

	l := &List{elem: elem, items: make([]Tag, 0, len(items))}
	for _, it := range items {
		if err := l.Append(it); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// MustList is like NewList but panics on error.
func MustList(elem TagType, items ...Tag) *List {
	l, err := NewList(elem, items...)
	if err != nil {
		panic(err)
	}

	return l
}

// ElemType returns the declared element type.
func (l *List) ElemType() TagType {
	return l.elem
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the i-th element. Panics if i is out of range.
func (l *List) At(i int) Tag {
	return l.items[i]
}

// Append adds t to the end of the list.
func (l *List) Append(t Tag) error {
	if err := l.check(t); err != nil {
		return err
	}
	l.items = append(l.items, t)

	return nil
}

// Set replaces the i-th element. Panics if i is out of range.
func (l *List) Set(i int, t Tag) error {
	if err := l.check(t); err != nil {
		return err
	}
	l.items[i] = t

	return nil
}

// All iterates the elements in order.
func (l *List) All() iter.Seq2[int, Tag] {
	return func(yield func(int, Tag) bool) {
		for i, t := range l.items {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Values returns a copy of the elements.
func (l *List) Values() []Tag {
	return slices.Clone(l.items)
}

func (l *List) check(t Tag) error {
	if t == nil || l.elem == TagEnd {
		return fmt.Errorf("%w: cannot add %v to a list of End", errs.ErrInvalidTagType, t)
	}
	if t.Type() != l.elem {
		return fmt.Errorf("%w: %s element in list of %s", errs.ErrListTypeMismatch, t.Type(), l.elem)
	}

	return nil
}

type entry struct {
	name string
	tag  Tag
}

// Compound is an ordered set of uniquely named tags.
//
// Entries keep the order in which they were added (or decoded), so encoding
// a decoded compound reproduces the original key order.
type Compound struct {
	entries []entry
	index   map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{index: make(map[string]int)}
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	return len(c.entries)
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}

	return c.entries[i].tag, true
}

// Has reports whether name is present.
func (c *Compound) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Set stores t under name. An existing entry keeps its position.
// Set panics if t is nil or End.
func (c *Compound) Set(name string, t Tag) {
	if t == nil || t.Type() == TagEnd {
		panic("nbt: compound entry must not be End")
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].tag = t
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, entry{name: name, tag: t})
}

// Delete removes name and reports whether it was present.
func (c *Compound) Delete(name string) bool {
	i, ok := c.index[name]
	if !ok {
		return false
	}

	c.entries = slices.Delete(c.entries, i, i+1)
	delete(c.index, name)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].name] = j
	}

	return true
}

// Keys returns the entry names in order.
func (c *Compound) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.name
	}

	return keys
}

// All iterates the entries in order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		for _, e := range c.entries {
			if !yield(e.name, e.tag) {
				return
			}
		}
	}
}

// add appends a decoded entry, rejecting repeated names.
func (c *Compound) add(name string, t Tag) bool {
	if _, ok := c.index[name]; ok {
		return false
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, entry{name: name, tag: t})

	return true
}

// Get returns the entry called name in c as a T.
//
// The second result is false if the entry is missing or has another type.
//
//	pos, ok := nbt.Get[nbt.Int](level, "xPos")
//	sections, ok := nbt.Get[*nbt.List](level, "sections")
func Get[T Tag](c *Compound, name string) (T, bool) {
	var zero T

	t, ok := c.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := t.(T)

	return v, ok
}
