package nbt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpOptions controls Dump output.
type DumpOptions struct {
	// Indent is repeated once per nesting level. Defaults to two spaces.
	Indent string
	// MaxArray caps how many array or list elements are printed; 0 prints all.
	MaxArray int
}

// Dump writes an indented, human-readable rendering of nt to w:
//
//	Compound(''): 2 entries
//	{
//	  Int('DataVersion'): 3465
//	  List('sections'): 0 entries of String
//	}
func Dump(w io.Writer, nt NamedTag) error {
	return DumpWith(w, nt, DumpOptions{MaxArray: 16})
}

// DumpWith is Dump with explicit options.
func DumpWith(w io.Writer, nt NamedTag, opts DumpOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	bw := bufio.NewWriter(w)
	d := dumper{w: bw, opts: opts}
	if nt.IsEmpty() {
		d.line(0, "End")
	} else {
		d.tag(0, quoteName(nt.Name), nt.Tag)
	}
	if d.err != nil {
		return d.err
	}

	return bw.Flush()
}

type dumper struct {
	w    *bufio.Writer
	opts DumpOptions
	err  error
}

func (d *dumper) line(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	if _, err := d.w.WriteString(strings.Repeat(d.opts.Indent, depth)); err != nil {
		d.err = err
		return
	}
	if _, err := fmt.Fprintf(d.w, format+"\n", args...); err != nil {
		d.err = err
	}
}

func (d *dumper) tag(depth int, label string, t Tag) {
	head := fmt.Sprintf("%s(%s)", t.Type(), label)

	switch v := t.(type) {
	case Byte, Short, Int, Long:
		d.line(depth, "%s: %d", head, v)
	case Float:
		d.line(depth, "%s: %s", head, strconv.FormatFloat(float64(v), 'g', -1, 32))
	case Double:
		d.line(depth, "%s: %s", head, strconv.FormatFloat(float64(v), 'g', -1, 64))
	case String:
		d.line(depth, "%s: %s", head, strconv.Quote(string(v)))
	case ByteArray:
		d.line(depth, "%s: [%d bytes] %s", head, len(v), d.preview(len(v), func(i int) string { return strconv.Itoa(int(int8(v[i]))) }))
	case IntArray:
		d.line(depth, "%s: [%d ints] %s", head, len(v), d.preview(len(v), func(i int) string { return strconv.Itoa(int(v[i])) }))
	case LongArray:
		d.line(depth, "%s: [%d longs] %s", head, len(v), d.preview(len(v), func(i int) string { return strconv.FormatInt(v[i], 10) }))
	case *List:
		d.line(depth, "%s: %d entries of %s", head, v.Len(), v.ElemType())
		if v.Len() == 0 {
			return
		}
		d.line(depth, "{")
		for i, it := range v.All() {
			if d.opts.MaxArray > 0 && i >= d.opts.MaxArray {
				d.line(depth+1, "... %d more", v.Len()-i)
				break
			}
			d.tag(depth+1, "", it)
		}
		d.line(depth, "}")
	case *Compound:
		d.line(depth, "%s: %d entries", head, v.Len())
		d.line(depth, "{")
		for name, it := range v.All() {
			d.tag(depth+1, quoteName(name), it)
		}
		d.line(depth, "}")
	default:
		d.line(depth, "%s", head)
	}
}

func (d *dumper) preview(n int, item func(int) string) string {
	limit := n
	if d.opts.MaxArray > 0 && limit > d.opts.MaxArray {
		limit = d.opts.MaxArray
	}

	parts := make([]string, 0, limit+1)
	for i := range limit {
		parts = append(parts, item(i))
	}
	if limit < n {
		parts = append(parts, "...")
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func quoteName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", `\'`) + "'"
}
