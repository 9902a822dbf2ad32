package nbt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	root := NewCompound()
	root.Set("DataVersion", Int(3465))
	root.Set("name", String("it's"))
	root.Set("sections", MustList(TagString))
	root.Set("heights", LongArray{1, 2, 3})
	root.Set("pos", MustList(TagDouble, Double(0.5), Double(-1)))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, NamedTag{Name: "", Tag: root}))

	want := `Compound(''): 5 entries
{
  Int('DataVersion'): 3465
  String('name'): "it's"
  List('sections'): 0 entries of String
  LongArray('heights'): [3 longs] [1, 2, 3]
  List('pos'): 2 entries of Double
  {
    Double(''): 0.5
    Double(''): -1
  }
}
`
	require.Equal(t, want, buf.String())
}

func TestDump_Truncation(t *testing.T) {
	var buf bytes.Buffer
	err := DumpWith(&buf, NamedTag{Name: "b", Tag: ByteArray{1, 2, 3, 4}}, DumpOptions{MaxArray: 2, Indent: "\t"})
	require.NoError(t, err)
	require.Equal(t, "ByteArray('b'): [4 bytes] [1, 2, ...]\n", buf.String())
}

func TestDump_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, NamedTag{}))
	require.Equal(t, "End\n", buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestDump_WriteError(t *testing.T) {
	root := NewCompound()
	root.Set("x", Int(1))

	err := Dump(failWriter{}, NamedTag{Tag: root})
	require.EqualError(t, err, "broken pipe")
}
