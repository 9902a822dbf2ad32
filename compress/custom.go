package compress

import (
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/mcnbt/endian"
	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/mutf8"
)

// Algorithm ids of the custom codecs every registry starts with.
const (
	ZstdCodecName = "mcnbt:zstd"
	S2CodecName   = "mcnbt:s2"
)

// CustomRegistry maps scheme 127 algorithm ids to codecs.
//
// A scheme 127 payload starts with the algorithm id as a u16-prefixed
// modified UTF-8 string; the rest is handed to the registered codec.
// Each region owns its registry, so Register on one handle never leaks into
// another.
type CustomRegistry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewCustomRegistry returns a registry holding the built-in zstd and s2 codecs.
func NewCustomRegistry() *CustomRegistry {
	return &CustomRegistry{
		codecs: map[string]Codec{
			ZstdCodecName: NewZstdCodec(),
			S2CodecName:   NewS2Codec(),
		},
	}
}

// Register adds or replaces the codec for name.
//
// Returns an error if name is empty, cannot be framed as an NBT string or
// codec is nil.
func (r *CustomRegistry) Register(name string, codec Codec) error {
	if name == "" || codec == nil {
		return fmt.Errorf("%w: custom codec needs a name and an implementation", errs.ErrUnsupportedCompression)
	}
	if _, err := mutf8.EncodedLen(name); err != nil {
		return fmt.Errorf("custom codec name %q: %w", name, err)
	}

	r.mu.Lock()
	r.codecs[name] = codec
	r.mu.Unlock()

	return nil
}

// Lookup returns the raw codec registered for name.
func (r *CustomRegistry) Lookup(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[name]

	return codec, ok
}

// Names returns the registered ids in sorted order.
func (r *CustomRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Codec returns a scheme 127 codec that compresses with the codec registered
// as name and decompresses any payload whose id is known to r.
func (r *CustomRegistry) Codec(name string) (Codec, error) {
	if _, ok := r.Lookup(name); !ok {
		return nil, fmt.Errorf("%w: unknown custom codec %q", errs.ErrUnsupportedCompression, name)
	}

	return &CustomCodec{name: name, registry: r}, nil
}

// CustomCodec frames payloads for scheme 127.
type CustomCodec struct {
	name     string
	registry *CustomRegistry
}

var _ Codec = (*CustomCodec)(nil)

// Name returns the algorithm id written by Compress.
func (c *CustomCodec) Name() string {
	return c.name
}

// Compress writes the algorithm id followed by the compressed data.
func (c *CustomCodec) Compress(data []byte) ([]byte, error) {
	inner, ok := c.registry.Lookup(c.name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown custom codec %q", errs.ErrUnsupportedCompression, c.name)
	}

	body, err := inner.Compress(data)
	if err != nil {
		return nil, err
	}

	out, err := mutf8.AppendString(make([]byte, 0, 2+len(c.name)+len(body)), c.name)
	if err != nil {
		return nil, err
	}

	return append(out, body...), nil
}

// Decompress reads the algorithm id and dispatches to its codec.
func (c *CustomCodec) Decompress(data []byte) ([]byte, error) {
	name, body, err := ParseCustomID(data)
	if err != nil {
		return nil, err
	}

	inner, ok := c.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown custom codec %q", errs.ErrUnsupportedCompression, name)
	}

	return inner.Decompress(body)
}

// ParseCustomID splits a scheme 127 payload into its algorithm id and the
// compressed body.
func ParseCustomID(data []byte) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, fmt.Errorf("%w: custom payload too short for algorithm id", errs.ErrDecompression)
	}

	n := int(endian.GetBigEndianEngine().Uint16(data))
	if len(data)-2 < n {
		return "", nil, fmt.Errorf("%w: custom algorithm id overruns payload", errs.ErrDecompression)
	}

	name, err := mutf8.Decode(data[2 : 2+n])
	if err != nil {
		return "", nil, fmt.Errorf("%w: custom algorithm id: %w", errs.ErrDecompression, err)
	}

	return name, data[2+n:], nil
}
