package region

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arloliu/mcnbt/compress"
	"github.com/arloliu/mcnbt/format"
	"github.com/arloliu/mcnbt/internal/options"
	"github.com/arloliu/mcnbt/nbt"
)

// DefaultExternalThreshold is the sector count at which a record moves to a
// .mcc file. The location table cannot describe 256 sectors or more.
const DefaultExternalThreshold = MaxSectorCount + 1

// Config holds the settings of a Region handle.
type Config struct {
	readOnly          bool
	logger            *slog.Logger
	compression       format.CompressionType
	customName        string
	registry          *compress.CustomRegistry
	hasCoords         bool
	regionX, regionZ  int
	clock             func() time.Time
	externalThreshold int
	decoderOpts       []nbt.DecoderOption
}

// NewConfig returns the default configuration: read-write, zlib chunks,
// no logging and the wall clock for timestamps.
func NewConfig() *Config {
	return &Config{
		logger:            slog.New(slog.DiscardHandler),
		compression:       format.CompressionZlib,
		customName:        compress.ZstdCodecName,
		registry:          compress.NewCustomRegistry(),
		clock:             time.Now,
		externalThreshold: DefaultExternalThreshold,
	}
}

// Option configures a Region.
type Option = options.Option[*Config]

// WithReadOnly opens the file without write access. Mutating calls fail
// with errs.ErrReadOnly.
func WithReadOnly() Option {
	return options.NoError(func(c *Config) {
		c.readOnly = true
	})
}

// WithLogger sets the logger for allocation and flush diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		c.logger = logger

		return nil
	})
}

// WithCompression sets the scheme PutChunkNBT compresses with.
func WithCompression(scheme format.CompressionType) Option {
	return options.New(func(c *Config) error {
		switch scheme {
		case format.CompressionGzip, format.CompressionZlib, format.CompressionNone,
			format.CompressionLZ4, format.CompressionCustom:
			c.compression = scheme
			return nil
		default:
			return fmt.Errorf("invalid chunk compression: %s (%d)", scheme, uint8(scheme))
		}
	})
}

// WithCustomCodec registers codec under the scheme 127 algorithm id name,
// making chunks written with it readable.
func WithCustomCodec(name string, codec compress.Codec) Option {
	return options.New(func(c *Config) error {
		return c.registry.Register(name, codec)
	})
}

// WithCustomCompression makes PutChunkNBT write scheme 127 records using the
// codec registered as name.
func WithCustomCompression(name string) Option {
	return options.NoError(func(c *Config) {
		c.compression = format.CompressionCustom
		c.customName = name
	})
}

// WithRegionCoords sets the region coordinates used to name external chunk
// files, overriding the r.<x>.<z>.mca file name.
func WithRegionCoords(regionX, regionZ int) Option {
	return options.NoError(func(c *Config) {
		c.hasCoords = true
		c.regionX, c.regionZ = regionX, regionZ
	})
}

// WithClock sets the time source for chunk timestamps.
func WithClock(clock func() time.Time) Option {
	return options.New(func(c *Config) error {
		if clock == nil {
			return fmt.Errorf("nil clock")
		}
		c.clock = clock

		return nil
	})
}

// WithExternalThreshold sets the sector count at which records are written
// to external .mcc files. It must lie in 2..256.
func WithExternalThreshold(sectors int) Option {
	return options.New(func(c *Config) error {
		if sectors < 2 || sectors > DefaultExternalThreshold {
			return fmt.Errorf("invalid external threshold: %d", sectors)
		}
		c.externalThreshold = sectors

		return nil
	})
}

// WithDecoderOptions passes options to the NBT parser used by GetChunkNBT.
func WithDecoderOptions(opts ...nbt.DecoderOption) Option {
	return options.NoError(func(c *Config) {
		c.decoderOpts = append(c.decoderOpts, opts...)
	})
}

func (c *Config) validate() error {
	if c.compression == format.CompressionCustom {
		if _, ok := c.registry.Lookup(c.customName); !ok {
			return fmt.Errorf("custom compression %q is not registered", c.customName)
		}
	}

	return nil
}
