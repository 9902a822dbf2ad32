package nbt

import (
	"fmt"

	"github.com/arloliu/mcnbt/internal/options"
)

// DefaultMaxDepth is the nesting limit applied to lists and compounds.
// It matches the limit enforced by the game itself.
const DefaultMaxDepth = 512

// DecoderConfig holds parser settings.
type DecoderConfig struct {
	maxDepth int
}

// NewDecoderConfig returns the default parser settings.
func NewDecoderConfig() *DecoderConfig {
	return &DecoderConfig{maxDepth: DefaultMaxDepth}
}

// MaxDepth returns the configured nesting limit.
func (c *DecoderConfig) MaxDepth() int {
	return c.maxDepth
}

// DecoderOption configures the parser.
type DecoderOption = options.Option[*DecoderConfig]

// WithMaxDepth sets how deeply lists and compounds may nest.
func WithMaxDepth(depth int) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		if depth <= 0 {
			return fmt.Errorf("invalid max depth: %d", depth)
		}
		c.maxDepth = depth

		return nil
	})
}
