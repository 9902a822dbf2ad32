package region

import (
	"fmt"

	"github.com/arloliu/mcnbt/endian"
	"github.com/arloliu/mcnbt/errs"
)

const (
	// SectorSize is the allocation unit of a region file.
	SectorSize = 4096
	// HeaderSize covers the location table and the timestamp table.
	HeaderSize = 2 * SectorSize
	// HeaderSectors is the number of sectors reserved for the header.
	HeaderSectors = HeaderSize / SectorSize

	// Width is the number of chunks along each side of a region.
	Width = 32
	// SlotCount is the number of chunk slots in a region.
	SlotCount = Width * Width

	// MaxSectorOffset is the largest offset the 3-byte location field holds.
	MaxSectorOffset = endian.MaxUint24
	// MaxSectorCount is the largest count the 1-byte location field holds.
	MaxSectorCount = 0xFF
)

var be = endian.GetBigEndianEngine()

// Location is one entry of the location table.
type Location struct {
	Offset uint32 // first sector of the record
	Count  uint8  // sectors reserved for the record
}

// IsEmpty reports whether the slot holds no chunk. Either field being zero
// marks the slot absent.
func (l Location) IsEmpty() bool {
	return l.Offset == 0 || l.Count == 0
}

// End returns the first sector past the record.
func (l Location) End() uint32 {
	return l.Offset + uint32(l.Count)
}

// ByteOffset returns the file offset of the record.
func (l Location) ByteOffset() int64 {
	return int64(l.Offset) * SectorSize
}

func (l Location) String() string {
	if l.IsEmpty() {
		return "empty"
	}

	return fmt.Sprintf("sectors [%d, %d)", l.Offset, l.End())
}

// Header is the decoded 8 KiB header of a region file.
type Header struct {
	Locations  [SlotCount]Location
	Timestamps [SlotCount]uint32
}

// SlotIndex maps local chunk coordinates to a header slot.
// Both coordinates must lie in 0..31.
func SlotIndex(x, z int) (int, error) {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		return 0, fmt.Errorf("%w: (%d, %d) not in 0..%d", errs.ErrOutOfRange, x, z, Width-1)
	}

	return x + z*Width, nil
}

// SlotCoords is the inverse of SlotIndex.
func SlotCoords(slot int) (x, z int) {
	return slot % Width, slot / Width
}

// WorldToLocal splits absolute chunk coordinates into the coordinates of the
// region that holds the chunk and the chunk's local position inside it.
func WorldToLocal(chunkX, chunkZ int) (regionX, regionZ, localX, localZ int) {
	return chunkX >> 5, chunkZ >> 5, chunkX & (Width - 1), chunkZ & (Width - 1)
}

// ParseHeader decodes the first HeaderSize bytes of b.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: file too small for header (%d bytes)", errs.ErrCorruptRecord, len(b))
	}

	h := &Header{}
	for i := range SlotCount {
		loc := b[i*4 : i*4+4]
		h.Locations[i] = Location{Offset: endian.Uint24(loc), Count: loc[3]}
		h.Timestamps[i] = be.Uint32(b[SectorSize+i*4:])
	}

	return h, nil
}

// AppendBinary appends the 8 KiB encoding of h to dst, all slots in slot
// order.
func (h *Header) AppendBinary(dst []byte) ([]byte, error) {
	for _, loc := range h.Locations {
		if loc.Offset > MaxSectorOffset {
			return dst, fmt.Errorf("%w: sector offset %d exceeds %d", errs.ErrAllocationFailure, loc.Offset, MaxSectorOffset)
		}
		dst = endian.AppendUint24(dst, loc.Offset)
		dst = append(dst, loc.Count)
	}
	for _, ts := range h.Timestamps {
		dst = be.AppendUint32(dst, ts)
	}

	return dst, nil
}

// MarshalBinary returns the 8 KiB encoding of h.
func (h *Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, HeaderSize))
}

// Present returns the number of populated slots.
func (h *Header) Present() int {
	n := 0
	for _, loc := range h.Locations {
		if !loc.IsEmpty() {
			n++
		}
	}

	return n
}
