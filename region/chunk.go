package region

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/arloliu/mcnbt/compress"
	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/format"
	"github.com/arloliu/mcnbt/internal/hash"
	"github.com/arloliu/mcnbt/internal/pool"
	"github.com/arloliu/mcnbt/nbt"
)

// recordHeaderLen is the 4-byte length plus the scheme byte.
const recordHeaderLen = 5

// Chunk is one populated slot, as yielded by Region.Chunks.
type Chunk struct {
	X, Z      int
	Location  Location
	Timestamp time.Time
	Scheme    format.CompressionType
	Data      []byte // decompressed NBT document
}

// Digest returns the xxHash64 of the decompressed document.
func (c Chunk) Digest() uint64 {
	return hash.Digest(c.Data)
}

// GetChunk returns the decompressed NBT bytes of the chunk at local
// coordinates (x, z). ok is false when the slot is empty.
//
// Record-level failures are returned as *ChunkError wrapping
// errs.ErrCorruptRecord, errs.ErrDecompression, errs.ErrExternalChunk or
// errs.ErrUnsupportedCompression.
func (r *Region) GetChunk(x, z int) (data []byte, ok bool, err error) {
	slot, err := SlotIndex(x, z)
	if err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkOpen(); err != nil {
		return nil, false, err
	}

	c, ok, err := r.chunkLocked(slot)

	return c.Data, ok, err
}

// GetChunkNBT reads and parses the chunk at (x, z).
func (r *Region) GetChunkNBT(x, z int) (nbt.NamedTag, bool, error) {
	data, ok, err := r.GetChunk(x, z)
	if err != nil || !ok {
		return nbt.NamedTag{}, ok, err
	}

	nt, err := nbt.Parse(data, r.cfg.decoderOpts...)
	if err != nil {
		return nbt.NamedTag{}, false, &ChunkError{X: x, Z: z, Err: err}
	}

	return nt, true, nil
}

// HasChunk reports whether the slot at (x, z) is populated.
func (r *Region) HasChunk(x, z int) (bool, error) {
	loc, err := r.Location(x, z)
	if err != nil {
		return false, err
	}

	return !loc.IsEmpty(), nil
}

// Location returns the location table entry of (x, z), including staged writes.
func (r *Region) Location(x, z int) (Location, error) {
	slot, err := SlotIndex(x, z)
	if err != nil {
		return Location{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkOpen(); err != nil {
		return Location{}, err
	}

	return r.header.Locations[slot], nil
}

// Timestamp returns the last modification time of (x, z), or the zero
// time for an empty slot.
func (r *Region) Timestamp(x, z int) (time.Time, error) {
	slot, err := SlotIndex(x, z)
	if err != nil {
		return time.Time{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkOpen(); err != nil {
		return time.Time{}, err
	}

	return unixTime(r.header.Timestamps[slot]), nil
}

// Len returns the number of populated slots, or 0 once the region is closed.
func (r *Region) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.checkOpen() != nil {
		return 0
	}

	return r.header.Present()
}

// Chunks iterates over populated slots in slot order.
//
// A chunk that cannot be read is yielded with a *ChunkError and iteration
// continues with the next slot. The region lock is not held while the
// consumer runs, so the loop body may call other Region methods.
func (r *Region) Chunks() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for slot := range SlotCount {
			r.mu.RLock()
			if err := r.checkOpen(); err != nil {
				r.mu.RUnlock()
				yield(Chunk{}, err)

				return
			}
			c, ok, err := r.chunkLocked(slot)
			r.mu.RUnlock()

			if !ok && err == nil {
				continue
			}
			if !yield(c, err) {
				return
			}
		}
	}
}

// chunkLocked reads slot; the caller holds r.mu.
func (r *Region) chunkLocked(slot int) (Chunk, bool, error) {
	loc := r.header.Locations[slot]
	x, z := SlotCoords(slot)
	c := Chunk{X: x, Z: z, Location: loc, Timestamp: unixTime(r.header.Timestamps[slot])}
	if loc.IsEmpty() {
		return c, false, nil
	}

	scheme, payload, err := r.recordLocked(slot, loc)
	if err != nil {
		return c, false, chunkErr(slot, err)
	}
	c.Scheme = scheme

	codec, err := r.codec(scheme.Scheme())
	if err != nil {
		return c, false, chunkErr(slot, err)
	}
	data, err := codec.Decompress(payload)
	if err != nil {
		return c, false, chunkErr(slot, err)
	}
	if scheme.Scheme() == format.CompressionNone {
		// The payload aliases the mapping or a staged buffer.
		data = bytes.Clone(data)
	}
	c.Data = data

	return c, true, nil
}

// recordLocked locates the record of slot and returns its scheme byte and
// compressed payload, reading the external file when flagged.
func (r *Region) recordLocked(slot int, loc Location) (format.CompressionType, []byte, error) {
	var rec []byte
	if p, ok := r.pending[slot]; ok && p.record != nil {
		rec = p.record.Bytes()
	} else {
		if loc.Offset < HeaderSectors {
			return 0, nil, fmt.Errorf("%w: sector %d lies in the header", errs.ErrCorruptRecord, loc.Offset)
		}
		b := r.mapping.Bytes()
		start := loc.ByteOffset()
		if start >= int64(len(b)) {
			return 0, nil, fmt.Errorf("%w: sector %d is past end of file", errs.ErrCorruptRecord, loc.Offset)
		}
		end := min(start+int64(loc.Count)*SectorSize, int64(len(b)))
		rec = b[start:end]
	}

	if len(rec) < recordHeaderLen {
		return 0, nil, fmt.Errorf("%w: record header truncated", errs.ErrCorruptRecord)
	}
	length := int64(be.Uint32(rec))
	switch {
	case length == 0:
		return 0, nil, fmt.Errorf("%w: zero-length record", errs.ErrCorruptRecord)
	case length+4 > int64(loc.Count)*SectorSize:
		return 0, nil, fmt.Errorf("%w: length %d exceeds %d allocated sectors", errs.ErrCorruptRecord, length, loc.Count)
	case length+4 > int64(len(rec)):
		return 0, nil, fmt.Errorf("%w: record truncated by end of file", errs.ErrCorruptRecord)
	}

	scheme := format.CompressionType(rec[4])
	if !scheme.IsExternal() {
		return scheme, rec[recordHeaderLen : length+4], nil
	}

	payload, err := r.readExternal(slot)
	if err != nil {
		return scheme, nil, err
	}

	return scheme, payload, nil
}

// codec returns the codec for a scheme without the external flag.
func (r *Region) codec(scheme format.CompressionType) (compress.Codec, error) {
	if scheme == format.CompressionCustom {
		return r.cfg.registry.Codec(r.cfg.customName)
	}

	return compress.GetCodec(scheme)
}

// PutChunk compresses data, a complete NBT document, with scheme and stages
// it for slot (x, z). The write becomes durable on Flush or Close.
//
// Records that need DefaultExternalThreshold sectors or more are stored in
// an external .mcc file, which requires known region coordinates.
func (r *Region) PutChunk(x, z int, data []byte, scheme format.CompressionType) error {
	slot, err := SlotIndex(x, z)
	if err != nil {
		return err
	}
	scheme = scheme.Scheme()

	codec, err := r.codec(scheme)
	if err != nil {
		return &ChunkError{X: x, Z: z, Err: err}
	}
	compressed, err := codec.Compress(data)
	if err != nil {
		return &ChunkError{X: x, Z: z, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkWritable(); err != nil {
		return err
	}

	return r.storeLocked(slot, scheme, compressed)
}

// PutChunkNBT encodes nt and stores it with the configured compression.
func (r *Region) PutChunkNBT(x, z int, nt nbt.NamedTag) error {
	if nt.IsEmpty() {
		return &ChunkError{X: x, Z: z, Err: fmt.Errorf("%w: empty document", errs.ErrInvalidTagType)}
	}

	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	data, err := nbt.AppendNamed(buf.B, nt)
	if err != nil {
		return &ChunkError{X: x, Z: z, Err: err}
	}
	buf.B = data

	return r.PutChunk(x, z, data, r.cfg.compression)
}

func (r *Region) storeLocked(slot int, scheme format.CompressionType, compressed []byte) error {
	hadExternal := r.hasExternalLocked(slot)

	p := &pendingChunk{record: pool.GetRecordBuffer()}
	need := sectorsFor(len(compressed))
	if need >= r.cfg.externalThreshold {
		if _, err := r.externalPath(slot); err != nil {
			p.releaseBuffer()
			return chunkErr(slot, err)
		}
		p.external = bytes.Clone(compressed)
		appendRecord(p.record, scheme|format.ExternalFlag, nil)
		need = 1
	} else {
		p.dropExternal = hadExternal
		appendRecord(p.record, scheme, compressed)
	}

	loc, err := r.placeLocked(slot, uint32(need))
	if err != nil {
		p.releaseBuffer()
		return chunkErr(slot, err)
	}

	if old, ok := r.pending[slot]; ok {
		old.releaseBuffer()
	}
	r.pending[slot] = p
	r.header.Locations[slot] = loc
	r.header.Timestamps[slot] = uint32(r.cfg.clock().Unix())

	return nil
}

// placeLocked picks sectors for a record of need sectors in slot.
//
// The slot's current range is reused when it is large enough and its tail is
// released. Otherwise a new range is allocated first and the old one is
// released afterwards, so a failed allocation leaves the slot intact.
func (r *Region) placeLocked(slot int, need uint32) (Location, error) {
	old := r.header.Locations[slot]
	releasable := !old.IsEmpty() && !r.conflicted[slot]

	if releasable && uint32(old.Count) >= need {
		r.alloc.release(old.Offset+need, uint32(old.Count)-need)
		r.logAlloc(slot, "reuse", old.Offset, need)

		return Location{Offset: old.Offset, Count: uint8(need)}, nil
	}

	prevEnd := r.alloc.end
	start, err := r.alloc.allocate(need)
	if err != nil {
		return Location{}, err
	}
	if releasable {
		r.alloc.release(old.Offset, uint32(old.Count))
	}
	delete(r.conflicted, slot)

	strategy := "first-fit"
	if start+need > prevEnd {
		strategy = "append"
	}
	r.logAlloc(slot, strategy, start, need)

	return Location{Offset: start, Count: uint8(need)}, nil
}

func (r *Region) logAlloc(slot int, strategy string, start, n uint32) {
	x, z := SlotCoords(slot)
	r.cfg.logger.Debug("chunk sectors allocated",
		slog.Int("x", x), slog.Int("z", z),
		slog.String("strategy", strategy),
		slog.Any("offset", start), slog.Any("count", n))
}

// DeleteChunk clears slot (x, z) and frees its sectors. It reports whether
// the slot was populated.
func (r *Region) DeleteChunk(x, z int) (bool, error) {
	slot, err := SlotIndex(x, z)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkWritable(); err != nil {
		return false, err
	}

	old := r.header.Locations[slot]
	if old.IsEmpty() {
		return false, nil
	}

	p := &pendingChunk{dropExternal: r.hasExternalLocked(slot)}
	if !r.conflicted[slot] {
		r.alloc.release(old.Offset, uint32(old.Count))
	}
	delete(r.conflicted, slot)

	if prev, ok := r.pending[slot]; ok {
		prev.releaseBuffer()
	}
	r.pending[slot] = p
	r.header.Locations[slot] = Location{}
	r.header.Timestamps[slot] = 0

	return true, nil
}

// hasExternalLocked reports whether slot may currently own a .mcc file.
func (r *Region) hasExternalLocked(slot int) bool {
	if p, ok := r.pending[slot]; ok {
		return p.external != nil || p.dropExternal
	}

	loc := r.header.Locations[slot]
	if loc.IsEmpty() || loc.Offset < HeaderSectors {
		return false
	}
	b := r.mapping.Bytes()
	at := loc.ByteOffset() + 4
	if at >= int64(len(b)) {
		return false
	}

	return format.CompressionType(b[at]).IsExternal()
}

// appendRecord writes the length, the scheme byte and the payload, then pads
// to a whole sector.
func appendRecord(bb *pool.ByteBuffer, scheme format.CompressionType, payload []byte) {
	bb.Grow(recordHeaderLen + len(payload))
	bb.B = be.AppendUint32(bb.B, uint32(len(payload)+1))
	bb.B = append(bb.B, byte(scheme))
	bb.MustWrite(payload)
	bb.PadTo(SectorSize)
}

func sectorsFor(payloadLen int) int {
	return (recordHeaderLen + payloadLen + SectorSize - 1) / SectorSize
}

func unixTime(ts uint32) time.Time {
	if ts == 0 {
		return time.Time{}
	}

	return time.Unix(int64(ts), 0)
}
