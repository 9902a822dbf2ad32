package region

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/internal/mmap"
	"github.com/arloliu/mcnbt/internal/options"
	"github.com/arloliu/mcnbt/internal/pool"
)

// Region is an open .mca file.
//
// Reads are served from a read-only mapping of the file. Writes are staged
// in memory: PutChunk and DeleteChunk update the in-memory header and
// allocator right away, and Flush writes the staged records, the header and
// any external files, then remaps the file.
//
// Thread Safety: reads of any chunks may run concurrently. Mutating calls
// take an exclusive lock, so no reader observes a half-written record. A
// single Region must be the only writer of its file.
type Region struct {
	mu         sync.RWMutex
	path       string
	cfg        *Config
	file       *os.File // nil when read-only
	mapping    *mmap.Mapping
	header     *Header
	alloc      *allocator
	conflicted map[int]bool
	pending    map[int]*pendingChunk
	closed     bool
}

// pendingChunk is a write or delete waiting for Flush.
type pendingChunk struct {
	record       *pool.ByteBuffer // sector-padded record; nil for a delete
	external     []byte           // .mcc contents when stored externally
	dropExternal bool             // a previous .mcc must be removed
}

func (p *pendingChunk) releaseBuffer() {
	if p.record != nil {
		pool.PutRecordBuffer(p.record)
		p.record = nil
	}
}

// Open opens an existing region file.
//
// A zero-length file opened for writing is initialized with an empty
// header, the way the game treats a freshly created region.
func Open(path string, opts ...Option) (*Region, error) {
	cfg, err := newConfig(path, opts)
	if err != nil {
		return nil, err
	}

	flag := os.O_RDWR
	if cfg.readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}

	r, err := newRegion(path, f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return r, nil
}

// Create creates an empty region file, truncating any existing file.
func Create(path string, opts ...Option) (*Region, error) {
	cfg, err := newConfig(path, opts)
	if err != nil {
		return nil, err
	}
	if cfg.readOnly {
		return nil, fmt.Errorf("region: create %s: %w", path, errs.ErrReadOnly)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("region: create %s: %w", path, err)
	}

	r, err := newRegion(path, f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return r, nil
}

func newConfig(path string, opts []Option) (*Config, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if !cfg.hasCoords {
		if rx, rz, ok := ParseFileName(filepath.Base(path)); ok {
			cfg.hasCoords = true
			cfg.regionX, cfg.regionZ = rx, rz
		}
	}

	return cfg, nil
}

func newRegion(path string, f *os.File, cfg *Config) (*Region, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("region: stat %s: %w", path, err)
	}
	if fi.Size() == 0 && !cfg.readOnly {
		if _, err := f.WriteAt(make([]byte, HeaderSize), 0); err != nil {
			return nil, fmt.Errorf("region: init header %s: %w", path, err)
		}
	}

	mapping, err := mmap.Open(f)
	if err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}

	header, err := ParseHeader(mapping.Bytes())
	if err != nil {
		_ = mapping.Close()
		return nil, fmt.Errorf("region: %s: %w", path, err)
	}

	r := &Region{
		path:       path,
		cfg:        cfg,
		mapping:    mapping,
		header:     header,
		conflicted: make(map[int]bool),
		pending:    make(map[int]*pendingChunk),
	}

	fileSectors := uint32((int64(mapping.Len()) + SectorSize - 1) / SectorSize)
	alloc, conflicts := newAllocator(header, fileSectors)
	r.alloc = alloc
	for _, c := range conflicts {
		x, z := SlotCoords(c.slot)
		cfg.logger.Warn("region header entry conflict",
			slog.String("path", path),
			slog.Int("x", x), slog.Int("z", z),
			slog.Any("offset", c.loc.Offset), slog.Any("count", c.loc.Count),
			slog.String("reason", c.reason))
		if c.shared {
			r.conflicted[c.slot] = true
		}
	}

	if cfg.readOnly {
		// The mapping outlives the descriptor.
		if err := f.Close(); err != nil {
			_ = mapping.Close()
			return nil, fmt.Errorf("region: close %s: %w", path, err)
		}
	} else {
		r.file = f
	}

	cfg.logger.Debug("region opened",
		slog.String("path", path),
		slog.Int("chunks", header.Present()),
		slog.Int("bytes", mapping.Len()),
		slog.Bool("mmap", mapping.Mapped()))

	return r, nil
}

// ParseFileName extracts the region coordinates from an r.<x>.<z>.mca name.
func ParseFileName(name string) (regionX, regionZ int, ok bool) {
	rest, found := strings.CutPrefix(name, "r.")
	if !found {
		return 0, 0, false
	}
	if rest, found = strings.CutSuffix(rest, ".mca"); !found {
		return 0, 0, false
	}

	xs, zs, found := strings.Cut(rest, ".")
	if !found {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(xs)
	z, errZ := strconv.Atoi(zs)
	if errX != nil || errZ != nil {
		return 0, 0, false
	}

	return x, z, true
}

// FileName returns the conventional file name of a region.
func FileName(regionX, regionZ int) string {
	return fmt.Sprintf("r.%d.%d.mca", regionX, regionZ)
}

// Path returns the file path the region was opened with.
func (r *Region) Path() string {
	return r.path
}

// Coords returns the region coordinates, when known.
func (r *Region) Coords() (regionX, regionZ int, ok bool) {
	return r.cfg.regionX, r.cfg.regionZ, r.cfg.hasCoords
}

// ReadOnly reports whether the region was opened WithReadOnly.
func (r *Region) ReadOnly() bool {
	return r.cfg.readOnly
}

// Flush persists staged writes: chunk records first, then external files,
// then the header, followed by fsync and a remap of the grown file.
//
// On error the staged writes are kept so Flush may be retried.
func (r *Region) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkWritable(); err != nil {
		return err
	}

	return r.flushLocked()
}

func (r *Region) flushLocked() error {
	if len(r.pending) == 0 {
		return nil
	}

	fi, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("region: stat %s: %w", r.path, err)
	}
	size := max(int64(r.alloc.end)*SectorSize, alignSector(fi.Size()))
	if fi.Size() != size {
		if err := r.file.Truncate(size); err != nil {
			return fmt.Errorf("region: grow %s: %w", r.path, err)
		}
	}

	slots := make([]int, 0, len(r.pending))
	for slot := range r.pending {
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	for _, slot := range slots {
		p := r.pending[slot]
		if p.record != nil {
			if _, err := r.file.WriteAt(p.record.Bytes(), r.header.Locations[slot].ByteOffset()); err != nil {
				return chunkErr(slot, fmt.Errorf("write record: %w", err))
			}
		}
		if err := r.syncExternal(slot, p); err != nil {
			return chunkErr(slot, err)
		}
	}

	hdr, err := r.header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("region: %s: %w", r.path, err)
	}
	if _, err := r.file.WriteAt(hdr, 0); err != nil {
		return fmt.Errorf("region: write header %s: %w", r.path, err)
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("region: sync %s: %w", r.path, err)
	}

	mapping, err := mmap.Open(r.file)
	if err != nil {
		return fmt.Errorf("region: remap: %w", err)
	}
	_ = r.mapping.Close()
	r.mapping = mapping

	for _, p := range r.pending {
		p.releaseBuffer()
	}
	clear(r.pending)

	r.cfg.logger.Debug("region flushed",
		slog.String("path", r.path),
		slog.Int("chunks", len(slots)),
		slog.Any("sectors", r.alloc.end),
		slog.Any("free_sectors", r.alloc.freeSectors()))

	return nil
}

// Close flushes staged writes and releases the file. The Region cannot be
// used afterwards.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errs.ErrClosed
	}
	r.closed = true

	var errList []error
	if !r.cfg.readOnly {
		errList = append(errList, r.flushLocked())
		for _, p := range r.pending {
			p.releaseBuffer()
		}
		clear(r.pending)
	}
	errList = append(errList, r.mapping.Close())
	if r.file != nil {
		errList = append(errList, r.file.Close())
	}

	return errors.Join(errList...)
}

func (r *Region) checkOpen() error {
	if r.closed {
		return errs.ErrClosed
	}

	return nil
}

func (r *Region) checkWritable() error {
	if r.closed {
		return errs.ErrClosed
	}
	if r.cfg.readOnly {
		return errs.ErrReadOnly
	}

	return nil
}

// Stats summarizes a region's space usage.
type Stats struct {
	Chunks      int // populated slots
	FileSectors int // sectors the file will span after the next flush
	FreeSectors int // unreferenced sectors inside the file
	Pending     int // staged writes and deletes
}

// Stats reports the current space usage, including staged writes.
func (r *Region) Stats() (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkOpen(); err != nil {
		return Stats{}, err
	}

	return Stats{
		Chunks:      r.header.Present(),
		FileSectors: int(r.alloc.end),
		FreeSectors: int(r.alloc.freeSectors()),
		Pending:     len(r.pending),
	}, nil
}

func alignSector(n int64) int64 {
	return (n + SectorSize - 1) / SectorSize * SectorSize
}
